package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/esinecan/skynet-agent-sub001/config"
)

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.toml")} {
		cfg, err := config.Load(path)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if cfg.Model.Name != "claude-sonnet-4-20250514" {
			t.Errorf("model default lost: %q", cfg.Model.Name)
		}
		if cfg.Retriever.TopK != 3 || cfg.Retriever.KeywordThreshold != 2 {
			t.Errorf("retriever defaults lost: %+v", cfg.Retriever)
		}
		if cfg.Reflection.QualityThreshold != 7 {
			t.Errorf("reflection default lost: %+v", cfg.Reflection)
		}
	}
}

func TestLoadOverridesAndMerges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[model]
name = "claude-haiku-4"

[retriever]
topk = 5

[engine]
systemprompt = "You are a tea sommelier."

[[mcp]]
name = "filesystem"
command = "mcp-fs"
args = ["--root", "/data"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model.Name != "claude-haiku-4" {
		t.Errorf("model override lost: %q", cfg.Model.Name)
	}
	if cfg.Model.MaxTokens != 4096 {
		t.Errorf("unset field must keep its default, got %d", cfg.Model.MaxTokens)
	}
	if cfg.Retriever.TopK != 5 {
		t.Errorf("retriever override lost: %+v", cfg.Retriever)
	}
	if cfg.Retriever.MinScore != 0.3 {
		t.Errorf("unset retriever field must keep its default, got %v", cfg.Retriever.MinScore)
	}
	if cfg.Engine.SystemPrompt != "You are a tea sommelier." {
		t.Errorf("engine override lost: %q", cfg.Engine.SystemPrompt)
	}
	if len(cfg.MCP) != 1 || cfg.MCP[0].Command != "mcp-fs" || len(cfg.MCP[0].Args) != 2 {
		t.Errorf("mcp servers lost: %+v", cfg.MCP)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("this is { not toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected a decode error")
	}
}
