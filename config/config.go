// Package config loads runtime configuration from a TOML file, layered
// over in-code defaults. Every tunable the pipeline exposes lives here so
// deployments can override without rebuilding.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/esinecan/skynet-agent-sub001/engine"
	"github.com/esinecan/skynet-agent-sub001/memory"
	"github.com/esinecan/skynet-agent-sub001/reflection"
)

// Config is the full runtime configuration.
type Config struct {
	Model      ModelConfig            `toml:"model"`
	Engine     engine.Config          `toml:"engine"`
	Retriever  memory.RetrieverConfig `toml:"retriever"`
	Reflection reflection.Config      `toml:"reflection"`
	MCP        []MCPServer            `toml:"mcp"`
}

// ModelConfig selects the inference model.
type ModelConfig struct {
	Name      string `toml:"name"`
	MaxTokens int64  `toml:"max_tokens"`
}

// MCPServer describes one MCP tool server to launch at startup.
type MCPServer struct {
	Name    string   `toml:"name"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Env     []string `toml:"env"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Name:      "claude-sonnet-4-20250514",
			MaxTokens: 4096,
		},
		Engine:     engine.DefaultConfig,
		Retriever:  memory.DefaultRetrieverConfig,
		Reflection: reflection.DefaultConfig,
	}
}

// Load reads a TOML file over the defaults. A missing file is not an
// error; the defaults stand.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}
