package engine_test

import (
	"testing"

	"github.com/esinecan/skynet-agent-sub001/engine"
)

func TestExtractToolCall_FencedBlock(t *testing.T) {
	reply := "I'll look that up.\n```json\n{\"provider\":\"p\",\"tool\":\"t\",\"args\":{\"a\":1}}\n```\nOne moment."

	call := engine.ExtractToolCall(reply)
	if call == nil {
		t.Fatal("expected a tool call")
	}
	if call.Provider != "p" || call.Tool != "t" {
		t.Errorf("got provider=%q tool=%q, want p/t", call.Provider, call.Tool)
	}
	if got, ok := call.Arguments["a"].(float64); !ok || got != 1 {
		t.Errorf("got args %v, want a=1", call.Arguments)
	}
}

func TestExtractToolCall_UntaggedFence(t *testing.T) {
	reply := "```\n{\"provider\":\"files\",\"tool\":\"read\",\"args\":{\"path\":\"x\"}}\n```"
	call := engine.ExtractToolCall(reply)
	if call == nil {
		t.Fatal("expected a tool call from untagged fence")
	}
	if call.Tool != "read" {
		t.Errorf("got tool %q, want read", call.Tool)
	}
}

func TestExtractToolCall_InlineObject(t *testing.T) {
	reply := `Sure: {"provider":"clock","tool":"now","args":{}} coming right up.`
	call := engine.ExtractToolCall(reply)
	if call == nil {
		t.Fatal("expected a tool call from inline object")
	}
	if call.Provider != "clock" || call.Tool != "now" {
		t.Errorf("got %s.%s, want clock.now", call.Provider, call.Tool)
	}
}

func TestExtractToolCall_ArgumentsKeyAccepted(t *testing.T) {
	reply := `{"provider":"p","tool":"t","arguments":{"q":"x"}}`
	call := engine.ExtractToolCall(reply)
	if call == nil {
		t.Fatal("expected a tool call")
	}
	if call.Arguments["q"] != "x" {
		t.Errorf("got args %v, want q=x", call.Arguments)
	}
}

func TestExtractToolCall_MissingToolKey(t *testing.T) {
	reply := "```json\n{\"provider\":\"p\",\"args\":{\"a\":1}}\n```"
	if call := engine.ExtractToolCall(reply); call != nil {
		t.Fatalf("expected no tool call, got %+v", call)
	}
}

func TestExtractToolCall_PlainText(t *testing.T) {
	for _, reply := range []string{
		"The capital of France is Paris.",
		"",
		"Here is some code:\n```go\nfunc main() {}\n```",
		"Braces in prose {like this} are not calls.",
	} {
		if call := engine.ExtractToolCall(reply); call != nil {
			t.Errorf("reply %q: expected no tool call, got %+v", reply, call)
		}
	}
}

func TestExtractToolCall_MalformedJSON(t *testing.T) {
	reply := "```json\n{\"provider\":\"p\",\"tool\":\n```"
	if call := engine.ExtractToolCall(reply); call != nil {
		t.Fatalf("expected no tool call from malformed json, got %+v", call)
	}
}
