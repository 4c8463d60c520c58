package engine

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// The model signals a tool invocation by embedding a JSON object with
// "provider" and "tool" keys in its reply, either inside a fenced code
// block or inline. Extraction never fails: anything that does not parse,
// or parses without the required keys, is simply not a tool call.

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json|tool_call|tool)?[ \t]*\n?(.*?)```")

// ExtractToolCall scans a model reply for a tool-invocation block and
// returns the parsed call, or nil when the reply contains none.
func ExtractToolCall(reply string) *core.PendingToolCall {
	for _, m := range fencedBlockRe.FindAllStringSubmatch(reply, -1) {
		if call := parseToolCall(m[1]); call != nil {
			return call
		}
	}

	// Fallback: inline object anywhere in the reply.
	for i := 0; i < len(reply); i++ {
		if reply[i] != '{' {
			continue
		}
		if call := parseToolCall(reply[i:]); call != nil {
			return call
		}
	}
	return nil
}

// parseToolCall decodes the first JSON value in s and validates the
// required keys. Trailing text after the object is ignored.
func parseToolCall(s string) *core.PendingToolCall {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil
	}

	var raw struct {
		Provider  string         `json:"provider"`
		Tool      string         `json:"tool"`
		Args      map[string]any `json:"args"`
		Arguments map[string]any `json:"arguments"`
	}
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&raw); err != nil {
		return nil
	}
	if raw.Provider == "" || raw.Tool == "" {
		return nil
	}

	args := raw.Args
	if args == nil {
		args = raw.Arguments
	}
	if args == nil {
		args = map[string]any{}
	}
	return &core.PendingToolCall{
		Provider:  raw.Provider,
		Tool:      raw.Tool,
		Arguments: args,
	}
}
