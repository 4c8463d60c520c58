package core_test

import (
	"testing"

	"github.com/esinecan/skynet-agent-sub001/core"
)

func TestTurnStateCloneIsDeep(t *testing.T) {
	original := &core.TurnState{
		SessionID: "s1",
		Messages:  []core.Message{{Role: core.RoleUser, Content: "hi"}},
		PendingToolCall: &core.PendingToolCall{
			Provider:  "p",
			Tool:      "t",
			Arguments: map[string]any{"k": "v"},
		},
		ToolResults: map[string]string{"p.t": "out"},
		RetrievalEvaluation: &core.RetrievalEvaluation{
			ShouldRetrieve: true,
			Results:        []core.SearchResult{{ID: "r1"}},
		},
		Reflection: &core.ReflectionResult{Score: 8},
	}

	clone := original.Clone()

	clone.Messages[0].Content = "changed"
	clone.PendingToolCall.Arguments["k"] = "changed"
	clone.ToolResults["p.t"] = "changed"
	clone.RetrievalEvaluation.Results[0].ID = "changed"
	clone.Reflection.Score = 1

	if original.Messages[0].Content != "hi" {
		t.Error("messages aliased")
	}
	if original.PendingToolCall.Arguments["k"] != "v" {
		t.Error("tool call arguments aliased")
	}
	if original.ToolResults["p.t"] != "out" {
		t.Error("tool results aliased")
	}
	if original.RetrievalEvaluation.Results[0].ID != "r1" {
		t.Error("retrieval results aliased")
	}
	if original.Reflection.Score != 8 {
		t.Error("reflection aliased")
	}
}

func TestTurnStateCloneNil(t *testing.T) {
	var s *core.TurnState
	if s.Clone() != nil {
		t.Error("nil clone must stay nil")
	}
}

func TestToolCallOutcomeFailed(t *testing.T) {
	ok := &core.ToolCallOutcome{Result: "fine"}
	if ok.Failed() {
		t.Error("success reported as failure")
	}
	bad := &core.ToolCallOutcome{Err: "boom"}
	if !bad.Failed() {
		t.Error("failure not reported")
	}
}
