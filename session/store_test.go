package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/esinecan/skynet-agent-sub001/core"
	"github.com/esinecan/skynet-agent-sub001/session"
)

func TestStoreGetMissing(t *testing.T) {
	s := session.NewStore()
	if state, ok := s.Get("nope"); ok || state != nil {
		t.Errorf("got %+v, %v; want nil, false", state, ok)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := session.NewStore()
	s.Put("s1", &core.TurnState{
		SessionID: "s1",
		UserText:  "hi there",
		Messages:  []core.Message{{Role: core.RoleUser, Content: "hi there"}},
	})

	state, ok := s.Get("s1")
	if !ok {
		t.Fatal("state missing")
	}
	if state.UserText != "hi there" || len(state.Messages) != 1 {
		t.Errorf("state %+v", state)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStoreClonesOnBothSides(t *testing.T) {
	s := session.NewStore()
	original := &core.TurnState{
		SessionID:   "s1",
		Messages:    []core.Message{{Role: core.RoleUser, Content: "first"}},
		ToolResults: map[string]string{"a.b": "x"},
	}
	s.Put("s1", original)

	// Mutating the caller's state after Put must not leak in.
	original.Messages[0].Content = "mutated"
	original.ToolResults["a.b"] = "mutated"

	got, _ := s.Get("s1")
	if got.Messages[0].Content != "first" || got.ToolResults["a.b"] != "x" {
		t.Errorf("stored state aliased the caller's: %+v", got)
	}

	// Mutating a retrieved state must not leak back.
	got.Messages[0].Content = "scribbled"
	again, _ := s.Get("s1")
	if again.Messages[0].Content != "first" {
		t.Errorf("retrieved state aliased the store's: %+v", again)
	}
}

func TestStoreConcurrentSessions(t *testing.T) {
	s := session.NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sid := fmt.Sprintf("s%d", i)
			for turn := 0; turn < 10; turn++ {
				state, _ := s.Get(sid)
				if state == nil {
					state = &core.TurnState{SessionID: sid}
				}
				state.Messages = append(state.Messages, core.Message{
					Role: core.RoleUser, Content: fmt.Sprintf("%s turn %d", sid, turn),
				})
				s.Put(sid, state)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", s.Len())
	}
	for i := 0; i < 16; i++ {
		sid := fmt.Sprintf("s%d", i)
		state, _ := s.Get(sid)
		if len(state.Messages) != 10 {
			t.Errorf("%s has %d messages, want 10", sid, len(state.Messages))
		}
		for _, m := range state.Messages {
			if m.Content[:len(sid)] != sid {
				t.Errorf("%s transcript leaked: %q", sid, m.Content)
			}
		}
	}
}
