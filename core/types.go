package core

import (
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single entry in a conversation transcript.
// Messages are immutable once appended, with one exception: the
// self-reflection stage may rewrite the content of the last assistant
// message before a turn is persisted.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// PendingToolCall is a tool invocation request parsed from a model reply.
// It exists if and only if the reply contained a syntactically valid
// invocation block with both "provider" and "tool" keys.
type PendingToolCall struct {
	Provider  string         `json:"provider"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"args"`
}

// MemorySource records how a memory entered the store.
type MemorySource string

const (
	SourceExplicit  MemorySource = "explicit"
	SourceSuggested MemorySource = "suggested"
	SourceDerived   MemorySource = "derived"
)

// MemoryType distinguishes ordinary conversational memories from
// explicitly tagged, importance-scored "conscious" memories.
type MemoryType string

const (
	MemoryConversational MemoryType = "conversational"
	MemoryConscious      MemoryType = "conscious"
)

// RecordMetadata describes a stored memory record.
type RecordMetadata struct {
	SessionID  string       `json:"session_id"`
	Timestamp  time.Time    `json:"timestamp"`
	Tags       []string     `json:"tags,omitempty"`
	Importance int          `json:"importance"` // 1-10
	Source     MemorySource `json:"source"`
	Type       MemoryType   `json:"type"`
}

// MemoryRecord is a stored memory. Records are immutable after creation;
// updates are written as new records rather than mutated in place.
type MemoryRecord struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata RecordMetadata `json:"metadata"`
}

// SearchType tags a search result with the retrieval path that produced it.
type SearchType string

const (
	SearchSemantic SearchType = "semantic"
	SearchKeyword  SearchType = "keyword"
)

// SearchResult is a transient, per-retrieval-call result. Score is a
// similarity where higher is better.
type SearchResult struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	Score      float64        `json:"score"`
	Metadata   RecordMetadata `json:"metadata"`
	SearchType SearchType     `json:"searchType"`
}

// RetrievalEvaluation captures the retrieval gate's decision for a turn
// together with the merged result set.
type RetrievalEvaluation struct {
	ShouldRetrieve bool           `json:"shouldRetrieve"`
	Query          string         `json:"query"`
	Results        []SearchResult `json:"results,omitempty"`
}

// ReflectionResult is the self-reflection stage's verdict on a reply.
type ReflectionResult struct {
	Score    float64 `json:"score"` // 0-10
	Critique string  `json:"critique"`
	Improved bool    `json:"improved"`
}

// TurnState is the accumulated state of one conversational turn.
// It is owned exclusively by the turn in progress and merged into the
// conversation store at the end of each pipeline stage.
type TurnState struct {
	SessionID           string               `json:"session_id"`
	UserText            string               `json:"user_text"`
	Messages            []Message            `json:"messages"`
	AssistantText       string               `json:"assistant_text,omitempty"`
	PendingToolCall     *PendingToolCall     `json:"pending_tool_call,omitempty"`
	ToolResults         map[string]string    `json:"tool_results,omitempty"`
	RetrievalEvaluation *RetrievalEvaluation `json:"retrieval_evaluation,omitempty"`
	MemoryContext       string               `json:"memory_context,omitempty"`
	Reflection          *ReflectionResult    `json:"reflection,omitempty"`
	StoredMemoryID      string               `json:"stored_memory_id,omitempty"`
}

// Clone returns a deep copy of the state. The conversation store hands out
// clones so concurrent sessions never share mutable slices or maps.
func (s *TurnState) Clone() *TurnState {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	if s.ToolResults != nil {
		c.ToolResults = make(map[string]string, len(s.ToolResults))
		for k, v := range s.ToolResults {
			c.ToolResults[k] = v
		}
	}
	if s.PendingToolCall != nil {
		pc := *s.PendingToolCall
		if s.PendingToolCall.Arguments != nil {
			pc.Arguments = make(map[string]any, len(s.PendingToolCall.Arguments))
			for k, v := range s.PendingToolCall.Arguments {
				pc.Arguments[k] = v
			}
		}
		c.PendingToolCall = &pc
	}
	if s.RetrievalEvaluation != nil {
		re := *s.RetrievalEvaluation
		re.Results = append([]SearchResult(nil), s.RetrievalEvaluation.Results...)
		c.RetrievalEvaluation = &re
	}
	if s.Reflection != nil {
		r := *s.Reflection
		c.Reflection = &r
	}
	return &c
}

// ToolDescriptor describes one tool exposed by a provider.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolCallOutcome records a single tool invocation, success or failure.
type ToolCallOutcome struct {
	Provider    string         `json:"provider"`
	Tool        string         `json:"tool"`
	Arguments   map[string]any `json:"args,omitempty"`
	Result      string         `json:"result,omitempty"`
	Err         string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
}

// Failed reports whether the invocation ended in an error.
func (o *ToolCallOutcome) Failed() bool {
	return o.Err != ""
}

// TurnResult is what a completed turn returns to the caller.
type TurnResult struct {
	AssistantText  string           `json:"assistantText"`
	ToolCall       *ToolCallOutcome `json:"toolCallExecuted,omitempty"`
	StoredMemoryID string           `json:"storedMemoryId,omitempty"`
}
