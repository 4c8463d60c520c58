// Package engine sequences one conversational turn.
//
// A turn is a fixed pipeline of stages, each returning a tagged partial
// result folded into the running TurnState:
//
//	Entry -> MemoryRetrieval -> ModelQuery -> [ToolExecution] ->
//	SelfReflection -> MemoryStorage
//
// ToolExecution runs only when the model reply parsed into a pending tool
// call, and always proceeds to SelfReflection, never back to ModelQuery:
// at most one tool call executes per turn. Every stage except ModelQuery
// fails open with a logged safe default; a ModelQuery failure aborts the
// turn and surfaces an apology to the caller.
//
// All collaborators travel in an explicit per-turn ExecutionContext, so
// concurrent sessions share nothing mutable.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/esinecan/skynet-agent-sub001/core"
	"github.com/esinecan/skynet-agent-sub001/llm"
	"github.com/esinecan/skynet-agent-sub001/memory"
	"github.com/esinecan/skynet-agent-sub001/reflection"
	"github.com/esinecan/skynet-agent-sub001/session"
	"github.com/esinecan/skynet-agent-sub001/tools"
)

// Config holds turn-level settings.
type Config struct {
	// SystemPrompt is the base system prompt; tool capabilities and
	// retrieved memory are appended per turn.
	SystemPrompt string

	// ReflectionThreshold is the score below which an available rewrite
	// replaces the reply.
	ReflectionThreshold float64

	// Apology is returned to the caller when the model query fails.
	Apology string

	// MemoryImportance is assigned to stored turn memories (1-10).
	MemoryImportance int
}

// DefaultConfig is the stock engine configuration.
var DefaultConfig = Config{
	SystemPrompt:        "You are a helpful assistant with persistent memory of past conversations.",
	ReflectionThreshold: 7,
	Apology:             "I'm sorry, I ran into a problem generating a response. Please try again.",
	MemoryImportance:    5,
}

func (c Config) withDefaults() Config {
	d := DefaultConfig
	if c.SystemPrompt == "" {
		c.SystemPrompt = d.SystemPrompt
	}
	if c.ReflectionThreshold == 0 {
		c.ReflectionThreshold = d.ReflectionThreshold
	}
	if c.Apology == "" {
		c.Apology = d.Apology
	}
	if c.MemoryImportance == 0 {
		c.MemoryImportance = d.MemoryImportance
	}
	return c
}

// ExecutionContext carries every collaborator a turn needs. It is passed
// explicitly through all stages; nothing is reached through globals.
type ExecutionContext struct {
	Model     llm.Client
	Retriever *memory.Retriever
	Memory    memory.Store
	Gateway   *tools.Gateway
	Evaluator reflection.Evaluator
	Sessions  *session.Store
	Logger    zerolog.Logger
	Config    Config
}

// Engine is the turn controller.
type Engine struct {
	deps ExecutionContext
}

// New creates an engine from the given collaborators.
func New(deps ExecutionContext) *Engine {
	deps.Config = deps.Config.withDefaults()
	if deps.Evaluator == nil {
		deps.Evaluator = reflection.StaticEvaluator{}
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewStore()
	}
	return &Engine{deps: deps}
}

// RunTurn processes one user input for a session and returns the final
// assistant text, the executed tool call if any, and the stored memory id.
// The error is non-nil only when the model query itself failed; the
// result's AssistantText then carries the configured apology.
func (e *Engine) RunTurn(ctx context.Context, sessionID, userText string) (*core.TurnResult, error) {
	ec := e.deps
	ec.Logger = ec.Logger.With().Str("session", sessionID).Logger()

	state := &core.TurnState{
		SessionID:   sessionID,
		UserText:    userText,
		ToolResults: make(map[string]string),
	}

	// Entry and retrieval fail open; a failed retrieval leaves the turn
	// without memory context.
	e.runStage(ctx, &ec, state, stageEntry, e.entryStage)
	e.runStage(ctx, &ec, state, stageMemoryRetrieval, e.retrievalStage)

	// ModelQuery is the only fail-closed stage.
	if err := e.runStage(ctx, &ec, state, stageModelQuery, e.modelQueryStage); err != nil {
		return &core.TurnResult{AssistantText: ec.Config.Apology}, fmt.Errorf("model query: %w", err)
	}

	// A pending tool call is present iff the reply contained a valid
	// invocation block; only then may the gateway run.
	var outcome *core.ToolCallOutcome
	if state.PendingToolCall != nil {
		e.runStage(ctx, &ec, state, stageToolExecution,
			func(ctx context.Context, ec *ExecutionContext, state *core.TurnState) (stageOutput, error) {
				out, err := e.toolStage(ctx, ec, state)
				if err == nil && out.tool != nil {
					outcome = out.tool.outcome
				}
				return out, err
			})
	}

	e.runStage(ctx, &ec, state, stageSelfReflection, e.reflectionStage)
	e.runStage(ctx, &ec, state, stageMemoryStorage, e.storageStage)

	return &core.TurnResult{
		AssistantText:  state.AssistantText,
		ToolCall:       outcome,
		StoredMemoryID: state.StoredMemoryID,
	}, nil
}

type stageFunc func(ctx context.Context, ec *ExecutionContext, state *core.TurnState) (stageOutput, error)

// runStage executes one stage, folds its output into the state, persists
// the state to the conversation store, and logs stage identity and timing.
// A stage error is logged and returned; fail-open callers ignore it.
func (e *Engine) runStage(ctx context.Context, ec *ExecutionContext, state *core.TurnState, id stageID, fn stageFunc) error {
	start := time.Now()
	out, err := fn(ctx, ec, state)
	elapsed := time.Since(start)

	if err != nil {
		ec.Logger.Error().
			Err(err).
			Str("stage", string(id)).
			Dur("elapsed", elapsed).
			Msg("stage failed")
		return err
	}
	if err := apply(state, out); err != nil {
		ec.Logger.Error().Err(err).Str("stage", string(id)).Msg("state merge failed")
		return err
	}
	ec.Sessions.Put(state.SessionID, state)

	ec.Logger.Debug().
		Str("stage", string(id)).
		Dur("elapsed", elapsed).
		Msg("stage complete")
	return nil
}
