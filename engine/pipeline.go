package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/esinecan/skynet-agent-sub001/core"
	"github.com/esinecan/skynet-agent-sub001/reflection"
	"github.com/esinecan/skynet-agent-sub001/tools"
)

// entryStage seeds the transcript: prior session history, then the new
// user message.
func (e *Engine) entryStage(ctx context.Context, ec *ExecutionContext, state *core.TurnState) (stageOutput, error) {
	var messages []core.Message
	if prior, ok := ec.Sessions.Get(state.SessionID); ok {
		messages = prior.Messages
	}
	messages = append(messages, core.Message{Role: core.RoleUser, Content: state.UserText})

	return stageOutput{
		stage: stageEntry,
		entry: &entryOutput{messages: messages},
	}, nil
}

// retrievalStage consults the memory retriever. A search failure degrades
// to whatever partial result the retriever produced; the turn never loses
// its footing over memory.
func (e *Engine) retrievalStage(ctx context.Context, ec *ExecutionContext, state *core.TurnState) (stageOutput, error) {
	if ec.Retriever == nil {
		return stageOutput{
			stage: stageMemoryRetrieval,
			retrieval: &retrievalOutput{
				evaluation: &core.RetrievalEvaluation{ShouldRetrieve: false, Query: state.UserText},
			},
		}, nil
	}

	res, err := ec.Retriever.Retrieve(ctx, state.SessionID, state.UserText, nil)
	if err != nil {
		ec.Logger.Warn().Err(err).Str("stage", string(stageMemoryRetrieval)).Msg("retrieval degraded to empty result")
	}

	return stageOutput{
		stage: stageMemoryRetrieval,
		retrieval: &retrievalOutput{
			evaluation: &core.RetrievalEvaluation{
				ShouldRetrieve: res.ShouldRetrieve,
				Query:          res.Query,
				Results:        res.Results,
			},
			context: res.Context,
		},
	}, nil
}

// modelQueryStage builds the system prompt, queries the model and parses
// the reply for a tool invocation. This is the only stage whose error
// aborts the turn.
func (e *Engine) modelQueryStage(ctx context.Context, ec *ExecutionContext, state *core.TurnState) (stageOutput, error) {
	var parts []string
	parts = append(parts, ec.Config.SystemPrompt)
	if ec.Gateway != nil {
		if capabilities := ec.Gateway.CapabilityText(ctx); capabilities != "" {
			parts = append(parts, capabilities)
		}
	}
	if state.MemoryContext != "" {
		parts = append(parts, state.MemoryContext)
	}
	system := strings.Join(parts, "\n\n")

	reply, err := ec.Model.Generate(ctx, state.Messages, system)
	if err != nil {
		return stageOutput{}, err
	}

	return stageOutput{
		stage: stageModelQuery,
		model: &modelOutput{
			reply: reply,
			call:  ExtractToolCall(reply),
		},
	}, nil
}

// toolStage executes the pending tool call. Failures land in the outcome
// and the transcript, never in the stage error: tool trouble is
// recoverable at the turn level.
func (e *Engine) toolStage(ctx context.Context, ec *ExecutionContext, state *core.TurnState) (stageOutput, error) {
	if ec.Gateway == nil {
		outcome := &core.ToolCallOutcome{
			Provider:    state.PendingToolCall.Provider,
			Tool:        state.PendingToolCall.Tool,
			Arguments:   state.PendingToolCall.Arguments,
			Err:         "no tool gateway configured",
			StartedAt:   time.Now(),
			CompletedAt: time.Now(),
		}
		return stageOutput{
			stage: stageToolExecution,
			tool:  &toolOutput{outcome: outcome, transcript: tools.Diagnostic(outcome)},
		}, nil
	}

	outcome := ec.Gateway.Invoke(ctx, state.PendingToolCall)
	return stageOutput{
		stage: stageToolExecution,
		tool: &toolOutput{
			outcome:    outcome,
			transcript: tools.Diagnostic(outcome),
		},
	}, nil
}

// reflectionStage critiques the reply and applies the rewrite policy. Any
// evaluator error yields the neutral default; the stage itself never fails.
func (e *Engine) reflectionStage(ctx context.Context, ec *ExecutionContext, state *core.TurnState) (stageOutput, error) {
	outcome, err := ec.Evaluator.Evaluate(ctx, state.UserText, state.AssistantText)
	if err != nil {
		ec.Logger.Warn().Err(err).Str("stage", string(stageSelfReflection)).Msg("evaluation failed, using neutral default")
		return stageOutput{
			stage: stageSelfReflection,
			reflection: &reflectionOutput{
				finalText: state.AssistantText,
				result:    reflection.NeutralResult(),
			},
		}, nil
	}

	finalText, result := reflection.ApplyPolicy(outcome, ec.Config.ReflectionThreshold, state.AssistantText)
	return stageOutput{
		stage: stageSelfReflection,
		reflection: &reflectionOutput{
			finalText: finalText,
			result:    result,
		},
	}, nil
}

// storageStage persists the finalized exchange. Storage only happens after
// reflection so the stored text matches what the user actually received.
func (e *Engine) storageStage(ctx context.Context, ec *ExecutionContext, state *core.TurnState) (stageOutput, error) {
	if ec.Memory == nil || state.AssistantText == "" {
		return stageOutput{stage: stageMemoryStorage, storage: &storageOutput{}}, nil
	}

	text := fmt.Sprintf("User: %s\nAssistant: %s", state.UserText, state.AssistantText)
	id, err := ec.Memory.Store(ctx, text, core.RecordMetadata{
		SessionID:  state.SessionID,
		Timestamp:  time.Now(),
		Importance: ec.Config.MemoryImportance,
		Source:     core.SourceDerived,
		Type:       core.MemoryConversational,
	})
	if err != nil {
		return stageOutput{}, fmt.Errorf("store exchange: %w", err)
	}

	return stageOutput{
		stage:   stageMemoryStorage,
		storage: &storageOutput{memoryID: id},
	}, nil
}
