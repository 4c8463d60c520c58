package engine

import (
	"fmt"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// stageID names a pipeline stage for logging and routing.
type stageID string

const (
	stageEntry           stageID = "entry"
	stageMemoryRetrieval stageID = "memory_retrieval"
	stageModelQuery      stageID = "model_query"
	stageToolExecution   stageID = "tool_execution"
	stageSelfReflection  stageID = "self_reflection"
	stageMemoryStorage   stageID = "memory_storage"
)

// stageOutput is a tagged union of per-stage results. Exactly one variant
// is set, matching stage; apply folds it into the running TurnState with
// an exhaustive switch so a new stage cannot be added without a merge rule.
type stageOutput struct {
	stage stageID

	entry      *entryOutput
	retrieval  *retrievalOutput
	model      *modelOutput
	tool       *toolOutput
	reflection *reflectionOutput
	storage    *storageOutput
}

type entryOutput struct {
	messages []core.Message
}

type retrievalOutput struct {
	evaluation *core.RetrievalEvaluation
	context    string
}

type modelOutput struct {
	reply string
	call  *core.PendingToolCall
}

type toolOutput struct {
	outcome    *core.ToolCallOutcome
	transcript string
}

type reflectionOutput struct {
	finalText string
	result    core.ReflectionResult
}

type storageOutput struct {
	memoryID string
}

// apply is the state reducer. Messages are append-only here, with the one
// documented exception: the reflection variant may rewrite the last
// assistant message's content.
func apply(state *core.TurnState, out stageOutput) error {
	switch out.stage {
	case stageEntry:
		state.Messages = out.entry.messages

	case stageMemoryRetrieval:
		state.RetrievalEvaluation = out.retrieval.evaluation
		state.MemoryContext = out.retrieval.context

	case stageModelQuery:
		state.AssistantText = out.model.reply
		state.PendingToolCall = out.model.call
		state.Messages = append(state.Messages, core.Message{
			Role:    core.RoleAssistant,
			Content: out.model.reply,
		})

	case stageToolExecution:
		o := out.tool.outcome
		key := o.Provider + "." + o.Tool
		if state.ToolResults == nil {
			state.ToolResults = make(map[string]string)
		}
		if o.Failed() {
			state.ToolResults[key] = o.Err
		} else {
			state.ToolResults[key] = o.Result
		}
		state.Messages = append(state.Messages, core.Message{
			Role:    core.RoleSystem,
			Content: out.tool.transcript,
		})

	case stageSelfReflection:
		result := out.reflection.result
		state.Reflection = &result
		if out.reflection.finalText != state.AssistantText {
			state.AssistantText = out.reflection.finalText
			for i := len(state.Messages) - 1; i >= 0; i-- {
				if state.Messages[i].Role == core.RoleAssistant {
					state.Messages[i].Content = out.reflection.finalText
					break
				}
			}
		}

	case stageMemoryStorage:
		state.StoredMemoryID = out.storage.memoryID

	default:
		return fmt.Errorf("no merge rule for stage %q", out.stage)
	}
	return nil
}
