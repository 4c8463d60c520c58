package reflection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/esinecan/skynet-agent-sub001/core"
	"github.com/esinecan/skynet-agent-sub001/llm"
)

// ModelEvaluator critiques replies through the model itself. Short
// exchanges get a cheap single-pass critique; long inputs or replies get
// a two-step critique-then-rewrite pass.
type ModelEvaluator struct {
	client llm.Client
	config Config
	logger zerolog.Logger
}

// NewModelEvaluator creates a model-backed evaluator.
func NewModelEvaluator(client llm.Client, config Config, logger zerolog.Logger) *ModelEvaluator {
	return &ModelEvaluator{
		client: client,
		config: config.withDefaults(),
		logger: logger.With().Str("component", "reflection").Logger(),
	}
}

const critiqueSystemPrompt = `You are a strict reviewer of assistant replies.
Rate the reply for correctness, relevance and completeness.
Respond with a single json object: {"score": <0-10>, "critique": "<one or two sentences>"}`

const singlePassSystemPrompt = `You are a strict reviewer of assistant replies.
Rate the reply for correctness, relevance and completeness.
Respond with a single json object:
{"score": <0-10>, "critique": "<one or two sentences>", "improved_reply": "<a better reply, or omit if the reply is fine>"}`

const rewriteSystemPrompt = `Rewrite the assistant reply so it fully addresses the user's message,
guided by the critique. Respond with the rewritten reply only, no commentary.`

// Evaluate scores the reply, producing a rewrite when quality falls short.
func (e *ModelEvaluator) Evaluate(ctx context.Context, userText, replyText string) (*Outcome, error) {
	if e.isComplex(userText, replyText) {
		return e.multiStep(ctx, userText, replyText)
	}
	return e.singlePass(ctx, userText, replyText)
}

func (e *ModelEvaluator) isComplex(userText, replyText string) bool {
	return len(userText) > e.config.InputComplexityThreshold ||
		len(replyText) > e.config.ReplyComplexityThreshold
}

func (e *ModelEvaluator) singlePass(ctx context.Context, userText, replyText string) (*Outcome, error) {
	raw, err := e.client.Generate(ctx, exchangeMessages(userText, replyText), singlePassSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("single-pass critique: %w", err)
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		return nil, fmt.Errorf("parse critique: %w", err)
	}
	return &Outcome{
		Score:        verdict.Score,
		Critique:     verdict.Critique,
		ImprovedText: verdict.ImprovedReply,
	}, nil
}

func (e *ModelEvaluator) multiStep(ctx context.Context, userText, replyText string) (*Outcome, error) {
	raw, err := e.client.Generate(ctx, exchangeMessages(userText, replyText), critiqueSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("critique step: %w", err)
	}
	verdict, err := parseVerdict(raw)
	if err != nil {
		return nil, fmt.Errorf("parse critique: %w", err)
	}

	outcome := &Outcome{Score: verdict.Score, Critique: verdict.Critique}
	if verdict.Score >= e.config.QualityThreshold {
		return outcome, nil
	}

	e.logger.Debug().Float64("score", verdict.Score).Msg("score below threshold, requesting rewrite")

	rewriteInput := []core.Message{
		{Role: core.RoleUser, Content: fmt.Sprintf(
			"User message:\n%s\n\nAssistant reply:\n%s\n\nCritique:\n%s",
			userText, replyText, verdict.Critique)},
	}
	improved, err := e.client.Generate(ctx, rewriteInput, rewriteSystemPrompt)
	if err != nil {
		// The critique alone is still a valid outcome.
		e.logger.Warn().Err(err).Msg("rewrite step failed, keeping critique only")
		return outcome, nil
	}
	outcome.ImprovedText = strings.TrimSpace(improved)
	return outcome, nil
}

func exchangeMessages(userText, replyText string) []core.Message {
	return []core.Message{
		{Role: core.RoleUser, Content: fmt.Sprintf(
			"User message:\n%s\n\nAssistant reply:\n%s", userText, replyText)},
	}
}

type verdict struct {
	Score         float64 `json:"score"`
	Critique      string  `json:"critique"`
	ImprovedReply string  `json:"improved_reply"`
}

// parseVerdict pulls the first JSON object out of the model's reply.
func parseVerdict(raw string) (*verdict, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, fmt.Errorf("no json object in reply")
	}

	var v verdict
	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if v.Score < 0 || v.Score > 10 {
		return nil, fmt.Errorf("score %v out of range", v.Score)
	}
	return &v, nil
}
