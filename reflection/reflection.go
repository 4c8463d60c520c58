// Package reflection scores and optionally rewrites generated replies.
//
// The evaluator is a swappable strategy: ModelEvaluator runs a real
// critique through the model, StaticEvaluator always reports a maximal
// score and changes nothing. Whichever is wired, the stage never fails a
// turn; callers substitute NeutralResult on any evaluator error.
package reflection

import (
	"context"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// Config holds the reflection thresholds.
type Config struct {
	// InputComplexityThreshold routes to the multi-step critique when the
	// user input is longer than this many characters.
	InputComplexityThreshold int

	// ReplyComplexityThreshold routes to the multi-step critique when the
	// reply is longer than this many characters.
	ReplyComplexityThreshold int

	// QualityThreshold is the score below which an available rewrite
	// replaces the reply.
	QualityThreshold float64
}

// DefaultConfig is the stock reflection configuration.
var DefaultConfig = Config{
	InputComplexityThreshold: 100,
	ReplyComplexityThreshold: 500,
	QualityThreshold:         7,
}

func (c Config) withDefaults() Config {
	d := DefaultConfig
	if c.InputComplexityThreshold == 0 {
		c.InputComplexityThreshold = d.InputComplexityThreshold
	}
	if c.ReplyComplexityThreshold == 0 {
		c.ReplyComplexityThreshold = d.ReplyComplexityThreshold
	}
	if c.QualityThreshold == 0 {
		c.QualityThreshold = d.QualityThreshold
	}
	return c
}

// Outcome is an evaluator's raw verdict, before the rewrite policy runs.
type Outcome struct {
	// Score rates the reply from 0 to 10.
	Score float64

	// Critique explains the score.
	Critique string

	// ImprovedText is a candidate replacement reply, empty when the
	// evaluator produced none.
	ImprovedText string
}

// Evaluator critiques a generated reply.
type Evaluator interface {
	Evaluate(ctx context.Context, userText, replyText string) (*Outcome, error)
}

// ApplyPolicy folds an outcome into the final reply. A rewrite replaces
// the reply only when one exists and the score fell below the quality
// threshold; otherwise the reply stands unchanged.
func ApplyPolicy(outcome *Outcome, threshold float64, reply string) (string, core.ReflectionResult) {
	result := core.ReflectionResult{
		Score:    outcome.Score,
		Critique: outcome.Critique,
	}
	if outcome.ImprovedText != "" && outcome.Score < threshold {
		result.Improved = true
		return outcome.ImprovedText, result
	}
	return reply, result
}

// NeutralResult is the safe default when evaluation errors out.
func NeutralResult() core.ReflectionResult {
	return core.ReflectionResult{Score: 0, Critique: "evaluation failed"}
}

// StaticEvaluator is the no-op strategy: every reply scores a perfect 10
// and is never rewritten.
type StaticEvaluator struct{}

// Evaluate reports the maximal score unconditionally.
func (StaticEvaluator) Evaluate(ctx context.Context, userText, replyText string) (*Outcome, error) {
	return &Outcome{Score: 10}, nil
}
