package reflection_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/esinecan/skynet-agent-sub001/core"
	"github.com/esinecan/skynet-agent-sub001/llm"
	"github.com/esinecan/skynet-agent-sub001/reflection"
)

type scriptedClient struct {
	replies []string
	err     error
	calls   int
	systems []string
}

func (c *scriptedClient) Generate(ctx context.Context, messages []core.Message, system string) (string, error) {
	c.calls++
	c.systems = append(c.systems, system)
	if c.err != nil {
		return "", c.err
	}
	if len(c.replies) == 0 {
		return "", errors.New("script exhausted")
	}
	reply := c.replies[0]
	c.replies = c.replies[1:]
	return reply, nil
}

func (c *scriptedClient) GenerateStream(ctx context.Context, messages []core.Message, system string, fn llm.StreamFunc) (string, error) {
	reply, err := c.Generate(ctx, messages, system)
	if err != nil {
		return "", err
	}
	fn(reply, true)
	return reply, nil
}

func TestApplyPolicy(t *testing.T) {
	cases := []struct {
		name     string
		outcome  reflection.Outcome
		want     string
		improved bool
	}{
		{
			name:     "low score with rewrite replaces reply",
			outcome:  reflection.Outcome{Score: 4, ImprovedText: "better"},
			want:     "better",
			improved: true,
		},
		{
			name:    "high score keeps reply even with rewrite",
			outcome: reflection.Outcome{Score: 8, ImprovedText: "better"},
			want:    "original",
		},
		{
			name:    "low score without rewrite keeps reply",
			outcome: reflection.Outcome{Score: 2, Critique: "bad"},
			want:    "original",
		},
		{
			name:    "score at threshold keeps reply",
			outcome: reflection.Outcome{Score: 7, ImprovedText: "better"},
			want:    "original",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			text, result := reflection.ApplyPolicy(&tc.outcome, 7, "original")
			if text != tc.want {
				t.Errorf("final text %q, want %q", text, tc.want)
			}
			if result.Improved != tc.improved {
				t.Errorf("Improved = %v, want %v", result.Improved, tc.improved)
			}
			if result.Score != tc.outcome.Score {
				t.Errorf("Score = %v, want %v", result.Score, tc.outcome.Score)
			}
		})
	}
}

func TestStaticEvaluator(t *testing.T) {
	outcome, err := reflection.StaticEvaluator{}.Evaluate(context.Background(), "anything", "reply")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if outcome.Score != 10 || outcome.ImprovedText != "" {
		t.Errorf("static outcome %+v, want score 10 and no rewrite", outcome)
	}
}

func TestNeutralResult(t *testing.T) {
	r := reflection.NeutralResult()
	if r.Score != 0 || r.Critique != "evaluation failed" || r.Improved {
		t.Errorf("neutral result %+v", r)
	}
}

func TestModelEvaluatorSinglePass(t *testing.T) {
	client := &scriptedClient{replies: []string{
		`{"score": 8, "critique": "solid answer"}`,
	}}
	e := reflection.NewModelEvaluator(client, reflection.Config{}, zerolog.Nop())

	outcome, err := e.Evaluate(context.Background(), "short question", "short reply")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("model called %d times, want single pass", client.calls)
	}
	if outcome.Score != 8 || outcome.Critique != "solid answer" {
		t.Errorf("outcome %+v", outcome)
	}
}

func TestModelEvaluatorSinglePassRewrite(t *testing.T) {
	client := &scriptedClient{replies: []string{
		`Here is my verdict: {"score": 3, "critique": "misses the point", "improved_reply": "a better one"}`,
	}}
	e := reflection.NewModelEvaluator(client, reflection.Config{}, zerolog.Nop())

	outcome, err := e.Evaluate(context.Background(), "short question", "short reply")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if outcome.ImprovedText != "a better one" {
		t.Errorf("improved text %q", outcome.ImprovedText)
	}
}

func TestModelEvaluatorMultiStep(t *testing.T) {
	longInput := strings.Repeat("details ", 20) // past the input complexity threshold

	client := &scriptedClient{replies: []string{
		`{"score": 4, "critique": "incomplete"}`,
		"  the rewritten reply  ",
	}}
	e := reflection.NewModelEvaluator(client, reflection.Config{}, zerolog.Nop())

	outcome, err := e.Evaluate(context.Background(), longInput, "reply")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("model called %d times, want critique + rewrite", client.calls)
	}
	if outcome.ImprovedText != "the rewritten reply" {
		t.Errorf("improved text %q, want trimmed rewrite", outcome.ImprovedText)
	}
	if outcome.Score != 4 || outcome.Critique != "incomplete" {
		t.Errorf("outcome %+v", outcome)
	}
}

func TestModelEvaluatorMultiStepSkipsRewriteWhenGood(t *testing.T) {
	longInput := strings.Repeat("details ", 20)

	client := &scriptedClient{replies: []string{
		`{"score": 9, "critique": "thorough"}`,
	}}
	e := reflection.NewModelEvaluator(client, reflection.Config{}, zerolog.Nop())

	outcome, err := e.Evaluate(context.Background(), longInput, "reply")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("model called %d times, a good score needs no rewrite", client.calls)
	}
	if outcome.ImprovedText != "" {
		t.Errorf("unexpected rewrite %q", outcome.ImprovedText)
	}
}

func TestModelEvaluatorRewriteFailureKeepsCritique(t *testing.T) {
	longInput := strings.Repeat("details ", 20)

	// Only the critique reply is scripted; the rewrite call errors out.
	client := &scriptedClient{replies: []string{
		`{"score": 2, "critique": "wrong"}`,
	}}
	e := reflection.NewModelEvaluator(client, reflection.Config{}, zerolog.Nop())

	outcome, err := e.Evaluate(context.Background(), longInput, "reply")
	if err != nil {
		t.Fatalf("rewrite failure must not fail evaluation: %v", err)
	}
	if outcome.Critique != "wrong" || outcome.Score != 2 {
		t.Errorf("critique lost: %+v", outcome)
	}
	if outcome.ImprovedText != "" {
		t.Errorf("unexpected rewrite %q", outcome.ImprovedText)
	}
}

func TestModelEvaluatorBadVerdicts(t *testing.T) {
	for _, raw := range []string{
		"no json here",
		`{"score": 42, "critique": "out of range"}`,
		`{"score": `,
	} {
		client := &scriptedClient{replies: []string{raw}}
		e := reflection.NewModelEvaluator(client, reflection.Config{}, zerolog.Nop())
		if _, err := e.Evaluate(context.Background(), "q", "a"); err == nil {
			t.Errorf("raw %q: expected a parse error", raw)
		}
	}
}

func TestModelEvaluatorClientError(t *testing.T) {
	client := &scriptedClient{err: errors.New("offline")}
	e := reflection.NewModelEvaluator(client, reflection.Config{}, zerolog.Nop())
	if _, err := e.Evaluate(context.Background(), "q", "a"); err == nil {
		t.Error("expected the client error to surface")
	}
}
