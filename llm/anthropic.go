package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/esinecan/skynet-agent-sub001/core"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// AnthropicClient implements Client on top of the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// AnthropicOption configures an AnthropicClient.
type AnthropicOption func(*AnthropicClient)

// WithModel overrides the default model.
func WithModel(model string) AnthropicOption {
	return func(c *AnthropicClient) {
		c.model = model
	}
}

// WithMaxTokens overrides the default response token limit.
func WithMaxTokens(n int64) AnthropicOption {
	return func(c *AnthropicClient) {
		c.maxTokens = n
	}
}

// NewAnthropicClient wraps an Anthropic API client.
func NewAnthropicClient(client *anthropic.Client, opts ...AnthropicOption) *AnthropicClient {
	c := &AnthropicClient{
		client:    client,
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate calls the Messages API and concatenates the reply's text blocks.
func (c *AnthropicClient) Generate(ctx context.Context, messages []core.Message, system string) (string, error) {
	params := c.buildParams(messages, system)

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	return textFromResponse(resp), nil
}

// GenerateStream streams the reply, forwarding text deltas to fn.
func (c *AnthropicClient) GenerateStream(ctx context.Context, messages []core.Message, system string, fn StreamFunc) (string, error) {
	params := c.buildParams(messages, system)

	stream := c.client.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	message := anthropic.Message{}
	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			// Accumulation errors are non-fatal; the deltas below still flow.
			continue
		}

		switch evt := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := evt.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				fn(delta.Text, false)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("anthropic stream: %w", err)
	}
	fn("", true)

	return textFromResponse(&message), nil
}

func (c *AnthropicClient) buildParams(messages []core.Message, system string) anthropic.MessageNewParams {
	// System-role transcript entries fold into the system prompt; the
	// Messages API only accepts user and assistant turns.
	var systemParts []string
	if system != "" {
		systemParts = append(systemParts, system)
	}

	apiMessages := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case core.RoleUser:
			apiMessages = append(apiMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case core.RoleAssistant:
			apiMessages = append(apiMessages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		case core.RoleSystem:
			systemParts = append(systemParts, m.Content)
		}
	}

	return anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  apiMessages,
		System: []anthropic.TextBlockParam{
			{Text: strings.Join(systemParts, "\n\n")},
		},
	}
}

func textFromResponse(resp *anthropic.Message) string {
	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text
}
