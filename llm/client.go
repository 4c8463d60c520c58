// Package llm defines the model-inference boundary.
//
// The turn pipeline only ever sees the Client interface: a transcript in,
// reply text out. Provider-specific types stay behind the implementations
// so the engine remains provider-agnostic.
package llm

import (
	"context"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// StreamFunc receives incremental reply text. It is called with done=true
// exactly once, after the final chunk.
type StreamFunc func(chunk string, done bool)

// Client generates assistant replies from a conversation transcript.
//
// Implementations: AnthropicClient (production), test fakes.
type Client interface {
	// Generate returns the complete reply text for the given transcript.
	Generate(ctx context.Context, messages []core.Message, system string) (string, error)

	// GenerateStream yields incremental chunks through fn and returns the
	// accumulated reply text. The turn contract is identical to Generate.
	GenerateStream(ctx context.Context, messages []core.Message, system string, fn StreamFunc) (string, error)
}
