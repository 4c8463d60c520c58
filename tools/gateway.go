// Package tools implements the tool gateway: a registry of named providers
// whose capabilities are aggregated for the model and invoked on its behalf.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/esinecan/skynet-agent-sub001/core"
)

var (
	// ErrUnknownProvider is returned when no provider is registered under
	// the requested name.
	ErrUnknownProvider = errors.New("unknown tool provider")

	// ErrUnknownTool is returned when a provider does not expose the
	// requested tool.
	ErrUnknownTool = errors.New("unknown tool")
)

// Provider exposes a set of named tools.
//
// Implementations: FuncProvider (in-process), mcpprovider.Provider (MCP
// servers over stdio).
type Provider interface {
	// ListTools returns descriptors for every tool the provider exposes.
	ListTools(ctx context.Context) ([]core.ToolDescriptor, error)

	// Invoke executes one tool and returns its textual result.
	Invoke(ctx context.Context, name string, args map[string]any) (string, error)
}

// Gateway is the provider registry. Registration happens at wiring time;
// afterwards the gateway is read-only and safe to share across turns.
type Gateway struct {
	mu        sync.RWMutex
	providers map[string]Provider
	logger    zerolog.Logger
}

// NewGateway creates an empty gateway.
func NewGateway(logger zerolog.Logger) *Gateway {
	return &Gateway{
		providers: make(map[string]Provider),
		logger:    logger.With().Str("component", "tool-gateway").Logger(),
	}
}

// Register adds a provider under the given name, replacing any previous
// registration.
func (g *Gateway) Register(name string, p Provider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.providers[name] = p
}

// Provider looks up a registered provider.
func (g *Gateway) Provider(name string) (Provider, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.providers[name]
	return p, ok
}

// NamespacedTool pairs a provider name with one of its tool descriptors.
type NamespacedTool struct {
	Provider string
	Tool     core.ToolDescriptor
}

// ListAll aggregates every provider's descriptors into one list, ordered
// by provider name. A provider that fails to list is skipped with a log
// entry; listing failures never abort a turn.
func (g *Gateway) ListAll(ctx context.Context) []NamespacedTool {
	g.mu.RLock()
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	g.mu.RUnlock()
	sort.Strings(names)

	var all []NamespacedTool
	for _, name := range names {
		p, _ := g.Provider(name)
		descriptors, err := p.ListTools(ctx)
		if err != nil {
			g.logger.Warn().Err(err).Str("provider", name).Msg("list tools failed, skipping provider")
			continue
		}
		for _, d := range descriptors {
			all = append(all, NamespacedTool{Provider: name, Tool: d})
		}
	}
	return all
}

// CapabilityText renders the aggregated tool list plus invocation format
// instructions for inclusion in the model's system prompt. Returns ""
// when no tools are registered.
func (g *Gateway) CapabilityText(ctx context.Context) string {
	all := g.ListAll(ctx)
	if len(all) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("AVAILABLE TOOLS:\n")
	for _, nt := range all {
		fmt.Fprintf(&b, "- %s.%s: %s\n", nt.Provider, nt.Tool.Name, nt.Tool.Description)
		if len(nt.Tool.InputSchema) > 0 {
			if schema, err := json.Marshal(nt.Tool.InputSchema); err == nil {
				fmt.Fprintf(&b, "  input schema: %s\n", schema)
			}
		}
	}
	b.WriteString(strings.Join([]string{
		"",
		"To invoke a tool, reply with a fenced json block containing exactly:",
		"```json",
		`{"provider": "<provider>", "tool": "<tool>", "args": {...}}`,
		"```",
		"Invoke at most one tool per reply, and only when the user's request requires it.",
	}, "\n"))
	return b.String()
}

// Invoke executes one pending tool call, recording start and end
// timestamps. Execution failures are captured in the outcome rather than
// returned: they are recoverable at the turn level, and Diagnostic renders
// them for the transcript.
func (g *Gateway) Invoke(ctx context.Context, call *core.PendingToolCall) *core.ToolCallOutcome {
	outcome := &core.ToolCallOutcome{
		Provider:  call.Provider,
		Tool:      call.Tool,
		Arguments: call.Arguments,
		StartedAt: time.Now(),
	}

	p, ok := g.Provider(call.Provider)
	if !ok {
		outcome.CompletedAt = time.Now()
		outcome.Err = fmt.Sprintf("%v: %q", ErrUnknownProvider, call.Provider)
		g.logger.Warn().Str("provider", call.Provider).Msg("invocation against unregistered provider")
		return outcome
	}

	result, err := p.Invoke(ctx, call.Tool, call.Arguments)
	outcome.CompletedAt = time.Now()
	if err != nil {
		outcome.Err = err.Error()
		g.logger.Warn().
			Err(err).
			Str("provider", call.Provider).
			Str("tool", call.Tool).
			Dur("elapsed", outcome.CompletedAt.Sub(outcome.StartedAt)).
			Msg("tool invocation failed")
		return outcome
	}

	outcome.Result = result
	g.logger.Info().
		Str("provider", call.Provider).
		Str("tool", call.Tool).
		Dur("elapsed", outcome.CompletedAt.Sub(outcome.StartedAt)).
		Msg("tool invocation succeeded")
	return outcome
}

// Diagnostic formats an outcome as a human-readable transcript entry.
func Diagnostic(outcome *core.ToolCallOutcome) string {
	if outcome.Failed() {
		return fmt.Sprintf("Tool %s.%s failed after %s: %s",
			outcome.Provider, outcome.Tool,
			outcome.CompletedAt.Sub(outcome.StartedAt).Round(time.Millisecond),
			outcome.Err)
	}
	return fmt.Sprintf("Tool %s.%s returned: %s", outcome.Provider, outcome.Tool, outcome.Result)
}
