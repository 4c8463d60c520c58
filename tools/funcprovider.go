package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// ToolFunc is an in-process tool implementation.
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// FuncProvider exposes plain Go functions as tools. Useful for built-in
// capabilities and for tests; external tools go through mcpprovider.
type FuncProvider struct {
	mu    sync.RWMutex
	tools map[string]funcTool
}

type funcTool struct {
	descriptor core.ToolDescriptor
	fn         ToolFunc
}

// NewFuncProvider creates an empty function provider.
func NewFuncProvider() *FuncProvider {
	return &FuncProvider{tools: make(map[string]funcTool)}
}

// Add registers a tool function under its descriptor's name.
func (p *FuncProvider) Add(descriptor core.ToolDescriptor, fn ToolFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tools[descriptor.Name] = funcTool{descriptor: descriptor, fn: fn}
}

// ListTools returns the registered descriptors ordered by name.
func (p *FuncProvider) ListTools(ctx context.Context) ([]core.ToolDescriptor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	descriptors := make([]core.ToolDescriptor, 0, len(p.tools))
	for _, t := range p.tools {
		descriptors = append(descriptors, t.descriptor)
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors, nil
}

// Invoke runs the named tool function.
func (p *FuncProvider) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	p.mu.RLock()
	t, ok := p.tools[name]
	p.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t.fn(ctx, args)
}
