// Package mcpprovider exposes an MCP server's tools through the gateway's
// Provider interface. The server runs as a child process speaking MCP over
// stdio; mark3labs/mcp-go owns the transport and protocol framing.
package mcpprovider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/esinecan/skynet-agent-sub001/core"
)

// Provider is a tool provider backed by one MCP server process.
type Provider struct {
	name   string
	client *client.Client
	tools  []mcp.Tool
}

// New starts the MCP server process, initializes the session and caches
// its tool list.
func New(ctx context.Context, name, command string, env []string, args ...string) (*Provider, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("start mcp server %q: %w", name, err)
	}

	initReq := mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "skynet-agent",
				Version: "1.0.0",
			},
		},
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("initialize mcp server %q: %w", name, err)
	}

	listed, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("list tools for %q: %w", name, err)
	}

	return &Provider{
		name:   name,
		client: c,
		tools:  listed.Tools,
	}, nil
}

// ListTools converts the cached MCP tool list to gateway descriptors.
func (p *Provider) ListTools(ctx context.Context) ([]core.ToolDescriptor, error) {
	descriptors := make([]core.ToolDescriptor, 0, len(p.tools))
	for _, t := range p.tools {
		descriptors = append(descriptors, core.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schemaToMap(t.InputSchema),
		})
	}
	return descriptors, nil
}

// Invoke calls one tool on the server and flattens the result content to
// text.
func (p *Provider) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	result, err := p.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
	if err != nil {
		return "", fmt.Errorf("call %s.%s: %w", p.name, name, err)
	}

	text := contentToText(result.Content)
	if result.IsError {
		return "", fmt.Errorf("%s.%s reported an error: %s", p.name, name, text)
	}
	if text == "" {
		text = "tool executed successfully (no output)"
	}
	return text, nil
}

// Close shuts down the server process.
func (p *Provider) Close() error {
	return p.client.Close()
}

func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	m := map[string]any{
		"type":       schema.Type,
		"properties": schema.Properties,
	}
	if len(schema.Required) > 0 {
		m["required"] = schema.Required
	}
	return m
}

func contentToText(content []mcp.Content) string {
	var text string
	for _, c := range content {
		if tc, ok := c.(mcp.TextContent); ok {
			text += tc.Text
			continue
		}
		// Non-text content is rare from tool calls; keep it readable.
		if raw, err := json.Marshal(c); err == nil {
			text += string(raw)
		}
	}
	return text
}
