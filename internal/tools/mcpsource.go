package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// MCPSource wraps a Model Context Protocol server, exposing each tool it
// advertises as a Registry-compatible Tool. It is the Registry's remote
// collaborator: the same last-writer-wins registration rule applies when a
// remote tool's name collides with a built-in one.
type MCPSource struct {
	name   string
	client *client.Client
}

// NewMCPStdioSource launches command as an MCP server over stdio and
// initializes the session. The returned MCPSource's Tools() method must be
// called to discover and register what the server exposes.
func NewMCPStdioSource(ctx context.Context, name, command string, args []string) (*MCPSource, error) {
	c, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, fmt.Errorf("mcp source %s: start: %w", name, err)
	}
	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "codeagent", Version: "0.1.0"}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp source %s: initialize: %w", name, err)
	}
	return &MCPSource{name: name, client: c}, nil
}

// Close releases the underlying MCP session.
func (s *MCPSource) Close() error {
	return s.client.Close()
}

// Tools lists the tools advertised by the MCP server, adapted to the
// Registry's Tool interface. Destructiveness is conservative: any MCP tool
// not explicitly annotated read-only is treated as destructive, since the
// protocol's own annotations are advisory and this core enforces I2 itself.
func (s *MCPSource) Tools(ctx context.Context) ([]Tool, error) {
	resp, err := s.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcp source %s: list tools: %w", s.name, err)
	}
	out := make([]Tool, 0, len(resp.Tools))
	for _, descriptor := range resp.Tools {
		out = append(out, &mcpTool{source: s, descriptor: descriptor})
	}
	return out, nil
}

// mcpTool adapts a single remote tool descriptor to the Tool interface.
type mcpTool struct {
	source     *MCPSource
	descriptor mcp.Tool
}

func (t *mcpTool) Name() string        { return t.descriptor.Name }
func (t *mcpTool) Description() string { return t.descriptor.Description }

func (t *mcpTool) IsDestructive() bool {
	if t.descriptor.Annotations.ReadOnlyHint != nil {
		return !*t.descriptor.Annotations.ReadOnlyHint
	}
	return true
}

func (t *mcpTool) ParametersSchema() map[string]any {
	raw, err := json.Marshal(t.descriptor.InputSchema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return map[string]any{"type": "object"}
	}
	return schema
}

func (t *mcpTool) Execute(ctx context.Context, args map[string]any) *Result {
	req := mcp.CallToolRequest{}
	req.Params.Name = t.descriptor.Name
	req.Params.Arguments = args

	resp, err := t.source.client.CallTool(ctx, req)
	if err != nil {
		slog.Warn("mcp tool call failed", "tool", t.descriptor.Name, "source", t.source.name, "error", err)
		return ErrorResult(fmt.Sprintf("mcp tool %s failed: %v", t.descriptor.Name, err)).WithError(err)
	}
	if resp.IsError {
		return ErrorResult(mcpContentText(resp.Content))
	}
	return NewResult(mcpContentText(resp.Content))
}

func mcpContentText(contents []mcp.Content) string {
	text := ""
	for _, c := range contents {
		if tc, ok := c.(mcp.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}
	return text
}
