package mcp

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/todomind/internal/memory"
	"github.com/dohr-michael/todomind/internal/plugins"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

type options struct {
	user string
}

// Option tunes the MCP server.
type Option func(*options)

// WithUser sets the memory user that tool calls act on.
func WithUser(userID string) Option {
	return func(o *options) { o.user = userID }
}

// NewMCPServer creates an MCP server exposing tools from the registry.
// filter is a comma-separated list of tool names, plugin names or plugin
// categories; empty exposes every tool.
func NewMCPServer(registry *plugins.ToolRegistry, filter string, opts ...Option) *mcpsdk.Server {
	o := options{user: memory.DefaultUser}
	for _, opt := range opts {
		opt(&o)
	}

	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "todomind",
		Version: Version,
	}, nil)

	for _, name := range ExposedTools(registry, filter) {
		spec := registry.ToolSpec(name)
		if spec == nil {
			continue
		}
		server.AddTool(toolSpecToMCPTool(spec), toolHandler(name, registry.Tool(name), o.user))
		slog.Debug("mcp tool registered", "tool", name)
	}

	return server
}

// ExposedTools returns the sorted names of the tools matching filter.
func ExposedTools(registry *plugins.ToolRegistry, filter string) []string {
	terms := splitFilter(filter)
	var names []string
	for _, name := range registry.ToolNames() {
		if len(terms) == 0 || matchesFilter(registry, name, terms) {
			names = append(names, name)
		}
	}
	return names
}

func toolHandler(name string, invokable tool.InvokableTool, userID string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		ctx = memory.WithUser(ctx, userID)

		var args string
		if req != nil && req.Params != nil {
			args = string(req.Params.Arguments)
		}
		result, err := invokable.InvokableRun(ctx, args)
		if err != nil {
			slog.Debug("mcp tool error", "tool", name, "error", err)
			return &mcpsdk.CallToolResult{
				IsError: true,
				Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: err.Error()}},
			}, nil
		}
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: result}},
		}, nil
	}
}

func splitFilter(filter string) []string {
	var terms []string
	for _, t := range strings.Split(filter, ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// matchesFilter reports whether the tool is named by a term directly, through
// its plugin name, or through its plugin category.
func matchesFilter(registry *plugins.ToolRegistry, toolName string, terms []string) bool {
	m := registry.Manifest(toolName)
	for _, term := range terms {
		if term == toolName {
			return true
		}
		if m != nil && (m.Name == term || m.Category == term) {
			return true
		}
	}
	return false
}
