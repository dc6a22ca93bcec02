// Package mcp exposes the todomind tool registry as an MCP server.
package mcp

import (
	"sort"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dohr-michael/todomind/internal/plugins"
)

// toolSpecToMCPTool converts a plugins.ToolSpec to an mcp.Tool with JSON Schema.
func toolSpecToMCPTool(spec *plugins.ToolSpec) *mcpsdk.Tool {
	props := make(map[string]any, len(spec.Parameters))
	var required []string
	for name, p := range spec.Parameters {
		props[name] = paramSchema(p)
		if p.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)

	inputSchema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		inputSchema["required"] = required
	}

	destructive := spec.Dangerous
	return &mcpsdk.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		InputSchema: inputSchema,
		Annotations: &mcpsdk.ToolAnnotations{DestructiveHint: &destructive},
	}
}

func paramSchema(p plugins.ParamSpec) map[string]any {
	prop := map[string]any{"type": p.Type}
	if p.Description != "" {
		prop["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		prop["enum"] = p.Enum
	}
	if p.Default != nil {
		prop["default"] = p.Default
	}
	if p.Items != nil {
		prop["items"] = paramSchema(*p.Items)
	}
	if len(p.Properties) > 0 {
		sub := make(map[string]any, len(p.Properties))
		for name, sp := range p.Properties {
			sub[name] = paramSchema(sp)
		}
		prop["properties"] = sub
	}
	return prop
}
