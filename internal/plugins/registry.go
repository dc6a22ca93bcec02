package plugins

import (
	"fmt"
	"sort"

	"github.com/cloudwego/eino/components/tool"
)

// ToolRegistry is the registry of every tool exposed to the assistant.
type ToolRegistry struct {
	tools       map[string]tool.InvokableTool
	manifests   map[string]*PluginManifest // tool name → parent manifest
	specs       map[string]*ToolSpec       // tool name → specific ToolSpec
	pluginTools map[string][]string        // plugin name → tool names
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools:       make(map[string]tool.InvokableTool),
		manifests:   make(map[string]*PluginManifest),
		specs:       make(map[string]*ToolSpec),
		pluginTools: make(map[string][]string),
	}
}

// RegisterNative registers a Go-native tool with its manifest.
func (r *ToolRegistry) RegisterNative(name string, t tool.InvokableTool, manifest *PluginManifest) error {
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = t
	r.manifests[name] = manifest
	for i := range manifest.Tools {
		if manifest.Tools[i].Name == name {
			r.specs[name] = &manifest.Tools[i]
			break
		}
	}
	r.pluginTools[manifest.Name] = append(r.pluginTools[manifest.Name], name)
	return nil
}

// Tools returns all registered tools, sorted by name.
func (r *ToolRegistry) Tools() []tool.InvokableTool {
	return r.ToolsByNames(r.ToolNames())
}

// BaseTools returns all registered tools as the slice type expected by ADK agents.
func (r *ToolRegistry) BaseTools() []tool.BaseTool {
	tools := r.Tools()
	out := make([]tool.BaseTool, len(tools))
	for i, t := range tools {
		out[i] = t
	}
	return out
}

// Manifest returns the parent manifest for a given tool name.
func (r *ToolRegistry) Manifest(name string) *PluginManifest {
	return r.manifests[name]
}

// ToolSpec returns the specific ToolSpec for a given tool name.
func (r *ToolRegistry) ToolSpec(name string) *ToolSpec {
	return r.specs[name]
}

// PluginTools returns the tool names registered by a given plugin.
func (r *ToolRegistry) PluginTools(pluginName string) []string {
	return r.pluginTools[pluginName]
}

// ToolNames returns all registered tool names, sorted.
func (r *ToolRegistry) ToolNames() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tool returns the InvokableTool for a given name, or nil if not found.
func (r *ToolRegistry) Tool(name string) tool.InvokableTool {
	return r.tools[name]
}

// ToolsByNames returns the InvokableTools matching the given names.
// Unknown names are silently skipped.
func (r *ToolRegistry) ToolsByNames(names []string) []tool.InvokableTool {
	result := make([]tool.InvokableTool, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			result = append(result, t)
		}
	}
	return result
}

// ToolsByCategory returns the names of tools whose plugin belongs to one of
// the given categories, sorted.
func (r *ToolRegistry) ToolsByCategory(categories ...string) []string {
	want := make(map[string]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}
	var names []string
	for _, name := range r.ToolNames() {
		if m := r.manifests[name]; m != nil && want[m.Category] {
			names = append(names, name)
		}
	}
	return names
}

// AllToolDescriptions returns a map of tool name → description for every
// registered tool.
func (r *ToolRegistry) AllToolDescriptions() map[string]string {
	descs := make(map[string]string, len(r.tools))
	for name := range r.tools {
		if spec, ok := r.specs[name]; ok {
			descs[name] = spec.Description
		} else {
			descs[name] = ""
		}
	}
	return descs
}
