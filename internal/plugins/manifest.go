// Package plugins provides the tools the assistant can call.
package plugins

// PluginManifest describes a group of native tools and their metadata.
type PluginManifest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Provider    string     `json:"provider"`  // always "native" today
	Category    string     `json:"category"`  // "memory", "todoist", "web", "knowledge"
	Dangerous   bool       `json:"dangerous"` // default for all tools
	Tools       []ToolSpec `json:"tools"`     // 1..N tools per plugin
}

// ToolSpec describes a single tool interface exposed by a plugin.
type ToolSpec struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]ParamSpec `json:"parameters"`
	Dangerous   bool                 `json:"dangerous"` // per-tool override
}

// ParamSpec describes a single tool parameter.
type ParamSpec struct {
	Type        string               `json:"type"` // "string", "number", "boolean", "integer", "array", "object"
	Description string               `json:"description"`
	Required    bool                 `json:"required"`
	Enum        []string             `json:"enum,omitempty"`
	Default     any                  `json:"default,omitempty"`
	Items       *ParamSpec           `json:"items,omitempty"`      // element schema for arrays
	Properties  map[string]ParamSpec `json:"properties,omitempty"` // sub-properties for objects
}

// nativeManifest builds the manifest of a native plugin.
func nativeManifest(name, category, description string, tools ...ToolSpec) *PluginManifest {
	return &PluginManifest{
		Name:        name,
		Description: description,
		Provider:    "native",
		Category:    category,
		Tools:       tools,
	}
}
