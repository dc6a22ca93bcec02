package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cloudwego/eino/components/tool"

	"github.com/dohr-michael/todomind/internal/config"
	"github.com/dohr-michael/todomind/internal/memory"
)

// Deps are the collaborators the tools operate on. Nil fields disable the
// tools that need them, except Memory which is required.
type Deps struct {
	Memory    *memory.Store
	Todoist   TodoistAPI
	Knowledge KnowledgeSearcher
}

// SetupToolRegistry creates and populates a ToolRegistry with every tool the
// configuration and dependencies allow.
func SetupToolRegistry(ctx context.Context, cfg *config.Config, deps Deps) (*ToolRegistry, error) {
	if deps.Memory == nil {
		return nil, fmt.Errorf("setup tools: memory store is required")
	}
	registry := NewToolRegistry()

	if err := registerAll(registry, NewMemoryTools(deps.Memory), MemoryManifest()); err != nil {
		return nil, err
	}

	if deps.Todoist != nil {
		if err := registerAll(registry, NewTodoistTools(deps.Todoist), TodoistManifest()); err != nil {
			return nil, err
		}
	} else {
		slog.Debug("todoist tools disabled: no API key configured")
	}

	RegisterWebTools(ctx, cfg, registry)

	if deps.Knowledge != nil {
		if err := registry.RegisterNative("search_knowledge", NewSearchKnowledgeTool(deps.Knowledge), KnowledgeManifest()); err != nil {
			return nil, fmt.Errorf("setup tools: %w", err)
		}
	}

	return registry, nil
}

// registerAll registers every tool of a native plugin in name order.
func registerAll(registry *ToolRegistry, tools map[string]tool.InvokableTool, manifest *PluginManifest) error {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := registry.RegisterNative(name, tools[name], manifest); err != nil {
			return fmt.Errorf("setup tools: %w", err)
		}
	}
	return nil
}

// RegisterWebTools registers web_search and web_fetch native tools.
func RegisterWebTools(ctx context.Context, cfg *config.Config, registry *ToolRegistry) {
	if cfg.Web.Search.IsSearchEnabled() {
		searchTool, err := NewWebSearchTool(ctx, cfg.Web.Search)
		if err != nil {
			slog.Warn("failed to create web_search tool", "error", err)
		} else if err := registry.RegisterNative("web_search", searchTool, WebSearchManifest()); err != nil {
			slog.Warn("failed to register web_search tool", "error", err)
		}
	}

	if cfg.Web.Fetch.IsFetchEnabled() {
		fetchTool := NewWebFetchTool(cfg.Web.Fetch)
		if err := registry.RegisterNative("web_fetch", fetchTool, WebFetchManifest()); err != nil {
			slog.Warn("failed to register web_fetch tool", "error", err)
		}
	}
}
