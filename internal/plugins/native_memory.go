package plugins

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/todomind/internal/memory"
)

// MemoryManifest returns the plugin manifest for the key-value memory tools.
func MemoryManifest() *PluginManifest {
	return nativeManifest("memory", "memory", "Persistent facts about the user",
		ToolSpec{
			Name:        "remember",
			Description: "Store a fact about the user under a short key (name, preferences, projects, habits). Overwrites any previous value for the key.",
			Parameters: map[string]ParamSpec{
				"key":   {Type: "string", Description: "Short identifier, e.g. 'name' or 'favorite_project'", Required: true},
				"value": {Type: "string", Description: "The information to remember", Required: true},
			},
		},
		ToolSpec{
			Name:        "recall",
			Description: "Look up a fact previously stored with remember.",
			Parameters: map[string]ParamSpec{
				"key": {Type: "string", Description: "Key of the fact to recall", Required: true},
			},
		},
		ToolSpec{
			Name:        "show_all_memories",
			Description: "List every fact stored about the user.",
		},
		ToolSpec{
			Name:        "clear_all_memories",
			Description: "Erase every fact stored about the user. Only use when the user explicitly asks.",
			Dangerous:   true,
		},
	)
}

// memoryTool is shared by the four memory tools.
type memoryTool struct {
	store *memory.Store
	spec  *ToolSpec
}

func (t *memoryTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return toolSpecToToolInfo(t.spec), nil
}

// RememberTool stores a key-value fact.
type RememberTool struct{ memoryTool }

// RecallTool reads a fact back.
type RecallTool struct{ memoryTool }

// ShowMemoriesTool lists every fact.
type ShowMemoriesTool struct{ memoryTool }

// ClearMemoriesTool erases every fact.
type ClearMemoriesTool struct{ memoryTool }

// NewMemoryTools builds the memory tools keyed by name.
func NewMemoryTools(store *memory.Store) map[string]tool.InvokableTool {
	m := MemoryManifest()
	base := func(i int) memoryTool { return memoryTool{store: store, spec: &m.Tools[i]} }
	return map[string]tool.InvokableTool{
		"remember":           &RememberTool{base(0)},
		"recall":             &RecallTool{base(1)},
		"show_all_memories":  &ShowMemoriesTool{base(2)},
		"clear_all_memories": &ClearMemoriesTool{base(3)},
	}
}

type rememberInput struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

func (t *RememberTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input rememberInput
	if err := parseInput("remember", argumentsInJSON, &input); err != nil {
		return "", err
	}
	if err := t.store.Remember(input.Key, input.Value, memory.UserFromContext(ctx)); err != nil {
		return "", fmt.Errorf("remember: %w", err)
	}
	return fmt.Sprintf("✅ I'll remember that %s: %s", input.Key, memory.FormatValue(input.Value)), nil
}

type recallInput struct {
	Key string `json:"key"`
}

func (t *RecallTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input recallInput
	if err := parseInput("recall", argumentsInJSON, &input); err != nil {
		return "", err
	}
	value, ok := t.store.Recall(input.Key, memory.UserFromContext(ctx))
	if !ok {
		return fmt.Sprintf("❌ I have no information about '%s' in memory", input.Key), nil
	}
	return fmt.Sprintf("📝 I remember that %s: %s", input.Key, memory.FormatValue(value)), nil
}

func (t *ShowMemoriesTool) InvokableRun(ctx context.Context, _ string, _ ...tool.Option) (string, error) {
	records := t.store.All(memory.UserFromContext(ctx))
	if len(records) == 0 {
		return "📭 I don't have any memories stored yet", nil
	}

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("🧠 My memories about you:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  • %s: %s\n", k, memory.FormatValue(records[k].Value))
	}
	return b.String(), nil
}

func (t *ClearMemoriesTool) InvokableRun(ctx context.Context, _ string, _ ...tool.Option) (string, error) {
	if err := t.store.Clear(memory.UserFromContext(ctx)); err != nil {
		return "", fmt.Errorf("clear_all_memories: %w", err)
	}
	return "🧹 All memories were cleared", nil
}

var (
	_ tool.InvokableTool = (*RememberTool)(nil)
	_ tool.InvokableTool = (*RecallTool)(nil)
	_ tool.InvokableTool = (*ShowMemoriesTool)(nil)
	_ tool.InvokableTool = (*ClearMemoriesTool)(nil)
)
