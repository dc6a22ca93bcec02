package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/compose"
)

// DefaultToolErrorBudget is how many failures of one tool are reported back
// to the model within a turn before the error aborts the turn.
const DefaultToolErrorBudget = 3

// emptyToolResult replaces empty tool output; chat APIs reject empty tool messages.
const emptyToolResult = "[OK]"

type toolErrorBudget struct {
	limit int

	mu       sync.Mutex
	failures map[string]int
}

// NewToolRecoveryMiddleware returns a middleware that hands tool errors to the
// model as text so it can correct its arguments or tell the user. The
// limit-th failure of a tool is returned as an error. limit <= 0 means
// DefaultToolErrorBudget. Create one per turn.
func NewToolRecoveryMiddleware(limit int) adk.AgentMiddleware {
	if limit <= 0 {
		limit = DefaultToolErrorBudget
	}
	b := &toolErrorBudget{limit: limit, failures: make(map[string]int)}
	return adk.AgentMiddleware{
		WrapToolCall: compose.ToolMiddleware{Invokable: b.wrap},
	}
}

func (b *toolErrorBudget) wrap(next compose.InvokableToolEndpoint) compose.InvokableToolEndpoint {
	return func(ctx context.Context, input *compose.ToolInput) (*compose.ToolOutput, error) {
		out, err := next(ctx, input)
		if err == nil {
			if out != nil && out.Result == "" {
				out.Result = emptyToolResult
			}
			return out, nil
		}

		n := b.fail(input.Name)
		if n >= b.limit {
			slog.Error("tool failed, budget exhausted", "tool", input.Name, "failures", n, "error", err)
			return nil, err
		}
		slog.Warn("tool failed, reporting to model", "tool", input.Name, "failures", n, "error", err)
		return &compose.ToolOutput{Result: toolErrorText(input.Name, err)}, nil
	}
}

func (b *toolErrorBudget) fail(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[name]++
	return b.failures[name]
}

func toolErrorText(name string, err error) string {
	return fmt.Sprintf("[TOOL_ERROR] %s failed: %s\nFix the arguments and retry, or explain the problem to the user.", name, err)
}
