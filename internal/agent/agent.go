// Package agent runs assistant turns on the Eino ADK.
package agent

import (
	"context"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
)

// AgentOptions configures optional agent behavior.
type AgentOptions struct {
	MaxIterations int // 0 = ADK default
}

// NewAgent creates a non-streaming ChatModelAgent runner. Eino freezes a
// runner's tool set on its first Run, so callers build one per turn.
func NewAgent(ctx context.Context, chatModel model.ToolCallingChatModel, instruction string, tools []tool.InvokableTool, middlewares []adk.AgentMiddleware, opts ...AgentOptions) (*adk.Runner, error) {
	var opt AgentOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	cfg := &adk.ChatModelAgentConfig{
		Name:          "todomind",
		Description:   "Personal Todoist assistant with persistent memory",
		Instruction:   instruction,
		Model:         chatModel,
		MaxIterations: opt.MaxIterations,
		Middlewares:   middlewares,
	}

	// Register tools with the agent (enables ReAct loop in ADK)
	if len(tools) > 0 {
		baseTools := make([]tool.BaseTool, len(tools))
		for i, t := range tools {
			baseTools[i] = t
		}
		cfg.ToolsConfig.Tools = baseTools
	}

	agent, err := adk.NewChatModelAgent(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return adk.NewRunner(ctx, adk.RunnerConfig{Agent: agent}), nil
}
