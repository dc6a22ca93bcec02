package models

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/dohr-michael/todomind/internal/config"
)

const (
	defaultAnthropicModel     = "claude-sonnet-4-5"
	defaultAnthropicMaxTokens = 4096
)

// NewAnthropic creates a Claude ChatModel.
func NewAnthropic(ctx context.Context, cfg config.ProviderConfig, auth ResolvedAuth) (model.ToolCallingChatModel, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	ccfg := &claude.Config{
		APIKey:      auth.Value,
		Model:       modelName,
		MaxTokens:   maxTokens,
		Temperature: temperature(cfg),
		TopP:        topP(cfg),
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		ccfg.BaseURL = &baseURL
	}

	return claude.NewChatModel(ctx, ccfg)
}
