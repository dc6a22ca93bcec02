package models

import (
	"context"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dohr-michael/todomind/internal/config"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "openai/gpt-4o-mini"
	defaultOpenAIModel       = "gpt-4o-mini"
)

// NewOpenAI creates a new OpenAI ChatModel.
func NewOpenAI(ctx context.Context, cfg config.ProviderConfig, auth ResolvedAuth) (model.ToolCallingChatModel, error) {
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	return einoopenai.NewChatModel(ctx, openAIConfig(cfg, auth, 60*time.Second))
}

// NewOpenRouter creates a ChatModel backed by OpenRouter's OpenAI-compatible API.
func NewOpenRouter(ctx context.Context, cfg config.ProviderConfig, auth ResolvedAuth) (model.ToolCallingChatModel, error) {
	if cfg.Model == "" {
		cfg.Model = defaultOpenRouterModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	return einoopenai.NewChatModel(ctx, openAIConfig(cfg, auth, 2*time.Minute))
}

func openAIConfig(cfg config.ProviderConfig, auth ResolvedAuth, timeout time.Duration) *einoopenai.ChatModelConfig {
	modelConfig := &einoopenai.ChatModelConfig{
		APIKey:      auth.Value,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Temperature: temperature(cfg),
		TopP:        topP(cfg),
	}

	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelConfig.MaxCompletionTokens = &maxTokens
	}

	if cfg.Timeout.Duration() > 0 {
		modelConfig.Timeout = cfg.Timeout.Duration()
	} else {
		modelConfig.Timeout = timeout
	}
	return modelConfig
}
