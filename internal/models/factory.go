// Package models builds eino chat models from provider configuration.
package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"github.com/dohr-michael/todomind/internal/config"
)

// Drivers lists the supported provider drivers.
var Drivers = []string{"openrouter", "openai", "ollama", "anthropic", "gemini"}

// CreateModel creates a model.ToolCallingChatModel from a provider config.
func CreateModel(ctx context.Context, cfg config.ProviderConfig) (model.ToolCallingChatModel, error) {
	driver := strings.ToLower(cfg.Driver)
	switch driver {
	case "ollama":
		return NewOllama(ctx, cfg)
	case "openrouter", "openai", "anthropic", "gemini":
	default:
		return nil, fmt.Errorf("unknown driver: %s (supported: %s)", cfg.Driver, strings.Join(Drivers, ", "))
	}

	auth, err := ResolveAuth(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve auth: %w", err)
	}

	switch driver {
	case "openrouter":
		return NewOpenRouter(ctx, cfg, auth)
	case "openai":
		return NewOpenAI(ctx, cfg, auth)
	case "anthropic":
		return NewAnthropic(ctx, cfg, auth)
	default:
		return NewGemini(ctx, cfg, auth)
	}
}

func temperature(cfg config.ProviderConfig) *float32 {
	if temp, ok := cfg.Options["temperature"].(float64); ok {
		t := float32(temp)
		return &t
	}
	return nil
}

func topP(cfg config.ProviderConfig) *float32 {
	if p, ok := cfg.Options["top_p"].(float64); ok {
		v := float32(p)
		return &v
	}
	return nil
}
