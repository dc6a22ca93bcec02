package models

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"

	"github.com/dohr-michael/todomind/internal/config"
)

func TestResolveAuth_DirectAPIKey(t *testing.T) {
	cfg := config.ProviderConfig{
		Driver: "openrouter",
		Auth:   config.AuthConfig{APIKey: "sk-or-test-123"},
	}
	auth, err := ResolveAuth(cfg)
	if err != nil {
		t.Fatalf("ResolveAuth: %v", err)
	}
	if auth.Value != "sk-or-test-123" {
		t.Fatalf("expected value %q, got %q", "sk-or-test-123", auth.Value)
	}
	if auth.Source != "config" {
		t.Fatalf("expected source config, got %q", auth.Source)
	}
}

func TestResolveAuth_EnvVarSyntax(t *testing.T) {
	t.Setenv("MY_CUSTOM_KEY", "custom-api-key-value")

	cfg := config.ProviderConfig{
		Driver: "anthropic",
		Auth:   config.AuthConfig{APIKey: "${MY_CUSTOM_KEY}"},
	}
	auth, err := ResolveAuth(cfg)
	if err != nil {
		t.Fatalf("ResolveAuth: %v", err)
	}
	if auth.Value != "custom-api-key-value" {
		t.Fatalf("expected value %q, got %q", "custom-api-key-value", auth.Value)
	}
}

func TestResolveAuth_EnvVarSyntaxUnset(t *testing.T) {
	t.Setenv("MY_MISSING_KEY", "")

	cfg := config.ProviderConfig{
		Driver: "openai",
		Auth:   config.AuthConfig{APIKey: "${MY_MISSING_KEY}"},
	}
	if _, err := ResolveAuth(cfg); err == nil || !strings.Contains(err.Error(), "MY_MISSING_KEY not set") {
		t.Fatalf("expected 'MY_MISSING_KEY not set' error, got %v", err)
	}
}

func TestResolveAuth_DriverEnvFallback(t *testing.T) {
	tests := []struct {
		driver string
		env    string
	}{
		{"openrouter", "OPENROUTER_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"gemini", "GEMINI_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			t.Setenv(tt.env, "env-"+tt.driver)
			auth, err := ResolveAuth(config.ProviderConfig{Driver: tt.driver})
			if err != nil {
				t.Fatalf("ResolveAuth: %v", err)
			}
			if auth.Value != "env-"+tt.driver || auth.Source != "env:"+tt.env {
				t.Fatalf("unexpected auth %+v", auth)
			}
		})
	}
}

func TestResolveAuth_NothingSet(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := ResolveAuth(config.ProviderConfig{Driver: "openrouter"})
	if err == nil {
		t.Fatal("expected error when no auth is available")
	}
	if !strings.Contains(err.Error(), "OPENROUTER_API_KEY not set") {
		t.Fatalf("expected 'OPENROUTER_API_KEY not set' error, got %v", err)
	}
}

func TestResolveAuth_UnknownDriver(t *testing.T) {
	_, err := ResolveAuth(config.ProviderConfig{Driver: "mistral"})
	if err == nil || !strings.Contains(err.Error(), "unknown driver") {
		t.Fatalf("expected 'unknown driver' error, got %v", err)
	}
}

func TestCreateModel_UnknownDriver(t *testing.T) {
	cfg := config.ProviderConfig{Driver: "unknown-driver"}
	_, err := CreateModel(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if !strings.Contains(err.Error(), "unknown driver") {
		t.Fatalf("expected 'unknown driver' error, got %v", err)
	}
}

func TestCreateModel_MissingAuth(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := CreateModel(context.Background(), config.ProviderConfig{Driver: "openai"})
	if err == nil || !strings.Contains(err.Error(), "resolve auth") {
		t.Fatalf("expected resolve auth error, got %v", err)
	}
}

func TestCreateModel_OllamaRequiresModel(t *testing.T) {
	_, err := CreateModel(context.Background(), config.ProviderConfig{Driver: "ollama"})
	if err == nil || !strings.Contains(err.Error(), "model is required") {
		t.Fatalf("expected model required error, got %v", err)
	}
}

func TestOpenAIConfig(t *testing.T) {
	cfg := config.ProviderConfig{
		Model:     "gpt-4o",
		MaxTokens: 2000,
		Options:   map[string]any{"temperature": 0.7},
	}
	mc := openAIConfig(cfg, ResolvedAuth{Value: "k"}, 0)
	if mc.MaxCompletionTokens == nil || *mc.MaxCompletionTokens != 2000 {
		t.Errorf("expected max tokens 2000, got %v", mc.MaxCompletionTokens)
	}
	if mc.Temperature == nil || *mc.Temperature != float32(0.7) {
		t.Errorf("expected temperature 0.7, got %v", mc.Temperature)
	}
	if mc.TopP != nil {
		t.Errorf("expected no top_p, got %v", *mc.TopP)
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := NewRegistry(config.ModelsConfig{Default: "main"})

	_, err := reg.Get(context.Background(), "nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected 'not found' error, got %v", err)
	}
}

func TestRegistry_LazyOnce(t *testing.T) {
	reg := NewRegistry(config.ModelsConfig{
		Default: "main",
		Providers: map[string]config.ProviderConfig{
			"main":  {Driver: "openrouter"},
			"local": {Driver: "ollama"},
		},
	})

	calls := 0
	boom := errors.New("boom")
	reg.factory = func(context.Context, config.ProviderConfig) (model.ToolCallingChatModel, error) {
		calls++
		return nil, boom
	}

	for i := 0; i < 3; i++ {
		if _, err := reg.Default(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped factory error, got %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected factory to run once, ran %d times", calls)
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "local" || names[1] != "main" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRegistry_NoDefault(t *testing.T) {
	reg := NewRegistry(config.ModelsConfig{})
	if _, err := reg.Default(context.Background()); err == nil {
		t.Fatal("expected error without default")
	}
}

func TestHandleError(t *testing.T) {
	if HandleError(nil) != nil {
		t.Fatal("expected nil")
	}
	err := HandleError(errors.New("status 429: Too Many Requests"))
	if !strings.HasPrefix(err.Error(), "rate limited") {
		t.Fatalf("expected rate limited, got %v", err)
	}
	err = HandleError(errors.New("401 Unauthorized"))
	if !strings.HasPrefix(err.Error(), "authentication failed") {
		t.Fatalf("expected authentication failed, got %v", err)
	}
}
