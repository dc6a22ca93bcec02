package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.jsonc")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `{
	// This is a JSONC comment
	"gateway": {
		"host": "0.0.0.0",
		"port": 9999
	},
	"models": {
		"default": "router",
		"providers": {
			"router": {
				"driver": "openrouter",
				"model": "openai/gpt-4o",
				"auth": {
					"api_key": "${{ .Env.OPENROUTER_API_KEY }}"
				},
				"max_tokens": 4096
			}
		}
	},
	"memory": {
		"dir": "/var/lib/todomind/memory",
		"summary_limit": 5
	},
	"todoist": {
		"api_key": "${{ .Env.TODOIST_TOKEN }}",
		"timeout": "15s"
	}
}`
	t.Setenv("OPENROUTER_API_KEY", "test-key-123")
	t.Setenv("TODOIST_TOKEN", "todo-456")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Gateway.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Gateway.Port)
	}
	if cfg.Models.Default != "router" {
		t.Errorf("expected default router, got %s", cfg.Models.Default)
	}

	p, ok := cfg.Models.Providers["router"]
	if !ok {
		t.Fatal("expected router provider")
	}
	if p.Auth.APIKey != "test-key-123" {
		t.Errorf("expected api_key test-key-123, got %s", p.Auth.APIKey)
	}
	if p.MaxTokens != 4096 {
		t.Errorf("expected max_tokens 4096, got %d", p.MaxTokens)
	}

	if cfg.Memory.Dir != "/var/lib/todomind/memory" {
		t.Errorf("unexpected memory dir %q", cfg.Memory.Dir)
	}
	if cfg.Memory.SummaryLimit != 5 {
		t.Errorf("expected summary_limit 5, got %d", cfg.Memory.SummaryLimit)
	}
	if cfg.Todoist.APIKey != "todo-456" {
		t.Errorf("expected todoist key from env template, got %q", cfg.Todoist.APIKey)
	}
	if cfg.Todoist.Timeout.Duration().Seconds() != 15 {
		t.Errorf("expected todoist timeout 15s, got %s", cfg.Todoist.Timeout.Duration())
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TODOMIND_PATH", "/tmp/todomind-test")
	t.Setenv("TODOIST_API_KEY", "")

	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Gateway.Host != "127.0.0.1" {
		t.Errorf("expected default host 127.0.0.1, got %s", cfg.Gateway.Host)
	}
	if cfg.Gateway.Port != 7777 {
		t.Errorf("expected default port 7777, got %d", cfg.Gateway.Port)
	}
	if cfg.Models.Default != "openrouter" {
		t.Errorf("expected default provider openrouter, got %q", cfg.Models.Default)
	}
	p := cfg.Models.Providers["openrouter"]
	if p.Model != "openai/gpt-4o-mini" {
		t.Errorf("expected default model openai/gpt-4o-mini, got %q", p.Model)
	}
	if cfg.Memory.Dir != "/tmp/todomind-test/memory" {
		t.Errorf("unexpected default memory dir %q", cfg.Memory.Dir)
	}
	if cfg.Memory.DefaultUser != "default" {
		t.Errorf("expected default user 'default', got %q", cfg.Memory.DefaultUser)
	}
	if cfg.Memory.SummaryLimit != 10 {
		t.Errorf("expected summary limit 10, got %d", cfg.Memory.SummaryLimit)
	}
	if cfg.History.Runs != 10 {
		t.Errorf("expected 10 history runs, got %d", cfg.History.Runs)
	}
	if cfg.Todoist.Enabled() {
		t.Error("todoist should be disabled without an API key")
	}
	if cfg.Web.Search.Provider != "duckduckgo" {
		t.Errorf("expected duckduckgo search, got %q", cfg.Web.Search.Provider)
	}
	if !cfg.Web.Search.IsSearchEnabled() || !cfg.Web.Fetch.IsFetchEnabled() {
		t.Error("web tools should be enabled by default")
	}
	if cfg.Knowledge.ChunkSize != 800 || cfg.Knowledge.ChunkOverlap != 100 {
		t.Errorf("unexpected chunking defaults %d/%d", cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap)
	}
}

func TestLoadDefaults_TodoistKeyFromEnv(t *testing.T) {
	t.Setenv("TODOIST_API_KEY", "env-token")

	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Todoist.APIKey != "env-token" || !cfg.Todoist.Enabled() {
		t.Errorf("expected todoist key from env, got %q", cfg.Todoist.APIKey)
	}
}

func TestLoadDefaults_SingleNamedProvider(t *testing.T) {
	content := `{"models": {"providers": {"local": {"driver": "ollama", "model": "llama3"}}}}`

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Models.Default != "local" {
		t.Errorf("expected the only provider to become default, got %q", cfg.Models.Default)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.jsonc")); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestExpandEnvTemplates(t *testing.T) {
	t.Setenv("TEST_KEY", "my-secret")
	result := expandEnvTemplates(`{"key": "${{ .Env.TEST_KEY }}"}`)
	expected := `{"key": "my-secret"}`
	if result != expected {
		t.Errorf("expected %s, got %s", expected, result)
	}
}
