package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/marcozac/go-jsonc"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

const (
	defaultProvider = "openrouter"
	defaultModel    = "openai/gpt-4o-mini"
)

// Load reads a JSONC config file, strips comments, expands ${{ .Env.VAR }} templates,
// unmarshals it into Config, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Templates live inside strings, so expand before stripping comments.
	expanded := expandEnvTemplates(string(data))

	var cfg Config
	if err := jsonc.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 7777
	}

	if len(cfg.Models.Providers) == 0 {
		cfg.Models.Providers = map[string]ProviderConfig{
			defaultProvider: {
				Driver:    defaultProvider,
				Model:     defaultModel,
				MaxTokens: 2000,
				Options:   map[string]any{"temperature": 0.7},
			},
		}
	}
	if cfg.Models.Default == "" {
		if _, ok := cfg.Models.Providers[defaultProvider]; ok {
			cfg.Models.Default = defaultProvider
		} else {
			// Single provider configured under another name.
			for name := range cfg.Models.Providers {
				cfg.Models.Default = name
				break
			}
		}
	}

	if cfg.Agent.Profile == "" {
		cfg.Agent.Profile = "todoist"
	}

	if cfg.Memory.Dir == "" {
		cfg.Memory.Dir = filepath.Join(AppPath(), "memory")
	}
	if cfg.Memory.DefaultUser == "" {
		cfg.Memory.DefaultUser = "default"
	}
	if cfg.Memory.SummaryLimit <= 0 {
		cfg.Memory.SummaryLimit = 10
	}

	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(AppPath(), "history.db")
	}
	if cfg.History.Runs <= 0 {
		cfg.History.Runs = 10
	}

	if cfg.Todoist.APIKey == "" {
		cfg.Todoist.APIKey = os.Getenv("TODOIST_API_KEY")
	}
	if cfg.Todoist.BaseURL == "" {
		cfg.Todoist.BaseURL = "https://api.todoist.com/rest/v2"
	}
	if cfg.Todoist.SyncURL == "" {
		cfg.Todoist.SyncURL = "https://api.todoist.com/sync/v9"
	}

	if cfg.Web.Search.Provider == "" {
		cfg.Web.Search.Provider = "duckduckgo"
	}

	if cfg.Knowledge.Dir == "" {
		cfg.Knowledge.Dir = filepath.Join(AppPath(), "knowledge")
	}
	if cfg.Knowledge.ChunkSize <= 0 {
		cfg.Knowledge.ChunkSize = 800
	}
	if cfg.Knowledge.ChunkOverlap <= 0 || cfg.Knowledge.ChunkOverlap >= cfg.Knowledge.ChunkSize {
		cfg.Knowledge.ChunkOverlap = cfg.Knowledge.ChunkSize / 8
	}
	if cfg.Knowledge.Embedding.Driver == "" {
		cfg.Knowledge.Embedding.Driver = "openai"
	}
	if cfg.Knowledge.Embedding.Model == "" && cfg.Knowledge.Embedding.Driver == "openai" {
		cfg.Knowledge.Embedding.Model = "text-embedding-3-small"
	}
}
