package models

import (
	"fmt"
	"os"
	"strings"

	"github.com/dohr-michael/todomind/internal/config"
)

// ResolvedAuth holds the resolved credentials.
type ResolvedAuth struct {
	Value string
	// Source names where the key came from, for diagnostics. Never the key itself.
	Source string
}

// driverEnv maps drivers to the environment variable holding their key.
var driverEnv = map[string]string{
	"openrouter": "OPENROUTER_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"anthropic":  "ANTHROPIC_API_KEY",
	"gemini":     "GEMINI_API_KEY",
}

// ResolveAuth resolves the credentials for a provider.
// Resolution order: ${VAR} api_key → direct api_key → driver default env.
func ResolveAuth(cfg config.ProviderConfig) (ResolvedAuth, error) {
	if key := strings.TrimSpace(cfg.Auth.APIKey); key != "" {
		if strings.HasPrefix(key, "${") && strings.HasSuffix(key, "}") {
			name := key[2 : len(key)-1]
			if v := os.Getenv(name); v != "" {
				return ResolvedAuth{Value: v, Source: "env:" + name}, nil
			}
			return ResolvedAuth{}, fmt.Errorf("%s not set", name)
		}
		return ResolvedAuth{Value: key, Source: "config"}, nil
	}

	env, ok := driverEnv[strings.ToLower(cfg.Driver)]
	if !ok {
		return ResolvedAuth{}, fmt.Errorf("unknown driver %q: cannot resolve auth", cfg.Driver)
	}
	if key := os.Getenv(env); key != "" {
		return ResolvedAuth{Value: key, Source: "env:" + env}, nil
	}
	return ResolvedAuth{}, fmt.Errorf("%s not set", env)
}
