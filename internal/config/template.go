package config

import "maps"

// Template is the commented config written by "todomind config init".
const Template = `// todomind configuration (JSONC: comments allowed).
// String values may reference environment variables as ${{ .Env.NAME }}.
{
  "gateway": {
    "host": "127.0.0.1",
    "port": 7777
  },

  "models": {
    "default": "openrouter",
    "providers": {
      "openrouter": {
        "driver": "openrouter",
        "model": "openai/gpt-4o-mini",
        "auth": { "api_key": "${{ .Env.OPENROUTER_API_KEY }}" },
        "max_tokens": 2000,
        "options": { "temperature": 0.7 }
      }
      // "local": { "driver": "ollama", "model": "llama3.1" }
      // "gemini": { "driver": "gemini", "model": "gemini-2.5-flash" }
    }
  },

  "agent": {
    // todoist, researcher or knowledge
    "profile": "todoist"
  },

  "memory": {
    "default_user": "default",
    "summary_limit": 10
  },

  "history": {
    "runs": 10
  },

  "todoist": {
    "api_key": "${{ .Env.TODOIST_API_KEY }}"
  },

  "web": {
    "search": { "provider": "duckduckgo" },
    "fetch": { "max_body_kb": 512 }
  },

  "knowledge": {
    "chunk_size": 800,
    "chunk_overlap": 100,
    "embedding": {
      "driver": "openai",
      "model": "text-embedding-3-small",
      "auth": { "api_key": "${{ .Env.OPENAI_API_KEY }}" }
    }
  }
}
`

const redacted = "***"

// Redacted returns a copy of c with every credential masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Models.Providers = maps.Clone(c.Models.Providers)
	for name, p := range out.Models.Providers {
		p.Auth.APIKey = mask(p.Auth.APIKey)
		out.Models.Providers[name] = p
	}
	out.Todoist.APIKey = mask(c.Todoist.APIKey)
	out.Web.Search.GoogleAPIKey = mask(c.Web.Search.GoogleAPIKey)
	out.Web.Search.BingAPIKey = mask(c.Web.Search.BingAPIKey)
	out.Knowledge.Embedding.Auth.APIKey = mask(c.Knowledge.Embedding.Auth.APIKey)
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redacted
}
