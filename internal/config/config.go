package config

import "time"

// Config is the root configuration for todomind.
type Config struct {
	Gateway   GatewayConfig   `json:"gateway"`
	Models    ModelsConfig    `json:"models"`
	Agent     AgentConfig     `json:"agent"`
	Memory    MemoryConfig    `json:"memory"`
	History   HistoryConfig   `json:"history"`
	Todoist   TodoistConfig   `json:"todoist"`
	Web       WebConfig       `json:"web"`
	Knowledge KnowledgeConfig `json:"knowledge"`
}

// GatewayConfig holds the HTTP gateway settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ModelsConfig holds model provider configuration.
type ModelsConfig struct {
	Default   string                    `json:"default"`
	Providers map[string]ProviderConfig `json:"providers"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Driver    string         `json:"driver"` // "openrouter", "openai", "ollama", "anthropic", "gemini"
	Model     string         `json:"model"`
	BaseURL   string         `json:"base_url,omitempty"`
	Auth      AuthConfig     `json:"auth"`
	MaxTokens int            `json:"max_tokens,omitempty"`
	Timeout   Duration       `json:"timeout,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// AuthConfig configures API key resolution.
type AuthConfig struct {
	APIKey string `json:"api_key,omitempty"` // Direct API key or ${{ .Env.VAR }} template
}

// AgentConfig holds assistant settings.
type AgentConfig struct {
	Profile       string `json:"profile"`                  // "todoist", "researcher", "knowledge"
	Instructions  string `json:"instructions,omitempty"`   // extra instructions appended to the profile
	MaxIterations int    `json:"max_iterations,omitempty"` // 0 = ADK default
}

// MemoryConfig configures the key-value memory store.
type MemoryConfig struct {
	Dir          string `json:"dir"`
	DefaultUser  string `json:"default_user"`
	SummaryLimit int    `json:"summary_limit"`
}

// HistoryConfig configures the conversation history database.
type HistoryConfig struct {
	Path string `json:"path"`
	Runs int    `json:"runs"` // past user/assistant exchanges replayed per turn
}

// TodoistConfig configures the Todoist REST client.
type TodoistConfig struct {
	APIKey  string   `json:"api_key"`
	BaseURL string   `json:"base_url"`
	SyncURL string   `json:"sync_url"`
	Timeout Duration `json:"timeout,omitempty"`
}

// Enabled reports whether Todoist credentials are configured.
func (c TodoistConfig) Enabled() bool {
	return c.APIKey != ""
}

// WebConfig groups web tool settings.
type WebConfig struct {
	Search WebSearchConfig `json:"search"`
	Fetch  WebFetchConfig  `json:"fetch"`
}

// WebSearchConfig configures the web_search tool.
type WebSearchConfig struct {
	Enabled      *bool  `json:"enabled,omitempty"`
	Provider     string `json:"provider"` // "duckduckgo", "google", "bing"
	MaxResults   int    `json:"max_results,omitempty"`
	Timeout      string `json:"timeout,omitempty"`
	GoogleAPIKey string `json:"google_api_key,omitempty"`
	GoogleCX     string `json:"google_cx,omitempty"`
	BingAPIKey   string `json:"bing_api_key,omitempty"`
}

// IsSearchEnabled defaults to true when unset.
func (c WebSearchConfig) IsSearchEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// WebFetchConfig configures the web_fetch tool.
type WebFetchConfig struct {
	Enabled   *bool  `json:"enabled,omitempty"`
	Timeout   string `json:"timeout,omitempty"`
	MaxBodyKB int    `json:"max_body_kb,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// IsFetchEnabled defaults to true when unset.
func (c WebFetchConfig) IsFetchEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// KnowledgeConfig configures the vector knowledge base.
type KnowledgeConfig struct {
	Dir          string          `json:"dir"`
	ChunkSize    int             `json:"chunk_size"`
	ChunkOverlap int             `json:"chunk_overlap"`
	Embedding    EmbeddingConfig `json:"embedding"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Driver  string     `json:"driver"` // "openai", "ollama"
	Model   string     `json:"model"`
	BaseURL string     `json:"base_url,omitempty"`
	Dims    int        `json:"dims,omitempty"`
	Auth    AuthConfig `json:"auth"`
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
