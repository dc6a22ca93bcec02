package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/tool"

	"github.com/cloudwego/eino-ext/components/tool/bingsearch"
	duckduckgo "github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino-ext/components/tool/googlesearch"

	"github.com/dohr-michael/todomind/internal/config"
)

func searchLimit(cfg config.WebSearchConfig) int {
	if cfg.MaxResults <= 0 {
		return 10
	}
	return cfg.MaxResults
}

func searchTimeout(cfg config.WebSearchConfig) time.Duration {
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			return d
		}
	}
	return 0
}

func newDuckDuckGoTool(ctx context.Context, cfg config.WebSearchConfig) (tool.InvokableTool, error) {
	slog.Debug("web_search: using DuckDuckGo provider")
	return duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{
		ToolName:   "web_search",
		ToolDesc:   "Search the web using DuckDuckGo. Returns titles, URLs, and summaries.",
		MaxResults: searchLimit(cfg),
		Timeout:    searchTimeout(cfg),
	})
}

func newGoogleTool(ctx context.Context, cfg config.WebSearchConfig) (tool.InvokableTool, error) {
	if cfg.GoogleAPIKey == "" || cfg.GoogleCX == "" {
		return nil, fmt.Errorf("google provider requires google_api_key and google_cx")
	}
	slog.Debug("web_search: using Google provider")
	return googlesearch.NewTool(ctx, &googlesearch.Config{
		APIKey:         cfg.GoogleAPIKey,
		SearchEngineID: cfg.GoogleCX,
		Num:            searchLimit(cfg),
		ToolName:       "web_search",
		ToolDesc:       "Search the web using Google. Returns titles, URLs, and snippets.",
	})
}

func newBingTool(ctx context.Context, cfg config.WebSearchConfig) (tool.InvokableTool, error) {
	if cfg.BingAPIKey == "" {
		return nil, fmt.Errorf("bing provider requires bing_api_key")
	}
	slog.Debug("web_search: using Bing provider")
	return bingsearch.NewTool(ctx, &bingsearch.Config{
		APIKey:     cfg.BingAPIKey,
		MaxResults: searchLimit(cfg),
		ToolName:   "web_search",
		ToolDesc:   "Search the web using Bing. Returns titles, URLs, and descriptions.",
		Timeout:    searchTimeout(cfg),
	})
}
