package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/net/html"

	"github.com/dohr-michael/todomind/internal/config"
)

// WebSearchTool wraps an eino-ext search tool behind a stable name.
type WebSearchTool struct {
	inner    tool.InvokableTool
	provider string
}

// NewWebSearchTool creates a web search tool using the configured provider.
// Supported: "duckduckgo" (default, no API key), "google", "bing".
func NewWebSearchTool(ctx context.Context, cfg config.WebSearchConfig) (*WebSearchTool, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "duckduckgo"
	}

	var (
		inner tool.InvokableTool
		err   error
	)
	switch provider {
	case "duckduckgo":
		inner, err = newDuckDuckGoTool(ctx, cfg)
	case "google":
		inner, err = newGoogleTool(ctx, cfg)
	case "bing":
		inner, err = newBingTool(ctx, cfg)
	default:
		return nil, fmt.Errorf("web_search: unknown provider %q", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("web_search: init %s: %w", provider, err)
	}

	return &WebSearchTool{inner: inner, provider: provider}, nil
}

// Info returns the tool info for Eino registration.
func (t *WebSearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return t.inner.Info(ctx)
}

// InvokableRun delegates to the provider-specific tool.
func (t *WebSearchTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	return t.inner.InvokableRun(ctx, argumentsInJSON, opts...)
}

// WebSearchManifest returns the plugin manifest for web_search.
func WebSearchManifest() *PluginManifest {
	return nativeManifest("web_search", "web", "Search the web for information using the configured search provider",
		ToolSpec{
			Name:        "web_search",
			Description: "Search the web for current information. Returns titles, URLs, and snippets.",
			Parameters: map[string]ParamSpec{
				"query": {Type: "string", Description: "The search query", Required: true},
			},
		},
	)
}

// WebFetchTool fetches a URL and returns the text content.
type WebFetchTool struct {
	client    *http.Client
	maxBodyKB int
	userAgent string
}

// NewWebFetchTool creates a web fetch tool with the given config.
func NewWebFetchTool(cfg config.WebFetchConfig) *WebFetchTool {
	timeout := 30 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			timeout = d
		}
	}

	maxBody := cfg.MaxBodyKB
	if maxBody <= 0 {
		maxBody = 512
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = "todomind/1.0 (web_fetch)"
	}

	return &WebFetchTool{
		client:    &http.Client{Timeout: timeout},
		maxBodyKB: maxBody,
		userAgent: ua,
	}
}

type webFetchInput struct {
	URL string `json:"url"`
}

type webFetchOutput struct {
	URL     string `json:"url"`
	Status  int    `json:"status"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// Info returns the tool info for Eino registration.
func (t *WebFetchTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return toolSpecToToolInfo(&WebFetchManifest().Tools[0]), nil
}

// InvokableRun fetches a URL and extracts text content.
func (t *WebFetchTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input webFetchInput
	if err := parseInput("web_fetch", argumentsInJSON, &input); err != nil {
		return "", err
	}
	if input.URL == "" {
		return "", fmt.Errorf("web_fetch: url is required")
	}
	if !strings.HasPrefix(input.URL, "http://") && !strings.HasPrefix(input.URL, "https://") {
		return "", fmt.Errorf("web_fetch: only http(s) URLs are supported")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return "", fmt.Errorf("web_fetch: create request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain,*/*")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("web_fetch: %w", err)
	}
	defer resp.Body.Close()

	maxBytes := int64(t.maxBodyKB) * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return "", fmt.Errorf("web_fetch: read body: %w", err)
	}

	result := webFetchOutput{URL: input.URL, Status: resp.StatusCode}
	if strings.Contains(resp.Header.Get("Content-Type"), "html") || looksLikeHTML(body) {
		result.Title, result.Content = extractPage(string(body))
	} else {
		result.Content = strings.TrimSpace(string(body))
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("web_fetch: marshal result: %w", err)
	}
	return string(out), nil
}

// WebFetchManifest returns the plugin manifest for web_fetch.
func WebFetchManifest() *PluginManifest {
	m := nativeManifest("web_fetch", "web", "Fetch a web page and extract its text content",
		ToolSpec{
			Name:        "web_fetch",
			Description: "Fetch an http(s) URL and return its text content. Content is truncated to the configured max size.",
			Parameters: map[string]ParamSpec{
				"url": {Type: "string", Description: "The URL to fetch", Required: true},
			},
			Dangerous: true,
		},
	)
	m.Dangerous = true
	return m
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") || strings.Contains(head, "<body")
}

// Elements after which extracted text starts a new line.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "hr": true, "title": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "td": true, "th": true, "pre": true, "blockquote": true,
	"section": true, "article": true, "header": true, "footer": true, "table": true,
	"ul": true, "ol": true,
}

// extractPage returns the page title and its readable text: one line per
// block element, whitespace collapsed, scripts and styles dropped.
func extractPage(page string) (title, text string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", strings.TrimSpace(page)
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, template, svg").Remove()

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			sb.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			sb.WriteByte('\n')
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}
	return title, strings.Join(lines, "\n")
}

// extractText returns the readable text of an HTML document.
func extractText(page string) string {
	_, text := extractPage(page)
	return text
}

var (
	_ tool.InvokableTool = (*WebSearchTool)(nil)
	_ tool.InvokableTool = (*WebFetchTool)(nil)
)
