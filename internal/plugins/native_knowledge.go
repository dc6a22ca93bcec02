package plugins

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/todomind/internal/knowledge"
)

const defaultKnowledgeLimit = 5

// KnowledgeSearcher is the part of the knowledge base used by search_knowledge.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, n int) ([]knowledge.Hit, error)
}

// KnowledgeManifest returns the plugin manifest for search_knowledge.
func KnowledgeManifest() *PluginManifest {
	return nativeManifest("knowledge", "knowledge", "Semantic search over the local knowledge base",
		ToolSpec{
			Name:        "search_knowledge",
			Description: "Search the local knowledge base for passages relevant to a question. Returns the best matching chunks with their source file.",
			Parameters: map[string]ParamSpec{
				"query": {Type: "string", Description: "What to look for", Required: true},
				"limit": {Type: "integer", Description: "Maximum number of passages (default: 5)"},
			},
		},
	)
}

// SearchKnowledgeTool queries the knowledge base.
type SearchKnowledgeTool struct {
	kb KnowledgeSearcher
}

// NewSearchKnowledgeTool creates the search_knowledge tool.
func NewSearchKnowledgeTool(kb KnowledgeSearcher) *SearchKnowledgeTool {
	return &SearchKnowledgeTool{kb: kb}
}

type searchKnowledgeInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type knowledgeHit struct {
	Source     string  `json:"source"`
	Chunk      int     `json:"chunk"`
	Similarity float32 `json:"similarity"`
	Content    string  `json:"content"`
}

// Info returns the tool info for Eino registration.
func (t *SearchKnowledgeTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return toolSpecToToolInfo(&KnowledgeManifest().Tools[0]), nil
}

// InvokableRun searches and returns the hits as a JSON array.
func (t *SearchKnowledgeTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	var input searchKnowledgeInput
	if err := parseInput("search_knowledge", argumentsInJSON, &input); err != nil {
		return "", err
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", fmt.Errorf("search_knowledge: query is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultKnowledgeLimit
	}

	hits, err := t.kb.Search(ctx, input.Query, limit)
	if err != nil {
		return "", fmt.Errorf("search_knowledge: %w", err)
	}

	out := make([]knowledgeHit, 0, len(hits))
	for _, h := range hits {
		chunk, _ := strconv.Atoi(h.Metadata["chunk"])
		out = append(out, knowledgeHit{
			Source:     h.Source,
			Chunk:      chunk,
			Similarity: h.Similarity,
			Content:    h.Content,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("search_knowledge: marshal result: %w", err)
	}
	return string(data), nil
}

var _ tool.InvokableTool = (*SearchKnowledgeTool)(nil)
