// Package knowledge stores local documents as embedded chunks and answers
// semantic queries against them.
package knowledge

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cloudwego/eino/components/embedding"
	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "todomind_knowledge"

// Hit is a single search result.
type Hit struct {
	ID         string
	Source     string
	Content    string
	Similarity float32
	Metadata   map[string]string
}

// Base wraps chromem-go for persistent vector storage of document chunks.
type Base struct {
	db         *chromem.DB
	collection *chromem.Collection

	chunkSize    int
	chunkOverlap int
}

// Option tunes a Base.
type Option func(*Base)

// WithChunking sets the chunk size and overlap, both in runes.
func WithChunking(size, overlap int) Option {
	return func(b *Base) {
		if size > 0 {
			b.chunkSize = size
		}
		if overlap >= 0 && overlap < b.chunkSize {
			b.chunkOverlap = overlap
		}
	}
}

// Open opens (or creates) the knowledge base under dir/vectors.
// The embedder is bridged from Eino's [][]float64 to chromem-go's []float32.
func Open(ctx context.Context, dir string, embedder embedding.Embedder, opts ...Option) (*Base, error) {
	db, err := chromem.NewPersistentDB(filepath.Join(dir, "vectors"), false)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, bridgeEmbedder(ctx, embedder))
	if err != nil {
		return nil, fmt.Errorf("get or create collection: %w", err)
	}

	b := &Base{db: db, collection: col, chunkSize: 800, chunkOverlap: 100}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Upsert adds or replaces a single document.
func (b *Base) Upsert(ctx context.Context, id, content string, meta map[string]string) error {
	// chromem-go's Add overwrites existing IDs
	return b.collection.Add(ctx, []string{id}, nil, []map[string]string{meta}, []string{content})
}

// Delete removes a document by id.
func (b *Base) Delete(ctx context.Context, id string) error {
	return b.collection.Delete(ctx, nil, nil, id)
}

// DeleteSource removes every chunk ingested from source.
func (b *Base) DeleteSource(ctx context.Context, source string) error {
	return b.collection.Delete(ctx, map[string]string{"source": source}, nil)
}

// Search performs a semantic query and returns at most n hits, best first.
func (b *Base) Search(ctx context.Context, query string, n int) ([]Hit, error) {
	count := b.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if n <= 0 {
		n = 5
	}
	if n > count {
		n = count
	}

	results, err := b.collection.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("knowledge query: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			ID:         r.ID,
			Source:     r.Metadata["source"],
			Content:    r.Content,
			Similarity: r.Similarity,
			Metadata:   r.Metadata,
		}
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (b *Base) Count() int {
	return b.collection.Count()
}

// bridgeEmbedder converts an Eino Embedder ([][]float64) to a chromem-go EmbeddingFunc ([]float32).
func bridgeEmbedder(ctx context.Context, embedder embedding.Embedder) chromem.EmbeddingFunc {
	return func(embedCtx context.Context, text string) ([]float32, error) {
		if embedCtx == context.Background() {
			embedCtx = ctx
		}
		vectors, err := embedder.EmbedStrings(embedCtx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("embed text: %w", err)
		}
		if len(vectors) == 0 || len(vectors[0]) == 0 {
			return nil, fmt.Errorf("embed text: empty result")
		}

		f32 := make([]float32, len(vectors[0]))
		for i, v := range vectors[0] {
			f32[i] = float32(v)
		}
		return f32, nil
	}
}
