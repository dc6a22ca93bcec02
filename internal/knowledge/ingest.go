package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	chromem "github.com/philippgille/chromem-go"
)

var ingestExts = map[string]bool{".md": true, ".txt": true, ".markdown": true}

// Ingest expands the glob patterns, splits every matching text file into
// overlapping chunks and stores them. Chunks previously ingested from the
// same file are replaced. It returns the number of chunks written.
func (b *Base) Ingest(ctx context.Context, patterns []string) (int, error) {
	files, err := expandPatterns(patterns)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := b.ingestFile(ctx, path)
		if err != nil {
			return total, err
		}
		slog.Debug("knowledge: ingested", "source", path, "chunks", n)
		total += n
	}
	return total, nil
}

func (b *Base) ingestFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		slog.Warn("knowledge: skipping non UTF-8 file", "source", path)
		return 0, nil
	}

	if err := b.DeleteSource(ctx, path); err != nil {
		return 0, fmt.Errorf("replace %s: %w", path, err)
	}

	chunks := Chunk(string(data), b.chunkSize, b.chunkOverlap)
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:       path + "#" + strconv.Itoa(i),
			Content:  c,
			Metadata: map[string]string{"source": path, "chunk": strconv.Itoa(i)},
		}
	}
	if err := b.collection.AddDocuments(ctx, docs, 1); err != nil {
		return 0, fmt.Errorf("store %s: %w", path, err)
	}
	return len(docs), nil
}

// expandPatterns resolves doublestar globs and plain paths (files or
// directories) into a sorted, de-duplicated list of ingestible files.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if ingestExts[strings.ToLower(filepath.Ext(p))] && !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			pattern = filepath.Join(pattern, "**", "*")
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && !info.IsDir() {
				add(m)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// Chunk splits text into windows of at most size runes, each starting
// size-overlap runes after the previous one. Whitespace-only windows are
// dropped.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		if c := strings.TrimSpace(string(runes[start:end])); c != "" {
			chunks = append(chunks, c)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
