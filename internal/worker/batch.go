package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mediamind/mediamind/internal/model"
)

// Embedder is the embedding dependency of batch jobs
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedJob embeds one batch of chunks through a rate-limited provider
type EmbedJob struct {
	Provider string // Rate limit bucket
	Chunks   []model.Chunk
	Embedder Embedder
	Limiter  *Limiter
}

// Execute runs the embedding batch
func (j *EmbedJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, j.Provider); err != nil {
			return &EmbedResult{Chunks: j.Chunks, Error: err}
		}
	}

	texts := make([]string, len(j.Chunks))
	for i, c := range j.Chunks {
		texts[i] = c.Text
	}

	vectors, err := j.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return &EmbedResult{Chunks: j.Chunks, Error: err}
	}
	if len(vectors) != len(j.Chunks) {
		return &EmbedResult{Chunks: j.Chunks, Error: fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(j.Chunks))}
	}
	return &EmbedResult{Chunks: j.Chunks, Vectors: vectors}
}

// EmbedResult pairs a chunk batch with its vectors, in chunk order
type EmbedResult struct {
	Chunks  []model.Chunk
	Vectors [][]float32
	Error   error
}

// GetError returns the error from the embedding batch
func (r *EmbedResult) GetError() error {
	return r.Error
}

// Batches splits chunks into batches of at most size elements
func Batches(chunks []model.Chunk, size int) [][]model.Chunk {
	if size <= 0 {
		size = 100
	}
	var out [][]model.Chunk
	for start := 0; start < len(chunks); start += size {
		end := start + size
		if end > len(chunks) {
			end = len(chunks)
		}
		out = append(out, chunks[start:end])
	}
	return out
}

// ReadPathsFromFile reads file paths from a list file (one per line).
// Empty lines and # comments are skipped, duplicates are dropped.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
