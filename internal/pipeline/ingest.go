package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mediamind/mediamind/internal/index"
	"github.com/mediamind/mediamind/internal/model"
	"github.com/mediamind/mediamind/internal/worker"
)

// IngestResult summarizes one ingested file
type IngestResult struct {
	File     *model.File `json:"file"`
	Chunks   int         `json:"chunks"`
	Segments int         `json:"segments,omitempty"`
	Pages    int         `json:"pages,omitempty"`
	Duration string      `json:"duration"`
}

// IngestFile loads, extracts, chunks, embeds and indexes one source file.
// The kind is guessed from content and extension; pass a non-empty kind to
// override (a transcript of a video, say). Re-ingesting a path with the same
// display name creates a fresh file record; old ones must be deleted
// explicitly.
func (p *Pipeline) IngestFile(ctx context.Context, path string, kind model.FileKind) (*IngestResult, error) {
	started := time.Now()

	loaded, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}

	extracted, err := p.registry.Extract(path, loaded.Data)
	if err != nil {
		return nil, err
	}
	if len(extracted.Text) == 0 {
		return nil, fmt.Errorf("%s contains no extractable text", path)
	}

	if kind == "" {
		kind = loaded.Kind
		if extracted.HasTranscript() {
			// Content wins over the extension guess
			kind = model.FileKindAudio
		} else if kind.HasTranscript() {
			// Extension promised a transcript, content had none
			kind = model.FileKindDocument
		}
	}
	if kind.HasTranscript() && !extracted.HasTranscript() {
		return nil, fmt.Errorf("%s ingested as %s but carries no transcript segments", path, kind)
	}

	file, err := p.store.CreateFile(ctx, loaded.Name, kind)
	if err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}

	chunks := p.chunker.Chunk(extracted.Text, extracted.Pages)
	stored, err := p.store.InsertChunks(ctx, file.ID, chunks)
	if err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	if extracted.HasTranscript() {
		if err := p.store.ReplaceSegments(ctx, file.ID, extracted.Segments); err != nil {
			return nil, fmt.Errorf("store segments: %w", err)
		}
	}

	if err := p.embedChunks(ctx, stored); err != nil {
		return nil, err
	}

	p.logf("ingested %s: %d chunks, %d segments", loaded.Name, len(stored), len(extracted.Segments))
	return &IngestResult{
		File:     file,
		Chunks:   len(stored),
		Segments: len(extracted.Segments),
		Pages:    len(extracted.Pages),
		Duration: time.Since(started).Round(time.Millisecond).String(),
	}, nil
}

// embedChunks embeds chunk batches concurrently and upserts the vectors into
// the store and index. Batches that fail leave their chunks unembedded; the
// first failure is returned after all batches settle.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	pool := worker.NewPool(p.config.Concurrency.Workers)
	pool.Start()

	for _, batch := range worker.Batches(chunks, p.config.Embedding.BatchSize) {
		pool.Submit(&worker.EmbedJob{
			Provider: p.config.Embedding.Provider,
			Chunks:   batch,
			Embedder: p.embedder,
			Limiter:  p.limiter,
		})
	}

	var errs []error
	for _, result := range pool.Wait() {
		embedded := result.(*worker.EmbedResult)
		if embedded.Error != nil {
			errs = append(errs, embedded.Error)
			continue
		}
		for i, chunk := range embedded.Chunks {
			vector := embedded.Vectors[i]
			if err := p.store.PutEmbedding(ctx, chunk.ID, p.embedder.Model(), vector); err != nil {
				errs = append(errs, fmt.Errorf("store embedding for chunk %d: %w", chunk.ID, err))
				continue
			}
			if err := p.index.Upsert(indexEntry(chunk, vector)); err != nil {
				errs = append(errs, fmt.Errorf("index chunk %d: %w", chunk.ID, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("embed chunks: %w", errors.Join(errs...))
	}
	return nil
}

func indexEntry(c model.Chunk, vector []float32) index.Entry {
	return index.Entry{ChunkID: c.ID, FileID: c.FileID, ChunkIndex: c.Index, Vector: vector}
}

// IngestBatch ingests the files listed one per line in listPath. Failures
// are per-file; successful files stay ingested.
func (p *Pipeline) IngestBatch(ctx context.Context, listPath string, kind model.FileKind) ([]*IngestResult, []error, error) {
	paths, err := worker.ReadPathsFromFile(listPath)
	if err != nil {
		return nil, nil, err
	}

	var results []*IngestResult
	var failures []error
	for _, path := range paths {
		if ctx.Err() != nil {
			return results, failures, ctx.Err()
		}
		result, err := p.IngestFile(ctx, path, kind)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", path, err))
			continue
		}
		results = append(results, result)
	}
	return results, failures, nil
}
