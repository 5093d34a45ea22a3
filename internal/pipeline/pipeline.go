// Package pipeline orchestrates ingestion, retrieval and answer generation.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mediamind/mediamind/internal/answer"
	"github.com/mediamind/mediamind/internal/assemble"
	"github.com/mediamind/mediamind/internal/cache"
	"github.com/mediamind/mediamind/internal/chunker"
	"github.com/mediamind/mediamind/internal/extract"
	"github.com/mediamind/mediamind/internal/index"
	"github.com/mediamind/mediamind/internal/llm"
	"github.com/mediamind/mediamind/internal/locate"
	"github.com/mediamind/mediamind/internal/model"
	"github.com/mediamind/mediamind/internal/retrieve"
	"github.com/mediamind/mediamind/internal/score"
	"github.com/mediamind/mediamind/internal/store"
	"github.com/mediamind/mediamind/internal/worker"
)

// sourcePreviewLen bounds the chunk text echoed in answer sources
const sourcePreviewLen = 200

// Pipeline wires the store, index, providers and the answering core
type Pipeline struct {
	config     *model.Config
	store      store.Store
	index      *index.Index
	chunker    *chunker.Chunker
	registry   *extract.Registry
	loader     *Loader
	embedder   llm.Embedder
	provider   llm.Provider
	retriever  *retrieve.Retriever
	assembler  *assemble.Assembler
	synth      *answer.Synthesizer
	summarizer *answer.Summarizer
	scorer     *score.Scorer
	locator    *locate.Locator
	limiter    *worker.Limiter
}

// NewPipeline creates a pipeline with the given configuration. The vector
// index is rebuilt from stored embeddings so answers are available right
// after startup.
func NewPipeline(ctx context.Context, cfg *model.Config) (*Pipeline, error) {
	st, err := store.OpenSQLite(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return newPipeline(ctx, cfg, st)
}

// NewPipelineWithStore creates a pipeline on an existing store. Used by
// tests and by callers managing store lifecycle themselves.
func NewPipelineWithStore(ctx context.Context, cfg *model.Config, st store.Store) (*Pipeline, error) {
	return newPipeline(ctx, cfg, st)
}

func newPipeline(ctx context.Context, cfg *model.Config, st store.Store) (*Pipeline, error) {
	ck, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap, cfg.Chunking.Strategy)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewEmbedder(llm.ConfigFromEmbedding(cfg.Embedding))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	if cfg.Cache.Enabled {
		embedder = llm.NewCachingEmbedder(embedder, newEmbeddingCache(cfg.Cache))
	}

	provider, err := llm.NewProvider(llm.ConfigFromLLM(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}

	idx := index.New()
	p := &Pipeline{
		config:     cfg,
		store:      st,
		index:      idx,
		chunker:    ck,
		registry:   extract.NewRegistry(),
		loader:     NewLoader(0),
		embedder:   embedder,
		provider:   provider,
		retriever:  retrieve.New(embedder, idx, st, cfg.Retrieval.TopK, cfg.Output.Verbose),
		assembler:  assemble.New(cfg.Retrieval.MaxContextTokens),
		synth:      answer.NewSynthesizer(provider, cfg.LLM),
		summarizer: answer.NewSummarizer(provider, cfg.LLM),
		scorer:     score.NewScorer(0),
		locator:    locate.New(cfg.Locator),
		limiter:    worker.NewLimiter(cfg.Embedding.RateLimit, 0),
	}

	if err := p.RebuildIndex(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("rebuild index: %w", err)
	}
	return p, nil
}

// newEmbeddingCache builds the cache stack: memory only, or memory over disk
// when a cache directory is configured
func newEmbeddingCache(cfg model.CacheConfig) cache.Cache {
	if cfg.Dir != "" {
		return cache.NewLayeredCache(cfg.TTL, cfg.Dir, cfg.TTL)
	}
	return cache.NewMemoryCache(cfg.TTL, 10*time.Minute)
}

// Close releases the underlying store
func (p *Pipeline) Close() error {
	return p.store.Close()
}

// RebuildIndex reconstructs the vector index from every stored embedding.
// Queries in flight see either the old or new index, never a mix.
func (p *Pipeline) RebuildIndex(ctx context.Context) error {
	embeddings, err := p.store.AllEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("load embeddings: %w", err)
	}

	entries := make([]index.Entry, 0, len(embeddings))
	for _, e := range embeddings {
		entries = append(entries, index.Entry{
			ChunkID:    e.ChunkID,
			FileID:     e.FileID,
			ChunkIndex: e.ChunkIndex,
			Vector:     e.Vector,
		})
	}
	if err := p.index.Rebuild(entries); err != nil {
		return err
	}
	p.logf("index rebuilt with %d vectors", len(entries))
	return nil
}

// AnswerQuestion runs the full answering flow: retrieve, pack, synthesize,
// score, annotate.
func (p *Pipeline) AnswerQuestion(ctx context.Context, question string, fileScope int64) (*model.AnswerRecord, error) {
	retrieval, used, err := p.prepare(ctx, question, fileScope)
	if err != nil {
		return nil, err
	}

	result, err := p.synth.Synthesize(ctx, question, used)
	if err != nil {
		return nil, err
	}

	return p.buildRecord(ctx, retrieval.Query, result.Text, result.Insufficient, result.Model, used)
}

// AnswerQuestionStream is AnswerQuestion with incremental delivery: onDelta
// is called for each partial text fragment before the final record returns.
func (p *Pipeline) AnswerQuestionStream(ctx context.Context, question string, fileScope int64, onDelta func(string)) (*model.AnswerRecord, error) {
	retrieval, used, err := p.prepare(ctx, question, fileScope)
	if err != nil {
		return nil, err
	}

	events, err := p.synth.SynthesizeStream(ctx, question, used)
	if err != nil {
		return nil, err
	}

	var final *answer.Event
	for ev := range events {
		switch ev.Type {
		case answer.EventPartial:
			if onDelta != nil {
				onDelta(ev.Delta)
			}
		case answer.EventFinal:
			cp := ev
			final = &cp
		case answer.EventError:
			return nil, ev.Err
		}
	}
	if final == nil {
		// Cancelled before a terminal event arrived
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &model.SynthesisError{Err: fmt.Errorf("stream ended without a final answer")}
	}

	return p.buildRecord(ctx, retrieval.Query, final.Answer, final.Insufficient, p.config.LLM.Model, used)
}

// Search returns the ranked candidates for a query without invoking the LLM
func (p *Pipeline) Search(ctx context.Context, query string, fileScope int64) (*model.RetrievalResult, error) {
	return p.retriever.Retrieve(ctx, query, fileScope)
}

// LocateText maps free text to timestamp spans in a media file's transcript
func (p *Pipeline) LocateText(ctx context.Context, fileID int64, text string) ([]model.TimestampSpan, error) {
	file, err := p.store.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("load file %d: %w", fileID, err)
	}
	if !file.Kind.HasTranscript() {
		return nil, &model.InvalidParameterError{Param: "file", Reason: fmt.Sprintf("%s is a %s, not transcribed media", file.Name, file.Kind)}
	}

	segments, err := p.store.SegmentsByFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("load segments: %w", err)
	}
	return p.locator.Locate(text, segments), nil
}

// ListFiles returns every ingested file
func (p *Pipeline) ListFiles(ctx context.Context) ([]model.File, error) {
	return p.store.ListFiles(ctx)
}

// DeleteFile removes a file with its chunks, embeddings and segments, and
// prunes the index
func (p *Pipeline) DeleteFile(ctx context.Context, fileID int64) error {
	if err := p.store.DeleteFile(ctx, fileID); err != nil {
		return err
	}
	p.index.RemoveFile(fileID)
	return nil
}

// prepare runs retrieval and context packing, shared by both answer paths
func (p *Pipeline) prepare(ctx context.Context, question string, fileScope int64) (*model.RetrievalResult, []model.ScoredChunk, error) {
	retrieval, err := p.retriever.Retrieve(ctx, question, fileScope)
	if err != nil {
		return nil, nil, err
	}
	used := p.assembler.Pack(retrieval.Candidates)
	p.logf("packed %d of %d candidates into context", len(used), len(retrieval.Candidates))
	return retrieval, used, nil
}

// buildRecord assembles the final answer record, annotating media sources
// with timestamp spans
func (p *Pipeline) buildRecord(ctx context.Context, question, text string, insufficient bool, modelName string, used []model.ScoredChunk) (*model.AnswerRecord, error) {
	record := &model.AnswerRecord{
		ID:           uuid.NewString(),
		Question:     question,
		Answer:       text,
		Confidence:   p.scorer.Confidence(used, insufficient),
		ChunksUsed:   len(used),
		Model:        modelName,
		Insufficient: insufficient,
	}

	segmentsByFile := make(map[int64][]model.TranscriptSegment)
	for _, c := range used {
		source := model.Source{
			ChunkID:    c.Chunk.ID,
			FileID:     c.Chunk.FileID,
			ChunkIndex: c.Chunk.Index,
			Preview:    preview(c.Chunk.Text),
			Score:      c.Score,
			Page:       c.Chunk.Page,
		}

		segments, err := p.segmentsFor(ctx, c.Chunk.FileID, segmentsByFile)
		if err != nil {
			return nil, err
		}
		if len(segments) > 0 {
			source.Timestamps = p.locator.Locate(c.Chunk.Text, segments)
		}

		record.Sources = append(record.Sources, source)
	}

	record.Timestamps = mergeSpans(record.Sources)
	return record, nil
}

// segmentsFor loads a file's transcript segments once per answer. Document
// files resolve to nil.
func (p *Pipeline) segmentsFor(ctx context.Context, fileID int64, loaded map[int64][]model.TranscriptSegment) ([]model.TranscriptSegment, error) {
	if segments, ok := loaded[fileID]; ok {
		return segments, nil
	}

	file, err := p.store.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("load file %d: %w", fileID, err)
	}

	var segments []model.TranscriptSegment
	if file.Kind.HasTranscript() {
		segments, err = p.store.SegmentsByFile(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("load segments for file %d: %w", fileID, err)
		}
	}
	loaded[fileID] = segments
	return segments, nil
}

// mergeSpans unions the per-source spans, deduplicated and sorted by start
func mergeSpans(sources []model.Source) []model.TimestampSpan {
	type key struct {
		fileID     int64
		start, end float64
	}
	seen := make(map[key]bool)
	var spans []model.TimestampSpan
	for _, s := range sources {
		for _, span := range s.Timestamps {
			k := key{fileID: s.FileID, start: span.Start, end: span.End}
			if seen[k] {
				continue
			}
			seen[k] = true
			spans = append(spans, span)
		}
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End < spans[j].End
	})
	return spans
}

func preview(text string) string {
	if len(text) <= sourcePreviewLen {
		return text
	}
	return text[:sourcePreviewLen] + "..."
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "[pipeline] "+format+"\n", args...)
	}
}
