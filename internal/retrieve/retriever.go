// Package retrieve turns a question into a ranked set of candidate chunks.
package retrieve

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mediamind/mediamind/internal/index"
	"github.com/mediamind/mediamind/internal/llm"
	"github.com/mediamind/mediamind/internal/model"
	"github.com/mediamind/mediamind/internal/store"
)

// Retriever embeds a question and ranks stored chunks against it
type Retriever struct {
	embedder llm.Embedder
	index    *index.Index
	store    store.Store
	topK     int
	verbose  bool
}

// New creates a retriever. topK <= 0 falls back to 5.
func New(embedder llm.Embedder, idx *index.Index, st store.Store, topK int, verbose bool) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		embedder: embedder,
		index:    idx,
		store:    st,
		topK:     topK,
		verbose:  verbose,
	}
}

// Retrieve returns the top-k chunks most similar to the question, sorted by
// non-increasing score. A fileScope > 0 restricts candidates to that file.
// Returns model.ErrEmptyCorpus when nothing in scope has been embedded.
func (r *Retriever) Retrieve(ctx context.Context, question string, fileScope int64) (*model.RetrievalResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, &model.InvalidParameterError{Param: "question", Reason: "must not be empty"}
	}

	count, err := r.store.CountEmbeddings(ctx, fileScope)
	if err != nil {
		return nil, fmt.Errorf("count embeddings: %w", err)
	}
	if count == 0 {
		return nil, model.ErrEmptyCorpus
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	matches, err := r.index.Query(vector, r.topK, fileScope)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	if len(matches) == 0 {
		return nil, model.ErrEmptyCorpus
	}

	result := &model.RetrievalResult{Query: question}
	for _, m := range matches {
		chunk, err := r.store.GetChunk(ctx, m.ChunkID)
		if err == store.ErrNotFound {
			// Index entry outlived its chunk; prune it and move on
			r.logf("dropping dangling index entry for chunk %d", m.ChunkID)
			r.index.Remove(m.ChunkID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load chunk %d: %w", m.ChunkID, err)
		}
		result.Candidates = append(result.Candidates, model.ScoredChunk{
			Chunk: *chunk,
			Score: m.Score,
		})
	}

	r.logf("retrieved %d candidates for %q", len(result.Candidates), question)
	return result, nil
}

func (r *Retriever) logf(format string, args ...any) {
	if r.verbose {
		fmt.Fprintf(os.Stderr, "[retrieve] "+format+"\n", args...)
	}
}
