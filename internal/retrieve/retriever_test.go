package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/mediamind/mediamind/internal/index"
	"github.com/mediamind/mediamind/internal/model"
	"github.com/mediamind/mediamind/internal/store"
)

// fixedEmbedder returns a preset vector for every input
type fixedEmbedder struct {
	vector []float32
}

func (e *fixedEmbedder) Model() string { return "test-model" }

func (e *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.vector, nil
}

func (e *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vector
	}
	return out, nil
}

// seedCorpus stores one file with three chunks and indexes their vectors
func seedCorpus(t *testing.T, st store.Store, idx *index.Index) []model.Chunk {
	t.Helper()
	ctx := context.Background()

	file, err := st.CreateFile(ctx, "notes.txt", model.FileKindDocument)
	if err != nil {
		t.Fatalf("CreateFile: %v", err)
	}
	chunks, err := st.InsertChunks(ctx, file.ID, []model.Chunk{
		{Index: 0, Text: "Revenue grew in the first quarter."},
		{Index: 1, Text: "The team shipped the new parser."},
		{Index: 2, Text: "Hiring slowed toward year end."},
	})
	if err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}

	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	}
	for i, c := range chunks {
		if err := st.PutEmbedding(ctx, c.ID, "test-model", vectors[i]); err != nil {
			t.Fatalf("PutEmbedding: %v", err)
		}
		if err := idx.Upsert(index.Entry{ChunkID: c.ID, FileID: file.ID, ChunkIndex: c.Index, Vector: vectors[i]}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	return chunks
}

func TestRetriever_RanksBySimilarity(t *testing.T) {
	st := store.NewMemoryStore()
	idx := index.New()
	chunks := seedCorpus(t, st, idx)

	r := New(&fixedEmbedder{vector: []float32{1, 0, 0}}, idx, st, 2, false)
	result, err := r.Retrieve(context.Background(), "what happened to revenue?", 0)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(result.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(result.Candidates))
	}
	if result.Candidates[0].Chunk.ID != chunks[0].ID {
		t.Errorf("expected chunk %d first, got %d", chunks[0].ID, result.Candidates[0].Chunk.ID)
	}
	if result.Candidates[0].Score < result.Candidates[1].Score {
		t.Error("candidates not sorted by non-increasing score")
	}
	if result.Candidates[0].Chunk.Text == "" {
		t.Error("candidate chunk text not loaded from store")
	}
}

func TestRetriever_EmptyCorpus(t *testing.T) {
	st := store.NewMemoryStore()
	idx := index.New()

	r := New(&fixedEmbedder{vector: []float32{1, 0, 0}}, idx, st, 5, false)
	if _, err := r.Retrieve(context.Background(), "anything", 0); !errors.Is(err, model.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestRetriever_EmptyScopedFile(t *testing.T) {
	st := store.NewMemoryStore()
	idx := index.New()
	seedCorpus(t, st, idx)

	// A file id with no embeddings behaves like an empty corpus
	r := New(&fixedEmbedder{vector: []float32{1, 0, 0}}, idx, st, 5, false)
	if _, err := r.Retrieve(context.Background(), "anything", 999); !errors.Is(err, model.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus for out-of-scope file, got %v", err)
	}
}

func TestRetriever_RejectsBlankQuestion(t *testing.T) {
	st := store.NewMemoryStore()
	idx := index.New()

	r := New(&fixedEmbedder{vector: []float32{1, 0, 0}}, idx, st, 5, false)
	var invalid *model.InvalidParameterError
	if _, err := r.Retrieve(context.Background(), "   ", 0); !errors.As(err, &invalid) {
		t.Errorf("expected InvalidParameterError, got %v", err)
	}
}

func TestRetriever_SkipsDanglingIndexEntries(t *testing.T) {
	st := store.NewMemoryStore()
	idx := index.New()
	chunks := seedCorpus(t, st, idx)

	// Leave the index stale: an entry whose chunk no longer exists
	if err := idx.Upsert(index.Entry{ChunkID: 9999, FileID: 1, ChunkIndex: 99, Vector: []float32{1, 0, 0}}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	r := New(&fixedEmbedder{vector: []float32{1, 0, 0}}, idx, st, 4, false)
	result, err := r.Retrieve(context.Background(), "revenue", 0)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for _, c := range result.Candidates {
		if c.Chunk.ID == 9999 {
			t.Error("dangling entry surfaced as a candidate")
		}
	}
	if len(result.Candidates) != len(chunks) {
		t.Errorf("expected %d live candidates, got %d", len(chunks), len(result.Candidates))
	}
}
