package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mediamind/mediamind/internal/model"
)

// Both implementations must satisfy the same contract, so every scenario
// runs against both.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()

	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})

	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("OpenSQLite: %v", err)
		}
		defer func() { _ = s.Close() }()
		fn(t, s)
	})
}

func TestStore_FileLifecycle(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		f, err := s.CreateFile(ctx, "lecture.mp3", model.FileKindAudio)
		if err != nil {
			t.Fatalf("CreateFile: %v", err)
		}
		if f.ID == 0 {
			t.Fatal("expected assigned file id")
		}

		got, err := s.GetFile(ctx, f.ID)
		if err != nil {
			t.Fatalf("GetFile: %v", err)
		}
		if got.Name != "lecture.mp3" || got.Kind != model.FileKindAudio {
			t.Errorf("unexpected file: %+v", got)
		}

		files, err := s.ListFiles(ctx)
		if err != nil {
			t.Fatalf("ListFiles: %v", err)
		}
		if len(files) != 1 {
			t.Errorf("expected 1 file, got %d", len(files))
		}

		if err := s.DeleteFile(ctx, f.ID); err != nil {
			t.Fatalf("DeleteFile: %v", err)
		}
		if _, err := s.GetFile(ctx, f.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := s.DeleteFile(ctx, f.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting twice, got %v", err)
		}
	})
}

func TestStore_ChunksAndEmbeddings(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		f, err := s.CreateFile(ctx, "notes.pdf", model.FileKindDocument)
		if err != nil {
			t.Fatalf("CreateFile: %v", err)
		}

		chunks := []model.Chunk{
			{Index: 0, Text: "first chunk", CharStart: 0, CharEnd: 11, Page: 1},
			{Index: 1, Text: "second chunk", CharStart: 8, CharEnd: 20, Page: 2},
		}
		stored, err := s.InsertChunks(ctx, f.ID, chunks)
		if err != nil {
			t.Fatalf("InsertChunks: %v", err)
		}
		if len(stored) != 2 || stored[0].ID == 0 || stored[1].ID == 0 {
			t.Fatalf("expected assigned chunk ids: %+v", stored)
		}

		got, err := s.GetChunk(ctx, stored[1].ID)
		if err != nil {
			t.Fatalf("GetChunk: %v", err)
		}
		if got.Text != "second chunk" || got.Page != 2 || got.FileID != f.ID {
			t.Errorf("unexpected chunk: %+v", got)
		}

		if err := s.PutEmbedding(ctx, stored[0].ID, "test-model", []float32{0.1, 0.2, 0.3}); err != nil {
			t.Fatalf("PutEmbedding: %v", err)
		}

		n, err := s.CountEmbeddings(ctx, f.ID)
		if err != nil {
			t.Fatalf("CountEmbeddings: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 embedding, got %d", n)
		}

		all, err := s.AllEmbeddings(ctx)
		if err != nil {
			t.Fatalf("AllEmbeddings: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("expected 1 embedding, got %d", len(all))
		}
		e := all[0]
		if e.ChunkID != stored[0].ID || e.FileID != f.ID || e.ChunkIndex != 0 {
			t.Errorf("unexpected embedding metadata: %+v", e)
		}
		if len(e.Vector) != 3 || e.Vector[1] != 0.2 {
			t.Errorf("vector did not round-trip: %v", e.Vector)
		}

		// Re-ingestion supersedes: old chunks and their embeddings go away
		stored2, err := s.InsertChunks(ctx, f.ID, chunks[:1])
		if err != nil {
			t.Fatalf("re-InsertChunks: %v", err)
		}
		if stored2[0].ID == stored[0].ID {
			t.Error("expected fresh chunk ids on re-ingestion")
		}
		if n, _ := s.CountChunks(ctx, f.ID); n != 1 {
			t.Errorf("expected 1 chunk after re-ingestion, got %d", n)
		}
		if n, _ := s.CountEmbeddings(ctx, f.ID); n != 0 {
			t.Errorf("expected embeddings invalidated on re-ingestion, got %d", n)
		}
	})
}

func TestStore_DeleteFileCascades(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		f, _ := s.CreateFile(ctx, "talk.mp4", model.FileKindVideo)
		stored, err := s.InsertChunks(ctx, f.ID, []model.Chunk{
			{Index: 0, Text: "spoken text", CharStart: 0, CharEnd: 11},
		})
		if err != nil {
			t.Fatalf("InsertChunks: %v", err)
		}
		if err := s.PutEmbedding(ctx, stored[0].ID, "m", []float32{1}); err != nil {
			t.Fatalf("PutEmbedding: %v", err)
		}
		if err := s.ReplaceSegments(ctx, f.ID, []model.TranscriptSegment{
			{Start: 0, End: 2.5, Text: "spoken text"},
		}); err != nil {
			t.Fatalf("ReplaceSegments: %v", err)
		}

		if err := s.DeleteFile(ctx, f.ID); err != nil {
			t.Fatalf("DeleteFile: %v", err)
		}

		if _, err := s.GetChunk(ctx, stored[0].ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected chunk cascade-deleted, got %v", err)
		}
		if n, _ := s.CountEmbeddings(ctx, 0); n != 0 {
			t.Errorf("expected embeddings cascade-deleted, got %d", n)
		}
		segs, _ := s.SegmentsByFile(ctx, f.ID)
		if len(segs) != 0 {
			t.Errorf("expected segments cascade-deleted, got %d", len(segs))
		}
	})
}

func TestStore_SegmentsKeepOrder(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		f, _ := s.CreateFile(ctx, "pod.mp3", model.FileKindAudio)
		segs := []model.TranscriptSegment{
			{Start: 0.0, End: 4.2, Text: "welcome to the show"},
			{Start: 4.2, End: 9.8, Text: "today we discuss results"},
			{Start: 9.8, End: 15.0, Text: "thanks for listening"},
		}
		if err := s.ReplaceSegments(ctx, f.ID, segs); err != nil {
			t.Fatalf("ReplaceSegments: %v", err)
		}

		got, err := s.SegmentsByFile(ctx, f.ID)
		if err != nil {
			t.Fatalf("SegmentsByFile: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 segments, got %d", len(got))
		}
		for i := range segs {
			if got[i] != segs[i] {
				t.Errorf("segment %d: got %+v, want %+v", i, got[i], segs[i])
			}
		}
	})
}

func TestVectorCodec_RoundTrip(t *testing.T) {
	in := []float32{0, -1.5, 3.25, 1e-7, 42}
	out := decodeVector(encodeVector(in))
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("element %d: %v != %v", i, in[i], out[i])
		}
	}
}
