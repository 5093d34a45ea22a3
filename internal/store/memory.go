package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mediamind/mediamind/internal/model"
)

// MemoryStore is an in-memory Store used in tests and throwaway sessions
type MemoryStore struct {
	mu         sync.RWMutex
	nextFileID int64
	nextChunk  int64
	files      map[int64]model.File
	chunks     map[int64]model.Chunk
	embeddings map[int64]Embedding // keyed by chunk id
	segments   map[int64][]model.TranscriptSegment
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files:      make(map[int64]model.File),
		chunks:     make(map[int64]model.Chunk),
		embeddings: make(map[int64]Embedding),
		segments:   make(map[int64][]model.TranscriptSegment),
	}
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error { return nil }

// CreateFile inserts a new file record
func (s *MemoryStore) CreateFile(_ context.Context, name string, kind model.FileKind) (*model.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFileID++
	f := model.File{ID: s.nextFileID, Name: name, Kind: kind}
	s.files[f.ID] = f
	return &f, nil
}

// GetFile fetches a file by id
func (s *MemoryStore) GetFile(_ context.Context, id int64) (*model.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

// ListFiles returns all files ordered by id
func (s *MemoryStore) ListFiles(_ context.Context) ([]model.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]model.File, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID < files[j].ID })
	return files, nil
}

// DeleteFile removes a file and cascades to chunks, embeddings and segments
func (s *MemoryStore) DeleteFile(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return ErrNotFound
	}
	delete(s.files, id)
	delete(s.segments, id)
	for cid, c := range s.chunks {
		if c.FileID == id {
			delete(s.chunks, cid)
			delete(s.embeddings, cid)
		}
	}
	return nil
}

// InsertChunks replaces the chunk set of a file and assigns fresh ids
func (s *MemoryStore) InsertChunks(_ context.Context, fileID int64, chunks []model.Chunk) ([]model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cid, c := range s.chunks {
		if c.FileID == fileID {
			delete(s.chunks, cid)
			delete(s.embeddings, cid)
		}
	}
	stored := make([]model.Chunk, 0, len(chunks))
	for _, c := range chunks {
		s.nextChunk++
		c.ID = s.nextChunk
		c.FileID = fileID
		s.chunks[c.ID] = c
		stored = append(stored, c)
	}
	return stored, nil
}

// GetChunk fetches one chunk by id
func (s *MemoryStore) GetChunk(_ context.Context, id int64) (*model.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chunks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

// ChunksByFile returns a file's chunks in sequence order
func (s *MemoryStore) ChunksByFile(_ context.Context, fileID int64) ([]model.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []model.Chunk
	for _, c := range s.chunks {
		if c.FileID == fileID {
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// CountChunks counts chunks, optionally scoped to one file
func (s *MemoryStore) CountChunks(_ context.Context, fileScope int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if fileScope <= 0 {
		return len(s.chunks), nil
	}
	n := 0
	for _, c := range s.chunks {
		if c.FileID == fileScope {
			n++
		}
	}
	return n, nil
}

// PutEmbedding stores or replaces the vector for a chunk
func (s *MemoryStore) PutEmbedding(_ context.Context, chunkID int64, embeddingModel string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[chunkID]
	if !ok {
		return ErrNotFound
	}
	v := make([]float32, len(vector))
	copy(v, vector)
	s.embeddings[chunkID] = Embedding{
		ChunkID:    chunkID,
		FileID:     c.FileID,
		ChunkIndex: c.Index,
		Model:      embeddingModel,
		Vector:     v,
	}
	return nil
}

// AllEmbeddings returns every stored vector with chunk metadata
func (s *MemoryStore) AllEmbeddings(_ context.Context) ([]Embedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Embedding, 0, len(s.embeddings))
	for _, e := range s.embeddings {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkID < out[j].ChunkID })
	return out, nil
}

// CountEmbeddings counts stored vectors, optionally scoped to one file
func (s *MemoryStore) CountEmbeddings(_ context.Context, fileScope int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if fileScope <= 0 {
		return len(s.embeddings), nil
	}
	n := 0
	for _, e := range s.embeddings {
		if e.FileID == fileScope {
			n++
		}
	}
	return n, nil
}

// ReplaceSegments replaces a file's transcript segments
func (s *MemoryStore) ReplaceSegments(_ context.Context, fileID int64, segments []model.TranscriptSegment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	segs := make([]model.TranscriptSegment, len(segments))
	copy(segs, segments)
	s.segments[fileID] = segs
	return nil
}

// SegmentsByFile returns a file's transcript in time order
func (s *MemoryStore) SegmentsByFile(_ context.Context, fileID int64) ([]model.TranscriptSegment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	segs := make([]model.TranscriptSegment, len(s.segments[fileID]))
	copy(segs, s.segments[fileID])
	return segs, nil
}
