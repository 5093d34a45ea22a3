// Package store persists files, chunks, embeddings and transcript segments.
// The answering core reads from it; only the ingestion pipeline writes.
package store

import (
	"context"
	"encoding/binary"
	"errors"
	"math"

	"github.com/mediamind/mediamind/internal/model"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Embedding is one stored chunk vector with the metadata the index needs
type Embedding struct {
	ChunkID    int64
	FileID     int64
	ChunkIndex int
	Model      string
	Vector     []float32
}

// Store is the persistent chunk/transcript store
type Store interface {
	// Files
	CreateFile(ctx context.Context, name string, kind model.FileKind) (*model.File, error)
	GetFile(ctx context.Context, id int64) (*model.File, error)
	ListFiles(ctx context.Context) ([]model.File, error)
	// DeleteFile cascades to chunks, embeddings and segments
	DeleteFile(ctx context.Context, id int64) error

	// Chunks. InsertChunks assigns ids and returns the stored chunks;
	// existing chunks of the file are removed first (re-ingestion
	// supersedes, it never mutates).
	InsertChunks(ctx context.Context, fileID int64, chunks []model.Chunk) ([]model.Chunk, error)
	GetChunk(ctx context.Context, id int64) (*model.Chunk, error)
	ChunksByFile(ctx context.Context, fileID int64) ([]model.Chunk, error)
	CountChunks(ctx context.Context, fileScope int64) (int, error)

	// Embeddings, owned 1:1 by chunks
	PutEmbedding(ctx context.Context, chunkID int64, embeddingModel string, vector []float32) error
	AllEmbeddings(ctx context.Context) ([]Embedding, error)
	CountEmbeddings(ctx context.Context, fileScope int64) (int, error)

	// Transcript segments
	ReplaceSegments(ctx context.Context, fileID int64, segments []model.TranscriptSegment) error
	SegmentsByFile(ctx context.Context, fileID int64) ([]model.TranscriptSegment, error)

	Close() error
}

// encodeVector packs a float32 vector as little-endian bytes for BLOB storage
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a BLOB produced by encodeVector
func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
