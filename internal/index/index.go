// Package index implements the in-process vector index used for retrieval.
//
// Readers never lock: Query loads the current immutable snapshot through an
// atomic pointer. Every mutation (upsert, remove, rebuild) copies the
// snapshot and swaps the pointer, so concurrent queries observe either the
// old or the new index in full, never a partially-updated one.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// Entry is one indexed vector with the metadata needed for exact scope
// filtering and deterministic tie-breaking.
type Entry struct {
	ChunkID    int64
	FileID     int64
	ChunkIndex int
	Vector     []float32
}

// Match is one query result
type Match struct {
	ChunkID    int64
	FileID     int64
	ChunkIndex int
	Score      float64 // Cosine similarity clamped to [0,1]
}

type snapshot struct {
	dim     int
	entries []Entry       // Vectors are stored L2-normalized
	byID    map[int64]int // chunk id -> position in entries
}

func emptySnapshot() *snapshot {
	return &snapshot{byID: make(map[int64]int)}
}

// Index answers k-nearest-neighbor queries over chunk embeddings
type Index struct {
	mu   sync.Mutex // Serializes writers only
	snap atomic.Pointer[snapshot]
}

// New creates an empty index
func New() *Index {
	idx := &Index{}
	idx.snap.Store(emptySnapshot())
	return idx
}

// Len returns the number of indexed vectors
func (x *Index) Len() int {
	return len(x.snap.Load().entries)
}

// Upsert adds or replaces the vector for a chunk
func (x *Index) Upsert(e Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	cur := x.snap.Load()
	if cur.dim != 0 && len(e.Vector) != cur.dim {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(e.Vector), cur.dim)
	}

	next := cur.clone()
	if next.dim == 0 {
		next.dim = len(e.Vector)
	}
	e.Vector = normalize(e.Vector)
	if pos, ok := next.byID[e.ChunkID]; ok {
		next.entries[pos] = e
	} else {
		next.byID[e.ChunkID] = len(next.entries)
		next.entries = append(next.entries, e)
	}
	x.snap.Store(next)
	return nil
}

// Remove deletes a chunk's vector. Removing an absent id is a no-op, which
// makes pruning dangling references after chunk deletion unconditional.
func (x *Index) Remove(chunkID int64) {
	x.mu.Lock()
	defer x.mu.Unlock()

	cur := x.snap.Load()
	if _, ok := cur.byID[chunkID]; !ok {
		return
	}
	next := emptySnapshot()
	next.dim = cur.dim
	for _, e := range cur.entries {
		if e.ChunkID == chunkID {
			continue
		}
		next.byID[e.ChunkID] = len(next.entries)
		next.entries = append(next.entries, e)
	}
	x.snap.Store(next)
}

// RemoveFile deletes every vector owned by a file (cascading file deletion)
func (x *Index) RemoveFile(fileID int64) {
	x.mu.Lock()
	defer x.mu.Unlock()

	cur := x.snap.Load()
	next := emptySnapshot()
	next.dim = cur.dim
	for _, e := range cur.entries {
		if e.FileID == fileID {
			continue
		}
		next.byID[e.ChunkID] = len(next.entries)
		next.entries = append(next.entries, e)
	}
	x.snap.Store(next)
}

// Rebuild replaces the whole index with the given entries in one swap.
// Rebuilding from the same entries is idempotent, and queries in flight see
// either the pre-rebuild or post-rebuild index, never a mix.
func (x *Index) Rebuild(entries []Entry) error {
	next := emptySnapshot()
	for _, e := range entries {
		if next.dim == 0 {
			next.dim = len(e.Vector)
		} else if len(e.Vector) != next.dim {
			return fmt.Errorf("vector dimension %d does not match index dimension %d", len(e.Vector), next.dim)
		}
		e.Vector = normalize(e.Vector)
		if pos, ok := next.byID[e.ChunkID]; ok {
			next.entries[pos] = e
		} else {
			next.byID[e.ChunkID] = len(next.entries)
			next.entries = append(next.entries, e)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.snap.Store(next)
	return nil
}

// Query returns the k most similar entries, sorted by non-increasing score.
// Equal scores order by ascending chunk index, then chunk id, so identical
// input state always yields identical rankings. A fileScope > 0 restricts
// candidates to that file exactly. An empty index returns an empty result.
func (x *Index) Query(vector []float32, k int, fileScope int64) ([]Match, error) {
	snap := x.snap.Load()
	if len(snap.entries) == 0 || k <= 0 {
		return nil, nil
	}
	if len(vector) != snap.dim {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", len(vector), snap.dim)
	}

	q := normalize(vector)
	matches := make([]Match, 0, len(snap.entries))
	for _, e := range snap.entries {
		if fileScope > 0 && e.FileID != fileScope {
			continue
		}
		matches = append(matches, Match{
			ChunkID:    e.ChunkID,
			FileID:     e.FileID,
			ChunkIndex: e.ChunkIndex,
			Score:      clamp01(dot(q, e.Vector)),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].ChunkIndex != matches[j].ChunkIndex {
			return matches[i].ChunkIndex < matches[j].ChunkIndex
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *snapshot) clone() *snapshot {
	next := &snapshot{
		dim:     s.dim,
		entries: make([]Entry, len(s.entries)),
		byID:    make(map[int64]int, len(s.byID)),
	}
	copy(next.entries, s.entries)
	for id, pos := range s.byID {
		next.byID[id] = pos
	}
	return next
}

// normalize returns an L2-normalized copy so cosine similarity reduces to a
// dot product at query time
func normalize(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
