package llm

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/mediamind/mediamind/internal/cache"
)

// CachingEmbedder wraps an Embedder with a byte cache so identical text is
// only embedded once per model. Cache misses fall through to the inner
// embedder; cache failures are ignored (the API result wins).
type CachingEmbedder struct {
	inner Embedder
	cache cache.Cache
}

// NewCachingEmbedder wraps inner with the given cache
func NewCachingEmbedder(inner Embedder, c cache.Cache) *CachingEmbedder {
	return &CachingEmbedder{inner: inner, cache: c}
}

// Model identifies the underlying embedding model
func (e *CachingEmbedder) Model() string {
	return e.inner.Model()
}

// Embed returns the cached vector or embeds and caches it
func (e *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.EmbeddingKey(e.Model(), text)
	if data, ok := e.cache.Get(key); ok {
		return decodeFloats(data), nil
	}

	vector, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	_ = e.cache.Set(key, encodeFloats(vector), 0)
	return vector, nil
}

// EmbedBatch serves cached texts locally and sends only the misses upstream,
// preserving input order in the result
func (e *CachingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		if data, ok := e.cache.Get(cache.EmbeddingKey(e.Model(), t)); ok {
			vectors[i] = decodeFloats(data)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) > 0 {
		fresh, err := e.inner.EmbedBatch(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for j, i := range missIdx {
			vectors[i] = fresh[j]
			_ = e.cache.Set(cache.EmbeddingKey(e.Model(), texts[i]), encodeFloats(fresh[j]), 0)
		}
	}
	return vectors, nil
}

func encodeFloats(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeFloats(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
