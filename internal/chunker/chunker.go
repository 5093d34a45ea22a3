// Package chunker splits source text into overlapping, position-tagged
// chunks suitable for embedding and retrieval.
package chunker

import (
	"fmt"

	"github.com/mediamind/mediamind/internal/model"
)

// Chunker splits text according to a configured size, overlap and strategy
type Chunker struct {
	size    int
	overlap int
	chain   []Strategy
}

// New creates a chunker. Size and overlap are character counts; overlap must
// be smaller than size and both must be positive.
func New(size, overlap int, strategy string) (*Chunker, error) {
	if size <= 0 {
		return nil, &model.InvalidParameterError{Param: "chunk_size", Reason: "must be positive"}
	}
	if overlap <= 0 {
		return nil, &model.InvalidParameterError{Param: "chunk_overlap", Reason: "must be positive"}
	}
	if overlap >= size {
		return nil, &model.InvalidParameterError{
			Param:  "chunk_overlap",
			Reason: fmt.Sprintf("must be smaller than chunk_size (%d >= %d)", overlap, size),
		}
	}
	chain, ok := chains[strategy]
	if !ok {
		return nil, &model.InvalidParameterError{
			Param:  "strategy",
			Reason: fmt.Sprintf("unknown strategy %q (supported: fixed, sentence, paragraph)", strategy),
		}
	}
	return &Chunker{size: size, overlap: overlap, chain: chain}, nil
}

// Chunk splits text into chunks. Consecutive chunks share exactly the
// configured overlap: the last overlap characters of chunk i are the first
// overlap characters of chunk i+1. Pages may be nil for unpaginated sources;
// a chunk spanning a page break is tagged with the page containing its
// midpoint. Chunk IDs and FileID are assigned by the store, not here.
func (c *Chunker) Chunk(text string, pages []model.PageBoundary) []model.Chunk {
	if len(text) == 0 {
		return nil
	}

	// The boundary must land in the last quarter of the ideal chunk,
	// otherwise we fall through the chain and finally hard-cut.
	lookback := c.size / 4

	var chunks []model.Chunk
	start := 0
	for start < len(text) {
		end := start + c.size
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.breakBefore(text, end-lookback, end)
		}

		mid := (start + end) / 2
		chunks = append(chunks, model.Chunk{
			Index:     len(chunks),
			Text:      text[start:end],
			CharStart: start,
			CharEnd:   end,
			Page:      pageAt(pages, mid),
		})

		if end >= len(text) {
			break
		}
		next := end - c.overlap
		if next <= start {
			// Pathological input (boundary collapsed onto the previous
			// start). Force progress rather than loop forever.
			next = start + 1
		}
		start = next
	}
	return chunks
}

// breakBefore walks the fallback chain looking for a boundary in (lo, target].
// When every strategy fails it cuts hard at target, which always advances.
func (c *Chunker) breakBefore(text string, lo, target int) int {
	for _, s := range c.chain {
		if bp, ok := s.BreakPoint(text, lo, target); ok && bp > lo {
			return bp
		}
	}
	return target
}

// pageAt returns the page containing the given offset, or 0 without boundaries
func pageAt(pages []model.PageBoundary, offset int) int {
	page := 0
	for _, p := range pages {
		if p.CharStart > offset {
			break
		}
		page = p.Page
	}
	return page
}
