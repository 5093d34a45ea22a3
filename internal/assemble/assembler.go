// Package assemble packs retrieved chunks into a bounded prompt context.
package assemble

import (
	"github.com/mediamind/mediamind/internal/model"
)

// Assembler selects which ranked candidates fit the context budget
type Assembler struct {
	maxTokens int
}

// New creates an assembler with the given token budget. maxTokens <= 0
// falls back to 3000.
func New(maxTokens int) *Assembler {
	if maxTokens <= 0 {
		maxTokens = 3000
	}
	return &Assembler{maxTokens: maxTokens}
}

// EstimateTokens approximates the token count of text. The real tokenizer is
// model-specific; four characters per token is close enough for budgeting.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// Pack greedily takes candidates in rank order until the budget is spent.
// A candidate that does not fit is skipped, never truncated, except when the
// top candidate alone exceeds the whole budget: then it is cut to the budget
// so the best evidence is never dropped entirely.
func (a *Assembler) Pack(candidates []model.ScoredChunk) []model.ScoredChunk {
	if len(candidates) == 0 {
		return nil
	}

	var used []model.ScoredChunk
	remaining := a.maxTokens
	for _, c := range candidates {
		cost := EstimateTokens(c.Chunk.Text)
		if cost > remaining {
			if len(used) == 0 {
				truncated := c
				truncated.Chunk.Text = c.Chunk.Text[:a.maxTokens*4]
				truncated.Chunk.CharEnd = truncated.Chunk.CharStart + len(truncated.Chunk.Text)
				used = append(used, truncated)
				remaining = 0
			}
			continue
		}
		used = append(used, c)
		remaining -= cost
	}
	return used
}
