// Package score derives a confidence value for a generated answer from the
// retrieval evidence that produced it.
package score

import (
	"github.com/mediamind/mediamind/internal/model"
)

// DefaultInsufficientCeiling caps confidence when the model declared the
// context insufficient. Tuned empirically, not derived.
const DefaultInsufficientCeiling = 0.2

// Scorer computes answer confidence from the similarity scores of the chunks
// actually packed into the prompt
type Scorer struct {
	insufficientCeiling float64
}

// NewScorer creates a scorer. A ceiling <= 0 falls back to the default.
func NewScorer(insufficientCeiling float64) *Scorer {
	if insufficientCeiling <= 0 {
		insufficientCeiling = DefaultInsufficientCeiling
	}
	return &Scorer{insufficientCeiling: insufficientCeiling}
}

// Confidence returns the mean similarity of the used chunks, clamped to
// [0,1]. No used chunks means zero confidence. When the answer declared the
// context insufficient, the result is capped at the ceiling regardless of
// how similar the retrieved chunks were.
func (s *Scorer) Confidence(used []model.ScoredChunk, insufficient bool) float64 {
	if len(used) == 0 {
		return 0
	}

	var sum float64
	for _, c := range used {
		sum += c.Score
	}
	confidence := sum / float64(len(used))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	if insufficient && confidence > s.insufficientCeiling {
		confidence = s.insufficientCeiling
	}
	return confidence
}

// Level maps a confidence value to a coarse label for display
func Level(confidence float64) string {
	switch {
	case confidence >= 0.75:
		return "high"
	case confidence >= 0.45:
		return "medium"
	default:
		return "low"
	}
}
