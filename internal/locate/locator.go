// Package locate maps answer text back to transcript time intervals using
// fuzzy token overlap. The matching is heuristic: generated answers
// paraphrase the transcript, so exact substring search would find nothing.
package locate

import (
	"sort"
	"strings"

	"github.com/mediamind/mediamind/internal/model"
)

// Locator finds the transcript intervals whose wording overlaps a text
type Locator struct {
	threshold  float64
	maxWindow  int
	gapSeconds float64
}

// New creates a locator from configuration. Out-of-range values fall back to
// the defaults (threshold 0.3, window 5, gap 2 seconds).
func New(cfg model.LocatorConfig) *Locator {
	l := &Locator{
		threshold:  cfg.Threshold,
		maxWindow:  cfg.MaxWindow,
		gapSeconds: cfg.GapSeconds,
	}
	if l.threshold <= 0 || l.threshold > 1 {
		l.threshold = 0.3
	}
	if l.maxWindow <= 0 {
		l.maxWindow = 5
	}
	if l.gapSeconds < 0 {
		l.gapSeconds = 2.0
	}
	return l
}

// candidate is one window of consecutive segments scored against the query
type candidate struct {
	first, last int // Segment indices, inclusive
	similarity  float64
}

// Locate returns the timestamp spans whose transcript wording overlaps text
// at or above the similarity threshold. Spans are disjoint; nearby spans are
// merged first, then the result is ordered by descending similarity so the
// strongest match comes first. No match returns an empty result, never an
// error.
func (l *Locator) Locate(text string, segments []model.TranscriptSegment) []model.TimestampSpan {
	query := tokenSet(text)
	if len(query) == 0 || len(segments) == 0 {
		return nil
	}

	segTokens := make([][]string, len(segments))
	for i, s := range segments {
		segTokens[i] = tokens(s.Text)
	}

	var candidates []candidate
	for first := range segments {
		window := make(map[string]struct{})
		for last := first; last < len(segments) && last-first < l.maxWindow; last++ {
			for _, t := range segTokens[last] {
				window[t] = struct{}{}
			}
			if sim := jaccard(query, window); sim >= l.threshold {
				candidates = append(candidates, candidate{first: first, last: last, similarity: sim})
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Best candidates claim their segments first; overlapping weaker
	// windows are discarded
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		if candidates[i].first != candidates[j].first {
			return candidates[i].first < candidates[j].first
		}
		return candidates[i].last < candidates[j].last
	})

	claimed := make([]bool, len(segments))
	var picked []candidate
	for _, c := range candidates {
		free := true
		for i := c.first; i <= c.last; i++ {
			if claimed[i] {
				free = false
				break
			}
		}
		if !free {
			continue
		}
		for i := c.first; i <= c.last; i++ {
			claimed[i] = true
		}
		picked = append(picked, c)
	}

	// Merging needs start order; the caller-facing order is by similarity
	sort.Slice(picked, func(i, j int) bool { return picked[i].first < picked[j].first })

	spans := make([]model.TimestampSpan, 0, len(picked))
	for _, c := range picked {
		spans = append(spans, l.span(c, segments))
	}
	merged := l.merge(spans)

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Similarity != merged[j].Similarity {
			return merged[i].Similarity > merged[j].Similarity
		}
		return merged[i].Start < merged[j].Start
	})
	return merged
}

func (l *Locator) span(c candidate, segments []model.TranscriptSegment) model.TimestampSpan {
	parts := make([]string, 0, c.last-c.first+1)
	for i := c.first; i <= c.last; i++ {
		parts = append(parts, strings.TrimSpace(segments[i].Text))
	}
	start := segments[c.first].Start
	end := segments[c.last].End
	return model.TimestampSpan{
		Start:          start,
		End:            end,
		Text:           strings.Join(parts, " "),
		Similarity:     c.similarity,
		FormattedStart: FormatTimestamp(start),
		FormattedEnd:   FormatTimestamp(end),
	}
}

// merge joins spans separated by at most the configured gap. The merged span
// keeps the higher similarity of its parts.
func (l *Locator) merge(spans []model.TimestampSpan) []model.TimestampSpan {
	if len(spans) < 2 {
		return spans
	}
	out := []model.TimestampSpan{spans[0]}
	for _, s := range spans[1:] {
		prev := &out[len(out)-1]
		if s.Start-prev.End <= l.gapSeconds {
			prev.End = s.End
			prev.Text = prev.Text + " " + s.Text
			if s.Similarity > prev.Similarity {
				prev.Similarity = s.Similarity
			}
			prev.FormattedEnd = FormatTimestamp(prev.End)
			continue
		}
		out = append(out, s)
	}
	return out
}

// tokens normalizes text to lowercase alphanumeric words
func tokens(text string) []string {
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return ' '
		}
	}, text)
	return strings.Fields(normalized)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokens(text) {
		set[t] = struct{}{}
	}
	return set
}

// jaccard computes intersection-over-union of two token sets
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
