package chunker

import (
	"strings"
	"unicode"
)

// Strategy finds the break point that ends the current chunk. Implementations
// search backwards from target (exclusive upper bound of the ideal chunk) and
// report ok=false when no acceptable boundary exists inside the lookback
// window (lo, target].
type Strategy interface {
	Name() string
	BreakPoint(text string, lo, target int) (int, bool)
}

// FixedStrategy breaks at the nearest preceding whitespace so words are not
// split. The whitespace rune stays with the current chunk.
type FixedStrategy struct{}

func (FixedStrategy) Name() string { return "fixed" }

func (FixedStrategy) BreakPoint(text string, lo, target int) (int, bool) {
	for i := target - 1; i > lo; i-- {
		if unicode.IsSpace(rune(text[i])) {
			return i + 1, true
		}
	}
	return 0, false
}

// SentenceStrategy breaks after the nearest preceding sentence terminator
// (., ! or ? followed by whitespace or end of text).
type SentenceStrategy struct{}

func (SentenceStrategy) Name() string { return "sentence" }

func (SentenceStrategy) BreakPoint(text string, lo, target int) (int, bool) {
	for i := target - 1; i > lo; i-- {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if i+1 == len(text) || unicode.IsSpace(rune(text[i+1])) {
			return i + 1, true
		}
	}
	return 0, false
}

// ParagraphStrategy breaks after the nearest preceding blank-line boundary.
type ParagraphStrategy struct{}

func (ParagraphStrategy) Name() string { return "paragraph" }

func (ParagraphStrategy) BreakPoint(text string, lo, target int) (int, bool) {
	search := text
	if target < len(search) {
		search = search[:target]
	}
	i := strings.LastIndex(search, "\n\n")
	if i <= lo {
		return 0, false
	}
	return i + 2, true
}

// chains maps each strategy name to its explicit fallback chain, tried in
// order until one finds a boundary. Paragraph falls back to sentence, which
// falls back to fixed; past that the chunker hard-cuts to guarantee progress.
var chains = map[string][]Strategy{
	"fixed":     {FixedStrategy{}},
	"sentence":  {SentenceStrategy{}, FixedStrategy{}},
	"paragraph": {ParagraphStrategy{}, SentenceStrategy{}, FixedStrategy{}},
}
