package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/mediamind/mediamind/internal/model"
)

func TestNew_RejectsBadParameters(t *testing.T) {
	cases := []struct {
		name     string
		size     int
		overlap  int
		strategy string
	}{
		{"zero size", 0, 10, "fixed"},
		{"negative size", -10, 10, "fixed"},
		{"zero overlap", 100, 0, "fixed"},
		{"negative overlap", 100, -1, "fixed"},
		{"overlap equals size", 100, 100, "fixed"},
		{"overlap exceeds size", 100, 150, "fixed"},
		{"unknown strategy", 100, 10, "semantic"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.size, tc.overlap, tc.strategy)
			if err == nil {
				t.Fatalf("expected error for size=%d overlap=%d strategy=%q", tc.size, tc.overlap, tc.strategy)
			}
			var invalid *model.InvalidParameterError
			if !errors.As(err, &invalid) {
				t.Errorf("expected InvalidParameterError, got %T: %v", err, err)
			}
		})
	}
}

func TestChunk_ReconstructsOriginalText(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 40)

	for _, overlap := range []int{10, 50} {
		c, err := New(200, overlap, "fixed")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		chunks := c.Chunk(text, nil)
		if len(chunks) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(chunks))
		}

		var rebuilt strings.Builder
		for i, ch := range chunks {
			if i == 0 {
				rebuilt.WriteString(ch.Text)
			} else {
				rebuilt.WriteString(ch.Text[overlap:])
			}
		}
		if rebuilt.String() != text {
			t.Errorf("overlap=%d: reconstruction does not match original (got %d chars, want %d)",
				overlap, rebuilt.Len(), len(text))
		}
	}
}

func TestChunk_OverlapRegionsAreIdentical(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur adipiscing elit ", 30)
	c, err := New(300, 60, "fixed")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks := c.Chunk(text, nil)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		tail := prev[len(prev)-60:]
		head := chunks[i].Text[:60]
		if tail != head {
			t.Errorf("chunk %d/%d overlap mismatch: %q != %q", i-1, i, tail, head)
		}
	}
}

func TestChunk_OffsetsMatchText(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta ", 25)
	c, err := New(180, 40, "fixed")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, ch := range c.Chunk(text, nil) {
		if ch.CharEnd-ch.CharStart != len(ch.Text) {
			t.Errorf("chunk %d: char_end-char_start=%d, len(text)=%d",
				ch.Index, ch.CharEnd-ch.CharStart, len(ch.Text))
		}
		if text[ch.CharStart:ch.CharEnd] != ch.Text {
			t.Errorf("chunk %d: offsets do not address the chunk text", ch.Index)
		}
	}
}

func TestChunk_FixedBreaksAtWhitespace(t *testing.T) {
	text := strings.Repeat("word ", 200)
	c, err := New(100, 20, "fixed")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks := c.Chunk(text, nil)
	for _, ch := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(ch.Text, " ") {
			t.Errorf("chunk %d does not end at a word boundary: %q", ch.Index, ch.Text[len(ch.Text)-10:])
		}
	}
}

func TestChunk_SentenceBreaksAfterTerminator(t *testing.T) {
	text := strings.Repeat("This is a sentence. Here is another one! Is this a question? ", 20)
	c, err := New(150, 30, "sentence")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks := c.Chunk(text, nil)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, ch := range chunks[:len(chunks)-1] {
		trimmed := strings.TrimRight(ch.Text, " ")
		last := trimmed[len(trimmed)-1]
		if last != '.' && last != '!' && last != '?' {
			t.Errorf("chunk %d does not end at a sentence boundary: %q", ch.Index, ch.Text[len(ch.Text)-15:])
		}
	}
}

func TestChunk_ParagraphBreaksAtBlankLine(t *testing.T) {
	para := strings.Repeat("some paragraph text here ", 8)
	text := strings.Join([]string{para, para, para, para, para}, "\n\n")
	c, err := New(len(para)+20, 10, "paragraph")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks := c.Chunk(text, nil)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Errorf("first chunk does not end at a paragraph boundary: %q", chunks[0].Text[len(chunks[0].Text)-10:])
	}
}

func TestChunk_HardCutOnUnbrokenText(t *testing.T) {
	// No whitespace at all: every strategy fails and the chunker must hard
	// cut instead of looping.
	text := strings.Repeat("x", 5000)
	c, err := New(1000, 100, "paragraph")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks := c.Chunk(text, nil)
	if len(chunks) == 0 {
		t.Fatal("expected chunks for unbroken text")
	}
	prev := -1
	for _, ch := range chunks {
		if ch.CharStart <= prev {
			t.Fatalf("no progress: chunk %d starts at %d, previous start %d", ch.Index, ch.CharStart, prev)
		}
		prev = ch.CharStart
	}
	last := chunks[len(chunks)-1]
	if last.CharEnd != len(text) {
		t.Errorf("chunks do not cover the text: last end %d, want %d", last.CharEnd, len(text))
	}
}

func TestChunk_PageTaggedByMidpoint(t *testing.T) {
	page1 := strings.Repeat("a ", 300)
	page2 := strings.Repeat("b ", 300)
	text := page1 + page2
	pages := []model.PageBoundary{
		{Page: 1, CharStart: 0},
		{Page: 2, CharStart: len(page1)},
	}

	c, err := New(400, 40, "fixed")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, ch := range c.Chunk(text, pages) {
		mid := (ch.CharStart + ch.CharEnd) / 2
		want := 1
		if mid >= len(page1) {
			want = 2
		}
		if ch.Page != want {
			t.Errorf("chunk %d (mid %d): page %d, want %d", ch.Index, mid, ch.Page, want)
		}
	}
}

func TestChunk_EmptyText(t *testing.T) {
	c, err := New(100, 10, "fixed")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if chunks := c.Chunk("", nil); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c, err := New(1000, 200, "sentence")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	chunks := c.Chunk("Just one short sentence.", nil)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "Just one short sentence." {
		t.Errorf("unexpected chunk text: %q", chunks[0].Text)
	}
}
