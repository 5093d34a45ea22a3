package extract

import (
	"strings"

	"github.com/mediamind/mediamind/internal/model"
)

// PlainTextFormat handles anything no other format claims. Form feed
// characters, the page separator pdftotext and friends emit, become page
// boundaries.
type PlainTextFormat struct{}

// NewPlainTextFormat creates the fallback text format
func NewPlainTextFormat() *PlainTextFormat {
	return &PlainTextFormat{}
}

// Name returns the format name
func (f *PlainTextFormat) Name() string {
	return "text"
}

// CanHandle always reports true; plain text is the fallback
func (f *PlainTextFormat) CanHandle(path string, data []byte) bool {
	return true
}

// Extract returns the text with form feeds mapped to page boundaries.
// Each form feed is replaced by a newline of equal byte length so chunk
// offsets stay valid against the returned text.
func (f *PlainTextFormat) Extract(data []byte) (*Extracted, error) {
	text := string(data)
	if !strings.ContainsRune(text, '\f') {
		return &Extracted{Text: text}, nil
	}

	pages := []model.PageBoundary{{Page: 1, CharStart: 0}}
	for i, r := range text {
		if r == '\f' {
			pages = append(pages, model.PageBoundary{
				Page:      len(pages) + 1,
				CharStart: i + 1,
			})
		}
	}
	return &Extracted{
		Text:  strings.ReplaceAll(text, "\f", "\n"),
		Pages: pages,
	}, nil
}
