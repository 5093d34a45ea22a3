// Package extract turns raw source files into indexable material: plain
// text with optional page boundaries for documents, timed segments for
// transcripts. Format detection is content-first with the file extension as
// a hint, so a mislabeled transcript still parses.
package extract

import (
	"fmt"

	"github.com/mediamind/mediamind/internal/model"
)

// Extracted is the format-independent result of extraction
type Extracted struct {
	// Text is the full searchable text of the source
	Text string

	// Pages marks page starts within Text. Empty when the source has no
	// page structure.
	Pages []model.PageBoundary

	// Segments carries timed transcript segments. Empty for documents.
	Segments []model.TranscriptSegment
}

// HasTranscript reports whether the source carried timed segments
func (e *Extracted) HasTranscript() bool {
	return len(e.Segments) > 0
}

// Format defines a source file format handler
type Format interface {
	// Name returns the format name
	Name() string

	// CanHandle checks if this format matches the given path and content
	CanHandle(path string, data []byte) bool

	// Extract parses the raw bytes
	Extract(data []byte) (*Extracted, error)
}

// Registry manages format handlers. The first matching format wins; plain
// text is the fallback and always succeeds.
type Registry struct {
	formats []Format
	generic Format
}

// NewRegistry creates a registry with the built-in formats
func NewRegistry() *Registry {
	registry := &Registry{}

	registry.Register(NewTranscriptJSONFormat())
	registry.Register(NewSRTFormat())
	registry.Register(NewVTTFormat())
	registry.Register(NewHTMLFormat())
	registry.generic = NewPlainTextFormat()

	return registry
}

// Register adds a format handler. Later registrations are tried after the
// built-ins.
func (r *Registry) Register(f Format) {
	r.formats = append(r.formats, f)
}

// Detect returns the format that will handle the given source
func (r *Registry) Detect(path string, data []byte) Format {
	for _, f := range r.formats {
		if f.CanHandle(path, data) {
			return f
		}
	}
	return r.generic
}

// Extract parses the source with the detected format
func (r *Registry) Extract(path string, data []byte) (*Extracted, error) {
	format := r.Detect(path, data)
	extracted, err := format.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extract %s as %s: %w", path, format.Name(), err)
	}
	return extracted, nil
}
