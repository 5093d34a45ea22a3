package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/mediamind/mediamind/internal/model"
)

// SummaryResult is one generated file summary
type SummaryResult struct {
	FileID        int64          `json:"file_id"`
	FileName      string         `json:"file_name"`
	Kind          model.FileKind `json:"kind"`
	ContentType   string         `json:"content_type"`
	Summary       string         `json:"summary"`
	Model         string         `json:"model"`
	ContentLength int            `json:"content_length"`
	SummaryLength int            `json:"summary_length"`
}

// SummarizeFile condenses one ingested file into a summary. Documents are
// summarized from their reconstructed chunk text, media files from their
// transcript. maxWords <= 0 leaves the length to the model; instruction
// optionally replaces the default summarization directive.
func (p *Pipeline) SummarizeFile(ctx context.Context, fileID int64, instruction string, maxWords int) (*SummaryResult, error) {
	file, err := p.store.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("load file %d: %w", fileID, err)
	}

	var content, contentType string
	if file.Kind.HasTranscript() {
		segments, err := p.store.SegmentsByFile(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("load segments: %w", err)
		}
		content = transcriptText(segments)
		contentType = fmt.Sprintf("%s transcript", file.Kind)
	} else {
		chunks, err := p.store.ChunksByFile(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("load chunks: %w", err)
		}
		content = reassembleText(chunks)
		contentType = "document"
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("file %q has no content to summarize", file.Name)
	}

	summary, err := p.summarizer.Summarize(ctx, contentType, content, instruction, maxWords)
	if err != nil {
		return nil, err
	}

	p.logf("summarized %s: %d chars in, %d chars out", file.Name, len(content), len(summary.Text))
	return &SummaryResult{
		FileID:        file.ID,
		FileName:      file.Name,
		Kind:          file.Kind,
		ContentType:   contentType,
		Summary:       summary.Text,
		Model:         summary.Model,
		ContentLength: len(content),
		SummaryLength: len(summary.Text),
	}, nil
}

// transcriptText concatenates segment texts in transcript order
func transcriptText(segments []model.TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// reassembleText rebuilds the source text from its chunks, dropping the
// shared overlap regions via the chunks' character offsets
func reassembleText(chunks []model.Chunk) string {
	var b strings.Builder
	covered := 0
	for _, c := range chunks {
		if c.CharEnd <= covered {
			continue
		}
		trim := 0
		if covered > c.CharStart {
			trim = covered - c.CharStart
		}
		b.WriteString(c.Text[trim:])
		covered = c.CharEnd
	}
	return b.String()
}
