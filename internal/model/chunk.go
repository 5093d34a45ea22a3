package model

// FileKind classifies an ingested file by how its text was produced
type FileKind string

const (
	FileKindDocument FileKind = "document"   // PDF/plain text sources with optional page boundaries
	FileKindAudio    FileKind = "audio"      // Transcribed audio
	FileKindVideo    FileKind = "video"      // Transcribed video
)

// HasTranscript reports whether files of this kind carry timestamped segments
func (k FileKind) HasTranscript() bool {
	return k == FileKindAudio || k == FileKindVideo
}

// File is the owning record for a set of chunks and (for media) transcript segments
type File struct {
	ID   int64    `json:"id"`
	Name string   `json:"name"`
	Kind FileKind `json:"kind"`
}

// Chunk is a bounded, position-tagged span of source text, the unit of retrieval.
// Chunks are immutable once created; re-ingesting a file produces new chunk ids.
type Chunk struct {
	ID        int64  `json:"id"`
	FileID    int64  `json:"file_id"`
	Index     int    `json:"index"`                 // Position in the chunk sequence of the owning file
	Text      string `json:"text"`
	CharStart int    `json:"char_start"`            // Absolute offset into the owning text
	CharEnd   int    `json:"char_end"`              // CharEnd - CharStart == len(Text)
	Page      int    `json:"page_number,omitempty"` // 0 when the source has no page boundaries
}

// PageBoundary marks where a page starts in the concatenated source text
type PageBoundary struct {
	Page      int // 1-based page number
	CharStart int // Offset of the first character of the page
}

// TranscriptSegment is one timed utterance of a media file's transcript.
// Segments are ordered, non-overlapping and immutable.
type TranscriptSegment struct {
	Start float64 `json:"start"` // Seconds
	End   float64 `json:"end"`   // Seconds, always > Start
	Text  string  `json:"text"`
}

// Duration returns the segment length in seconds
func (s TranscriptSegment) Duration() float64 {
	return s.End - s.Start
}
