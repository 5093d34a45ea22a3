package model

// ScoredChunk pairs a chunk with its similarity score for one query
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"` // Cosine similarity mapped to [0,1]
}

// RetrievalResult is the ranked candidate set produced for one question.
// It is ephemeral and never persisted.
type RetrievalResult struct {
	Query      string        `json:"query"`
	Candidates []ScoredChunk `json:"candidates"` // Sorted by non-increasing score
}

// TimestampSpan is a time interval in a media file's transcript correlated
// with a piece of text. Derived, never persisted on its own.
type TimestampSpan struct {
	Start          float64 `json:"start"` // Seconds
	End            float64 `json:"end"`   // Seconds
	Text           string  `json:"text"`  // Concatenated text of the matched segments
	Similarity     float64 `json:"similarity"`
	FormattedStart string  `json:"formatted_start"` // HH:MM:SS.mmm
	FormattedEnd   string  `json:"formatted_end"`
}

// Source describes one chunk that grounded an answer
type Source struct {
	ChunkID    int64           `json:"chunk_id"`
	FileID     int64           `json:"file_id"`
	ChunkIndex int             `json:"chunk_index"`
	Preview    string          `json:"text_preview"`
	Score      float64         `json:"score"`
	Page       int             `json:"page_number,omitempty"`
	Timestamps []TimestampSpan `json:"timestamps,omitempty"` // Only for audio/video sources
}

// AnswerRecord is the structured result of one answered question
type AnswerRecord struct {
	ID           string          `json:"id"` // UUID, assigned per question
	Question     string          `json:"question"`
	Answer       string          `json:"answer"`
	Sources      []Source        `json:"sources"` // Rank order of the chunks actually used
	Confidence   float64         `json:"confidence"`
	ChunksUsed   int             `json:"chunks_used"`
	Model        string          `json:"model"`
	Insufficient bool            `json:"insufficient_context"` // Model declared the context insufficient
	Timestamps   []TimestampSpan `json:"timestamps,omitempty"` // Deduplicated union across sources, sorted by start
}
