package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/mediamind/mediamind/internal/model"
)

// TranscriptJSONFormat handles transcription tool output: either a bare
// array of segments or an object with a "segments" field, each segment
// carrying start/end seconds and text.
type TranscriptJSONFormat struct{}

// NewTranscriptJSONFormat creates a JSON transcript parser
func NewTranscriptJSONFormat() *TranscriptJSONFormat {
	return &TranscriptJSONFormat{}
}

// Name returns the format name
func (f *TranscriptJSONFormat) Name() string {
	return "transcript-json"
}

// CanHandle accepts .json files whose content looks like segment data
func (f *TranscriptJSONFormat) CanHandle(path string, data []byte) bool {
	if strings.ToLower(filepath.Ext(path)) != ".json" {
		return false
	}
	head := bytes.TrimSpace(data)
	return len(head) > 0 && (head[0] == '[' || head[0] == '{')
}

type jsonSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Extract parses the segments and joins their text
func (f *TranscriptJSONFormat) Extract(data []byte) (*Extracted, error) {
	var segments []jsonSegment

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapper struct {
			Segments []jsonSegment `json:"segments"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parse transcript object: %w", err)
		}
		segments = wrapper.Segments
	} else {
		if err := json.Unmarshal(trimmed, &segments); err != nil {
			return nil, fmt.Errorf("parse transcript array: %w", err)
		}
	}

	return fromSegments(convertSegments(segments))
}

func convertSegments(in []jsonSegment) []model.TranscriptSegment {
	out := make([]model.TranscriptSegment, 0, len(in))
	for _, s := range in {
		out = append(out, model.TranscriptSegment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return out
}

// SRTFormat handles SubRip subtitle files
type SRTFormat struct{}

// NewSRTFormat creates an SRT parser
func NewSRTFormat() *SRTFormat {
	return &SRTFormat{}
}

// Name returns the format name
func (f *SRTFormat) Name() string {
	return "srt"
}

// srtTimeline matches "00:00:01,000 --> 00:00:04,500"
var srtTimeline = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)

// CanHandle checks the extension or an SRT-style cue at the top of the file
func (f *SRTFormat) CanHandle(path string, data []byte) bool {
	if strings.ToLower(filepath.Ext(path)) == ".srt" {
		return true
	}
	for _, line := range firstLines(data, 4) {
		if srtTimeline.MatchString(line) {
			return true
		}
	}
	return false
}

// Extract parses numbered cues into segments
func (f *SRTFormat) Extract(data []byte) (*Extracted, error) {
	return fromSegments(parseCues(string(data)))
}

// VTTFormat handles WebVTT subtitle files
type VTTFormat struct{}

// NewVTTFormat creates a WebVTT parser
func NewVTTFormat() *VTTFormat {
	return &VTTFormat{}
}

// Name returns the format name
func (f *VTTFormat) Name() string {
	return "vtt"
}

// CanHandle checks the extension or the WEBVTT magic header
func (f *VTTFormat) CanHandle(path string, data []byte) bool {
	if strings.ToLower(filepath.Ext(path)) == ".vtt" {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(data), []byte("WEBVTT"))
}

// Extract parses WebVTT cues into segments
func (f *VTTFormat) Extract(data []byte) (*Extracted, error) {
	return fromSegments(parseCues(string(data)))
}

// parseCues walks subtitle text line by line, collecting each timeline and
// the text lines under it. Cue numbers, headers and styling blocks are
// skipped because they never follow a timeline directly.
func parseCues(text string) []model.TranscriptSegment {
	var segments []model.TranscriptSegment
	var current *model.TranscriptSegment
	var parts []string

	flush := func() {
		if current != nil && len(parts) > 0 {
			current.Text = strings.Join(parts, " ")
			segments = append(segments, *current)
		}
		current = nil
		parts = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if m := srtTimeline.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = &model.TranscriptSegment{
				Start: cueSeconds(m[1], m[2], m[3], m[4]),
				End:   cueSeconds(m[5], m[6], m[7], m[8]),
			}
			continue
		}
		if trimmed == "" {
			flush()
			continue
		}
		if current != nil {
			parts = append(parts, trimmed)
		}
	}
	flush()

	return segments
}

func cueSeconds(h, m, s, ms string) float64 {
	hi, _ := strconv.Atoi(h)
	mi, _ := strconv.Atoi(m)
	si, _ := strconv.Atoi(s)
	msi, _ := strconv.Atoi(ms)
	return float64(hi*3600+mi*60+si) + float64(msi)/1000
}

// fromSegments validates segments and builds the joined transcript text
func fromSegments(segments []model.TranscriptSegment) (*Extracted, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("transcript has no segments")
	}

	parts := make([]string, 0, len(segments))
	for i, s := range segments {
		if s.End <= s.Start {
			return nil, fmt.Errorf("segment %d: end %.3f not after start %.3f", i, s.End, s.Start)
		}
		if i > 0 && s.Start < segments[i-1].Start {
			return nil, fmt.Errorf("segment %d: out of order", i)
		}
		segments[i].Text = strings.TrimSpace(s.Text)
		parts = append(parts, segments[i].Text)
	}

	return &Extracted{
		Text:     strings.Join(parts, " "),
		Segments: segments,
	}, nil
}

// firstLines returns up to n leading lines of data
func firstLines(data []byte, n int) []string {
	lines := strings.Split(string(data), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}
