package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mediamind/mediamind/internal/model"
)

// DefaultMaxFileBytes bounds how much of a source file is read
const DefaultMaxFileBytes = 64 << 20 // 64 MiB

// Loader reads source files from disk with a size cap
type Loader struct {
	maxBytes int64
}

// NewLoader creates a loader. maxBytes <= 0 falls back to the default cap.
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	return &Loader{maxBytes: maxBytes}
}

// LoadResult contains the raw source bytes and derived naming
type LoadResult struct {
	Path string
	Name string // Human-readable display name
	Kind model.FileKind
	Data []byte
}

// Load reads the file and guesses its kind from the extension. The guess
// only distinguishes media transcripts from documents; callers that know
// better override Kind.
func (l *Loader) Load(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > l.maxBytes {
		return nil, fmt.Errorf("file exceeds %d byte limit: %s (%d bytes)", l.maxBytes, path, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return &LoadResult{
		Path: path,
		Name: displayName(path),
		Kind: guessKind(path),
		Data: data,
	}, nil
}

// guessKind maps transcript extensions to audio, everything else to document
func guessKind(path string) model.FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt", ".vtt", ".json":
		return model.FileKindAudio
	}
	return model.FileKindDocument
}

// displayName derives a readable name from the file name: extension dropped,
// slug separators mapped to spaces
func displayName(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" && len(ext) < len(name) {
		name = name[:len(name)-len(ext)]
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	if name == "" {
		return filepath.Base(path)
	}
	return name
}
