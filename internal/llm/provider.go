package llm

import (
	"context"

	"github.com/mediamind/mediamind/internal/util"
)

// Provider defines the interface for language model providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces a completion for the prompt in one call
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// GenerateStream produces a completion as a sequence of text deltas.
	// The returned stream yields io.EOF when the model is done.
	GenerateStream(ctx context.Context, req GenerateRequest) (Stream, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Stream is a sequence of text deltas from a streaming completion.
// Recv blocks until the next delta, returns io.EOF when the stream is done,
// or any other error on upstream failure. Close releases the connection and
// must be safe to call at any point, including mid-stream.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Embedder turns text into fixed-length vectors. The same embedder
// configuration must be used for ingestion-time chunk embedding and
// query-time question embedding, or similarities are meaningless.
type Embedder interface {
	// Model identifies the embedding model, used for cache keys and
	// stored-vector provenance
	Model() string

	// Embed returns the embedding vector for one text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerateRequest contains the input for a completion
type GenerateRequest struct {
	// System is the system message framing the assistant's role
	System string

	// Prompt is the full user prompt (question + assembled context)
	Prompt string

	// Model overrides the configured model when non-empty
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling randomness
	Temperature float64
}

// GenerateResponse contains a blocking completion result
type GenerateResponse struct {
	// Text is the generated completion
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption (0 when the API does not report it)
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for blocking API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for response generation
	Temperature float64

	// Proxy settings for outbound calls
	Proxy util.ProxyConfig
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Timeout:     60,
		MaxTokens:   1000,
		Temperature: 0.3,
	}
}
