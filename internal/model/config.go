package model

import "time"

// Config is the complete mediamind configuration
type Config struct {
	Store       StoreConfig       `yaml:"store" json:"store"`
	Chunking    ChunkingConfig    `yaml:"chunking" json:"chunking"`
	Embedding   EmbeddingConfig   `yaml:"embedding" json:"embedding"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" json:"retrieval"`
	Locator     LocatorConfig     `yaml:"locator" json:"locator"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// StoreConfig configures the persistent chunk/transcript store
type StoreConfig struct {
	Path string `yaml:"path" json:"path"` // SQLite database path
}

// ChunkingConfig configures how source text is split
type ChunkingConfig struct {
	Size     int    `yaml:"size" json:"size"`         // Characters per chunk
	Overlap  int    `yaml:"overlap" json:"overlap"`   // Characters shared between consecutive chunks
	Strategy string `yaml:"strategy" json:"strategy"` // "fixed", "sentence", "paragraph"
}

// EmbeddingConfig configures embedding generation
type EmbeddingConfig struct {
	Provider  string  `yaml:"provider" json:"provider"` // "openai", "ollama"
	Model     string  `yaml:"model" json:"model"`
	APIKey    string  `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL   string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	BatchSize int     `yaml:"batch_size" json:"batch_size"` // Texts per embedding API call
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit"` // Requests per second to the embedding API
	Timeout   int     `yaml:"timeout" json:"timeout"`       // Seconds
}

// LLMConfig configures the answer-generation model
type LLMConfig struct {
	Provider    string  `yaml:"provider" json:"provider"` // "openai", "anthropic", "ollama"
	Model       string  `yaml:"model" json:"model"`
	APIKey      string  `yaml:"api_key,omitempty" json:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
	Timeout     int     `yaml:"timeout" json:"timeout"` // Seconds, the synthesis wall-clock budget

	// Proxy settings for outbound API calls
	HTTPProxy  string `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	SOCKSProxy string `yaml:"socks_proxy,omitempty" json:"socks_proxy,omitempty"`
}

// RetrievalConfig configures candidate retrieval and context assembly
type RetrievalConfig struct {
	TopK             int `yaml:"top_k" json:"top_k"`                           // Candidates retrieved per question
	MaxContextTokens int `yaml:"max_context_tokens" json:"max_context_tokens"` // Context budget in approximate tokens
}

// LocatorConfig tunes fuzzy text-to-timestamp matching. These are heuristic
// parameters, deliberately configurable rather than fixed constants.
type LocatorConfig struct {
	Threshold  float64 `yaml:"threshold" json:"threshold"`     // Minimum token-overlap similarity for a match
	MaxWindow  int     `yaml:"max_window" json:"max_window"`   // Maximum consecutive segments per candidate run
	GapSeconds float64 `yaml:"gap_seconds" json:"gap_seconds"` // Matched runs closer than this are merged
}

// CacheConfig configures the embedding cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	Dir     string        `yaml:"dir" json:"dir"` // Disk cache directory ("" = memory only)
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// ConcurrencyConfig configures worker counts
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" json:"workers"` // Ingestion worker pool size
}

// OutputConfig configures CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
	JSON    bool `yaml:"json" json:"json"` // Emit machine-readable JSON instead of text
}

// DefaultConfig returns the built-in defaults. Threshold and ceiling values
// here were settled by tuning against real transcripts, not derived.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "mediamind.db",
		},
		Chunking: ChunkingConfig{
			Size:     1000,
			Overlap:  200,
			Strategy: "fixed",
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			BatchSize: 100,
			RateLimit: 2.0,
			Timeout:   30,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   1000,
			Timeout:     60,
		},
		Retrieval: RetrievalConfig{
			TopK:             5,
			MaxContextTokens: 3000,
		},
		Locator: LocatorConfig{
			Threshold:  0.3,
			MaxWindow:  5,
			GapSeconds: 2.0,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{},
	}
}
