package llm

import (
	"fmt"
	"strings"

	"github.com/mediamind/mediamind/internal/model"
	"github.com/mediamind/mediamind/internal/util"
)

// NewProvider creates a language model provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// NewEmbedder creates an embedding provider based on configuration
func NewEmbedder(config Config) (Embedder, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIEmbedder(config)

	case "ollama":
		return NewOllamaEmbedder(config)

	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromLLM converts model.LLMConfig to llm.Config
func ConfigFromLLM(c model.LLMConfig) Config {
	return Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Proxy: util.ProxyConfig{
			HTTPProxy:  c.HTTPProxy,
			HTTPSProxy: c.HTTPSProxy,
			SOCKSProxy: c.SOCKSProxy,
		},
	}
}

// ConfigFromEmbedding converts model.EmbeddingConfig to llm.Config
func ConfigFromEmbedding(c model.EmbeddingConfig) Config {
	return Config{
		Provider: c.Provider,
		Model:    c.Model,
		APIKey:   c.APIKey,
		BaseURL:  c.BaseURL,
		Timeout:  c.Timeout,
	}
}
