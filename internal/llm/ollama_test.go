package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("expected path /api/generate, got %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("blocking call must not request streaming")
		}
		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Model:     req.Model,
			Response:  "Local answer.",
			Done:      true,
			EvalCount: 12,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.2", Timeout: 5})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	resp, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "q"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "Local answer." {
		t.Errorf("unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 12 {
		t.Errorf("unexpected token count: %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_GenerateStream_ParsesNDJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		flusher := w.(http.Flusher)
		lines := []ollamaGenerateResponse{
			{Response: "stream"},
			{Response: "ing "},
			{Response: "works"},
			{Done: true},
		}
		for _, line := range lines {
			data, _ := json.Marshal(line)
			fmt.Fprintf(w, "%s\n", data)
			flusher.Flush()
		}
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewOllamaProvider: %v", err)
	}

	stream, err := provider.GenerateStream(context.Background(), GenerateRequest{Prompt: "q"})
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}
	defer func() { _ = stream.Close() }()

	var got string
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		got += delta
	}
	if got != "streaming works" {
		t.Errorf("unexpected streamed text: %q", got)
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("expected path /api/embeddings, got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(ollamaEmbeddingResponse{
			Embedding: []float64{0.25, -0.5, 1.0},
		})
	}))
	defer server.Close()

	embedder, err := NewOllamaEmbedder(Config{BaseURL: server.URL, Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("NewOllamaEmbedder: %v", err)
	}

	vector, err := embedder.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vector) != 3 || vector[0] != 0.25 {
		t.Errorf("unexpected vector: %v", vector)
	}
}

func TestFactory_SelectsProvider(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "ollama"}); err != nil {
		t.Errorf("ollama provider should not require a key: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "openai", APIKey: "k"}); err != nil {
		t.Errorf("openai provider: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "anthropic", APIKey: "k"}); err != nil {
		t.Errorf("anthropic provider: %v", err)
	}
	if _, err := NewProvider(Config{Provider: "bogus"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewEmbedder(Config{Provider: "bogus"}); err == nil {
		t.Error("expected error for unknown embedding provider")
	}
}
