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

func TestAnthropicProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("unexpected x-api-key header: %s", r.Header.Get("x-api-key"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("blocking call must not request streaming")
		}

		resp := anthropicResponse{
			ID:    "msg_1",
			Type:  "message",
			Model: "claude-3-5-sonnet-20241022",
			Content: []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{
				{Type: "text", Text: "Grounded answer."},
			},
		}
		resp.Usage.InputTokens = 20
		resp.Usage.OutputTokens = 5
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}

	resp, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "q"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "Grounded answer." {
		t.Errorf("unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 25 {
		t.Errorf("unexpected token count: %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(anthropicError{
			Type: "error",
			Error: struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			}{Type: "authentication_error", Message: "invalid key"},
		})
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "bad", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	if _, err := provider.Generate(context.Background(), GenerateRequest{Prompt: "q"}); err == nil {
		t.Error("expected error for unauthorized request")
	}
}

func TestAnthropicProvider_GenerateStream_ParsesSSE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req anthropicRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("streaming call must set stream=true")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		events := []string{
			`{"type":"message_start"}`,
			`{"type":"content_block_delta","delta":{"type":"text_delta","text":"Hello "}}`,
			`{"type":"content_block_delta","delta":{"type":"text_delta","text":"world"}}`,
			`{"type":"message_stop"}`,
		}
		for _, ev := range events {
			fmt.Fprintf(w, "data: %s\n\n", ev)
			flusher.Flush()
		}
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "k", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
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
	if got != "Hello world" {
		t.Errorf("unexpected streamed text: %q", got)
	}

	// Recv after EOF keeps returning EOF
	if _, err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF after stream end, got %v", err)
	}
}

func TestNewAnthropicProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Error("expected error without API key")
	}
}
