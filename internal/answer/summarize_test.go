package answer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mediamind/mediamind/internal/model"
)

func newTestSummarizer(p *fakeProvider) *Summarizer {
	return NewSummarizer(p, model.LLMConfig{Model: "fake-model", MaxTokens: 500, Timeout: 5})
}

func TestSummarizer_Summarize(t *testing.T) {
	provider := &fakeProvider{text: "  A concise summary.  "}
	s := newTestSummarizer(provider)

	summary, err := s.Summarize(context.Background(), "document", "the full document text", "", 0)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.Text != "A concise summary." {
		t.Errorf("unexpected summary text: %q", summary.Text)
	}
	if summary.Model != "fake-model" {
		t.Errorf("unexpected model: %q", summary.Model)
	}
	if !strings.Contains(provider.lastPrompt, "the full document text") {
		t.Error("prompt missing the content")
	}
	if !strings.Contains(provider.lastPrompt, "comprehensive summary of the following document") {
		t.Error("prompt missing the default directive")
	}
}

func TestSummarizer_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream down")}
	s := newTestSummarizer(provider)

	_, err := s.Summarize(context.Background(), "document", "text", "", 0)
	var synthErr *model.SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}
	if errors.Is(err, model.ErrSynthesisTimeout) {
		t.Error("provider failure must not map to the timeout sentinel")
	}
}

func TestSummarizer_Timeout(t *testing.T) {
	provider := &fakeProvider{text: "late", delay: 200 * time.Millisecond}
	s := newTestSummarizer(provider)
	s.timeout = 20 * time.Millisecond

	_, err := s.Summarize(context.Background(), "document", "text", "", 0)
	if !errors.Is(err, model.ErrSynthesisTimeout) {
		t.Fatalf("expected ErrSynthesisTimeout, got %v", err)
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	p := BuildSummaryPrompt("audio transcript", "hello world", "", 150)
	for _, want := range []string{
		"comprehensive summary of the following audio transcript",
		"under 150 words",
		"Main topics and themes",
		"audio transcript content:\nhello world",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}

	custom := BuildSummaryPrompt("document", "body", "List the action items.", 150)
	if !strings.Contains(custom, "List the action items.") {
		t.Error("custom instruction missing from prompt")
	}
	if strings.Contains(custom, "comprehensive summary") {
		t.Error("custom instruction must replace the default directive")
	}
	if strings.Contains(custom, "under 150 words") {
		t.Error("word limit applies to the default directive only")
	}
}
