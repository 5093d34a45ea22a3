package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mediamind/mediamind/internal/llm"
	"github.com/mediamind/mediamind/internal/model"
)

const summarySystemPrompt = `You are a helpful assistant that creates clear, concise, and comprehensive summaries of documents and transcripts.`

// Summary is a completed summarization
type Summary struct {
	Text       string
	Model      string
	TokensUsed int
}

// Summarizer condenses a file's full text into a summary. Unlike the
// question synthesizer it has no grounding sentinel: the whole source is the
// context, so there is nothing to refuse.
type Summarizer struct {
	provider    llm.Provider
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// NewSummarizer creates a summarizer from LLM configuration. A zero timeout
// falls back to 60 seconds.
func NewSummarizer(provider llm.Provider, cfg model.LLMConfig) *Summarizer {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Summarizer{
		provider:    provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}
}

// Summarize generates a summary of content in one blocking call. contentType
// names what is being summarized for the prompt ("document", "audio
// transcript"). maxWords <= 0 leaves the length to the model; instruction is
// an optional custom directive replacing the default focus list. Failures
// map like synthesis: deadline overrun to model.ErrSynthesisTimeout,
// anything else to model.SynthesisError.
func (s *Summarizer) Summarize(ctx context.Context, contentType, content, instruction string, maxWords int) (*Summary, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.Generate(ctxWithTimeout, llm.GenerateRequest{
		System:      summarySystemPrompt,
		Prompt:      BuildSummaryPrompt(contentType, content, instruction, maxWords),
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return nil, s.mapErr(ctxWithTimeout, err)
	}

	return &Summary{
		Text:       strings.TrimSpace(resp.Text),
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
	}, nil
}

func (s *Summarizer) mapErr(ctx context.Context, err error) error {
	if isDeadline(ctx, err) {
		return model.ErrSynthesisTimeout
	}
	return &model.SynthesisError{Err: err}
}

func isDeadline(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// BuildSummaryPrompt renders the summarization prompt. With no custom
// instruction the default focus list is used.
func BuildSummaryPrompt(contentType, content, instruction string, maxWords int) string {
	var b strings.Builder
	if instruction != "" {
		b.WriteString(strings.TrimSpace(instruction))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "Please provide a comprehensive summary of the following %s.", contentType)
		if maxWords > 0 {
			fmt.Fprintf(&b, " Keep the summary under %d words.", maxWords)
		}
		b.WriteString("\n\nFocus on:\n")
		b.WriteString("- Main topics and themes\n")
		b.WriteString("- Key points and important information\n")
		b.WriteString("- Important details and conclusions\n")
	}
	fmt.Fprintf(&b, "\n%s content:\n%s\n\nSummary:", contentType, content)
	return b.String()
}
