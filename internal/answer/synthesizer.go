package answer

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/mediamind/mediamind/internal/llm"
	"github.com/mediamind/mediamind/internal/model"
)

// EventType discriminates streaming synthesis events
type EventType string

const (
	// EventPartial carries one incremental text delta
	EventPartial EventType = "partial"
	// EventFinal carries the complete answer and closes the stream
	EventFinal EventType = "final"
	// EventError carries a terminal failure and closes the stream
	EventError EventType = "error"
)

// Event is one element of a streaming synthesis. A stream emits zero or more
// partial events followed by exactly one terminal event (final or error).
type Event struct {
	Type         EventType
	Delta        string // Set on partial events
	Answer       string // Set on the final event, the concatenation of all deltas
	Insufficient bool   // Set on the final event
	Err          error  // Set on the error event
}

// Result is a completed blocking synthesis
type Result struct {
	Text         string
	Insufficient bool
	Model        string
	TokensUsed   int
}

// Synthesizer turns a question plus packed context into a grounded answer
type Synthesizer struct {
	provider    llm.Provider
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// NewSynthesizer creates a synthesizer from LLM configuration. A zero timeout
// falls back to 60 seconds.
func NewSynthesizer(provider llm.Provider, cfg model.LLMConfig) *Synthesizer {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Synthesizer{
		provider:    provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}
}

// Synthesize generates the complete answer in one blocking call. A deadline
// overrun maps to model.ErrSynthesisTimeout; any other provider failure is
// wrapped in model.SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, used []model.ScoredChunk) (*Result, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.Generate(ctxWithTimeout, s.request(question, used))
	if err != nil {
		return nil, s.mapErr(ctxWithTimeout, err)
	}

	text := strings.TrimSpace(resp.Text)
	return &Result{
		Text:         text,
		Insufficient: IsInsufficient(text),
		Model:        resp.Model,
		TokensUsed:   resp.TokensUsed,
	}, nil
}

// SynthesizeStream generates the answer as a channel of events. The channel
// is closed after exactly one terminal event. Cancelling ctx stops delivery;
// no events are sent after cancellation is observed.
func (s *Synthesizer) SynthesizeStream(ctx context.Context, question string, used []model.ScoredChunk) (<-chan Event, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, s.timeout)

	stream, err := s.provider.GenerateStream(ctxWithTimeout, s.request(question, used))
	if err != nil {
		cancel()
		return nil, s.mapErr(ctxWithTimeout, err)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer cancel()
		defer func() { _ = stream.Close() }()

		var full strings.Builder
		for {
			if ctxWithTimeout.Err() != nil {
				s.emit(ctx, events, Event{Type: EventError, Err: s.mapErr(ctxWithTimeout, ctxWithTimeout.Err())})
				return
			}

			delta, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				text := strings.TrimSpace(full.String())
				s.emit(ctx, events, Event{
					Type:         EventFinal,
					Answer:       text,
					Insufficient: IsInsufficient(text),
				})
				return
			}
			if err != nil {
				s.emit(ctx, events, Event{Type: EventError, Err: s.mapErr(ctxWithTimeout, err)})
				return
			}
			if delta == "" {
				continue
			}
			full.WriteString(delta)
			if !s.emit(ctx, events, Event{Type: EventPartial, Delta: delta}) {
				return
			}
		}
	}()
	return events, nil
}

// emit delivers an event. A consumer that cancelled the parent context gets
// nothing, not even a terminal event. Reports whether delivery happened.
func (s *Synthesizer) emit(parent context.Context, events chan<- Event, ev Event) bool {
	if parent.Err() != nil {
		return false
	}
	select {
	case events <- ev:
		return true
	case <-parent.Done():
		return false
	}
}

func (s *Synthesizer) request(question string, used []model.ScoredChunk) llm.GenerateRequest {
	return llm.GenerateRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(question, used),
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}
}

// mapErr classifies provider failures. Deadline overruns become the timeout
// sentinel; everything else is a synthesis failure.
func (s *Synthesizer) mapErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.ErrSynthesisTimeout
	}
	return &model.SynthesisError{Err: err}
}
