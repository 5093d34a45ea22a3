package model

import (
	"errors"
	"fmt"
)

// ErrEmptyCorpus indicates there are no embedded chunks in the requested
// scope. User-visible ("nothing to search"), never fatal.
var ErrEmptyCorpus = errors.New("no indexed content to search")

// ErrSynthesisTimeout indicates the answer generation exceeded its wall-clock
// budget. Distinct from SynthesisError so callers can suggest retrying.
var ErrSynthesisTimeout = errors.New("answer synthesis timed out")

// InvalidParameterError reports a bad configuration or call parameter,
// rejected before any I/O happens.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// SynthesisError wraps an upstream model failure during answer generation.
// It terminates the current answer attempt only; index and store state are
// untouched.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("answer synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
