package core

import (
	"errors"
	"fmt"
)

// ErrEmptyUtterance is returned when an utterance is empty or whitespace-only.
// The transcript is never touched and the backend is never called for it.
var ErrEmptyUtterance = errors.New("empty utterance")

// GenerationErrorKind classifies why a generation call failed.
type GenerationErrorKind string

const (
	GenerationUnreachable GenerationErrorKind = "unreachable" // backend down or returned an error status
	GenerationTimeout     GenerationErrorKind = "timeout"     // bounded call deadline exceeded
	GenerationEmptyReply  GenerationErrorKind = "empty_reply" // backend answered with nothing usable
)

// GenerationError is the single failure type surfaced by a GenerationService.
// The engine never retries these; the caller decides what to show the user.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation failed (%s)", e.Kind)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError wraps err with a failure kind.
func NewGenerationError(kind GenerationErrorKind, err error) *GenerationError {
	return &GenerationError{Kind: kind, Err: err}
}

// AsGenerationError unwraps err into a *GenerationError when possible.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}
