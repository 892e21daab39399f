package generator

import (
	"context"
	"errors"
	"fmt"
)

// TextBackend is a hosted text model: instructions in, free-form text out.
// Implementations must honor ctx cancellation.
type TextBackend interface {
	Generate(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error)
}

// ErrUnparseableOutput means the backend answered but no JSON object with
// usable content could be recovered from the text.
var ErrUnparseableOutput = errors.New("no usable JSON object in model output")

// BackendError wraps every failure of a text backend call: timeouts,
// transport errors, non-2xx statuses and malformed or empty payloads.
type BackendError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s backend: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
