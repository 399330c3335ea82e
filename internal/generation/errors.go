package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when generation fails for any general reason.
	ErrGenerationFailed = errors.New("failed to generate study material")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed
	// or does not match the expected schema. This is a backend contract
	// violation and is never retried.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrNoModelAvailable is returned when the backend reports no usable models.
	ErrNoModelAvailable = errors.New("no generation model available")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// Error wraps a generation failure with an explicit transience flag so
// callers don't have to guess from error text when the producer already
// knows. Errors without the flag fall back to text classification in
// IsTransient.
type Error struct {
	// Msg describes the failure.
	Msg string

	// Transient indicates whether a retry after a delay may succeed.
	Transient bool

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransientError creates a generation Error marked as retryable.
func NewTransientError(msg string, err error) *Error {
	return &Error{Msg: msg, Transient: true, Err: err}
}

// NewPermanentError creates a generation Error that must not be retried.
func NewPermanentError(msg string, err error) *Error {
	return &Error{Msg: msg, Transient: false, Err: err}
}
