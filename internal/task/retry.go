package task

import (
	"time"

	"github.com/studyforge/studyforge-api/internal/generation"
)

// Decision is the verdict for one finished generation attempt: either
// retry after Delay, or give up. Computed by a pure function so the
// schedule can be tested without the effectful worker around it.
type Decision struct {
	// Retry is true when another attempt should be made.
	Retry bool

	// Delay is how long to wait before the next attempt. Zero when
	// Retry is false.
	Delay time.Duration
}

// DecideRetry classifies the outcome of a 1-indexed attempt. A nil error
// never retries. A permanent error, or a transient error on the final
// attempt, gives up; otherwise the next attempt runs after the
// exponential backoff delay for this attempt number.
func DecideRetry(attempt int, err error) Decision {
	if err == nil {
		return Decision{}
	}

	if attempt >= generation.MaxAttempts || !generation.IsTransient(err) {
		return Decision{}
	}

	return Decision{
		Retry: true,
		Delay: generation.Delay(attempt),
	}
}
