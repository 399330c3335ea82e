package task

import (
	"context"
	"time"
)

// Clock abstracts the backoff delay between retry attempts so tests can
// fast-forward instead of sleeping for real.
type Clock interface {
	// Sleep blocks for the given duration or until the context is done,
	// returning the context error in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock implements Clock with a timer.
type realClock struct{}

// NewRealClock returns a Clock backed by the wall clock.
func NewRealClock() Clock {
	return realClock{}
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
