package task

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/studyforge/studyforge-api/internal/generation"
)

func TestDecideRetry(t *testing.T) {
	t.Parallel()

	transient := errors.New("503 service overloaded")
	permanent := errors.New("invalid schema")

	tests := []struct {
		name      string
		attempt   int
		err       error
		wantRetry bool
		wantDelay time.Duration
	}{
		{"success never retries", 1, nil, false, 0},
		{"transient on first attempt retries after 5s", 1, transient, true, 5 * time.Second},
		{"transient on second attempt retries after 10s", 2, transient, true, 10 * time.Second},
		{"transient on final attempt gives up", 3, transient, false, 0},
		{"permanent on first attempt gives up", 1, permanent, false, 0},
		{"permanent on second attempt gives up", 2, permanent, false, 0},
		{"explicit permanent flag beats transient text", 1,
			generation.NewPermanentError("503 but do not retry", nil), false, 0},
		{"explicit transient flag retries", 1,
			generation.NewTransientError("backend hiccup", nil), true, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideRetry(tt.attempt, tt.err)
			assert.Equal(t, tt.wantRetry, got.Retry)
			assert.Equal(t, tt.wantDelay, got.Delay)
		})
	}
}
