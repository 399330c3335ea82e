package generation

import (
	"errors"
	"regexp"
	"time"
)

// Retry policy constants. MaxAttempts counts the initial attempt, so the
// policy allows one call plus two retries.
const (
	MaxAttempts = 3
	BaseDelay   = 5 * time.Second
)

// transientPattern matches error text signaling rate limiting, overload,
// timeout, or temporary unavailability. Anything not matching (and not
// explicitly flagged) is treated as permanent.
var transientPattern = regexp.MustCompile(
	`(?i)(503|429|overloaded|temporar|timeout|timed\s*out|try again|unavailable|quota)`,
)

// IsTransient classifies an error as retryable. A generation.Error
// carries its own transience flag; for everything else the error text is
// matched against the transient pattern set.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Transient
	}

	return transientPattern.MatchString(err.Error())
}

// Delay computes the exponential backoff duration for the given 1-indexed
// attempt: BaseDelay * 2^(attempt-1). Attempt 1 waits 5s, attempt 2 waits
// 10s, attempt 3 waits 20s.
func Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return BaseDelay << (attempt - 1)
}
