package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyTopic is returned when a generation request has no topic.
	ErrEmptyTopic = errors.New("topic cannot be empty")
)
