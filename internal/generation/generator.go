package generation

import (
	"context"

	"github.com/studyforge/studyforge-api/internal/domain"
)

// Request describes one generation call. The three fields form the
// prompt contract: they are snapshotted verbatim onto the completed
// study request record.
type Request struct {
	Purpose    string `json:"purpose"`
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// Result is the outcome of a successful generation call.
type Result struct {
	// Model is the identifier of the backend model actually used.
	Model string

	// Prompt is the request snapshot that produced the output.
	Prompt Request

	// Layout is the parsed structured content.
	Layout *domain.StudyLayout

	// RawOutput is the exact text returned by the backend, kept so the
	// completed request can persist a faithful output snapshot.
	RawOutput string
}

// Generator defines the interface for generating study material from a
// structured request. This interface is the boundary between the
// application core and the external AI service: the worker depends on
// it, platform/gemini implements it.
type Generator interface {
	// Generate produces study material for the given request.
	// Errors are classifiable via IsTransient: transient failures may be
	// retried after a backoff delay, anything else is permanent.
	Generate(ctx context.Context, req Request) (*Result, error)
}
