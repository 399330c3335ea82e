package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
)

// StudyRequestStore defines the interface for study request persistence.
type StudyRequestStore interface {
	// Create saves a new study request to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, req *domain.StudyRequest) error

	// GetByID retrieves a study request by its unique ID.
	// Returns ErrRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyRequest, error)

	// MarkProcessing conditionally transitions a request to processing and
	// stamps updated_at. The write only applies while the request is still
	// queued or processing, so a request that concurrently reached a
	// terminal state is left untouched. Returns the resulting status and
	// whether the transition applied.
	MarkProcessing(ctx context.Context, id uuid.UUID) (domain.StudyRequestStatus, bool, error)

	// MarkCompleted records a terminal success: status completed plus the
	// backend model identifier and the prompt/output snapshots.
	// Returns ErrRequestNotFound if the request does not exist.
	MarkCompleted(ctx context.Context, id uuid.UUID, model, prompt, output string) error

	// MarkFailed records a terminal failure with its error description.
	// Returns ErrRequestNotFound if the request does not exist.
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error

	// FindByStatus retrieves requests in the given status, oldest first.
	// A limit of zero or less returns every matching row. Used at startup
	// to resume interrupted work, which must see all of it.
	FindByStatus(ctx context.Context, status domain.StudyRequestStatus, limit int) ([]*domain.StudyRequest, error)

	// WithTx returns a new StudyRequestStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) StudyRequestStore
}
