package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
)

// MaterialStore defines the interface for study material persistence.
type MaterialStore interface {
	// Create saves a new material. When the material carries a request
	// linkage the insert is duplicate-suppressed on request_id: a
	// concurrent invocation that already inserted for the same request
	// wins, and Create reports success without a second row.
	Create(ctx context.Context, material *domain.StudyMaterial) error

	// GetByID retrieves a material by its unique ID.
	// Returns ErrMaterialNotFound if the material does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyMaterial, error)

	// GetByRequestID retrieves the material linked to a study request.
	// Returns ErrMaterialNotFound when no material exists for the request.
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*domain.StudyMaterial, error)

	// WithTx returns a new MaterialStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) MaterialStore
}
