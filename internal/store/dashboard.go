package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
)

// DashboardEntry is a dashboard item joined with display fields from its
// study material, used by the dashboard listing.
type DashboardEntry struct {
	Item       domain.DashboardItem
	Topic      string
	Difficulty string
	Status     domain.MaterialStatus
}

// DashboardStore defines the interface for dashboard item persistence.
type DashboardStore interface {
	// Create saves a new dashboard item. Adding a material that is already
	// on the user's dashboard is a no-op.
	Create(ctx context.Context, item *domain.DashboardItem) error

	// FindByUser retrieves a user's dashboard entries with material
	// details joined in, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*DashboardEntry, error)

	// WithTx returns a new DashboardStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) DashboardStore
}
