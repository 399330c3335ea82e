package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
)

// UserStore defines the interface for user account persistence.
type UserStore interface {
	// Create saves a new user. Returns ErrExternalIDExists when another
	// account already holds the same external identity; the uniqueness is
	// enforced by the store, not just by a prior existence check.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by internal ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByExternalID retrieves a user by their sign-up identity.
	// Returns ErrUserNotFound if the user does not exist.
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)

	// DebitCredit increments used_credits by one, but only while the user
	// still has remaining credits. Returns domain.ErrInsufficientCredits
	// when the balance is exhausted.
	DebitCredit(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) UserStore
}
