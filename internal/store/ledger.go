package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
)

// LedgerStore defines the interface for the append-only credit ledger.
type LedgerStore interface {
	// Append records a new ledger entry.
	Append(ctx context.Context, entry *domain.CreditEntry) error

	// FindByUser retrieves a user's ledger entries, newest first.
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CreditEntry, error)

	// WithTx returns a new LedgerStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) LedgerStore
}
