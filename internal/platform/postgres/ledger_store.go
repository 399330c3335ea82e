package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/platform/logger"
	"github.com/studyforge/studyforge-api/internal/store"
)

// PostgresLedgerStore implements the store.LedgerStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLedgerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLedgerStore creates a new PostgreSQL implementation of the
// LedgerStore interface. If logger is nil, a default logger will be used.
func NewPostgresLedgerStore(db store.DBTX, logger *slog.Logger) *PostgresLedgerStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLedgerStore{
		db:     db,
		logger: logger.With(slog.String("component", "ledger_store")),
	}
}

// Ensure PostgresLedgerStore implements store.LedgerStore interface
var _ store.LedgerStore = (*PostgresLedgerStore)(nil)

// Append implements store.LedgerStore.Append
func (s *PostgresLedgerStore) Append(ctx context.Context, entry *domain.CreditEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("ledger entry validation failed",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()))
		return err
	}

	query := `
		INSERT INTO credit_ledger (id, user_id, request_id, delta, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.RequestID,
		entry.Delta,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append ledger entry",
			slog.String("error", err.Error()),
			slog.String("entry_id", entry.ID.String()),
			slog.String("user_id", entry.UserID.String()))
		return MapError(err)
	}

	log.Debug("ledger entry appended",
		slog.String("entry_id", entry.ID.String()),
		slog.String("reason", entry.Reason),
		slog.Int("delta", entry.Delta))
	return nil
}

// FindByUser implements store.LedgerStore.FindByUser
func (s *PostgresLedgerStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.CreditEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, request_id, delta, reason, created_at
		FROM credit_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		log.Error("failed to query ledger entries",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*domain.CreditEntry{}
	for rows.Next() {
		var entry domain.CreditEntry
		var requestID uuid.NullUUID

		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&requestID,
			&entry.Delta,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan ledger row", slog.String("error", err.Error()))
			return nil, err
		}

		if requestID.Valid {
			id := requestID.UUID
			entry.RequestID = &id
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return entries, nil
}

// WithTx implements store.LedgerStore.WithTx
func (s *PostgresLedgerStore) WithTx(tx *sql.Tx) store.LedgerStore {
	return &PostgresLedgerStore{
		db:     tx,
		logger: s.logger,
	}
}
