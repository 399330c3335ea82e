package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/platform/logger"
	"github.com/studyforge/studyforge-api/internal/store"
)

// PostgresDashboardStore implements the store.DashboardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDashboardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDashboardStore creates a new PostgreSQL implementation of the
// DashboardStore interface. If logger is nil, a default logger will be used.
func NewPostgresDashboardStore(db store.DBTX, logger *slog.Logger) *PostgresDashboardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDashboardStore{
		db:     db,
		logger: logger.With(slog.String("component", "dashboard_store")),
	}
}

// Ensure PostgresDashboardStore implements store.DashboardStore interface
var _ store.DashboardStore = (*PostgresDashboardStore)(nil)

// Create implements store.DashboardStore.Create
// Re-adding a material already on the dashboard is suppressed by the
// unique (user_id, material_id) constraint and reported as success.
func (s *PostgresDashboardStore) Create(ctx context.Context, item *domain.DashboardItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("dashboard item validation failed",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query := `
		INSERT INTO dashboard_items (id, user_id, material_id, progress, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, material_id) DO NOTHING
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.MaterialID,
		item.Progress,
		item.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create dashboard item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Debug("material already on dashboard, create suppressed",
			slog.String("user_id", item.UserID.String()),
			slog.String("material_id", item.MaterialID.String()))
		return nil
	}

	log.Info("dashboard item created",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", item.UserID.String()),
		slog.String("material_id", item.MaterialID.String()))
	return nil
}

// FindByUser implements store.DashboardStore.FindByUser
// Entries are joined with their material so the dashboard listing does
// not need a second round trip per row.
func (s *PostgresDashboardStore) FindByUser(ctx context.Context, userID uuid.UUID) ([]*store.DashboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT d.id, d.user_id, d.material_id, d.progress, d.created_at,
		       m.topic, m.difficulty_level, m.status
		FROM dashboard_items d
		JOIN study_materials m ON m.id = d.material_id
		WHERE d.user_id = $1
		ORDER BY d.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query dashboard items",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*store.DashboardEntry{}
	for rows.Next() {
		var entry store.DashboardEntry
		var status string

		err := rows.Scan(
			&entry.Item.ID,
			&entry.Item.UserID,
			&entry.Item.MaterialID,
			&entry.Item.Progress,
			&entry.Item.CreatedAt,
			&entry.Topic,
			&entry.Difficulty,
			&status,
		)
		if err != nil {
			log.Error("failed to scan dashboard row", slog.String("error", err.Error()))
			return nil, err
		}

		entry.Status = domain.MaterialStatus(status)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("found dashboard entries",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(entries)))
	return entries, nil
}

// WithTx implements store.DashboardStore.WithTx
func (s *PostgresDashboardStore) WithTx(tx *sql.Tx) store.DashboardStore {
	return &PostgresDashboardStore{
		db:     tx,
		logger: s.logger,
	}
}
