package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/platform/logger"
	"github.com/studyforge/studyforge-api/internal/store"
)

// PostgresMaterialStore implements the store.MaterialStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMaterialStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMaterialStore creates a new PostgreSQL implementation of the
// MaterialStore interface. If logger is nil, a default logger will be used.
func NewPostgresMaterialStore(db store.DBTX, logger *slog.Logger) *PostgresMaterialStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMaterialStore{
		db:     db,
		logger: logger.With(slog.String("component", "material_store")),
	}
}

// Ensure PostgresMaterialStore implements store.MaterialStore interface
var _ store.MaterialStore = (*PostgresMaterialStore)(nil)

// Create implements store.MaterialStore.Create
// The INSERT carries ON CONFLICT (request_id) DO NOTHING, so two
// invocations for the same request produce exactly one row regardless of
// interleaving. A create that lost the race reports success.
func (s *PostgresMaterialStore) Create(ctx context.Context, material *domain.StudyMaterial) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := material.Validate(); err != nil {
		log.Warn("material validation failed during create",
			slog.String("error", err.Error()),
			slog.String("material_id", material.ID.String()))
		return err
	}

	layoutJSON, err := json.Marshal(material.Layout)
	if err != nil {
		return fmt.Errorf("failed to marshal material layout: %w", err)
	}

	query := `
		INSERT INTO study_materials (id, request_id, topic, difficulty_level, status, layout, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (request_id) DO NOTHING
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		material.ID,
		material.RequestID,
		material.Topic,
		material.DifficultyLevel,
		material.Status,
		layoutJSON,
		material.CreatedBy,
		material.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create study material",
			slog.String("error", err.Error()),
			slog.String("material_id", material.ID.String()))
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Info("material already exists for request, create suppressed",
			slog.String("material_id", material.ID.String()),
			slog.String("request_id", requestIDString(material.RequestID)))
		return nil
	}

	log.Info("study material created",
		slog.String("material_id", material.ID.String()),
		slog.String("topic", material.Topic),
		slog.String("request_id", requestIDString(material.RequestID)))
	return nil
}

// GetByID implements store.MaterialStore.GetByID
// Returns store.ErrMaterialNotFound if the material does not exist.
func (s *PostgresMaterialStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyMaterial, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, request_id, topic, difficulty_level, status, layout, created_by, created_at
		FROM study_materials
		WHERE id = $1
	`

	material, err := scanMaterial(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("study material not found", slog.String("material_id", id.String()))
			return nil, store.ErrMaterialNotFound
		}
		log.Error("failed to get study material by ID",
			slog.String("error", err.Error()),
			slog.String("material_id", id.String()))
		return nil, MapError(err)
	}

	return material, nil
}

// GetByRequestID implements store.MaterialStore.GetByRequestID
// Returns store.ErrMaterialNotFound when no material exists for the request.
func (s *PostgresMaterialStore) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*domain.StudyMaterial, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, request_id, topic, difficulty_level, status, layout, created_by, created_at
		FROM study_materials
		WHERE request_id = $1
	`

	material, err := scanMaterial(s.db.QueryRowContext(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no material for request", slog.String("request_id", requestID.String()))
			return nil, store.ErrMaterialNotFound
		}
		log.Error("failed to get study material by request ID",
			slog.String("error", err.Error()),
			slog.String("request_id", requestID.String()))
		return nil, MapError(err)
	}

	return material, nil
}

// WithTx implements store.MaterialStore.WithTx
func (s *PostgresMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore {
	return &PostgresMaterialStore{
		db:     tx,
		logger: s.logger,
	}
}

func scanMaterial(row rowScanner) (*domain.StudyMaterial, error) {
	var material domain.StudyMaterial
	var requestID uuid.NullUUID
	var status string
	var layoutJSON []byte

	err := row.Scan(
		&material.ID,
		&requestID,
		&material.Topic,
		&material.DifficultyLevel,
		&status,
		&layoutJSON,
		&material.CreatedBy,
		&material.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if requestID.Valid {
		id := requestID.UUID
		material.RequestID = &id
	}
	material.Status = domain.MaterialStatus(status)

	if err := json.Unmarshal(layoutJSON, &material.Layout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal material layout: %w", err)
	}

	return &material, nil
}

func requestIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
