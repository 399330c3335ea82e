package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/platform/logger"
	"github.com/studyforge/studyforge-api/internal/store"
)

// PostgresStudyRequestStore implements the store.StudyRequestStore
// interface using a PostgreSQL database as the storage backend.
type PostgresStudyRequestStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudyRequestStore creates a new PostgreSQL implementation of
// the StudyRequestStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStudyRequestStore(db store.DBTX, logger *slog.Logger) *PostgresStudyRequestStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudyRequestStore{
		db:     db,
		logger: logger.With(slog.String("component", "study_request_store")),
	}
}

// Ensure PostgresStudyRequestStore implements store.StudyRequestStore interface
var _ store.StudyRequestStore = (*PostgresStudyRequestStore)(nil)

const studyRequestColumns = `id, user_id, topic, purpose, difficulty, status,
		model, prompt, output, error_message, created_at, updated_at`

// Create implements store.StudyRequestStore.Create
// It saves a new study request to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the user ID doesn't exist.
func (s *PostgresStudyRequestStore) Create(ctx context.Context, req *domain.StudyRequest) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := req.Validate(); err != nil {
		log.Warn("study request validation failed during create",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return err
	}

	query := `
		INSERT INTO study_requests (id, user_id, topic, purpose, difficulty, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		req.ID,
		req.UserID,
		req.Topic,
		req.Purpose,
		req.Difficulty,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during study request creation",
				slog.String("request_id", req.ID.String()),
				slog.String("user_id", req.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, req.UserID)
		}

		log.Error("failed to create study request",
			slog.String("error", err.Error()),
			slog.String("request_id", req.ID.String()))
		return MapError(err)
	}

	log.Info("study request created",
		slog.String("request_id", req.ID.String()),
		slog.String("user_id", req.UserID.String()),
		slog.String("topic", req.Topic))
	return nil
}

// GetByID implements store.StudyRequestStore.GetByID
// Returns store.ErrRequestNotFound if the request does not exist.
func (s *PostgresStudyRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + studyRequestColumns + `
		FROM study_requests
		WHERE id = $1
	`

	req, err := scanStudyRequest(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("study request not found", slog.String("request_id", id.String()))
			return nil, store.ErrRequestNotFound
		}
		log.Error("failed to get study request by ID",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return nil, MapError(err)
	}

	return req, nil
}

// MarkProcessing implements store.StudyRequestStore.MarkProcessing
// The UPDATE is conditional on the current status, so two workers racing
// on the same request cannot both believe they own it after a terminal
// state has been written.
func (s *PostgresStudyRequestStore) MarkProcessing(
	ctx context.Context,
	id uuid.UUID,
) (domain.StudyRequestStatus, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE study_requests
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status IN ($4, $5)
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.StudyRequestStatusProcessing,
		time.Now().UTC(),
		id,
		domain.StudyRequestStatusQueued,
		domain.StudyRequestStatusProcessing,
	)
	if err != nil {
		log.Error("failed to mark study request processing",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return "", false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		log.Debug("study request marked processing", slog.String("request_id", id.String()))
		return domain.StudyRequestStatusProcessing, true, nil
	}

	// The conditional write did not apply. Read the row to distinguish a
	// terminal request from a missing one.
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return "", false, err
	}

	log.Debug("study request already terminal, transition skipped",
		slog.String("request_id", id.String()),
		slog.String("status", string(current.Status)))
	return current.Status, false, nil
}

// MarkCompleted implements store.StudyRequestStore.MarkCompleted
// Returns store.ErrRequestNotFound if the request does not exist.
func (s *PostgresStudyRequestStore) MarkCompleted(
	ctx context.Context,
	id uuid.UUID,
	model, prompt, output string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE study_requests
		SET status = $1, model = $2, prompt = $3, output = $4, error_message = NULL, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.StudyRequestStatusCompleted,
		model,
		prompt,
		output,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to mark study request completed",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return MapError(err)
	}

	if err := checkRequestAffected(result, id); err != nil {
		return err
	}

	log.Info("study request completed",
		slog.String("request_id", id.String()),
		slog.String("model", model))
	return nil
}

// MarkFailed implements store.StudyRequestStore.MarkFailed
// Returns store.ErrRequestNotFound if the request does not exist.
func (s *PostgresStudyRequestStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE study_requests
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		domain.StudyRequestStatusFailed,
		errMsg,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to mark study request failed",
			slog.String("error", err.Error()),
			slog.String("request_id", id.String()))
		return MapError(err)
	}

	if err := checkRequestAffected(result, id); err != nil {
		return err
	}

	log.Info("study request failed",
		slog.String("request_id", id.String()),
		slog.String("reason", errMsg))
	return nil
}

// FindByStatus implements store.StudyRequestStore.FindByStatus
// It retrieves requests in the given status, oldest first, so startup
// recovery replays interrupted work in submission order. A limit of zero
// or less returns every matching row; recovery must see all of them or
// interrupted requests would sit unfinished until another restart.
func (s *PostgresStudyRequestStore) FindByStatus(
	ctx context.Context,
	status domain.StudyRequestStatus,
	limit int,
) ([]*domain.StudyRequest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + studyRequestColumns + `
		FROM study_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []any{status}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query study requests by status",
			slog.String("error", err.Error()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	requests := []*domain.StudyRequest{}
	for rows.Next() {
		req, err := scanStudyRequest(rows)
		if err != nil {
			log.Error("failed to scan study request row", slog.String("error", err.Error()))
			return nil, err
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("found study requests by status",
		slog.String("status", string(status)),
		slog.Int("count", len(requests)))
	return requests, nil
}

// WithTx implements store.StudyRequestStore.WithTx
func (s *PostgresStudyRequestStore) WithTx(tx *sql.Tx) store.StudyRequestStore {
	return &PostgresStudyRequestStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudyRequest(row rowScanner) (*domain.StudyRequest, error) {
	var req domain.StudyRequest
	var status string
	var model, prompt, output, errMsg sql.NullString

	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Topic,
		&req.Purpose,
		&req.Difficulty,
		&status,
		&model,
		&prompt,
		&output,
		&errMsg,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	req.Status = domain.StudyRequestStatus(status)
	req.Model = model.String
	req.Prompt = prompt.String
	req.Output = output.String
	req.Error = errMsg.String
	return &req, nil
}

func checkRequestAffected(result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: study request %s", store.ErrRequestNotFound, id)
	}
	return nil
}
