package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/events"
	"github.com/studyforge/studyforge-api/internal/generation"
	"github.com/studyforge/studyforge-api/internal/store"
	"github.com/studyforge/studyforge-api/internal/task"
)

// StudyService provides study request and material operations.
type StudyService interface {
	// CreateRequestAndEnqueue debits one credit, records the study request
	// with queued status and emits a generation event for the background
	// worker. The debit, ledger entry and request insert commit atomically.
	CreateRequestAndEnqueue(
		ctx context.Context,
		userID uuid.UUID,
		topic, purpose, difficulty string,
	) (*domain.StudyRequest, error)

	// GetRequest retrieves a study request by its ID.
	GetRequest(ctx context.Context, requestID uuid.UUID) (*domain.StudyRequest, error)

	// CreateMaterialSync debits one credit and calls the generator inline,
	// returning the persisted material. The material carries no request
	// linkage and is added to the caller's dashboard.
	CreateMaterialSync(
		ctx context.Context,
		userID uuid.UUID,
		topic, purpose, difficulty string,
	) (*domain.StudyMaterial, error)

	// GetMaterial retrieves a study material by its ID.
	GetMaterial(ctx context.Context, materialID uuid.UUID) (*domain.StudyMaterial, error)

	// ListDashboard retrieves the user's dashboard entries, newest first.
	ListDashboard(ctx context.Context, userID uuid.UUID) ([]*store.DashboardEntry, error)

	// AddDashboardItem places a material on the user's dashboard.
	// Adding a material that is already there is a no-op.
	AddDashboardItem(ctx context.Context, userID, materialID uuid.UUID) (*domain.DashboardItem, error)
}

// StudyServiceError wraps errors from the study service with context.
type StudyServiceError struct {
	// Operation is the operation that failed (e.g., "create_request", "get_material")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for StudyServiceError.
func (e *StudyServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("study service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("study service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StudyServiceError) Unwrap() error {
	return e.Err
}

// NewStudyServiceError creates a new StudyServiceError.
// It returns known sentinel errors directly without wrapping.
func NewStudyServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	// Check for service-defined sentinel errors
	if errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrMaterialNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrInsufficientCredits) {
		return err
	}

	// Check for store-level sentinel errors that should be mapped to service-level ones
	if errors.Is(err, store.ErrRequestNotFound) {
		return ErrRequestNotFound
	}
	if errors.Is(err, store.ErrMaterialNotFound) {
		return ErrMaterialNotFound
	}
	if errors.Is(err, store.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if errors.Is(err, domain.ErrInsufficientCredits) {
		return ErrInsufficientCredits
	}

	// If not a sentinel to be returned directly, wrap it
	return &StudyServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// studyServiceImpl implements the StudyService interface
type studyServiceImpl struct {
	txRunner     store.TxRunner
	users        store.UserStore
	requests     store.StudyRequestStore
	materials    store.MaterialStore
	ledger       store.LedgerStore
	dashboard    store.DashboardStore
	generator    generation.Generator
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewStudyService creates a new StudyService.
// It returns an error if any of the required dependencies are nil.
func NewStudyService(
	txRunner store.TxRunner,
	users store.UserStore,
	requests store.StudyRequestStore,
	materials store.MaterialStore,
	ledger store.LedgerStore,
	dashboard store.DashboardStore,
	generator generation.Generator,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (StudyService, error) {
	// Validate dependencies
	if txRunner == nil {
		return nil, &StudyServiceError{
			Operation: "create_service",
			Message:   "txRunner cannot be nil",
		}
	}
	if users == nil {
		return nil, &StudyServiceError{
			Operation: "create_service",
			Message:   "users cannot be nil",
		}
	}
	if requests == nil {
		return nil, &StudyServiceError{
			Operation: "create_service",
			Message:   "requests cannot be nil",
		}
	}
	if materials == nil {
		return nil, &StudyServiceError{
			Operation: "create_service",
			Message:   "materials cannot be nil",
		}
	}
	if ledger == nil {
		return nil, &StudyServiceError{
			Operation: "create_service",
			Message:   "ledger cannot be nil",
		}
	}
	if dashboard == nil {
		return nil, &StudyServiceError{
			Operation: "create_service",
			Message:   "dashboard cannot be nil",
		}
	}
	if generator == nil {
		return nil, &StudyServiceError{
			Operation: "create_service",
			Message:   "generator cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &StudyServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		txRunner:     txRunner,
		users:        users,
		requests:     requests,
		materials:    materials,
		ledger:       ledger,
		dashboard:    dashboard,
		generator:    generator,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "study_service"),
	}, nil
}

// CreateRequestAndEnqueue creates a new study request with queued status and
// emits an event for the background generation worker. The credit debit, the
// ledger entry and the request row commit in one transaction, so a rejected
// debit leaves no trace of the request.
func (s *studyServiceImpl) CreateRequestAndEnqueue(
	ctx context.Context,
	userID uuid.UUID,
	topic, purpose, difficulty string,
) (*domain.StudyRequest, error) {
	req, err := domain.NewStudyRequest(userID, topic, purpose, difficulty)
	if err != nil {
		s.logger.Error("failed to create study request object",
			"error", err,
			"user_id", userID)
		return nil, NewStudyServiceError("create_request", "failed to create study request object", err)
	}

	if err := s.debitAndRun(ctx, userID, &req.ID, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.requests.WithTx(tx).Create(ctx, req); err != nil {
			s.logger.Error("failed to create study request in transaction",
				"error", err,
				"user_id", userID,
				"request_id", req.ID)
			return NewStudyServiceError("create_request", "failed to save study request", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.logger.Info("study request created with queued status",
		"request_id", req.ID,
		"user_id", userID,
		"topic", topic)

	payload := struct {
		RequestID uuid.UUID `json:"request_id"`
	}{
		RequestID: req.ID,
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeStudyGeneration, payload)
	if err != nil {
		s.logger.Error("failed to create generation event",
			"error", err,
			"request_id", req.ID)
		return nil, NewStudyServiceError("create_request", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		// The request row survives; startup recovery re-enqueues it.
		s.logger.Error("failed to emit generation event",
			"error", err,
			"request_id", req.ID,
			"event_id", event.ID)
		return nil, NewStudyServiceError("create_request", "failed to emit event", err)
	}

	s.logger.Info("generation event emitted",
		"request_id", req.ID,
		"user_id", userID,
		"event_id", event.ID)

	return req, nil
}

// GetRequest retrieves a study request by its ID.
func (s *studyServiceImpl) GetRequest(
	ctx context.Context,
	requestID uuid.UUID,
) (*domain.StudyRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		s.logger.Error("failed to retrieve study request",
			"error", err,
			"request_id", requestID)
		return nil, NewStudyServiceError("get_request", "failed to retrieve study request", err)
	}

	return req, nil
}

// CreateMaterialSync debits one credit, calls the generator inline and
// persists the material together with a dashboard item. A generation
// failure after the debit does not refund the credit, matching the
// queued path where attempts also consume the credit up front.
func (s *studyServiceImpl) CreateMaterialSync(
	ctx context.Context,
	userID uuid.UUID,
	topic, purpose, difficulty string,
) (*domain.StudyMaterial, error) {
	if err := s.debitAndRun(ctx, userID, nil, nil); err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(ctx, generation.Request{
		Purpose:    purpose,
		Topic:      topic,
		Difficulty: difficulty,
	})
	if err != nil {
		s.logger.Error("synchronous generation failed",
			"error", err,
			"user_id", userID,
			"topic", topic)
		return nil, NewStudyServiceError("create_material", "generation failed", err)
	}

	layout := domain.NewStructuredLayout(result.Layout)
	if result.Layout == nil {
		layout = domain.NewRawLayout(result.RawOutput)
	}

	material, err := domain.NewStudyMaterial(userID, nil, topic, difficulty, layout)
	if err != nil {
		return nil, NewStudyServiceError("create_material", "failed to create material object", err)
	}

	item, err := domain.NewDashboardItem(userID, material.ID)
	if err != nil {
		return nil, NewStudyServiceError("create_material", "failed to create dashboard item", err)
	}

	err = s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.materials.WithTx(tx).Create(ctx, material); err != nil {
			return NewStudyServiceError("create_material", "failed to save material", err)
		}
		if err := s.dashboard.WithTx(tx).Create(ctx, item); err != nil {
			return NewStudyServiceError("create_material", "failed to save dashboard item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("material created synchronously",
		"material_id", material.ID,
		"user_id", userID,
		"model", result.Model)

	return material, nil
}

// GetMaterial retrieves a study material by its ID.
func (s *studyServiceImpl) GetMaterial(
	ctx context.Context,
	materialID uuid.UUID,
) (*domain.StudyMaterial, error) {
	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		s.logger.Error("failed to retrieve study material",
			"error", err,
			"material_id", materialID)
		return nil, NewStudyServiceError("get_material", "failed to retrieve study material", err)
	}

	return material, nil
}

// ListDashboard retrieves the user's dashboard entries, newest first.
func (s *studyServiceImpl) ListDashboard(
	ctx context.Context,
	userID uuid.UUID,
) ([]*store.DashboardEntry, error) {
	entries, err := s.dashboard.FindByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list dashboard",
			"error", err,
			"user_id", userID)
		return nil, NewStudyServiceError("list_dashboard", "failed to list dashboard entries", err)
	}

	return entries, nil
}

// AddDashboardItem places a material on the user's dashboard.
func (s *studyServiceImpl) AddDashboardItem(
	ctx context.Context,
	userID, materialID uuid.UUID,
) (*domain.DashboardItem, error) {
	// Verify the material exists so a bad ID surfaces as not-found
	// rather than a silent foreign key failure.
	if _, err := s.materials.GetByID(ctx, materialID); err != nil {
		return nil, NewStudyServiceError("add_dashboard_item", "failed to retrieve material", err)
	}

	item, err := domain.NewDashboardItem(userID, materialID)
	if err != nil {
		return nil, NewStudyServiceError("add_dashboard_item", "failed to create dashboard item", err)
	}

	if err := s.dashboard.Create(ctx, item); err != nil {
		s.logger.Error("failed to save dashboard item",
			"error", err,
			"user_id", userID,
			"material_id", materialID)
		return nil, NewStudyServiceError("add_dashboard_item", "failed to save dashboard item", err)
	}

	return item, nil
}

// debitAndRun consumes one credit inside a transaction, appends the matching
// ledger entry, then runs fn (when non-nil) in the same transaction.
func (s *studyServiceImpl) debitAndRun(
	ctx context.Context,
	userID uuid.UUID,
	requestID *uuid.UUID,
	fn store.TxFn,
) error {
	entry, err := domain.NewCreditEntry(userID, requestID, -1, domain.CreditReasonGeneration)
	if err != nil {
		return NewStudyServiceError("debit_credit", "failed to create ledger entry", err)
	}

	return s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).DebitCredit(ctx, userID); err != nil {
			s.logger.Warn("credit debit rejected",
				"error", err,
				"user_id", userID)
			return NewStudyServiceError("debit_credit", "failed to debit credit", err)
		}
		if err := s.ledger.WithTx(tx).Append(ctx, entry); err != nil {
			return NewStudyServiceError("debit_credit", "failed to append ledger entry", err)
		}
		if fn != nil {
			return fn(ctx, tx)
		}
		return nil
	})
}
