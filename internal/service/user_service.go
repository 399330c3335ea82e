package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/events"
	"github.com/studyforge/studyforge-api/internal/store"
	"github.com/studyforge/studyforge-api/internal/task"
)

// UserService provides user account operations.
type UserService interface {
	// SignUp emits a provisioning event for the given sign-up identity.
	// Provisioning is idempotent, so re-delivery of the same identity is
	// safe; the worker materializes the account and its welcome bonus.
	SignUp(ctx context.Context, externalID, email, name string) error

	// GetUser retrieves a user by internal ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetUserByExternalID retrieves a user by sign-up identity.
	GetUserByExternalID(ctx context.Context, externalID string) (*domain.User, error)

	// GetLedger retrieves the user's credit ledger entries, newest first.
	GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CreditEntry, error)
}

// UserServiceError wraps errors from the user service with context.
type UserServiceError struct {
	// Operation is the operation that failed (e.g., "sign_up", "get_user")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for UserServiceError.
func (e *UserServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("user service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("user service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *UserServiceError) Unwrap() error {
	return e.Err
}

// NewUserServiceError creates a new UserServiceError.
// It returns known sentinel errors directly without wrapping.
func NewUserServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrUserNotFound) {
		return ErrUserNotFound
	}
	if errors.Is(err, store.ErrUserNotFound) {
		return ErrUserNotFound
	}

	return &UserServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	users        store.UserStore
	ledger       store.LedgerStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	users store.UserStore,
	ledger store.LedgerStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (UserService, error) {
	if users == nil {
		return nil, &UserServiceError{
			Operation: "create_service",
			Message:   "users cannot be nil",
		}
	}
	if ledger == nil {
		return nil, &UserServiceError{
			Operation: "create_service",
			Message:   "ledger cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &UserServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		users:        users,
		ledger:       ledger,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "user_service"),
	}, nil
}

// SignUp emits a provisioning event for the given sign-up identity.
func (s *userServiceImpl) SignUp(ctx context.Context, externalID, email, name string) error {
	if externalID == "" {
		return NewUserServiceError("sign_up", "external ID is required", domain.ErrEmptyExternalID)
	}
	if email == "" {
		return NewUserServiceError("sign_up", "email is required", domain.ErrEmptyEmail)
	}

	payload := struct {
		ExternalID string `json:"external_id"`
		Email      string `json:"email"`
		Name       string `json:"name"`
	}{
		ExternalID: externalID,
		Email:      email,
		Name:       name,
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeUserProvision, payload)
	if err != nil {
		s.logger.Error("failed to create provisioning event",
			"error", err,
			"external_id", externalID)
		return NewUserServiceError("sign_up", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit provisioning event",
			"error", err,
			"external_id", externalID,
			"event_id", event.ID)
		return NewUserServiceError("sign_up", "failed to emit event", err)
	}

	s.logger.Info("provisioning event emitted",
		"external_id", externalID,
		"event_id", event.ID)

	return nil
}

// GetUser retrieves a user by internal ID.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to retrieve user",
			"error", err,
			"user_id", userID)
		return nil, NewUserServiceError("get_user", "failed to retrieve user", err)
	}

	return user, nil
}

// GetUserByExternalID retrieves a user by sign-up identity.
func (s *userServiceImpl) GetUserByExternalID(
	ctx context.Context,
	externalID string,
) (*domain.User, error) {
	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		s.logger.Error("failed to retrieve user by external ID",
			"error", err,
			"external_id", externalID)
		return nil, NewUserServiceError("get_user", "failed to retrieve user", err)
	}

	return user, nil
}

// GetLedger retrieves the user's credit ledger entries, newest first.
func (s *userServiceImpl) GetLedger(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.CreditEntry, error) {
	entries, err := s.ledger.FindByUser(ctx, userID, limit)
	if err != nil {
		s.logger.Error("failed to retrieve ledger",
			"error", err,
			"user_id", userID)
		return nil, NewUserServiceError("get_ledger", "failed to retrieve ledger entries", err)
	}

	return entries, nil
}
