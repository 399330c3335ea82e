package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/platform/metrics"
	"github.com/studyforge/studyforge-api/internal/store"
)

// Provisioning input errors, all non-retryable.
var (
	ErrNilUserStore      = errors.New("user store cannot be nil")
	ErrNilLedgerStore    = errors.New("ledger store cannot be nil")
	ErrNilTxRunner       = errors.New("transaction runner cannot be nil")
	ErrMissingExternalID = errors.New("external identity cannot be empty")
	ErrMissingEmail      = errors.New("email cannot be empty")
)

// userProvisionPayload represents the serialized data carried by the task
type userProvisionPayload struct {
	ExternalID string `json:"external_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
}

// UserProvisionTask materializes a user account from a sign-up event and
// grants the one-time welcome credit bonus. It is idempotent: a second
// delivery for the same identity finds the existing account and stops.
type UserProvisionTask struct {
	id         uuid.UUID
	externalID string
	email      string
	name       string
	tx         store.TxRunner
	users      store.UserStore
	ledger     store.LedgerStore
	logger     *slog.Logger
	status     TaskStatus
}

// NewUserProvisionTask creates a new provisioning task. Missing email or
// external identity fails construction; there is nothing a retry could
// do with an unidentifiable sign-up.
func NewUserProvisionTask(
	externalID, email, name string,
	tx store.TxRunner,
	users store.UserStore,
	ledger store.LedgerStore,
	logger *slog.Logger,
) (*UserProvisionTask, error) {
	if tx == nil {
		return nil, ErrNilTxRunner
	}
	if users == nil {
		return nil, ErrNilUserStore
	}
	if ledger == nil {
		return nil, ErrNilLedgerStore
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if externalID == "" {
		return nil, ErrMissingExternalID
	}
	if email == "" {
		return nil, ErrMissingEmail
	}

	return &UserProvisionTask{
		id:         uuid.New(),
		externalID: externalID,
		email:      email,
		name:       name,
		tx:         tx,
		users:      users,
		ledger:     ledger,
		logger:     logger.With("task_type", TaskTypeUserProvision, "external_id", externalID),
		status:     TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *UserProvisionTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *UserProvisionTask) Type() string {
	return TaskTypeUserProvision
}

// Payload returns the task data as a byte slice
func (t *UserProvisionTask) Payload() []byte {
	data, err := json.Marshal(userProvisionPayload{
		ExternalID: t.externalID,
		Email:      t.email,
		Name:       t.name,
	})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *UserProvisionTask) Status() TaskStatus {
	return t.status
}

// Execute provisions the account. The user row and the welcome ledger
// entry are written in one transaction; the unique external_id
// constraint closes the race where two deliveries both observe "not
// found" and both try to insert.
func (t *UserProvisionTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting user provisioning task")

	existing, err := t.users.GetByExternalID(ctx, t.externalID)
	if err == nil {
		t.logger.Info("user already provisioned", "user_id", existing.ID)
		metrics.IncUserProvisioned("existing")
		t.status = TaskStatusCompleted
		return nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to look up user: %w", err)
	}

	user, err := domain.NewUser(t.externalID, t.email, t.name)
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to build user: %w", err)
	}

	err = t.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := t.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}

		entry, err := domain.NewCreditEntry(user.ID, nil, domain.WelcomeCredits, domain.CreditReasonWelcomeBonus)
		if err != nil {
			return err
		}
		return t.ledger.WithTx(tx).Append(ctx, entry)
	})

	if err != nil {
		// Lost the insert race: some other delivery created the account
		// first, which is exactly the idempotent outcome we want.
		if errors.Is(err, store.ErrExternalIDExists) {
			t.logger.Info("user provisioned concurrently, nothing to do")
			metrics.IncUserProvisioned("existing")
			t.status = TaskStatusCompleted
			return nil
		}

		t.status = TaskStatusFailed
		t.logger.Error("failed to provision user", "error", err)
		return fmt.Errorf("failed to provision user: %w", err)
	}

	metrics.IncUserProvisioned("created")
	t.status = TaskStatusCompleted
	t.logger.Info("user provisioned",
		"user_id", user.ID,
		"welcome_credits", domain.WelcomeCredits)
	return nil
}
