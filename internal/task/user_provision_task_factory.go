package task

import (
	"log/slog"

	"github.com/studyforge/studyforge-api/internal/store"
)

// UserProvisionTaskFactory creates UserProvisionTask instances
type UserProvisionTaskFactory struct {
	tx     store.TxRunner
	users  store.UserStore
	ledger store.LedgerStore
	logger *slog.Logger
}

// NewUserProvisionTaskFactory creates a new factory for UserProvisionTasks
func NewUserProvisionTaskFactory(
	tx store.TxRunner,
	users store.UserStore,
	ledger store.LedgerStore,
	logger *slog.Logger,
) *UserProvisionTaskFactory {
	return &UserProvisionTaskFactory{
		tx:     tx,
		users:  users,
		ledger: ledger,
		logger: logger.With("component", "user_provision_task_factory"),
	}
}

// CreateTask creates a new UserProvisionTask for the given identity
func (f *UserProvisionTaskFactory) CreateTask(externalID, email, name string) (Task, error) {
	task, err := NewUserProvisionTask(
		externalID,
		email,
		name,
		f.tx,
		f.users,
		f.ledger,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
