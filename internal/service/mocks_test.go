package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/events"
	"github.com/studyforge/studyforge-api/internal/generation"
	"github.com/studyforge/studyforge-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxRunner runs the transaction function directly with a nil *sql.Tx.
// The store mocks ignore the transaction handle, so services exercise
// their transactional flow without a database.
type fakeTxRunner struct {
	err error
}

func (r *fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if r.err != nil {
		return r.err
	}
	return fn(ctx, nil)
}

type mockUserStore struct {
	createFn          func(ctx context.Context, user *domain.User) error
	getByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByExternalIDFn func(ctx context.Context, externalID string) (*domain.User, error)
	debitCreditFn     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserStore) GetByExternalID(
	ctx context.Context,
	externalID string,
) (*domain.User, error) {
	return m.getByExternalIDFn(ctx, externalID)
}

func (m *mockUserStore) DebitCredit(ctx context.Context, id uuid.UUID) error {
	return m.debitCreditFn(ctx, id)
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

type mockRequestStore struct {
	createFn  func(ctx context.Context, req *domain.StudyRequest) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.StudyRequest, error)
}

func (m *mockRequestStore) Create(ctx context.Context, req *domain.StudyRequest) error {
	return m.createFn(ctx, req)
}

func (m *mockRequestStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.StudyRequest, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockRequestStore) MarkProcessing(
	ctx context.Context,
	id uuid.UUID,
) (domain.StudyRequestStatus, bool, error) {
	return "", false, nil
}

func (m *mockRequestStore) MarkCompleted(
	ctx context.Context,
	id uuid.UUID,
	model, prompt, output string,
) error {
	return nil
}

func (m *mockRequestStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return nil
}

func (m *mockRequestStore) FindByStatus(
	ctx context.Context,
	status domain.StudyRequestStatus,
	limit int,
) ([]*domain.StudyRequest, error) {
	return nil, nil
}

func (m *mockRequestStore) WithTx(tx *sql.Tx) store.StudyRequestStore { return m }

type mockMaterialStore struct {
	createFn  func(ctx context.Context, material *domain.StudyMaterial) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*domain.StudyMaterial, error)
}

func (m *mockMaterialStore) Create(ctx context.Context, material *domain.StudyMaterial) error {
	return m.createFn(ctx, material)
}

func (m *mockMaterialStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*domain.StudyMaterial, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockMaterialStore) GetByRequestID(
	ctx context.Context,
	requestID uuid.UUID,
) (*domain.StudyMaterial, error) {
	return nil, store.ErrMaterialNotFound
}

func (m *mockMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore { return m }

type mockLedgerStore struct {
	appendFn     func(ctx context.Context, entry *domain.CreditEntry) error
	findByUserFn func(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CreditEntry, error)
}

func (m *mockLedgerStore) Append(ctx context.Context, entry *domain.CreditEntry) error {
	return m.appendFn(ctx, entry)
}

func (m *mockLedgerStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.CreditEntry, error) {
	return m.findByUserFn(ctx, userID, limit)
}

func (m *mockLedgerStore) WithTx(tx *sql.Tx) store.LedgerStore { return m }

type mockDashboardStore struct {
	createFn     func(ctx context.Context, item *domain.DashboardItem) error
	findByUserFn func(ctx context.Context, userID uuid.UUID) ([]*store.DashboardEntry, error)
}

func (m *mockDashboardStore) Create(ctx context.Context, item *domain.DashboardItem) error {
	return m.createFn(ctx, item)
}

func (m *mockDashboardStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*store.DashboardEntry, error) {
	return m.findByUserFn(ctx, userID)
}

func (m *mockDashboardStore) WithTx(tx *sql.Tx) store.DashboardStore { return m }

type mockGenerator struct {
	generateFn func(ctx context.Context, req generation.Request) (*generation.Result, error)
}

func (m *mockGenerator) Generate(
	ctx context.Context,
	req generation.Request,
) (*generation.Result, error) {
	return m.generateFn(ctx, req)
}

// mockEmitter records emitted events instead of dispatching them.
type mockEmitter struct {
	events []*events.TaskRequestEvent
	err    error
}

func (m *mockEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
