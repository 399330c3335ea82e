package task

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/generation"
	"github.com/studyforge/studyforge-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockRequestStore implements store.StudyRequestStore with function fields.
type mockRequestStore struct {
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.StudyRequest, error)
	markProcessingFn func(ctx context.Context, id uuid.UUID) (domain.StudyRequestStatus, bool, error)
	markCompletedFn  func(ctx context.Context, id uuid.UUID, model, prompt, output string) error
	markFailedFn     func(ctx context.Context, id uuid.UUID, errMsg string) error
	findByStatusFn   func(ctx context.Context, status domain.StudyRequestStatus, limit int) ([]*domain.StudyRequest, error)
}

func (m *mockRequestStore) Create(ctx context.Context, req *domain.StudyRequest) error {
	return nil
}

func (m *mockRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyRequest, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockRequestStore) MarkProcessing(ctx context.Context, id uuid.UUID) (domain.StudyRequestStatus, bool, error) {
	return m.markProcessingFn(ctx, id)
}

func (m *mockRequestStore) MarkCompleted(ctx context.Context, id uuid.UUID, model, prompt, output string) error {
	return m.markCompletedFn(ctx, id, model, prompt, output)
}

func (m *mockRequestStore) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return m.markFailedFn(ctx, id, errMsg)
}

func (m *mockRequestStore) FindByStatus(ctx context.Context, status domain.StudyRequestStatus, limit int) ([]*domain.StudyRequest, error) {
	return m.findByStatusFn(ctx, status, limit)
}

func (m *mockRequestStore) WithTx(tx *sql.Tx) store.StudyRequestStore { return m }

// mockMaterialStore implements store.MaterialStore with function fields.
type mockMaterialStore struct {
	createFn         func(ctx context.Context, material *domain.StudyMaterial) error
	getByRequestIDFn func(ctx context.Context, requestID uuid.UUID) (*domain.StudyMaterial, error)
}

func (m *mockMaterialStore) Create(ctx context.Context, material *domain.StudyMaterial) error {
	return m.createFn(ctx, material)
}

func (m *mockMaterialStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyMaterial, error) {
	return nil, store.ErrMaterialNotFound
}

func (m *mockMaterialStore) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*domain.StudyMaterial, error) {
	return m.getByRequestIDFn(ctx, requestID)
}

func (m *mockMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore { return m }

// mockUserStore implements store.UserStore with function fields.
type mockUserStore struct {
	createFn          func(ctx context.Context, user *domain.User) error
	getByExternalIDFn func(ctx context.Context, externalID string) (*domain.User, error)
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

func (m *mockUserStore) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return m.getByExternalIDFn(ctx, externalID)
}

func (m *mockUserStore) DebitCredit(ctx context.Context, id uuid.UUID) error { return nil }

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// mockLedgerStore implements store.LedgerStore with function fields.
type mockLedgerStore struct {
	appendFn func(ctx context.Context, entry *domain.CreditEntry) error
}

func (m *mockLedgerStore) Append(ctx context.Context, entry *domain.CreditEntry) error {
	return m.appendFn(ctx, entry)
}

func (m *mockLedgerStore) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CreditEntry, error) {
	return nil, nil
}

func (m *mockLedgerStore) WithTx(tx *sql.Tx) store.LedgerStore { return m }

// mockGenerator implements generation.Generator with a function field.
type mockGenerator struct {
	generateFn func(ctx context.Context, req generation.Request) (*generation.Result, error)
	calls      int
}

func (m *mockGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	m.calls++
	return m.generateFn(ctx, req)
}

// fakeClock records requested sleeps and returns instantly.
type fakeClock struct {
	slept []time.Duration
	err   error
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	return c.err
}

// fakeTxRunner runs the transactional function with a nil transaction;
// the mock stores ignore WithTx anyway.
type fakeTxRunner struct {
	err error
}

func (r fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if r.err != nil {
		return r.err
	}
	return fn(ctx, nil)
}
