package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/store"
)

// MockStudyService is a mock implementation of service.StudyService for testing
type MockStudyService struct {
	CreateRequestAndEnqueueFn func(ctx context.Context, userID uuid.UUID, topic, purpose, difficulty string) (*domain.StudyRequest, error)
	GetRequestFn              func(ctx context.Context, requestID uuid.UUID) (*domain.StudyRequest, error)
	CreateMaterialSyncFn      func(ctx context.Context, userID uuid.UUID, topic, purpose, difficulty string) (*domain.StudyMaterial, error)
	GetMaterialFn             func(ctx context.Context, materialID uuid.UUID) (*domain.StudyMaterial, error)
	ListDashboardFn           func(ctx context.Context, userID uuid.UUID) ([]*store.DashboardEntry, error)
	AddDashboardItemFn        func(ctx context.Context, userID, materialID uuid.UUID) (*domain.DashboardItem, error)
}

func (m *MockStudyService) CreateRequestAndEnqueue(
	ctx context.Context,
	userID uuid.UUID,
	topic, purpose, difficulty string,
) (*domain.StudyRequest, error) {
	if m.CreateRequestAndEnqueueFn != nil {
		return m.CreateRequestAndEnqueueFn(ctx, userID, topic, purpose, difficulty)
	}
	return nil, nil
}

func (m *MockStudyService) GetRequest(
	ctx context.Context,
	requestID uuid.UUID,
) (*domain.StudyRequest, error) {
	if m.GetRequestFn != nil {
		return m.GetRequestFn(ctx, requestID)
	}
	return nil, nil
}

func (m *MockStudyService) CreateMaterialSync(
	ctx context.Context,
	userID uuid.UUID,
	topic, purpose, difficulty string,
) (*domain.StudyMaterial, error) {
	if m.CreateMaterialSyncFn != nil {
		return m.CreateMaterialSyncFn(ctx, userID, topic, purpose, difficulty)
	}
	return nil, nil
}

func (m *MockStudyService) GetMaterial(
	ctx context.Context,
	materialID uuid.UUID,
) (*domain.StudyMaterial, error) {
	if m.GetMaterialFn != nil {
		return m.GetMaterialFn(ctx, materialID)
	}
	return nil, nil
}

func (m *MockStudyService) ListDashboard(
	ctx context.Context,
	userID uuid.UUID,
) ([]*store.DashboardEntry, error) {
	if m.ListDashboardFn != nil {
		return m.ListDashboardFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockStudyService) AddDashboardItem(
	ctx context.Context,
	userID, materialID uuid.UUID,
) (*domain.DashboardItem, error) {
	if m.AddDashboardItemFn != nil {
		return m.AddDashboardItemFn(ctx, userID, materialID)
	}
	return nil, nil
}

// MockUserService is a mock implementation of service.UserService for testing
type MockUserService struct {
	SignUpFn              func(ctx context.Context, externalID, email, name string) error
	GetUserFn             func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetUserByExternalIDFn func(ctx context.Context, externalID string) (*domain.User, error)
	GetLedgerFn           func(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.CreditEntry, error)
}

func (m *MockUserService) SignUp(ctx context.Context, externalID, email, name string) error {
	if m.SignUpFn != nil {
		return m.SignUpFn(ctx, externalID, email, name)
	}
	return nil
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *MockUserService) GetUserByExternalID(
	ctx context.Context,
	externalID string,
) (*domain.User, error) {
	if m.GetUserByExternalIDFn != nil {
		return m.GetUserByExternalIDFn(ctx, externalID)
	}
	return nil, nil
}

func (m *MockUserService) GetLedger(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.CreditEntry, error) {
	if m.GetLedgerFn != nil {
		return m.GetLedgerFn(ctx, userID, limit)
	}
	return nil, nil
}
