package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/service"
)

func TestUserHandler_SignUp(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockUserService)
		expectedStatus int
	}{
		{
			name: "valid sign-up returns 202",
			requestBody: SignUpRequest{
				ExternalID: "auth0|u-1",
				Email:      "ada@example.com",
				Name:       "Ada",
			},
			setupMock: func(ms *MockUserService) {
				ms.SignUpFn = func(ctx context.Context, externalID, email, name string) error {
					assert.Equal(t, "auth0|u-1", externalID)
					return nil
				}
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name: "re-delivery of the same identity still returns 202",
			requestBody: SignUpRequest{
				ExternalID: "auth0|u-1",
				Email:      "ada@example.com",
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "missing external ID fails validation",
			requestBody:    SignUpRequest{Email: "ada@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed email fails validation",
			requestBody:    SignUpRequest{ExternalID: "auth0|u-1", Email: "not-an-email"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockUserService{}
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}
			handler := NewUserHandler(mock)

			req := postJSON(t, "/api/users", tt.requestBody)
			rec := httptest.NewRecorder()

			handler.SignUp(rec, req)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestUserHandler_GetMe(t *testing.T) {
	userID := uuid.New()

	t.Run("returns the caller's account", func(t *testing.T) {
		mock := &MockUserService{
			GetUserFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
				user, err := domain.NewUser("auth0|u-1", "ada@example.com", "Ada")
				require.NoError(t, err)
				user.ID = id
				user.UsedCredits = 2
				return user, nil
			},
		}
		handler := NewUserHandler(mock)

		req := withUserID(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), userID)
		rec := httptest.NewRecorder()

		handler.GetMe(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp UserResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, userID.String(), resp.ID)
		assert.Equal(t, domain.WelcomeCredits, resp.Credits)
		assert.Equal(t, 2, resp.UsedCredits)
	})

	t.Run("unknown caller returns 404", func(t *testing.T) {
		mock := &MockUserService{
			GetUserFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
				return nil, service.ErrUserNotFound
			},
		}
		handler := NewUserHandler(mock)

		req := withUserID(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), userID)
		rec := httptest.NewRecorder()

		handler.GetMe(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing identity returns 401", func(t *testing.T) {
		handler := NewUserHandler(&MockUserService{})

		rec := httptest.NewRecorder()
		handler.GetMe(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUserHandler_GetLedger(t *testing.T) {
	userID := uuid.New()

	t.Run("passes limit through and converts entries", func(t *testing.T) {
		mock := &MockUserService{
			GetLedgerFn: func(ctx context.Context, id uuid.UUID, limit int) ([]*domain.CreditEntry, error) {
				assert.Equal(t, 5, limit)
				entry, err := domain.NewCreditEntry(id, nil, domain.WelcomeCredits, domain.CreditReasonWelcomeBonus)
				require.NoError(t, err)
				return []*domain.CreditEntry{entry}, nil
			},
		}
		handler := NewUserHandler(mock)

		req := withUserID(
			httptest.NewRequest(http.MethodGet, "/api/users/me/ledger?limit=5", nil),
			userID,
		)
		rec := httptest.NewRecorder()

		handler.GetLedger(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []LedgerEntryResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		require.Len(t, resp, 1)
		assert.Equal(t, domain.WelcomeCredits, resp[0].Delta)
		assert.Equal(t, domain.CreditReasonWelcomeBonus, resp[0].Reason)
	})

	t.Run("negative limit returns 400", func(t *testing.T) {
		handler := NewUserHandler(&MockUserService{})

		req := withUserID(
			httptest.NewRequest(http.MethodGet, "/api/users/me/ledger?limit=-1", nil),
			userID,
		)
		rec := httptest.NewRecorder()

		handler.GetLedger(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
