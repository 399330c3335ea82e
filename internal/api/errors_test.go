package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/service"
	"github.com/studyforge/studyforge-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"request not found", service.ErrRequestNotFound, http.StatusNotFound},
		{"material not found", service.ErrMaterialNotFound, http.StatusNotFound},
		{"user not found", service.ErrUserNotFound, http.StatusNotFound},
		{"store not found", store.ErrRequestNotFound, http.StatusNotFound},
		{"insufficient credits", service.ErrInsufficientCredits, http.StatusPaymentRequired},
		{"domain insufficient credits", domain.ErrInsufficientCredits, http.StatusPaymentRequired},
		{"duplicate", store.ErrExternalIDExists, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"wrapped sentinel", fmt.Errorf("context: %w", service.ErrMaterialNotFound), http.StatusNotFound},
		{"domain validation class", domain.ErrValidation, http.StatusBadRequest},
		{"specific validation sentinel", domain.ErrEmptyRequestTopic, http.StatusBadRequest},
		{
			"validation sentinel through service layer",
			fmt.Errorf("create request: %w", domain.ErrEmptyRequestDifficulty),
			http.StatusBadRequest,
		},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "Study request not found", GetSafeErrorMessage(service.ErrRequestNotFound))
	assert.Equal(t, "Insufficient credits", GetSafeErrorMessage(service.ErrInsufficientCredits))
	assert.Equal(
		t,
		"An unexpected error occurred",
		GetSafeErrorMessage(errors.New("postgres://u:pw@host exploded")),
	)
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}
