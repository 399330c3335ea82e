package api

import (
	"errors"
	"net/http"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/service"
	"github.com/studyforge/studyforge-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrMaterialNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Credit exhaustion
	case errors.Is(err, service.ErrInsufficientCredits),
		errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusPaymentRequired

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		return "Study request not found"

	case errors.Is(err, service.ErrMaterialNotFound):
		return "Study material not found"

	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrInsufficientCredits),
		errors.Is(err, domain.ErrInsufficientCredits):
		return "Insufficient credits"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}
