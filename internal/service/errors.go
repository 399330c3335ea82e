package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrRequestNotFound indicates that the study request does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrRequestNotFound = errors.New("study request not found")

	// ErrMaterialNotFound indicates that the study material does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrMaterialNotFound = errors.New("study material not found")

	// ErrUserNotFound indicates that the user does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientCredits indicates the user has no remaining credits
	// for a generation. API layer should map this to HTTP 402 Payment Required.
	ErrInsufficientCredits = errors.New("insufficient credits")
)
