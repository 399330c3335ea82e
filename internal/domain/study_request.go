package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StudyRequestStatus represents the processing state of a study request.
type StudyRequestStatus string

// Possible study request status values
const (
	StudyRequestStatusQueued     StudyRequestStatus = "queued"
	StudyRequestStatusProcessing StudyRequestStatus = "processing"
	StudyRequestStatusCompleted  StudyRequestStatus = "completed"
	StudyRequestStatusFailed     StudyRequestStatus = "failed"
)

// Common validation errors for StudyRequest. Each wraps ErrValidation so
// callers can match the whole class with a single errors.Is check.
var (
	ErrEmptyRequestID         = fmt.Errorf("%w: study request ID cannot be empty", ErrValidation)
	ErrEmptyRequestUserID     = fmt.Errorf("%w: study request user ID cannot be empty", ErrValidation)
	ErrEmptyRequestTopic      = fmt.Errorf("%w: study request topic cannot be empty", ErrValidation)
	ErrInvalidRequestStatus   = fmt.Errorf("%w: invalid study request status", ErrValidation)
	ErrEmptyRequestDifficulty = fmt.Errorf("%w: study request difficulty cannot be empty", ErrValidation)
)

// StudyRequest represents a user-submitted request to generate study
// material asynchronously. The record is the single source of truth for
// how far processing got: every status transition is persisted, so a
// worker re-invoked after a crash can observe current state and resume.
type StudyRequest struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"user_id"`
	Topic      string             `json:"topic"`
	Purpose    string             `json:"purpose"`
	Difficulty string             `json:"difficulty"`
	Status     StudyRequestStatus `json:"status"`

	// Model, Prompt and Output are set only when the request completes.
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt,omitempty"`
	Output string `json:"output,omitempty"`

	// Error holds the last failure description, set only on terminal failure.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStudyRequest creates a new StudyRequest in the queued state.
// Returns an error if validation fails.
func NewStudyRequest(userID uuid.UUID, topic, purpose, difficulty string) (*StudyRequest, error) {
	now := time.Now().UTC()
	req := &StudyRequest{
		ID:         uuid.New(),
		UserID:     userID,
		Topic:      topic,
		Purpose:    purpose,
		Difficulty: difficulty,
		Status:     StudyRequestStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks if the StudyRequest has valid data.
func (r *StudyRequest) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyRequestID
	}

	if r.UserID == uuid.Nil {
		return ErrEmptyRequestUserID
	}

	if r.Topic == "" {
		return ErrEmptyRequestTopic
	}

	if r.Difficulty == "" {
		return ErrEmptyRequestDifficulty
	}

	if !isValidStudyRequestStatus(r.Status) {
		return ErrInvalidRequestStatus
	}

	return nil
}

// IsTerminal reports whether the request has reached a final state.
// Terminal requests are never reprocessed; re-delivered events for them
// are idempotent no-ops.
func (r *StudyRequest) IsTerminal() bool {
	return r.Status == StudyRequestStatusCompleted || r.Status == StudyRequestStatusFailed
}

// UpdateStatus updates the request's status and stamps UpdatedAt.
// Returns an error if the new status is invalid.
func (r *StudyRequest) UpdateStatus(status StudyRequestStatus) error {
	if !isValidStudyRequestStatus(status) {
		return ErrInvalidRequestStatus
	}

	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidStudyRequestStatus checks if the given status is a valid StudyRequestStatus.
func isValidStudyRequestStatus(status StudyRequestStatus) bool {
	switch status {
	case StudyRequestStatusQueued, StudyRequestStatusProcessing,
		StudyRequestStatusCompleted, StudyRequestStatusFailed:
		return true
	default:
		return false
	}
}
