package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User. Each wraps ErrValidation so callers
// can match the whole class with a single errors.Is check.
var (
	ErrEmptyUserID     = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyExternalID = fmt.Errorf("%w: user external ID cannot be empty", ErrValidation)
	ErrEmptyEmail      = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail    = fmt.Errorf("%w: invalid email format", ErrValidation)
)

// WelcomeCredits is the one-time bonus granted when an account is first
// materialized from a sign-up event.
const WelcomeCredits = 5

// User represents a provisioned account. ExternalID is the stable
// identifier delivered by the sign-up provider; at most one User exists
// per ExternalID (enforced by a unique constraint, not just the
// application-level existence check).
type User struct {
	ID          uuid.UUID `json:"id"`
	ExternalID  string    `json:"external_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Credits     int       `json:"credits"`
	UsedCredits int       `json:"used_credits"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUser creates a new User with the welcome credit balance. When name
// is empty it defaults to the local part of the email address.
// Returns an error if validation fails.
func NewUser(externalID, email, name string) (*User, error) {
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	now := time.Now().UTC()
	user := &User{
		ID:         uuid.New(),
		ExternalID: externalID,
		Email:      email,
		Name:       name,
		Credits:    WelcomeCredits,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.ExternalID == "" {
		return ErrEmptyExternalID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	return nil
}

// RemainingCredits returns the credit balance still available to spend.
func (u *User) RemainingCredits() int {
	return u.Credits - u.UsedCredits
}

// validateEmailFormat performs basic validation of email format: one "@"
// with a dotted domain after it. Deliberately loose; the sign-up provider
// already validated the address.
func validateEmailFormat(email string) bool {
	local, dom, ok := strings.Cut(email, "@")
	if !ok || local == "" || len(dom) < 3 {
		return false
	}

	dot := strings.Index(dom, ".")
	return dot > 0 && dot < len(dom)-1
}
