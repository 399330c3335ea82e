package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ledger entry reasons written by this service.
const (
	CreditReasonWelcomeBonus = "welcome.bonus"
	CreditReasonGeneration   = "study.generate"
)

// Common validation errors for CreditEntry. Each wraps ErrValidation so
// callers can match the whole class with a single errors.Is check.
var (
	ErrEmptyCreditEntryID = fmt.Errorf("%w: credit entry ID cannot be empty", ErrValidation)
	ErrEmptyCreditUserID  = fmt.Errorf("%w: credit entry user ID cannot be empty", ErrValidation)
	ErrZeroCreditDelta    = fmt.Errorf("%w: credit entry delta cannot be zero", ErrValidation)
)

// CreditEntry is an append-only ledger record of a credit grant or debit.
// RequestID is set when the entry was caused by a specific study request.
type CreditEntry struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	RequestID *uuid.UUID `json:"request_id,omitempty"`
	Delta     int        `json:"delta"`
	Reason    string     `json:"reason"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewCreditEntry creates a new ledger entry.
// Returns an error if validation fails.
func NewCreditEntry(userID uuid.UUID, requestID *uuid.UUID, delta int, reason string) (*CreditEntry, error) {
	entry := &CreditEntry{
		ID:        uuid.New(),
		UserID:    userID,
		RequestID: requestID,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks if the CreditEntry has valid data.
func (e *CreditEntry) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyCreditEntryID
	}

	if e.UserID == uuid.Nil {
		return ErrEmptyCreditUserID
	}

	if e.Delta == 0 {
		return ErrZeroCreditDelta
	}

	return nil
}
