package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for DashboardItem. Each wraps ErrValidation so
// callers can match the whole class with a single errors.Is check.
var (
	ErrEmptyDashboardItemID = fmt.Errorf("%w: dashboard item ID cannot be empty", ErrValidation)
	ErrEmptyDashboardUserID = fmt.Errorf("%w: dashboard item user ID cannot be empty", ErrValidation)
	ErrEmptyMaterialRef     = fmt.Errorf("%w: dashboard item material ID cannot be empty", ErrValidation)
)

// DashboardItem pins a study material to a user's dashboard and tracks
// their reading progress. At most one item exists per (user, material).
type DashboardItem struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	MaterialID uuid.UUID `json:"material_id"`
	Progress   int       `json:"progress"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDashboardItem creates a new DashboardItem with zero progress.
// Returns an error if validation fails.
func NewDashboardItem(userID, materialID uuid.UUID) (*DashboardItem, error) {
	item := &DashboardItem{
		ID:         uuid.New(),
		UserID:     userID,
		MaterialID: materialID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the DashboardItem has valid data.
func (d *DashboardItem) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDashboardItemID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDashboardUserID
	}

	if d.MaterialID == uuid.Nil {
		return ErrEmptyMaterialRef
	}

	return nil
}
