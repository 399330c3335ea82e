package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaterialStatus represents the lifecycle state of a study material.
// Materials are created exactly once and never mutated afterwards, so
// the only value written by this service is "ready".
type MaterialStatus string

const (
	MaterialStatusReady MaterialStatus = "ready"
)

// Common validation errors for StudyMaterial. Each wraps ErrValidation so
// callers can match the whole class with a single errors.Is check.
var (
	ErrEmptyMaterialID      = fmt.Errorf("%w: material ID cannot be empty", ErrValidation)
	ErrEmptyMaterialTopic   = fmt.Errorf("%w: material topic cannot be empty", ErrValidation)
	ErrEmptyMaterialCreator = fmt.Errorf("%w: material creator cannot be empty", ErrValidation)
	ErrEmptyLayout          = fmt.Errorf("%w: material layout cannot be empty", ErrValidation)
)

// Chapter is a single section of generated study material.
type Chapter struct {
	Title         string   `json:"title"`
	EstimatedTime string   `json:"estimatedTime"`
	Description   string   `json:"description"`
	Bullets       []string `json:"bullets"`
}

// StudyLayout is the structured content contract the generator must
// satisfy: a title, a summary, and an ordered sequence of chapters.
type StudyLayout struct {
	Title    string    `json:"title"`
	Summary  string    `json:"summary"`
	Chapters []Chapter `json:"chapters"`
}

// LayoutPayload holds material content as either parsed structured
// content or a raw text fallback. Exactly one of the two is set, so a
// parse failure is an explicit state rather than a string silently
// masquerading as structure.
type LayoutPayload struct {
	structured *StudyLayout
	raw        string
}

// NewStructuredLayout wraps a parsed StudyLayout in a LayoutPayload.
func NewStructuredLayout(layout *StudyLayout) LayoutPayload {
	return LayoutPayload{structured: layout}
}

// NewRawLayout wraps unparseable generator output in a LayoutPayload.
func NewRawLayout(text string) LayoutPayload {
	return LayoutPayload{raw: text}
}

// Structured returns the parsed layout and true when this payload holds
// structured content.
func (p LayoutPayload) Structured() (*StudyLayout, bool) {
	return p.structured, p.structured != nil
}

// Raw returns the raw text fallback. Empty when the payload is structured.
func (p LayoutPayload) Raw() string {
	return p.raw
}

// IsZero reports whether the payload holds neither variant.
func (p LayoutPayload) IsZero() bool {
	return p.structured == nil && p.raw == ""
}

// rawLayoutEnvelope is the persisted shape of a raw-text payload.
type rawLayoutEnvelope struct {
	Raw string `json:"raw"`
}

// MarshalJSON serializes structured payloads as the layout object itself
// and raw payloads as {"raw": "..."}.
func (p LayoutPayload) MarshalJSON() ([]byte, error) {
	if p.structured != nil {
		return json.Marshal(p.structured)
	}
	return json.Marshal(rawLayoutEnvelope{Raw: p.raw})
}

// UnmarshalJSON restores a LayoutPayload from its persisted form. A
// document carrying only a "raw" key is treated as the raw-text variant;
// anything else must be a structured layout.
func (p *LayoutPayload) UnmarshalJSON(data []byte) error {
	var envelope rawLayoutEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Raw != "" {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err == nil && len(probe) == 1 {
			p.structured = nil
			p.raw = envelope.Raw
			return nil
		}
	}

	var layout StudyLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return err
	}
	p.structured = &layout
	p.raw = ""
	return nil
}

// StudyMaterial is the persisted artifact produced by a successful
// generation. RequestID links it back to the originating request; it is
// nil for materials created through the synchronous path.
type StudyMaterial struct {
	ID              uuid.UUID      `json:"id"`
	RequestID       *uuid.UUID     `json:"request_id,omitempty"`
	Topic           string         `json:"topic"`
	DifficultyLevel string         `json:"difficulty_level"`
	Status          MaterialStatus `json:"status"`
	Layout          LayoutPayload  `json:"layout"`
	CreatedBy       uuid.UUID      `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
}

// NewStudyMaterial creates a new StudyMaterial in the ready state.
// requestID may be nil for the synchronous creation path.
func NewStudyMaterial(
	createdBy uuid.UUID,
	requestID *uuid.UUID,
	topic, difficultyLevel string,
	layout LayoutPayload,
) (*StudyMaterial, error) {
	material := &StudyMaterial{
		ID:              uuid.New(),
		RequestID:       requestID,
		Topic:           topic,
		DifficultyLevel: difficultyLevel,
		Status:          MaterialStatusReady,
		Layout:          layout,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now().UTC(),
	}

	if err := material.Validate(); err != nil {
		return nil, err
	}

	return material, nil
}

// Validate checks if the StudyMaterial has valid data.
func (m *StudyMaterial) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyMaterialID
	}

	if m.Topic == "" {
		return ErrEmptyMaterialTopic
	}

	if m.CreatedBy == uuid.Nil {
		return ErrEmptyMaterialCreator
	}

	if m.Layout.IsZero() {
		return ErrEmptyLayout
	}

	return nil
}
