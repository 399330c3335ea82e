package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of an in-memory task. Durable
// lifecycle state lives on the study request record; this status only
// reflects what this process has done with the task so far.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeStudyGeneration represents the task type for generating
	// study material from a queued request.
	TaskTypeStudyGeneration = "study_generation"

	// TaskTypeUserProvision represents the task type for materializing a
	// user account from a sign-up event.
	TaskTypeUserProvision = "user_provision"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}
