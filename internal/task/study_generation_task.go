package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/generation"
	"github.com/studyforge/studyforge-api/internal/platform/metrics"
	"github.com/studyforge/studyforge-api/internal/store"
)

// Common errors
var (
	ErrNilRequestStore  = errors.New("study request store cannot be nil")
	ErrNilMaterialStore = errors.New("material store cannot be nil")
	ErrNilGenerator     = errors.New("generator cannot be nil")
	ErrNilClock         = errors.New("clock cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyRequestID   = errors.New("request ID cannot be empty")
)

// studyGenerationPayload represents the serialized data carried by the task
type studyGenerationPayload struct {
	RequestID uuid.UUID `json:"request_id"`
}

// StudyGenerationTask implements the Task interface for driving one study
// request from queued to a terminal state. The request record is
// authoritative: a re-delivered task for a terminal request is a no-op,
// and one for a request stuck in processing re-enters the retry loop.
type StudyGenerationTask struct {
	id        uuid.UUID
	requestID uuid.UUID
	requests  store.StudyRequestStore
	materials store.MaterialStore
	generator generation.Generator
	clock     Clock
	logger    *slog.Logger
	status    TaskStatus
}

// NewStudyGenerationTask creates a new study generation task
func NewStudyGenerationTask(
	requestID uuid.UUID,
	requests store.StudyRequestStore,
	materials store.MaterialStore,
	generator generation.Generator,
	clock Clock,
	logger *slog.Logger,
) (*StudyGenerationTask, error) {
	if requests == nil {
		return nil, ErrNilRequestStore
	}
	if materials == nil {
		return nil, ErrNilMaterialStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if clock == nil {
		return nil, ErrNilClock
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if requestID == uuid.Nil {
		return nil, ErrEmptyRequestID
	}

	return &StudyGenerationTask{
		id:        uuid.New(),
		requestID: requestID,
		requests:  requests,
		materials: materials,
		generator: generator,
		clock:     clock,
		logger:    logger.With("task_type", TaskTypeStudyGeneration, "request_id", requestID),
		status:    TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *StudyGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *StudyGenerationTask) Type() string {
	return TaskTypeStudyGeneration
}

// Payload returns the task data as a byte slice
func (t *StudyGenerationTask) Payload() []byte {
	data, err := json.Marshal(studyGenerationPayload{RequestID: t.requestID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *StudyGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute drives the request through the retry state machine. Every
// status transition is persisted before the next step runs, so a crash
// at any point leaves a record a later invocation can resume from.
func (t *StudyGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting study generation task")

	// 1. Load the request. A missing record is an input error, not
	// something a retry can fix.
	req, err := t.requests.GetByID(ctx, t.requestID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to load study request", "error", err)
		return fmt.Errorf("failed to load study request: %w", err)
	}

	// 2. Terminal requests are done; a re-delivered event changes nothing.
	if req.IsTerminal() {
		t.logger.Info("request already terminal, nothing to do",
			"request_status", string(req.Status))
		metrics.ObserveGenerationJob("noop", 0)
		t.status = TaskStatusCompleted
		return nil
	}

	// 3. Claim the request. The conditional write refuses if another
	// invocation finished it between our read and now.
	currentStatus, applied, err := t.requests.MarkProcessing(ctx, t.requestID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to mark request processing", "error", err)
		return fmt.Errorf("failed to mark request processing: %w", err)
	}
	if !applied {
		t.logger.Info("request reached terminal state concurrently, nothing to do",
			"request_status", string(currentStatus))
		metrics.ObserveGenerationJob("noop", 0)
		t.status = TaskStatusCompleted
		return nil
	}

	genReq := generation.Request{
		Purpose:    req.Purpose,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	}

	var lastErr error
	for attempt := 1; attempt <= generation.MaxAttempts; attempt++ {
		t.logger.Info("invoking generator",
			"attempt", attempt,
			"max_attempts", generation.MaxAttempts)

		result, err := t.generator.Generate(ctx, genReq)
		if err == nil {
			return t.complete(ctx, req, result, attempt)
		}

		lastErr = err
		decision := DecideRetry(attempt, err)
		if !decision.Retry {
			return t.fail(ctx, err, attempt)
		}

		t.logger.Warn("transient generation failure, retrying",
			"attempt", attempt,
			"delay", decision.Delay,
			"error", err)

		if sleepErr := t.clock.Sleep(ctx, decision.Delay); sleepErr != nil {
			// Shutdown mid-backoff. The record stays processing and the
			// next startup's recovery pass picks it up.
			t.status = TaskStatusFailed
			t.logger.Warn("backoff interrupted, leaving request for recovery",
				"error", sleepErr)
			return fmt.Errorf("backoff interrupted: %w", sleepErr)
		}
	}

	// Unreachable: the final attempt always returns above. Kept so a
	// future change to the loop cannot leave a request processing forever.
	return t.fail(ctx, lastErr, generation.MaxAttempts)
}

// complete persists the artifact and the terminal success state. The
// artifact write runs first and is duplicate-suppressed on the request
// linkage, so repeating this step after a partial crash cannot produce a
// second artifact.
func (t *StudyGenerationTask) complete(
	ctx context.Context,
	req *domain.StudyRequest,
	result *generation.Result,
	attempt int,
) error {
	existing, err := t.materials.GetByRequestID(ctx, req.ID)
	if err != nil && !errors.Is(err, store.ErrMaterialNotFound) {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to check for existing material: %w", err)
	}

	if existing != nil {
		t.logger.Info("material already exists for request, skipping create",
			"material_id", existing.ID)
	} else {
		layout := domain.NewRawLayout(result.RawOutput)
		if result.Layout != nil {
			layout = domain.NewStructuredLayout(result.Layout)
		}

		material, err := domain.NewStudyMaterial(req.UserID, &req.ID, req.Topic, req.Difficulty, layout)
		if err != nil {
			t.status = TaskStatusFailed
			return fmt.Errorf("failed to build study material: %w", err)
		}

		if err := t.materials.Create(ctx, material); err != nil {
			t.status = TaskStatusFailed
			return fmt.Errorf("failed to persist study material: %w", err)
		}
	}

	promptJSON, err := json.Marshal(result.Prompt)
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to marshal prompt snapshot: %w", err)
	}

	if err := t.requests.MarkCompleted(ctx, req.ID, result.Model, string(promptJSON), result.RawOutput); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to mark request completed: %w", err)
	}

	metrics.ObserveGenerationJob("completed", attempt)
	t.status = TaskStatusCompleted
	t.logger.Info("study generation task completed",
		"model", result.Model,
		"attempts", attempt)
	return nil
}

// fail records the terminal failure on the request.
func (t *StudyGenerationTask) fail(ctx context.Context, cause error, attempt int) error {
	if err := t.requests.MarkFailed(ctx, t.requestID, cause.Error()); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to mark request failed",
			"error", err,
			"cause", cause)
		return fmt.Errorf("failed to mark request failed: %w", err)
	}

	metrics.ObserveGenerationJob("failed", attempt)
	t.status = TaskStatusFailed
	t.logger.Warn("study generation task failed",
		"attempts", attempt,
		"error", cause)
	return fmt.Errorf("generation failed after %d attempt(s): %w", attempt, cause)
}
