package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studyforge/studyforge-api/internal/events"
)

// TaskFactoryEventHandler implements the events.EventHandler interface.
// It turns task request events into concrete tasks and submits them to
// the runner.
type TaskFactoryEventHandler struct {
	studyFactory     *StudyGenerationTaskFactory
	provisionFactory *UserProvisionTaskFactory
	runner           *TaskRunner
	logger           *slog.Logger
}

// NewTaskFactoryEventHandler creates an event handler that builds tasks
// with the given factories and submits them to the provided runner.
func NewTaskFactoryEventHandler(
	studyFactory *StudyGenerationTaskFactory,
	provisionFactory *UserProvisionTaskFactory,
	runner *TaskRunner,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		studyFactory:     studyFactory,
		provisionFactory: provisionFactory,
		runner:           runner,
		logger:           logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting tasks.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	switch event.Type {
	case TaskTypeStudyGeneration:
		return h.handleStudyGeneration(ctx, event)
	case TaskTypeUserProvision:
		return h.handleUserProvision(ctx, event)
	default:
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}
}

func (h *TaskFactoryEventHandler) handleStudyGeneration(ctx context.Context, event *events.TaskRequestEvent) error {
	var payload struct {
		RequestID string `json:"request_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		h.logger.Error("invalid request ID",
			"error", err,
			"request_id", payload.RequestID,
			"event_id", event.ID)
		return fmt.Errorf("invalid request ID: %w", err)
	}

	task, err := h.studyFactory.CreateTask(requestID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"request_id", requestID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	return h.submit(ctx, task, event)
}

func (h *TaskFactoryEventHandler) handleUserProvision(ctx context.Context, event *events.TaskRequestEvent) error {
	var payload userProvisionPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	task, err := h.provisionFactory.CreateTask(payload.ExternalID, payload.Email, payload.Name)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"external_id", payload.ExternalID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	return h.submit(ctx, task, event)
}

func (h *TaskFactoryEventHandler) submit(ctx context.Context, task Task, event *events.TaskRequestEvent) error {
	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
