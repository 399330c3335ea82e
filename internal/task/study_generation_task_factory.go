package task

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/generation"
	"github.com/studyforge/studyforge-api/internal/store"
)

// StudyGenerationTaskFactory creates StudyGenerationTask instances
type StudyGenerationTaskFactory struct {
	requests  store.StudyRequestStore
	materials store.MaterialStore
	generator generation.Generator
	clock     Clock
	logger    *slog.Logger
}

// NewStudyGenerationTaskFactory creates a new factory for StudyGenerationTasks
func NewStudyGenerationTaskFactory(
	requests store.StudyRequestStore,
	materials store.MaterialStore,
	generator generation.Generator,
	clock Clock,
	logger *slog.Logger,
) *StudyGenerationTaskFactory {
	return &StudyGenerationTaskFactory{
		requests:  requests,
		materials: materials,
		generator: generator,
		clock:     clock,
		logger:    logger.With("component", "study_generation_task_factory"),
	}
}

// CreateTask creates a new StudyGenerationTask for the specified request
func (f *StudyGenerationTaskFactory) CreateTask(requestID uuid.UUID) (Task, error) {
	task, err := NewStudyGenerationTask(
		requestID,
		f.requests,
		f.materials,
		f.generator,
		f.clock,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// NewRecoverFunc builds the startup recovery pass: one generation task
// per request still queued or processing. The request record is the
// durable queue, so this is all the recovery the runner needs.
func NewRecoverFunc(
	requests store.StudyRequestStore,
	factory *StudyGenerationTaskFactory,
	logger *slog.Logger,
) RecoverFunc {
	log := logger.With("component", "task_recovery")

	return func(ctx context.Context) ([]Task, error) {
		var tasks []Task

		for _, status := range []domain.StudyRequestStatus{
			domain.StudyRequestStatusQueued,
			domain.StudyRequestStatusProcessing,
		} {
			found, err := requests.FindByStatus(ctx, status, 0)
			if err != nil {
				return nil, err
			}

			for _, req := range found {
				task, err := factory.CreateTask(req.ID)
				if err != nil {
					log.Error("failed to rebuild task for request",
						"request_id", req.ID,
						"error", err)
					continue
				}
				tasks = append(tasks, task)
			}

			if len(found) > 0 {
				log.Info("rebuilt tasks for unfinished requests",
					"status", string(status),
					"count", len(found))
			}
		}

		return tasks, nil
	}
}
