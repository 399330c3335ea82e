package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// RecoverFunc rebuilds the tasks that were interrupted by a previous
// shutdown. The runner calls it once at startup; implementations read
// the durable request records and return one task per unfinished request.
type RecoverFunc func(ctx context.Context) ([]Task, error)

// TaskRunner manages background task processing
type TaskRunner struct {
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	recoverFn  RecoverFunc
	errHandler func(task Task, err error)
}

// NewTaskRunner creates a new TaskRunner. recoverFn may be nil when
// startup recovery is not wanted (tests, one-shot tools).
func NewTaskRunner(recoverFn RecoverFunc, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultTaskRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultTaskRunnerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		wg:         sync.WaitGroup{},
		config:     config,
		logger:     logger,
		recoverFn:  recoverFn,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
		},
	}
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit adds a new task to the queue. Durable state already lives on
// the request record, so a full queue only delays processing until the
// next restart's recovery pass rather than losing work.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	select {
	case r.taskChan <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full, try again later")
	}
}

// Start begins processing tasks and replays unfinished work. Workers
// start before recovery so the recovery pass can enqueue more tasks than
// the queue buffer holds without dropping any.
func (r *TaskRunner) Start() error {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	if err := r.Recover(); err != nil {
		r.Stop()
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the task runner
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.taskChan)
}

// Recover re-enqueues tasks for requests a previous run left unfinished.
// The enqueue blocks until a worker frees queue space, so every recovered
// task is eventually executed regardless of the queue buffer size.
func (r *TaskRunner) Recover() error {
	if r.recoverFn == nil {
		return nil
	}

	tasks, err := r.recoverFn(r.ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild unfinished tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks", "count", len(tasks))

	for _, task := range tasks {
		select {
		case r.taskChan <- task:
		case <-r.ctx.Done():
			return r.ctx.Err()
		}
	}

	return nil
}

// worker processes tasks from the queue
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case task, ok := <-r.taskChan:
			if !ok {
				r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}

			r.processTask(task, id)
		}
	}
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	logger.Info("processing task")

	if err := task.Execute(r.ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed")
}
