package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/studyforge/studyforge-api/internal/config"
	"github.com/studyforge/studyforge-api/internal/events"
	"github.com/studyforge/studyforge-api/internal/platform/gemini"
	"github.com/studyforge/studyforge-api/internal/platform/logger"
	"github.com/studyforge/studyforge-api/internal/platform/metrics"
	"github.com/studyforge/studyforge-api/internal/platform/postgres"
	"github.com/studyforge/studyforge-api/internal/service"
	"github.com/studyforge/studyforge-api/internal/store"
	"github.com/studyforge/studyforge-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore      store.UserStore
	requestStore   store.StudyRequestStore
	materialStore  store.MaterialStore
	ledgerStore    store.LedgerStore
	dashboardStore store.DashboardStore
	txRunner       store.TxRunner

	// Services
	generator    *gemini.GeminiGenerator
	studyService service.StudyService
	userService  service.UserService

	// Event system and task handling
	eventEmitter events.EventEmitter
	taskRunner   *task.TaskRunner
}

// run wires and starts the whole application: config, logger, database,
// migrations, stores, generator, task runner, services and HTTP server.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"worker_count", cfg.Worker.Count)

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return err
	}

	if err := runMigrations(db, log); err != nil {
		return err
	}

	metrics.MustRegister()

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		return err
	}

	return app.Run(ctx)
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies that must be established
// before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, log)
	app.requestStore = postgres.NewPostgresStudyRequestStore(db, log)
	app.materialStore = postgres.NewPostgresMaterialStore(db, log)
	app.ledgerStore = postgres.NewPostgresLedgerStore(db, log)
	app.dashboardStore = postgres.NewPostgresDashboardStore(db, log)
	app.txRunner = store.NewTxRunner(db)

	// Create the generation backend client
	var err error
	app.generator, err = gemini.NewGeminiGenerator(
		ctx,
		log.With("component", "gemini_generator"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	log.Info("generation backend initialized")

	// Task factories for the two background workers
	studyFactory := task.NewStudyGenerationTaskFactory(
		app.requestStore,
		app.materialStore,
		app.generator,
		task.NewRealClock(),
		log,
	)
	provisionFactory := task.NewUserProvisionTaskFactory(
		app.txRunner,
		app.userStore,
		app.ledgerStore,
		log,
	)

	// The task runner recovers unfinished generation requests at startup;
	// the request record is the durable queue.
	app.taskRunner = task.NewTaskRunner(
		task.NewRecoverFunc(app.requestStore, studyFactory, log),
		task.TaskRunnerConfig{
			WorkerCount: cfg.Worker.Count,
			QueueSize:   cfg.Worker.QueueSize,
		},
		log,
	)
	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	// Event emitter dispatches work events to the task runner
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(
		studyFactory,
		provisionFactory,
		app.taskRunner,
		log,
	))
	app.eventEmitter = emitter

	// Initialize services
	app.studyService, err = service.NewStudyService(
		app.txRunner,
		app.userStore,
		app.requestStore,
		app.materialStore,
		app.ledgerStore,
		app.dashboardStore,
		app.generator,
		app.eventEmitter,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create study service: %w", err)
	}

	app.userService, err = service.NewUserService(
		app.userStore,
		app.ledgerStore,
		app.eventEmitter,
		log,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	log.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
