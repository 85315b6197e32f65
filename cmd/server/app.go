package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kavinrs01/task-manager-server/internal/config"
	"github.com/kavinrs01/task-manager-server/internal/events"
	"github.com/kavinrs01/task-manager-server/internal/mirror"
	"github.com/kavinrs01/task-manager-server/internal/platform/postgres"
	redisplatform "github.com/kavinrs01/task-manager-server/internal/platform/redis"
	"github.com/kavinrs01/task-manager-server/internal/service"
	"github.com/kavinrs01/task-manager-server/internal/service/auth"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	userStore  store.UserStore
	taskStore  store.TaskStore
	tokenStore store.RefreshTokenStore

	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
	authService    service.AuthService
	taskService    service.TaskService

	eventEmitter events.EventEmitter

	mirrorNotifier *mirror.Notifier
	mirrorSink     mirror.Sink
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger and
// database connection that must be established before application
// initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.tokenStore = postgres.NewPostgresRefreshTokenStore(db, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	if err := app.setupMirror(emitter); err != nil {
		return nil, err
	}

	app.authService = service.NewAuthService(
		app.userStore,
		app.tokenStore,
		app.jwtService,
		app.passwordHasher,
		db,
		logger,
	)

	app.taskService = service.NewTaskService(
		app.taskStore,
		app.eventEmitter,
		db,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupMirror wires the document mirror. When mirroring is disabled the
// notifier still runs against a no-op sink so the event path stays
// identical in both modes.
func (app *application) setupMirror(emitter *events.InMemoryEventEmitter) error {
	app.mirrorSink = mirror.NoopSink{}

	if app.config.Mirror.Enabled {
		client, err := redisplatform.NewClient(app.config.Mirror)
		if err != nil {
			return fmt.Errorf("failed to connect to mirror store: %w", err)
		}
		app.mirrorSink = redisplatform.NewMirrorSink(client, app.logger)
		app.logger.Info("Task mirror enabled", "redis_addr", app.config.Mirror.RedisAddr)
	}

	app.mirrorNotifier = mirror.NewNotifier(app.mirrorSink, mirror.NotifierConfig{
		QueueSize:   app.config.Mirror.QueueSize,
		WorkerCount: app.config.Mirror.WorkerCount,
	}, app.logger)
	app.mirrorNotifier.Start()

	emitter.RegisterHandler(app.mirrorNotifier)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.mirrorNotifier != nil {
		app.mirrorNotifier.Stop()
	}

	if closer, ok := app.mirrorSink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("Error closing mirror sink", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
