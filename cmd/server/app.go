package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/mail"
	"github.com/phrazzld/taskboard/internal/platform/postgres"
	"github.com/phrazzld/taskboard/internal/service"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/web"
)

// application holds the wired dependencies for the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	sessionService auth.SessionService
	userService    service.UserService
	taskService    service.TaskService

	authHandler       *web.AuthHandler
	taskHandler       *web.TaskHandler
	sessionMiddleware *web.SessionMiddleware
}

// newApplication connects to the database, applies migrations, and wires
// stores, services, and handlers.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	sessionService, err := auth.NewSessionService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	taskStore := postgres.NewPostgresTaskStore(db, logger)
	commentStore := postgres.NewPostgresCommentStore(db, logger)

	hasher := auth.NewBcryptHasher()
	notifier := mail.NewNotifier(cfg.SMTP, logger)

	userService := service.NewUserService(userStore, hasher, hasher, logger)
	taskService := service.NewTaskService(db, taskStore, userStore, commentStore, notifier, logger)

	renderer, err := web.NewRenderer(logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	sessionLifetime := time.Duration(cfg.Auth.SessionLifetimeMinutes) * time.Minute

	return &application{
		config:            cfg,
		logger:            logger,
		db:                db,
		sessionService:    sessionService,
		userService:       userService,
		taskService:       taskService,
		authHandler:       web.NewAuthHandler(userService, sessionService, renderer, sessionLifetime, logger),
		taskHandler:       web.NewTaskHandler(taskService, userService, renderer, logger),
		sessionMiddleware: web.NewSessionMiddleware(sessionService, logger),
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
