// Package main implements the entry point for the taskboard server,
// a task-assignment web application: users register, assign tasks to
// each other, work through them in order, and comment on them.
package main

import (
	"fmt"
	"log"

	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, wires the application, and serves until a
// shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"smtp_enabled", cfg.SMTP.Host != "")

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.cleanup()

	return app.serve()
}
