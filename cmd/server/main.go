// Package main implements the entry point for the Recall API server,
// which schedules users' spaced-repetition reviews and tracks their
// learning progress.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/recallhq/recall-api/internal/config"
	"github.com/recallhq/recall-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status) instead of the server")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

// run loads configuration, sets up logging, and either executes a
// migration command or starts the HTTP server.
func run(migrateCmd string) error {
	cfg, appLogger, err := initializeApp()
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		return runMigrations(cfg, migrateCmd)
	}

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database connection", "error", err)
		}
	}()

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.startHTTPServer(context.Background(), app.setupRouter())
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if os.Getenv("RECALL_DATABASE_URL") != "" {
		appLogger.Debug("Database configuration", "url_source", "environment")
	}

	return cfg, appLogger, nil
}
