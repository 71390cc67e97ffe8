package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/recallhq/recall-api/internal/config"
	"github.com/recallhq/recall-api/internal/domain/srs"
	"github.com/recallhq/recall-api/internal/platform/postgres"
	"github.com/recallhq/recall-api/internal/service/auth"
	"github.com/recallhq/recall-api/internal/service/progress"
	"github.com/recallhq/recall-api/internal/service/review"
	"github.com/recallhq/recall-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// wiring and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore      store.UserStore
	itemStore      store.ItemStore
	memoryStore    store.MemoryStateStore
	reviewLogStore store.ReviewLogStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	scheduler        srs.Service
	reviewService    review.ReviewService
	progressService  progress.ProgressService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
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

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	app.itemStore = postgres.NewPostgresItemStore(db, logger)
	app.memoryStore = postgres.NewPostgresMemoryStateStore(db, logger)
	app.reviewLogStore = postgres.NewPostgresReviewLogStore(db, logger)

	app.scheduler, err = setupScheduler(cfg.Scheduler)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	app.reviewService = review.NewReviewService(
		db,
		app.itemStore,
		app.memoryStore,
		app.reviewLogStore,
		app.scheduler,
		logger,
	)

	app.progressService = progress.NewProgressService(
		app.itemStore,
		app.memoryStore,
		app.scheduler,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupScheduler builds the scheduling service from configuration.
// Zero-valued fields fall back to the calibrated defaults.
func setupScheduler(cfg config.SchedulerConfig) (srs.Service, error) {
	if cfg.RequestRetention == 0 && cfg.MaximumInterval == 0 && len(cfg.Weights) == 0 {
		return srs.NewDefaultService(), nil
	}

	params, err := srs.NewParams(srs.ParamsConfig{
		Weights:          cfg.Weights,
		RequestRetention: cfg.RequestRetention,
		MaximumInterval:  cfg.MaximumInterval,
	})
	if err != nil {
		return nil, err
	}

	return srs.NewServiceWithParams(params)
}

// cleanup releases application resources before shutdown.
func (app *application) cleanup() {
	app.logger.Debug("Running application cleanup")
}
