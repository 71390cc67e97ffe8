package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/store"
)

// memoryStateColumns is the shared select list for memory state scans.
const memoryStateColumns = `user_id, item_id, stability, difficulty,
		reps, lapses, state, last_review, due, created_at, updated_at`

// PostgresMemoryStateStore implements the store.MemoryStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMemoryStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMemoryStateStore creates a new PostgreSQL implementation of the
// MemoryStateStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresMemoryStateStore(db store.DBTX, logger *slog.Logger) *PostgresMemoryStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMemoryStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "memory_state_store")),
	}
}

// Ensure PostgresMemoryStateStore implements store.MemoryStateStore interface
var _ store.MemoryStateStore = (*PostgresMemoryStateStore)(nil)

// Create implements store.MemoryStateStore.Create
// It saves the scheduling record produced by an item's first review.
// Returns validation errors from the domain MemoryState if data is invalid.
// Returns store.ErrInvalidEntity if the user or item does not exist.
func (s *PostgresMemoryStateStore) Create(ctx context.Context, state *domain.MemoryState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("memory state validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return err
	}

	query := `
		INSERT INTO memory_states (user_id, item_id, stability, difficulty,
			reps, lapses, state, last_review, due, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		state.UserID,
		state.ItemID,
		state.Stability,
		state.Difficulty,
		state.Reps,
		state.Lapses,
		state.State,
		state.LastReview,
		state.Due,
		state.CreatedAt,
		state.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during memory state creation",
				slog.String("item_id", state.ItemID.String()),
				slog.String("user_id", state.UserID.String()))
			return fmt.Errorf("%w: user or item not found", store.ErrInvalidEntity)
		}

		log.Error("failed to create memory state",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()),
			slog.String("user_id", state.UserID.String()))
		return MapError(err)
	}

	log.Info("memory state created",
		slog.String("item_id", state.ItemID.String()),
		slog.String("user_id", state.UserID.String()),
		slog.String("state", state.State.String()))
	return nil
}

// Get implements store.MemoryStateStore.Get
// Returns store.ErrMemoryStateNotFound if the record does not exist.
func (s *PostgresMemoryStateStore) Get(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryState, error) {
	return s.get(ctx, userID, itemID, false)
}

// GetForUpdate implements store.MemoryStateStore.GetForUpdate
// It locks the row with SELECT ... FOR UPDATE, so it must run inside a
// transaction; the lock is what serializes two concurrent gradings of the
// same item. Returns store.ErrMemoryStateNotFound if the record does not exist.
func (s *PostgresMemoryStateStore) GetForUpdate(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryState, error) {
	return s.get(ctx, userID, itemID, true)
}

func (s *PostgresMemoryStateStore) get(ctx context.Context, userID, itemID uuid.UUID, forUpdate bool) (*domain.MemoryState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + memoryStateColumns + `
		FROM memory_states
		WHERE user_id = $1 AND item_id = $2
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var state domain.MemoryState
	err := s.db.QueryRowContext(ctx, query, userID, itemID).Scan(
		&state.UserID,
		&state.ItemID,
		&state.Stability,
		&state.Difficulty,
		&state.Reps,
		&state.Lapses,
		&state.State,
		&state.LastReview,
		&state.Due,
		&state.CreatedAt,
		&state.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("memory state not found",
				slog.String("item_id", itemID.String()),
				slog.String("user_id", userID.String()))
			return nil, store.ErrMemoryStateNotFound
		}
		log.Error("failed to get memory state",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return &state, nil
}

// Update implements store.MemoryStateStore.Update
// It replaces the record wholesale; the scheduler always produces a complete
// new record. Returns store.ErrMemoryStateNotFound if the record does not exist.
func (s *PostgresMemoryStateStore) Update(ctx context.Context, state *domain.MemoryState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("memory state validation failed during update",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()))
		return err
	}

	query := `
		UPDATE memory_states
		SET stability = $1, difficulty = $2, reps = $3, lapses = $4,
			state = $5, last_review = $6, due = $7, updated_at = $8
		WHERE user_id = $9 AND item_id = $10
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		state.Stability,
		state.Difficulty,
		state.Reps,
		state.Lapses,
		state.State,
		state.LastReview,
		state.Due,
		state.UpdatedAt,
		state.UserID,
		state.ItemID,
	)

	if err != nil {
		log.Error("failed to update memory state",
			slog.String("error", err.Error()),
			slog.String("item_id", state.ItemID.String()),
			slog.String("user_id", state.UserID.String()))
		return err
	}

	if err := CheckRowsAffected(result, "memory state"); err != nil {
		log.Debug("memory state not found for update",
			slog.String("item_id", state.ItemID.String()),
			slog.String("user_id", state.UserID.String()))
		return store.ErrMemoryStateNotFound
	}

	log.Info("memory state updated",
		slog.String("item_id", state.ItemID.String()),
		slog.String("user_id", state.UserID.String()),
		slog.String("state", state.State.String()),
		slog.Int("reps", state.Reps),
		slog.Int("lapses", state.Lapses))
	return nil
}

// ListByUser implements store.MemoryStateStore.ListByUser
// Returns an empty slice if the user has no scheduled items.
func (s *PostgresMemoryStateStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.MemoryState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + memoryStateColumns + `
		FROM memory_states
		WHERE user_id = $1
		ORDER BY due ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query memory states by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	states := []*domain.MemoryState{}
	for rows.Next() {
		var state domain.MemoryState
		err := rows.Scan(
			&state.UserID,
			&state.ItemID,
			&state.Stability,
			&state.Difficulty,
			&state.Reps,
			&state.Lapses,
			&state.State,
			&state.LastReview,
			&state.Due,
			&state.CreatedAt,
			&state.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan memory state row",
				slog.String("error", err.Error()))
			return nil, err
		}
		states = append(states, &state)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed memory states by user",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(states)))
	return states, nil
}

// WithTx implements store.MemoryStateStore.WithTx
// It returns a new store bound to the given transaction, sharing the logger.
func (s *PostgresMemoryStateStore) WithTx(tx *sql.Tx) store.MemoryStateStore {
	return &PostgresMemoryStateStore{
		db:     tx,
		logger: s.logger,
	}
}
