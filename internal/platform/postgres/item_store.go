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

// PostgresItemStore implements the store.ItemStore interface
// using a PostgreSQL database as the storage backend.
type PostgresItemStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresItemStore creates a new PostgreSQL implementation of the ItemStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresItemStore(db store.DBTX, logger *slog.Logger) *PostgresItemStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresItemStore{
		db:     db,
		logger: logger.With(slog.String("component", "item_store")),
	}
}

// Ensure PostgresItemStore implements store.ItemStore interface
var _ store.ItemStore = (*PostgresItemStore)(nil)

// Create implements store.ItemStore.Create
// Returns validation errors from the domain Item if data is invalid.
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *PostgresItemStore) Create(ctx context.Context, item *domain.Item) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("item validation failed during create",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()))
		return err
	}

	query := `
		INSERT INTO items (id, user_id, front, back, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.Front,
		item.Back,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during item creation",
				slog.String("item_id", item.ID.String()),
				slog.String("user_id", item.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, item.UserID)
		}

		log.Error("failed to create item",
			slog.String("error", err.Error()),
			slog.String("item_id", item.ID.String()),
			slog.String("user_id", item.UserID.String()))
		return MapError(err)
	}

	log.Info("item created successfully",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", item.UserID.String()))
	return nil
}

// GetByID implements store.ItemStore.GetByID
// Returns store.ErrItemNotFound if the item does not exist.
func (s *PostgresItemStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving item by ID", slog.String("item_id", id.String()))

	query := `
		SELECT id, user_id, front, back, created_at, updated_at
		FROM items
		WHERE id = $1
	`

	var item domain.Item
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.UserID,
		&item.Front,
		&item.Back,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("item not found", slog.String("item_id", id.String()))
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get item by ID",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, err
	}

	return &item, nil
}

// ListByUser implements store.ItemStore.ListByUser
// Returns an empty slice if the user has no items.
func (s *PostgresItemStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, front, back, created_at, updated_at
		FROM items
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query items by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	items := []*domain.Item{}
	for rows.Next() {
		var item domain.Item
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Front,
			&item.Back,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan item row",
				slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed items by user",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(items)))
	return items, nil
}

// GetNextDue implements store.ItemStore.GetNextDue
// It picks the user's most urgent item: never-scheduled items first (no
// memory state row, or one still in the new stage), then scheduled items in
// due order, but only those whose due instant has arrived.
// Returns store.ErrItemNotFound if nothing is due.
func (s *PostgresItemStore) GetNextDue(ctx context.Context, userID uuid.UUID) (*domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving next due item", slog.String("user_id", userID.String()))

	query := `
		SELECT i.id, i.user_id, i.front, i.back, i.created_at, i.updated_at
		FROM items i
		LEFT JOIN memory_states ms ON ms.user_id = i.user_id AND ms.item_id = i.id
		WHERE i.user_id = $1
		  AND (ms.item_id IS NULL OR ms.state = 0 OR ms.due <= NOW())
		ORDER BY (ms.item_id IS NULL OR ms.state = 0) DESC, ms.due ASC, i.created_at ASC
		LIMIT 1
	`

	var item domain.Item
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&item.ID,
		&item.UserID,
		&item.Front,
		&item.Back,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no items due for review",
				slog.String("user_id", userID.String()))
			return nil, store.ErrItemNotFound
		}
		log.Error("failed to get next due item",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	log.Debug("next due item retrieved",
		slog.String("item_id", item.ID.String()),
		slog.String("user_id", userID.String()))
	return &item, nil
}

// Delete implements store.ItemStore.Delete
// Memory state and review logs for the item are removed by ON DELETE CASCADE.
// Returns store.ErrItemNotFound if the item does not exist.
func (s *PostgresItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM items WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return err
	}

	if err := CheckRowsAffected(result, "item"); err != nil {
		log.Debug("item not found for delete", slog.String("item_id", id.String()))
		return store.ErrItemNotFound
	}

	log.Info("item deleted successfully", slog.String("item_id", id.String()))
	return nil
}

// WithTx implements store.ItemStore.WithTx
// It returns a new store bound to the given transaction, sharing the logger.
func (s *PostgresItemStore) WithTx(tx *sql.Tx) store.ItemStore {
	return &PostgresItemStore{
		db:     tx,
		logger: s.logger,
	}
}
