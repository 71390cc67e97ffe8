package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/store"
)

// PostgresReviewLogStore implements the store.ReviewLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewLogStore(db store.DBTX, logger *slog.Logger) *PostgresReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure PostgresReviewLogStore implements store.ReviewLogStore interface
var _ store.ReviewLogStore = (*PostgresReviewLogStore)(nil)

// Create implements store.ReviewLogStore.Create
// The table is append-only; entries are never updated or deleted except by
// the CASCADE when their item is removed.
func (s *PostgresReviewLogStore) Create(ctx context.Context, entry *domain.ReviewLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO review_logs (id, user_id, item_id, rating, elapsed_days, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.ItemID,
		entry.Rating,
		entry.ElapsedDays,
		entry.ReviewedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during review log creation",
				slog.String("item_id", entry.ItemID.String()),
				slog.String("user_id", entry.UserID.String()))
			return fmt.Errorf("%w: user or item not found", store.ErrInvalidEntity)
		}

		log.Error("failed to create review log",
			slog.String("error", err.Error()),
			slog.String("item_id", entry.ItemID.String()))
		return MapError(err)
	}

	log.Debug("review log appended",
		slog.String("item_id", entry.ItemID.String()),
		slog.String("rating", entry.Rating.String()))
	return nil
}

// ListByItem implements store.ReviewLogStore.ListByItem
// Returns the item's history oldest first; an empty slice if none exists.
func (s *PostgresReviewLogStore) ListByItem(ctx context.Context, userID, itemID uuid.UUID) ([]*domain.ReviewLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, item_id, rating, elapsed_days, reviewed_at
		FROM review_logs
		WHERE user_id = $1 AND item_id = $2
		ORDER BY reviewed_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, itemID)
	if err != nil {
		log.Error("failed to query review logs",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []*domain.ReviewLog{}
	for rows.Next() {
		var entry domain.ReviewLog
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ItemID,
			&entry.Rating,
			&entry.ElapsedDays,
			&entry.ReviewedAt,
		)
		if err != nil {
			log.Error("failed to scan review log row",
				slog.String("error", err.Error()))
			return nil, err
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return entries, nil
}

// WithTx implements store.ReviewLogStore.WithTx
// It returns a new store bound to the given transaction, sharing the logger.
func (s *PostgresReviewLogStore) WithTx(tx *sql.Tx) store.ReviewLogStore {
	return &PostgresReviewLogStore{
		db:     tx,
		logger: s.logger,
	}
}
