package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
)

// ReviewLogStore defines the interface for append-only review history.
type ReviewLogStore interface {
	// Create appends a review log entry.
	Create(ctx context.Context, log *domain.ReviewLog) error

	// ListByItem returns an item's review history, oldest first.
	ListByItem(ctx context.Context, userID, itemID uuid.UUID) ([]*domain.ReviewLog, error)

	// WithTx returns a new ReviewLogStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ReviewLogStore
}
