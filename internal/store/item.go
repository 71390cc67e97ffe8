package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
)

// ItemStore defines the interface for learned-item persistence.
type ItemStore interface {
	// Create saves a new item.
	// Returns validation errors from the domain Item if data is invalid.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, item *domain.Item) error

	// GetByID retrieves an item by its unique ID.
	// Returns ErrItemNotFound if the item does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// ListByUser returns all items owned by the user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Item, error)

	// GetNextDue retrieves the user's item with the earliest memory-state due
	// instant at or before now. Items never scheduled (state row absent or in
	// the New stage) sort first. Cross-item ordering lives here, in the
	// persistence layer; the scheduler itself ranks nothing.
	// Returns ErrItemNotFound if no item is due.
	GetNextDue(ctx context.Context, userID uuid.UUID) (*domain.Item, error)

	// Delete removes an item. Associated memory state and review logs are
	// removed by ON DELETE CASCADE constraints in the schema.
	// Returns ErrItemNotFound if the item does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ItemStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ItemStore
}
