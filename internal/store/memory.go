package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
)

// MemoryStateStore defines the interface for per-item scheduling record
// persistence. The scheduler replaces records wholesale, so writes are a
// Create on first review and an Update thereafter; concurrent gradings of the
// same item must be serialized by the caller via GetForUpdate inside a
// transaction.
type MemoryStateStore interface {
	// Create saves the record for an item's first review.
	// Returns validation errors from the domain MemoryState if data is invalid.
	Create(ctx context.Context, state *domain.MemoryState) error

	// Get retrieves the record for a (user, item) pair without any row
	// locking. Returns ErrMemoryStateNotFound if it does not exist.
	Get(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryState, error)

	// GetForUpdate retrieves the record with a row-level lock using
	// SELECT ... FOR UPDATE. Must be called within a transaction; it is the
	// mechanism that serializes two concurrent gradings of the same item.
	// Returns ErrMemoryStateNotFound if the record does not exist.
	GetForUpdate(ctx context.Context, userID, itemID uuid.UUID) (*domain.MemoryState, error)

	// Update replaces an existing record.
	// Returns ErrMemoryStateNotFound if the record does not exist.
	Update(ctx context.Context, state *domain.MemoryState) error

	// ListByUser returns all of a user's records, for aggregate progress
	// computation.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.MemoryState, error)

	// WithTx returns a new MemoryStateStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) MemoryStateStore
}
