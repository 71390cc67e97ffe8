// Package review implements the review workflow: picking the next due item,
// grading an answer inside a transaction, and querying recall estimates.
package review

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/domain"
)

// Common error types for ReviewService
var (
	// ErrNoItemsDue indicates that the user has no items due for review.
	ErrNoItemsDue = errors.New("no items due for review")

	// ErrItemNotFound indicates that the item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrItemNotOwned indicates that the user does not own the item.
	ErrItemNotOwned = errors.New("unauthorized access: item not owned by user")

	// ErrInvalidRating indicates an invalid grading value was provided.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrNotScheduled indicates the item has no memory state yet, so the
	// requested operation (postpone, history-dependent queries) cannot apply.
	ErrNotScheduled = errors.New("item has not been reviewed yet")
)

// ReviewSubmission represents a user's grading of a recall attempt.
type ReviewSubmission struct {
	Rating domain.Rating `json:"rating"`
}

// ReviewService provides the review workflow on top of the scheduler.
type ReviewService interface {
	// GetNextItem retrieves the user's most urgent item: never-reviewed
	// items first, then the earliest due among items whose due instant has
	// arrived. Returns ErrNoItemsDue when nothing qualifies.
	GetNextItem(ctx context.Context, userID uuid.UUID) (*domain.Item, error)

	// SubmitReview grades one recall attempt and returns the replacement
	// memory state. The read-schedule-write cycle runs in a single
	// transaction with the state row locked, so concurrent gradings of the
	// same item serialize rather than clobber each other. The first review
	// of an item creates its memory state. A review log entry is appended
	// in the same transaction.
	//
	// Returns ErrItemNotFound if the item does not exist, ErrItemNotOwned
	// if it belongs to another user, and ErrInvalidRating for gradings
	// outside the 1..4 range.
	SubmitReview(ctx context.Context, userID, itemID uuid.UUID, submission ReviewSubmission) (*domain.MemoryState, error)

	// Postpone pushes an item's due date forward by the given number of
	// days without touching its memory fields.
	// Returns ErrNotScheduled if the item has never been reviewed.
	Postpone(ctx context.Context, userID, itemID uuid.UUID, days int) (*domain.MemoryState, error)

	// Retrievability reports the estimated probability that the user can
	// currently recall the item, in [0, 1]. Items never reviewed report 0.
	Retrievability(ctx context.Context, userID, itemID uuid.UUID) (float64, error)

	// History returns the item's review log, oldest first.
	History(ctx context.Context, userID, itemID uuid.UUID) ([]*domain.ReviewLog, error)
}
