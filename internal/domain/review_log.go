package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewLog records a single grading event for an item. It is append-only
// history: the scheduler never reads it back, but it preserves the elapsed
// time the scheduler computed at the moment of review, which is useful for
// audits and for re-fitting scheduler weights offline.
type ReviewLog struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ItemID      uuid.UUID `json:"item_id"`
	Rating      Rating    `json:"rating"`
	ElapsedDays float64   `json:"elapsed_days"` // Real-valued days since the previous scheduling event.
	ReviewedAt  time.Time `json:"reviewed_at"`
}

// NewReviewLog creates a log entry for a grading event.
func NewReviewLog(userID, itemID uuid.UUID, rating Rating, elapsedDays float64, reviewedAt time.Time) *ReviewLog {
	return &ReviewLog{
		ID:          uuid.New(),
		UserID:      userID,
		ItemID:      itemID,
		Rating:      rating,
		ElapsedDays: elapsedDays,
		ReviewedAt:  reviewedAt,
	}
}
