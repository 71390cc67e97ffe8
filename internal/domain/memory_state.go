package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for MemoryState
var (
	ErrEmptyStateUserID     = errors.New("memory state user ID cannot be empty")
	ErrEmptyStateItemID     = errors.New("memory state item ID cannot be empty")
	ErrNegativeStability    = errors.New("stability must be greater than or equal to 0")
	ErrDifficultyOutOfRange = errors.New("difficulty must be 0 (new) or within [1, 10]")
	ErrNegativeReps         = errors.New("reps must be greater than or equal to 0")
	ErrNegativeLapses       = errors.New("lapses must be greater than or equal to 0")
)

// MemoryState is the per-item scheduling record maintained by the memory
// model. It is replaced wholesale on every scheduling event; nothing mutates
// an existing record in place.
//
// Stability is the expected number of days until recall probability decays to
// the retention target (0.9). Difficulty is intrinsic item hardness on [1,10],
// clamped at every update. Reps counts scheduling events; Lapses counts
// "again" ratings received while in the Review stage. Both are monotonic.
type MemoryState struct {
	UserID     uuid.UUID   `json:"user_id"`
	ItemID     uuid.UUID   `json:"item_id"`
	Stability  float64     `json:"stability"`
	Difficulty float64     `json:"difficulty"`
	Reps       int         `json:"reps"`
	Lapses     int         `json:"lapses"`
	State      ReviewState `json:"state"`
	LastReview time.Time   `json:"last_review"` // Instant of the most recent scheduling event.
	Due        time.Time   `json:"due"`         // Always >= LastReview; minimum interval is one day.
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// NewMemoryState creates the empty record for an item the first time it is
// encountered: all numeric fields zero, state New, and last_review = due = now.
// The record is immediately eligible for its first review.
func NewMemoryState(userID, itemID uuid.UUID, now time.Time) (*MemoryState, error) {
	state := &MemoryState{
		UserID:     userID,
		ItemID:     itemID,
		Stability:  0,
		Difficulty: 0,
		Reps:       0,
		Lapses:     0,
		State:      StateNew,
		LastReview: now,
		Due:        now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Clone returns a copy of the record. The scheduler operates on copies so the
// caller's record is never aliased or mutated.
func (m *MemoryState) Clone() *MemoryState {
	out := *m
	return &out
}

// Validate checks if the MemoryState has valid data.
// Returns an error if any field fails validation.
func (m *MemoryState) Validate() error {
	if m.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if m.ItemID == uuid.Nil {
		return ErrEmptyStateItemID
	}

	if m.Stability < 0 {
		return ErrNegativeStability
	}

	// Difficulty is 0 before the first review, then clamped to [1, 10].
	if m.Difficulty != 0 && (m.Difficulty < 1 || m.Difficulty > 10) {
		return ErrDifficultyOutOfRange
	}

	if m.Reps < 0 {
		return ErrNegativeReps
	}

	if m.Lapses < 0 {
		return ErrNegativeLapses
	}

	if !m.State.IsValid() {
		return ErrInvalidReviewState
	}

	return nil
}
