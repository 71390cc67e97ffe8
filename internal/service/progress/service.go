// Package progress aggregates a user's memory state records into a coarse
// hero profile: experience points, a level, realm health, and badges. It only
// reads the scheduler's output records; no scheduling logic lives here.
package progress

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/domain"
)

// XP and level tuning constants.
const (
	xpPerRep     = 10
	xpPerLearned = 50
	xpPerLapse   = 5 // Deducted; forgetting costs a little.

	// xpLevelBase sets the quadratic level curve: level n starts at
	// (n-1)^2 * xpLevelBase XP.
	xpLevelBase = 100
)

// Badge identifiers awarded by the profile aggregator.
const (
	BadgeFirstSteps = "first_steps" // At least one review submitted.
	BadgeCommitted  = "committed"   // 100 or more reviews.
	BadgeScholar    = "scholar"     // 10 or more items in the long-term review stage.
	BadgeIronMemory = "iron_memory" // Realm health at or above 0.95 across 5+ scheduled items.
	BadgeComeback   = "comeback"    // Recovered from 10 or more lapses.
)

// Profile is the aggregated view of a user's learning progress.
type Profile struct {
	UserID         uuid.UUID `json:"user_id"`
	TotalItems     int       `json:"total_items"`
	ScheduledItems int       `json:"scheduled_items"` // Reviewed at least once.
	LearnedItems   int       `json:"learned_items"`   // In the long-term review stage.
	TotalReps      int       `json:"total_reps"`
	TotalLapses    int       `json:"total_lapses"`
	XP             int       `json:"xp"`
	Level          int       `json:"level"`
	RealmHealth    float64   `json:"realm_health"` // Mean retrievability over scheduled items, [0, 1].
	Badges         []string  `json:"badges"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// ProgressService computes hero profiles.
type ProgressService interface {
	// GetProfile aggregates all of the user's items and memory states into
	// a Profile as of now. Items never reviewed (state New or zero
	// stability) count toward totals but contribute no XP and are excluded
	// from realm health.
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
}

// isScheduled reports whether a record has ever been through a review.
// New records and records with zero stability carry no recall signal.
func isScheduled(state *domain.MemoryState) bool {
	return state.State != domain.StateNew && state.Stability > 0
}
