package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/recallhq/recall-api/internal/domain"
)

// Common errors
var (
	ErrNilState     = errors.New("memory state cannot be nil")
	ErrInvalidRating = errors.New("invalid rating")
	ErrInvalidState  = errors.New("invalid review state")
	ErrInvalidDays   = errors.New("postpone days must be at least 1")
)

// Service is the scheduler: a pure transition function over MemoryState
// records, driven by a fixed parameter vector. Every method either returns a
// new record or a scalar; no method mutates its input or performs I/O, so
// calls on different records are safe from any number of goroutines.
// Concurrent gradings of the same item are a persistence-layer concern.
type Service interface {
	// EmptyState creates the record for an item's first encounter:
	// state New, zeroed numerics, last_review = due = now.
	EmptyState(userID, itemID uuid.UUID, now time.Time) (*domain.MemoryState, error)

	// Retrievability estimates current recall probability in [0, 1].
	// New records and records with zero stability report 0 — never reviewed,
	// no signal. Idempotent query.
	Retrievability(state *domain.MemoryState, now time.Time) float64

	// ElapsedDays returns the real-valued days since the record's last
	// scheduling event, or 0 for New records. Schedule computes the same
	// quantity; its formulas consume elapsed time only indirectly, through
	// the stability and difficulty the previous event encoded, so the value
	// is surfaced here for review logging rather than discarded.
	ElapsedDays(state *domain.MemoryState, now time.Time) float64

	// Schedule applies one grading event and returns the replacement record.
	// The input record is not modified. Fails fast on nil records,
	// out-of-range ratings, and unknown states rather than clamping, since
	// clamping would mask upstream bugs.
	Schedule(state *domain.MemoryState, rating domain.Rating, now time.Time) (*domain.MemoryState, error)

	// Postpone pushes the due date forward by a number of days without
	// touching the memory fields.
	Postpone(state *domain.MemoryState, days int, now time.Time) (*domain.MemoryState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduler with the calibrated default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a scheduler with custom parameters.
// Returns an error if the parameters fail validation.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, errors.New("params cannot be nil")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{params: params}, nil
}

// EmptyState implements Service.EmptyState.
func (s *defaultService) EmptyState(userID, itemID uuid.UUID, now time.Time) (*domain.MemoryState, error) {
	return domain.NewMemoryState(userID, itemID, now)
}

// Retrievability implements Service.Retrievability.
func (s *defaultService) Retrievability(state *domain.MemoryState, now time.Time) float64 {
	if state == nil || state.State == domain.StateNew {
		return 0
	}
	// Guards the division inside the forgetting curve.
	if state.Stability == 0 {
		return 0
	}
	return retrievability(elapsedDays(state.LastReview, now), state.Stability)
}

// ElapsedDays implements Service.ElapsedDays.
func (s *defaultService) ElapsedDays(state *domain.MemoryState, now time.Time) float64 {
	if state == nil || state.State == domain.StateNew {
		return 0
	}
	return elapsedDays(state.LastReview, now)
}

// Schedule implements Service.Schedule.
func (s *defaultService) Schedule(state *domain.MemoryState, rating domain.Rating, now time.Time) (*domain.MemoryState, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}
	if !state.State.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, int(state.State))
	}

	next := state.Clone()

	// Difficulty update with mean reversion toward the new-item baseline.
	var difficulty float64
	if state.State == domain.StateNew {
		difficulty = s.params.initialDifficulty(rating)
	} else {
		difficulty = s.params.nextDifficulty(state.Difficulty, rating)
	}
	difficulty = s.params.meanReversion(difficulty)

	// Stability and lifecycle transition.
	var stability float64
	switch state.State {
	case domain.StateNew:
		stability = s.params.initialStability(rating)
		next.State = domain.StateLearning

	case domain.StateLearning, domain.StateRelearning:
		// Short-term stages reset to the rating-indexed baseline; a good or
		// easy recall graduates the item into the long-term Review cycle.
		stability = s.params.initialStability(rating)
		if rating >= domain.RatingGood {
			next.State = domain.StateReview
		} else {
			next.State = domain.StateLearning
		}

	case domain.StateReview:
		if rating == domain.RatingAgain {
			stability = s.params.forgetStability(difficulty, state.Stability)
			next.State = domain.StateRelearning
			next.Lapses++
		} else {
			stability = s.params.recallStability(difficulty, state.Stability, rating)
			// Remains in Review.
		}
	}

	next.Reps++

	// Learning and Relearning items are re-shown the next day; only items in
	// the long-term Review cycle get a stability-derived interval.
	intervalDays := 1
	if next.State == domain.StateReview {
		intervalDays = s.params.nextInterval(stability)
	}

	next.Stability = round4(stability)
	next.Difficulty = round4(difficulty)
	next.LastReview = now
	next.Due = now.Add(time.Duration(intervalDays) * 24 * time.Hour)
	next.UpdatedAt = now

	return next, nil
}

// Postpone implements Service.Postpone.
func (s *defaultService) Postpone(state *domain.MemoryState, days int, now time.Time) (*domain.MemoryState, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if days < 1 {
		return nil, ErrInvalidDays
	}

	next := state.Clone()
	next.Due = state.Due.Add(time.Duration(days) * 24 * time.Hour)
	next.UpdatedAt = now

	return next, nil
}
