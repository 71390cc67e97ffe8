package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

var stateTestNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func TestNewMemoryState(t *testing.T) {
	t.Parallel()

	userID, itemID := uuid.New(), uuid.New()
	state, err := NewMemoryState(userID, itemID, stateTestNow)
	if err != nil {
		t.Fatalf("NewMemoryState() error = %v", err)
	}

	if state.UserID != userID || state.ItemID != itemID {
		t.Errorf("IDs = %v/%v, want %v/%v", state.UserID, state.ItemID, userID, itemID)
	}
	if state.State != StateNew {
		t.Errorf("State = %v, want new", state.State)
	}
	if state.Stability != 0 || state.Difficulty != 0 || state.Reps != 0 || state.Lapses != 0 {
		t.Errorf("numeric fields not zeroed: %+v", state)
	}
	if !state.LastReview.Equal(stateTestNow) || !state.Due.Equal(stateTestNow) {
		t.Errorf("LastReview/Due = %v/%v, want both %v", state.LastReview, state.Due, stateTestNow)
	}
}

func TestNewMemoryStateRejectsNilIDs(t *testing.T) {
	t.Parallel()

	if _, err := NewMemoryState(uuid.Nil, uuid.New(), stateTestNow); !errors.Is(err, ErrEmptyStateUserID) {
		t.Errorf("nil user ID error = %v, want ErrEmptyStateUserID", err)
	}
	if _, err := NewMemoryState(uuid.New(), uuid.Nil, stateTestNow); !errors.Is(err, ErrEmptyStateItemID) {
		t.Errorf("nil item ID error = %v, want ErrEmptyStateItemID", err)
	}
}

func TestMemoryStateValidate(t *testing.T) {
	t.Parallel()

	valid := func(t *testing.T) *MemoryState {
		t.Helper()
		state, err := NewMemoryState(uuid.New(), uuid.New(), stateTestNow)
		if err != nil {
			t.Fatalf("NewMemoryState() error = %v", err)
		}
		return state
	}

	tests := []struct {
		name    string
		mutate  func(*MemoryState)
		wantErr error
	}{
		{"negative stability", func(m *MemoryState) { m.Stability = -0.1 }, ErrNegativeStability},
		{"difficulty below range", func(m *MemoryState) { m.Difficulty = 0.5 }, ErrDifficultyOutOfRange},
		{"difficulty above range", func(m *MemoryState) { m.Difficulty = 10.1 }, ErrDifficultyOutOfRange},
		{"negative reps", func(m *MemoryState) { m.Reps = -1 }, ErrNegativeReps},
		{"negative lapses", func(m *MemoryState) { m.Lapses = -1 }, ErrNegativeLapses},
		{"undefined state", func(m *MemoryState) { m.State = ReviewState(9) }, ErrInvalidReviewState},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			state := valid(t)
			tc.mutate(state)
			if err := state.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	t.Run("zero difficulty allowed before first review", func(t *testing.T) {
		t.Parallel()
		state := valid(t)
		state.Difficulty = 0
		if err := state.Validate(); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})

	t.Run("boundary difficulties allowed", func(t *testing.T) {
		t.Parallel()
		for _, d := range []float64{1, 10} {
			state := valid(t)
			state.Difficulty = d
			if err := state.Validate(); err != nil {
				t.Errorf("Validate() with difficulty %v error = %v, want nil", d, err)
			}
		}
	})
}

func TestMemoryStateClone(t *testing.T) {
	t.Parallel()

	state, err := NewMemoryState(uuid.New(), uuid.New(), stateTestNow)
	if err != nil {
		t.Fatalf("NewMemoryState() error = %v", err)
	}
	state.Stability = 5.5

	clone := state.Clone()
	if clone == state {
		t.Fatal("Clone() returned the same pointer")
	}

	clone.Stability = 9.9
	if state.Stability != 5.5 {
		t.Errorf("mutating the clone changed the original: %v", state.Stability)
	}
}
