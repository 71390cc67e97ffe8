package domain

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// ReviewState is the lifecycle stage of a memory state record.
//
// New items have never been scheduled; a first review moves them into
// Learning. Learning and Relearning are short-horizon stages that re-show the
// item the next day; Review is the long-term cycle. A lapse (rating "again"
// while in Review) drops the item into Relearning. Items never return to New.
type ReviewState int

const (
	StateNew ReviewState = iota // Never scheduled; retrievability is defined as 0.
	StateLearning
	StateReview
	StateRelearning
)

var (
	reviewStateNames = [...]string{
		StateNew:        "new",
		StateLearning:   "learning",
		StateReview:     "review",
		StateRelearning: "relearning",
	}
	reviewStateByName = map[string]ReviewState{
		"new":        StateNew,
		"learning":   StateLearning,
		"review":     StateReview,
		"relearning": StateRelearning,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = ReviewState(0)
	_ json.Marshaler           = ReviewState(0)
	_ json.Unmarshaler         = (*ReviewState)(nil)
	_ encoding.TextMarshaler   = ReviewState(0)
	_ encoding.TextUnmarshaler = (*ReviewState)(nil)
)

// IsValid reports whether s is one of the four defined stages.
func (s ReviewState) IsValid() bool {
	return s >= StateNew && s <= StateRelearning
}

// String returns the lowercase name of the state, or "ReviewState(n)" for
// out-of-range values.
func (s ReviewState) String() string {
	if s.IsValid() {
		return reviewStateNames[s]
	}
	return fmt.Sprintf("ReviewState(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s ReviewState) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReviewState, int(s))
	}
	return []byte(reviewStateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ReviewState) UnmarshalText(text []byte) error {
	v, ok := reviewStateByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidReviewState, text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. States serialize as JSON strings.
func (s ReviewState) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *ReviewState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidReviewState, data)
	}
	return s.UnmarshalText([]byte(str))
}
