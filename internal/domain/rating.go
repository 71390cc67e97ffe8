package domain

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Rating is the learner's assessment of recall quality for a single review.
//
// The four grades are ordinal and their integer values carry arithmetic
// meaning inside the scheduler: the offset from Good (rating-3) drives the
// difficulty update, and the 1-based ordinal indexes the initial-stability
// weights. Do not renumber.
type Rating int

const (
	RatingAgain Rating = iota + 1 // Total recall failure.
	RatingHard                    // Recalled with significant difficulty.
	RatingGood                    // Recalled with some effort.
	RatingEasy                    // Recalled effortlessly.
)

var (
	ratingNames = [...]string{
		RatingAgain: "again",
		RatingHard:  "hard",
		RatingGood:  "good",
		RatingEasy:  "easy",
	}
	ratingByName = map[string]Rating{
		"again": RatingAgain,
		"hard":  RatingHard,
		"good":  RatingGood,
		"easy":  RatingEasy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Rating(0)
	_ json.Marshaler           = Rating(0)
	_ json.Unmarshaler         = (*Rating)(nil)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// IsValid reports whether r is one of the four defined grades.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// String returns the lowercase name of the rating, or "Rating(n)" for
// out-of-range values.
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRating, text)
	}
	*r = v
	return nil
}

// MarshalJSON implements json.Marshaler. Ratings serialize as JSON strings
// ("again", "hard", "good", "easy") at the API boundary.
func (r Rating) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRating, data)
	}
	return r.UnmarshalText([]byte(s))
}
