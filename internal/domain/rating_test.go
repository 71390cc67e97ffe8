package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRatingIsValid(t *testing.T) {
	t.Parallel()

	for _, r := range []Rating{RatingAgain, RatingHard, RatingGood, RatingEasy} {
		if !r.IsValid() {
			t.Errorf("IsValid(%d) = false, want true", int(r))
		}
	}
	for _, r := range []Rating{0, 5, -1} {
		if r.IsValid() {
			t.Errorf("IsValid(%d) = true, want false", int(r))
		}
	}
}

func TestRatingString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rating Rating
		want   string
	}{
		{RatingAgain, "again"},
		{RatingHard, "hard"},
		{RatingGood, "good"},
		{RatingEasy, "easy"},
		{Rating(0), "Rating(0)"},
		{Rating(7), "Rating(7)"},
	}

	for _, tc := range tests {
		if got := tc.rating.String(); got != tc.want {
			t.Errorf("String(%d) = %q, want %q", int(tc.rating), got, tc.want)
		}
	}
}

func TestRatingJSONRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(RatingHard)
	if err != nil {
		t.Fatalf("Marshal(RatingHard) error = %v", err)
	}
	if string(data) != `"hard"` {
		t.Errorf("Marshal(RatingHard) = %s, want %q", data, `"hard"`)
	}

	var r Rating
	if err := json.Unmarshal(data, &r); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	if r != RatingHard {
		t.Errorf("round trip = %v, want hard", r)
	}
}

func TestRatingUnmarshalRejectsBadInput(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`"amazing"`, `"AGAIN"`, `3`, `null`, `""`} {
		var r Rating
		err := json.Unmarshal([]byte(input), &r)
		if !errors.Is(err, ErrInvalidRating) {
			t.Errorf("Unmarshal(%s) error = %v, want ErrInvalidRating", input, err)
		}
	}
}

func TestRatingMarshalRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	if _, err := json.Marshal(Rating(9)); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("Marshal(Rating(9)) error = %v, want ErrInvalidRating", err)
	}
}
