package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/service/progress"
	"github.com/recallhq/recall-api/internal/service/review"
)

func testMemoryState(userID, itemID uuid.UUID) *domain.MemoryState {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	return &domain.MemoryState{
		UserID:     userID,
		ItemID:     itemID,
		Stability:  4.93,
		Difficulty: 5.28,
		Reps:       1,
		Lapses:     0,
		State:      domain.StateLearning,
		LastReview: now,
		Due:        now.Add(24 * time.Hour),
	}
}

func TestHandlerGetNextItem(t *testing.T) {
	t.Parallel()

	t.Run("returns the due item", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		item, err := domain.NewItem(userID, "due card", "answer")
		require.NoError(t, err)
		handler := NewReviewHandler(&mockReviewService{nextItem: item}, testLogger())

		req := newAuthedRequest(http.MethodGet, "/reviews/next", "", userID)
		rec := httptest.NewRecorder()
		handler.GetNextItem(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ItemResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, item.ID, resp.ID)
		assert.Equal(t, "due card", resp.Front)
	})

	t.Run("nothing due responds 204 with empty body", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&mockReviewService{err: review.ErrNoItemsDue}, testLogger())

		req := newAuthedRequest(http.MethodGet, "/reviews/next", "", uuid.New())
		rec := httptest.NewRecorder()
		handler.GetNextItem(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&mockReviewService{}, testLogger())

		req := httptest.NewRequest(http.MethodGet, "/reviews/next", nil)
		rec := httptest.NewRecorder()
		handler.GetNextItem(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandlerSubmitReview(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()

	t.Run("valid rating returns the updated state", func(t *testing.T) {
		t.Parallel()

		state := testMemoryState(userID, itemID)
		handler := NewReviewHandler(&mockReviewService{state: state}, testLogger())

		req := newAuthedRequest(http.MethodPost, "/items/"+itemID.String()+"/review",
			`{"rating":"good"}`, userID)
		req = withPathParam(req, "id", itemID.String())
		rec := httptest.NewRecorder()
		handler.SubmitReview(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp MemoryStateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, itemID, resp.ItemID)
		assert.InDelta(t, 4.93, resp.Stability, 1e-9)
		assert.Equal(t, domain.StateLearning, resp.State)
	})

	t.Run("unknown rating name is a bad request", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&mockReviewService{}, testLogger())

		req := newAuthedRequest(http.MethodPost, "/items/"+itemID.String()+"/review",
			`{"rating":"amazing"}`, userID)
		req = withPathParam(req, "id", itemID.String())
		rec := httptest.NewRecorder()
		handler.SubmitReview(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service errors map to status codes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name       string
			serviceErr error
			wantStatus int
		}{
			{"unknown item", review.ErrItemNotFound, http.StatusNotFound},
			{"item owned by someone else", review.ErrItemNotOwned, http.StatusForbidden},
			{"invalid rating", review.ErrInvalidRating, http.StatusBadRequest},
			{"unexpected failure", errBoom, http.StatusInternalServerError},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				handler := NewReviewHandler(&mockReviewService{err: tc.serviceErr}, testLogger())

				req := newAuthedRequest(http.MethodPost, "/items/"+itemID.String()+"/review",
					`{"rating":"good"}`, userID)
				req = withPathParam(req, "id", itemID.String())
				rec := httptest.NewRecorder()
				handler.SubmitReview(rec, req)

				assert.Equal(t, tc.wantStatus, rec.Code)
			})
		}
	})
}

func TestHandlerPostpone(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()

	t.Run("postpones by the requested days", func(t *testing.T) {
		t.Parallel()

		state := testMemoryState(userID, itemID)
		state.Due = state.Due.Add(3 * 24 * time.Hour)
		handler := NewReviewHandler(&mockReviewService{state: state}, testLogger())

		req := newAuthedRequest(http.MethodPost, "/items/"+itemID.String()+"/postpone",
			`{"days":3}`, userID)
		req = withPathParam(req, "id", itemID.String())
		rec := httptest.NewRecorder()
		handler.Postpone(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp MemoryStateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, state.Due.UTC(), resp.Due.UTC())
	})

	t.Run("zero and negative days are rejected", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`{"days":0}`, `{"days":-2}`} {
			handler := NewReviewHandler(&mockReviewService{}, testLogger())

			req := newAuthedRequest(http.MethodPost, "/items/"+itemID.String()+"/postpone", body, userID)
			req = withPathParam(req, "id", itemID.String())
			rec := httptest.NewRecorder()
			handler.Postpone(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
		}
	})

	t.Run("never-reviewed item is a bad request", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&mockReviewService{err: review.ErrNotScheduled}, testLogger())

		req := newAuthedRequest(http.MethodPost, "/items/"+itemID.String()+"/postpone",
			`{"days":1}`, userID)
		req = withPathParam(req, "id", itemID.String())
		rec := httptest.NewRecorder()
		handler.Postpone(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerGetRetrievability(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()

	handler := NewReviewHandler(&mockReviewService{retrievability: 0.9}, testLogger())

	req := newAuthedRequest(http.MethodGet, "/items/"+itemID.String()+"/retrievability", "", userID)
	req = withPathParam(req, "id", itemID.String())
	rec := httptest.NewRecorder()
	handler.GetRetrievability(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RetrievabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, itemID, resp.ItemID)
	assert.InDelta(t, 0.9, resp.Retrievability, 1e-9)
	assert.False(t, resp.EvaluatedAt.IsZero())
}

func TestHandlerGetHistory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	itemID := uuid.New()
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	history := []*domain.ReviewLog{
		domain.NewReviewLog(userID, itemID, domain.RatingGood, 0, now),
		domain.NewReviewLog(userID, itemID, domain.RatingAgain, 1.5, now.Add(36*time.Hour)),
	}
	handler := NewReviewHandler(&mockReviewService{history: history}, testLogger())

	req := newAuthedRequest(http.MethodGet, "/items/"+itemID.String()+"/history", "", userID)
	req = withPathParam(req, "id", itemID.String())
	rec := httptest.NewRecorder()
	handler.GetHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []domain.ReviewLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, domain.RatingGood, resp[0].Rating)
	assert.Equal(t, domain.RatingAgain, resp[1].Rating)
}

func TestHandlerGetProfile(t *testing.T) {
	t.Parallel()

	t.Run("returns the aggregated profile", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		profile := &progress.Profile{
			UserID:         userID,
			TotalItems:     4,
			ScheduledItems: 3,
			LearnedItems:   1,
			TotalReps:      12,
			TotalLapses:    2,
			XP:             160,
			Level:          2,
			RealmHealth:    0.87,
			Badges:         []string{progress.BadgeFirstSteps},
			GeneratedAt:    time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC),
		}
		handler := NewProfileHandler(&mockProgressService{profile: profile}, testLogger())

		req := newAuthedRequest(http.MethodGet, "/profile", "", userID)
		rec := httptest.NewRecorder()
		handler.GetProfile(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp progress.Profile
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, 160, resp.XP)
		assert.Equal(t, 2, resp.Level)
		assert.Equal(t, []string{progress.BadgeFirstSteps}, resp.Badges)
	})

	t.Run("service failure returns 500", func(t *testing.T) {
		t.Parallel()

		handler := NewProfileHandler(&mockProgressService{err: errBoom}, testLogger())

		req := newAuthedRequest(http.MethodGet, "/profile", "", uuid.New())
		rec := httptest.NewRecorder()
		handler.GetProfile(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
