package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/recallhq/recall-api/internal/api/shared"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/service/review"
)

// ReviewHandler handles review-workflow HTTP requests.
type ReviewHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
	validator     *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler with the given dependencies.
func NewReviewHandler(reviewService review.ReviewService, logger *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "review_handler")),
		validator:     validator.New(),
	}
}

// GetNextItem handles GET /reviews/next requests.
// It retrieves the next item due for review for the authenticated user.
// Responds 204 when nothing is due.
func (h *ReviewHandler) GetNextItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	item, err := h.reviewService.GetNextItem(r.Context(), userID)
	if errors.Is(err, review.ErrNoItemsDue) {
		log.Debug("no items due for review", slog.String("user_id", userID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get next review item")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// SubmitReview handles POST /items/{id}/review requests.
// It grades one recall attempt and returns the updated memory state.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, itemID, ok := requireUserAndItem(w, r)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		// Covers malformed JSON and unknown rating names alike.
		log.Warn("invalid review submission",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	state, err := h.reviewService.SubmitReview(r.Context(), userID, itemID,
		review.ReviewSubmission{Rating: req.Rating})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("item_id", itemID.String()),
		slog.String("rating", req.Rating.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, memoryStateToResponse(state))
}

// Postpone handles POST /items/{id}/postpone requests.
func (h *ReviewHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	userID, itemID, ok := requireUserAndItem(w, r)
	if !ok {
		return
	}

	var req PostponeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	state, err := h.reviewService.Postpone(r.Context(), userID, itemID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, memoryStateToResponse(state))
}

// GetRetrievability handles GET /items/{id}/retrievability requests.
func (h *ReviewHandler) GetRetrievability(w http.ResponseWriter, r *http.Request) {
	userID, itemID, ok := requireUserAndItem(w, r)
	if !ok {
		return
	}

	retrievability, err := h.reviewService.Retrievability(r.Context(), userID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute retrievability")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RetrievabilityResponse{
		ItemID:         itemID,
		Retrievability: retrievability,
		EvaluatedAt:    time.Now().UTC(),
	})
}

// GetHistory handles GET /items/{id}/history requests.
func (h *ReviewHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, itemID, ok := requireUserAndItem(w, r)
	if !ok {
		return
	}

	entries, err := h.reviewService.History(r.Context(), userID, itemID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list review history")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}
