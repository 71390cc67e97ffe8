package api

import (
	"log/slog"
	"net/http"

	"github.com/recallhq/recall-api/internal/api/shared"
	"github.com/recallhq/recall-api/internal/service/progress"
)

// ProfileHandler handles progress-profile HTTP requests.
type ProfileHandler struct {
	progressService progress.ProgressService
	logger          *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler with the given dependencies.
func NewProfileHandler(progressService progress.ProgressService, logger *slog.Logger) *ProfileHandler {
	if progressService == nil {
		panic("progressService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfileHandler{
		progressService: progressService,
		logger:          logger.With(slog.String("component", "profile_handler")),
	}
}

// GetProfile handles GET /profile requests. It returns the authenticated
// user's aggregated progress: counts, XP, level, realm health and badges.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	profile, err := h.progressService.GetProfile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to build progress profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}
