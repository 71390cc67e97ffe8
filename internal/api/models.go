package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateItemRequest defines the payload for creating a learned item.
type CreateItemRequest struct {
	Front string `json:"front" validate:"required,max=2000"`
	Back  string `json:"back"  validate:"max=10000"`
}

// ItemResponse represents a learned item.
type ItemResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmitReviewRequest defines the payload for grading a recall attempt.
// The rating deserializes from its string form ("again", "hard", "good",
// "easy"); unknown values fail during decoding.
type SubmitReviewRequest struct {
	Rating domain.Rating `json:"rating"`
}

// MemoryStateResponse represents an item's scheduling record.
type MemoryStateResponse struct {
	UserID     uuid.UUID          `json:"user_id"`
	ItemID     uuid.UUID          `json:"item_id"`
	Stability  float64            `json:"stability"`
	Difficulty float64            `json:"difficulty"`
	Reps       int                `json:"reps"`
	Lapses     int                `json:"lapses"`
	State      domain.ReviewState `json:"state"`
	LastReview time.Time          `json:"last_review"`
	Due        time.Time          `json:"due"`
}

// PostponeRequest defines the payload for deferring an item's due date.
type PostponeRequest struct {
	Days int `json:"days" validate:"required,gte=1"`
}

// RetrievabilityResponse reports the current recall estimate for an item.
type RetrievabilityResponse struct {
	ItemID         uuid.UUID `json:"item_id"`
	Retrievability float64   `json:"retrievability"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// itemToResponse converts a domain.Item to an ItemResponse.
func itemToResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		UserID:    item.UserID,
		Front:     item.Front,
		Back:      item.Back,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// memoryStateToResponse converts a domain.MemoryState to a MemoryStateResponse.
func memoryStateToResponse(state *domain.MemoryState) MemoryStateResponse {
	return MemoryStateResponse{
		UserID:     state.UserID,
		ItemID:     state.ItemID,
		Stability:  state.Stability,
		Difficulty: state.Difficulty,
		Reps:       state.Reps,
		Lapses:     state.Lapses,
		State:      state.State,
		LastReview: state.LastReview,
		Due:        state.Due,
	}
}
