package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/recallhq/recall-api/internal/api/shared"
	"github.com/recallhq/recall-api/internal/domain"
	"github.com/recallhq/recall-api/internal/domain/srs"
	"github.com/recallhq/recall-api/internal/service/auth"
	"github.com/recallhq/recall-api/internal/service/review"
	"github.com/recallhq/recall-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, review.ErrItemNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, store.ErrMemoryStateNotFound),
		errors.Is(err, review.ErrItemNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, review.ErrNotScheduled),
		errors.Is(err, srs.ErrInvalidDays),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidRating):
		return http.StatusBadRequest

	// Special cases
	case errors.Is(err, review.ErrNoItemsDue):
		return http.StatusNoContent

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, review.ErrItemNotOwned):
		return "You do not own this item"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrItemNotFound),
		errors.Is(err, review.ErrItemNotFound):
		return "Item not found"

	case errors.Is(err, store.ErrMemoryStateNotFound):
		return "Memory state not found"

	case errors.Is(err, review.ErrNotScheduled):
		return "Item has not been reviewed yet"

	case errors.Is(err, srs.ErrInvalidDays):
		return "Postpone days must be at least 1"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidRating):
		return "Invalid rating"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return "Invalid " + validationErr.Field
		}
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an error to a status code and sanitized message, then
// writes the response. If defaultMsg is non-empty it overrides the mapped
// message for non-2xx statuses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	statusCode := MapErrorToStatusCode(err)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	message := GetSafeErrorMessage(err)
	if defaultMsg != "" {
		message = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, message, err)
}

// SanitizeValidationError converts a go-playground/validator error into a
// user-friendly message without leaking struct internals.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				if len(fieldParts) >= 5 {
					return "Invalid " + field + ": " + validationTagMessage(fieldParts[3])
				}
				return "Invalid " + field
			}
		}
	}

	return "Validation error"
}

// validationTagMessage maps validation tags to user-friendly error messages.
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gt", "gte":
		return "too small"
	default:
		return "validation failed"
	}
}
