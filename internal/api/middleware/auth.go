// Package middleware provides HTTP middleware components for the API,
// including authentication and request tracing.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/recallhq/recall-api/internal/api/shared"
	"github.com/recallhq/recall-api/internal/platform/logger"
	"github.com/recallhq/recall-api/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for protected routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given JWT service.
func NewAuthMiddleware(jwtService auth.JWTService, logger *slog.Logger) *AuthMiddleware {
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates JWT tokens from the Authorization header and adds
// the authenticated user ID to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		tokenString, err := extractBearerToken(r)
		if err != nil {
			log.Debug("missing or malformed authorization header",
				slog.String("error", err.Error()),
				slog.String("path", r.URL.Path))
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), tokenString)
		if err != nil {
			m.respondToTokenError(w, r, log, err)
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondToTokenError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.Debug("token validation failed",
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path))

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, auth.ErrTokenNotYetValid):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token not yet valid")
	case errors.Is(err, auth.ErrMissingToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
	default:
		log.Error("unexpected error during token validation",
			slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
	}
}

// extractBearerToken pulls the token out of an "Authorization: Bearer <token>"
// header. The scheme comparison is case-insensitive per RFC 7235.
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be Bearer <token>")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("authorization token is empty")
	}

	return parts[1], nil
}

// GetUserID retrieves the authenticated user ID from the request context.
// It returns false when the request did not pass through Authenticate.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}
