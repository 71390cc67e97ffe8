package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/recallhq/recall-api/internal/api"
	apimiddleware "github.com/recallhq/recall-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.userStore, app.jwtService, app.passwordVerifier)
	itemHandler := api.NewItemHandler(app.itemStore, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	profileHandler := api.NewProfileHandler(app.progressService, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Item management
			r.Post("/items", itemHandler.CreateItem)
			r.Get("/items", itemHandler.ListItems)
			r.Get("/items/{id}", itemHandler.GetItem)
			r.Delete("/items/{id}", itemHandler.DeleteItem)

			// Review workflow
			r.Get("/reviews/next", reviewHandler.GetNextItem)
			r.Post("/items/{id}/review", reviewHandler.SubmitReview)
			r.Post("/items/{id}/postpone", reviewHandler.Postpone)
			r.Get("/items/{id}/retrievability", reviewHandler.GetRetrievability)
			r.Get("/items/{id}/history", reviewHandler.GetHistory)

			// Progress
			r.Get("/profile", profileHandler.GetProfile)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
