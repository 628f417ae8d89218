package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/group-mailer/internal/config"
)

// SetupRoutes configures all API routes. Group-scoped operations sit behind
// the capability middleware; health does not.
func SetupRoutes(h *Handlers, auth config.AuthConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check (no auth required)
	r.Get("/health", h.HealthCheck)

	r.Route("/api/groups/{group}", func(r chi.Router) {
		r.Use(RequireGroup(auth))
		r.Post("/subscribers", h.JoinGroup)
		r.Get("/subscribers", h.ListSubscribers)
		r.Post("/messages", h.ScheduleMessage)
	})

	return r
}
