/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for internal tools

ROUTE GROUPS:
  /api/recompute          Trigger recomputation
  /api/employees/*        Per-employee classified hours and compliance
  /api/payroll/*          Evaluated payroll concept rows
  /api/inconsistencies/*  Inconsistency flags and resolution
  /metrics                Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware currently. The service is deployed on an
  internal network behind the payroll gateway.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/recompute", h.Recompute)

		r.Route("/employees", func(r chi.Router) {
			r.Get("/{id}/hours", h.GetHours)
			r.Get("/{id}/compliance", h.GetCompliance)
		})

		r.Route("/payroll", func(r chi.Router) {
			r.Get("/{id}/concepts", h.GetConcepts)
		})

		r.Route("/inconsistencies", func(r chi.Router) {
			r.Get("/", h.ListFlags)
			r.Post("/{id}/resolve", h.ResolveFlag)
		})

		r.Get("/health", h.Health)
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	return r
}
