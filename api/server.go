/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/drudges/*        Conscript management
  /api/assignments/*    Assignments, day accounting, report generation
  /api/reports/*        Expense report editing and recalculation
  /api/scheduling       Classified weekly planning grid
  /api/specifications/* Entitlement rulesets
  /api/policies/*       Federal compensation rates
  /api/holidays/*       Public holidays and company closures
  /api/quotas           Weekly headcount targets

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public and
  the X-User header is trusted for the audit trail.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
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
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/drudges", func(r chi.Router) {
			r.Get("/", h.ListDrudges)
			r.Post("/", h.CreateDrudge)
			r.Get("/{id}", h.GetDrudge)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", h.ListAssignments)
			r.Post("/", h.CreateAssignment)
			r.Get("/{id}", h.GetAssignment)
			r.Put("/{id}", h.UpdateAssignment)
			r.Get("/{id}/days", h.GetAssignmentDays)
			r.Get("/{id}/expenses", h.GetAssignmentExpenses)
			r.Get("/{id}/reports", h.ListAssignmentReports)
			r.Post("/{id}/reports/generate", h.GenerateReports)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/{id}", h.GetReport)
			r.Put("/{id}", h.UpdateReport)
			r.Delete("/{id}", h.DeleteReport)
			r.Post("/{id}/recalculate", h.RecalculateReport)
			r.Get("/{id}/changes", h.GetReportChanges)
		})

		r.Get("/scheduling", h.GetSchedule)

		r.Route("/specifications", func(r chi.Router) {
			r.Get("/", h.ListSpecifications)
			r.Post("/", h.SaveSpecification)
		})

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.SavePolicy)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Route("/public", func(r chi.Router) {
				r.Get("/", h.ListPublicHolidays)
				r.Post("/", h.SavePublicHoliday)
				r.Post("/defaults", h.SeedDefaultHolidays)
				r.Delete("/{date}", h.DeletePublicHoliday)
			})
			r.Route("/company", func(r chi.Router) {
				r.Get("/", h.ListCompanyHolidays)
				r.Post("/", h.SaveCompanyHoliday)
			})
		})

		r.Put("/quotas", h.SaveQuotas)
	})

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
