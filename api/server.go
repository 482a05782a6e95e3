/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, picked up by the request logger
  2. Logging:    One structured line per request (logging.Middleware)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. BodyLimit:  Request bodies capped at MaxBodyBytes
  5. CORS:       Cross-origin requests for the frontend (no credentials)

ROUTE GROUPS:
  /health                    Liveness probe
  /api/plans/*               Plan documents, cash flow, accounts, engine queries
  /api/scenarios/*           Demo plans

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/Moserpilot/Finance-Planner-2/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// MaxBodyBytes caps every request body. A plan document is far smaller.
const MaxBodyBytes = 1 << 20

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(MaxBodyBytes))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", h.ListPlans)
			r.Post("/", h.CreatePlan)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetPlan)
				r.Put("/", h.ReplacePlan)
				r.Delete("/", h.DeletePlan)
				r.Patch("/settings", h.UpdateSettings)

				// Recurring items
				r.Post("/recurring", h.AddRecurring)
				r.Route("/recurring/{itemID}", func(r chi.Router) {
					r.Put("/", h.UpdateRecurring)
					r.Delete("/", h.DeleteRecurring)
					r.Get("/amount", h.GetRecurringAmount)
					r.Put("/changes/{month}", h.SetRecurringChange)
					r.Delete("/changes/{month}", h.DeleteRecurringChange)
					r.Put("/overrides/{month}", h.SetRecurringOverride)
					r.Delete("/overrides/{month}", h.DeleteRecurringOverride)
				})

				// One-time items
				r.Post("/one-time", h.AddOneTime)
				r.Delete("/one-time/{itemID}", h.DeleteOneTime)

				// Accounts
				r.Post("/accounts", h.AddAccount)
				r.Route("/accounts/{accountID}", func(r chi.Router) {
					r.Put("/", h.RenameAccount)
					r.Delete("/", h.DeleteAccount)
					r.Put("/balances/{month}", h.SetBalance)
					r.Delete("/balances/{month}", h.DeleteBalance)
				})

				// Engine queries
				r.Get("/series", h.GetSeries)
				r.Get("/net-worth", h.GetNetWorth)
				r.Get("/as-of", h.GetAsOf)
				r.Get("/snapshots", h.GetSnapshots)
				r.Get("/cash-flow", h.GetCashFlow)
				r.Get("/summary", h.GetSummary)
			})
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}
