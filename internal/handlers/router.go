package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	mW "github.com/ruralpay/payengine/internal/middleware"
)

// NewRouter wires the ledger endpoints. Mutating routes require a bearer
// token when jwtSecret is set.
func NewRouter(h *LedgerHandler, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/accounts", h.ListAccounts)
		r.Get("/accounts/{clientId}", h.GetAccount)
		r.Get("/stats", h.Stats)

		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware(jwtSecret))

			r.Post("/events", h.IngestCSV)
			r.Post("/events/single", h.ApplyEvent)
		})
	})

	return r
}
