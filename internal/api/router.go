package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/nattapongc/shopscout/internal/api/middleware"
	"github.com/nattapongc/shopscout/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler     http.HandlerFunc
	CategoriesHandler http.HandlerFunc
	ScrapeHandler     http.HandlerFunc
	StatusHandler     http.HandlerFunc
	ResultsHandler    http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware. ClientID runs first so the logger sees the
	// resolved identity.
	r.Use(mw.ClientID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/categories", orNotImplemented(deps.CategoriesHandler))

	// Submission goes through the global rate ceiling; polling does not.
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimit.Limit)
		r.Post("/api/scrape", orNotImplemented(deps.ScrapeHandler))
	})

	r.Get("/api/status/{jobID}", orNotImplemented(deps.StatusHandler))
	r.Get("/api/results/{jobID}", orNotImplemented(deps.ResultsHandler))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "Not implemented", "Endpoint not yet implemented")
	}
}
