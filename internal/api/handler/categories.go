// Package handler implements the public API endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/nattapongc/shopscout/internal/api/response"
	"github.com/nattapongc/shopscout/internal/cache"
	"github.com/nattapongc/shopscout/pkg/models"
)

const categoryCacheTTL = 5 * time.Minute

// CategorySource defines what the categories endpoint needs from the directory.
type CategorySource interface {
	Refresh(ctx context.Context) error
	Main() []models.Category
}

type categoriesResponse struct {
	Success bool              `json:"success"`
	Data    []models.Category `json:"data"`
}

// NewCategoriesHandler returns an http.HandlerFunc for GET /api/categories.
// The serialized list is cached briefly so pollers opening the picker do not
// hammer the upstream tree endpoint; cache trouble falls open to a refresh.
func NewCategoriesHandler(directory CategorySource, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if body, ok, err := c.Get(ctx, cache.CategoryListKey()); err == nil && ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(body)
			return
		}

		if err := directory.Refresh(ctx); err != nil {
			response.Error(w, http.StatusInternalServerError,
				"Unable to fetch categories", err.Error())
			return
		}

		main := directory.Main()
		if main == nil {
			main = []models.Category{}
		}

		body, err := json.Marshal(categoriesResponse{Success: true, Data: main})
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"Unable to fetch categories", err.Error())
			return
		}

		if err := c.Set(ctx, cache.CategoryListKey(), body, categoryCacheTTL); err != nil {
			slog.Warn("caching category list failed", "error", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}
