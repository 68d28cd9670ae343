package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	mw "github.com/nattapongc/shopscout/internal/api/middleware"
	"github.com/nattapongc/shopscout/internal/api/response"
	"github.com/nattapongc/shopscout/internal/config"
	"github.com/nattapongc/shopscout/internal/scraper"
	"github.com/nattapongc/shopscout/pkg/models"
)

// ScrapeStarter defines what the scrape endpoint needs from the orchestrator.
type ScrapeStarter interface {
	StartScrape(ctx context.Context, clientID, categoryID string, limit int) (models.Job, error)
}

type scrapeResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	JobID         string `json:"jobId"`
	EstimatedTime string `json:"estimatedTime"`
}

// NewScrapeHandler returns an http.HandlerFunc for POST /api/scrape.
func NewScrapeHandler(svc ScrapeStarter, cfg config.ScrapeConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CategoryID string `json:"categoryId"`
			Limit      int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest,
				"Invalid request", "Request body must be valid JSON")
			return
		}

		if req.CategoryID == "" {
			response.Error(w, http.StatusBadRequest,
				"Missing required parameters", "categoryId is required")
			return
		}

		limit := req.Limit
		if limit <= 0 {
			limit = cfg.DefaultLimit
		}
		if limit > cfg.MaxLimit {
			limit = cfg.MaxLimit
		}

		clientID, ok := mw.GetClientID(r)
		if !ok {
			clientID = r.RemoteAddr
		}

		job, err := svc.StartScrape(r.Context(), clientID, req.CategoryID, limit)
		if err != nil {
			if errors.Is(err, scraper.ErrJobActive) {
				response.Error(w, http.StatusTooManyRequests,
					"Scrape already in progress",
					"Wait for your current job to finish before starting another")
				return
			}
			response.Error(w, http.StatusInternalServerError,
				"Failed to initiate scraping", err.Error())
			return
		}

		response.JSON(w, scrapeResponse{
			Success:       true,
			Message:       "Scraping initiated",
			JobID:         job.ID,
			EstimatedTime: fmt.Sprintf("%d seconds", (limit+9)/10),
		})
	}
}
