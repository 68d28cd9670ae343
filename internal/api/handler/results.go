package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nattapongc/shopscout/internal/api/response"
	"github.com/nattapongc/shopscout/internal/store"
	"github.com/nattapongc/shopscout/pkg/models"
)

type resultsResponse struct {
	Success    bool                  `json:"success"`
	JobID      string                `json:"jobId"`
	Category   models.ResultCategory `json:"category"`
	TotalItems int                   `json:"totalItems"`
	ScrapedAt  time.Time             `json:"scrapedAt"`
	Data       []models.Product      `json:"data"`
}

// NewResultsHandler returns an http.HandlerFunc for GET /api/results/{jobID}.
// Non-terminal or errored jobs get a 400 with whatever partial data has
// accumulated; a terminal job without a stored result is a server-side bug
// and reported as 500.
func NewResultsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")

		job, err := st.GetJob(r.Context(), jobID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound,
					"Job not found", "No job with the specified ID exists")
				return
			}
			response.Error(w, http.StatusInternalServerError,
				"Internal server error", err.Error())
			return
		}

		switch job.Status {
		case models.JobStatusScraping:
			response.ErrorWithPartial(w, http.StatusBadRequest,
				"Results not available",
				"The job is still running. Please wait until it completes.",
				job.Products)
			return
		case models.JobStatusError:
			msg := job.Error
			if msg == "" {
				msg = "Unknown error"
			}
			response.ErrorWithPartial(w, http.StatusBadRequest,
				"Results not available",
				fmt.Sprintf("The job has failed: %s", msg),
				job.Products)
			return
		}

		result, err := st.GetResult(r.Context(), jobID)
		if err != nil {
			response.ErrorWithPartial(w, http.StatusInternalServerError,
				"Results not available",
				"The job completed but no results were found. This may be a server error.",
				job.Products)
			return
		}

		response.JSON(w, resultsResponse{
			Success:    true,
			JobID:      result.JobID,
			Category:   result.Category,
			TotalItems: result.TotalItems,
			ScrapedAt:  result.ScrapedAt,
			Data:       result.Data,
		})
	}
}
