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

type statusResponse struct {
	Success      bool       `json:"success"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	Message      string     `json:"message"`
	CompletedAt  *time.Time `json:"completedAt"`
	ScrapedItems int        `json:"scrapedItems"`
}

// NewStatusHandler returns an http.HandlerFunc for GET /api/status/{jobID}.
func NewStatusHandler(st store.Store) http.HandlerFunc {
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

		message := fmt.Sprintf("%d out of %d products scraped", len(job.Products), job.Limit)
		if job.Status == models.JobStatusError {
			message = job.Error
		}

		response.JSON(w, statusResponse{
			Success:      true,
			Status:       job.Status,
			Progress:     job.Progress,
			Message:      message,
			CompletedAt:  job.CompletedAt,
			ScrapedItems: len(job.Products),
		})
	}
}
