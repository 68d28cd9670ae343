package models

import "time"

const (
	JobStatusScraping  = "scraping"
	JobStatusCompleted = "completed"
	JobStatusError     = "error"
)

// Job tracks one asynchronous scrape-and-classify run. The API returns a
// jobId on POST /api/scrape; the client polls GET /api/status/{jobId} until
// status is completed or error. Once a job reaches a terminal status it
// never mutates again.
type Job struct {
	ID          string     `json:"id"`
	CategoryID  string     `json:"categoryId"`
	Limit       int        `json:"limit"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
	Products    []Product  `json:"products"`
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusError
}
