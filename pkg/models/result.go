package models

import "time"

// ResultCategory names the category a result was scraped for.
type ResultCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Result is the final payload of a job, written exactly once at the job's
// terminal transition and immutable afterwards.
type Result struct {
	JobID      string         `json:"jobId"`
	Category   ResultCategory `json:"category"`
	TotalItems int            `json:"totalItems"`
	ScrapedAt  time.Time      `json:"scrapedAt"`
	Data       []Product      `json:"data"`
}
