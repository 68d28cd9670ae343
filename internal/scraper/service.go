// Package scraper runs scrape jobs: the paginated fetch → filter → classify →
// accept loop behind POST /api/scrape.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nattapongc/shopscout/internal/admission"
	"github.com/nattapongc/shopscout/internal/catalog"
	"github.com/nattapongc/shopscout/internal/classifier"
	"github.com/nattapongc/shopscout/internal/config"
	"github.com/nattapongc/shopscout/internal/shopee"
	"github.com/nattapongc/shopscout/internal/store"
	"github.com/nattapongc/shopscout/pkg/models"
)

// ErrJobActive is returned when the client already has a non-terminal job.
var ErrJobActive = errors.New("client already has an active scrape job")

// Service orchestrates scrape jobs. One goroutine per job; the goroutine is
// the job's only writer until it reaches a terminal state.
type Service struct {
	store      store.Store
	guard      *admission.Guard
	directory  *catalog.Directory
	feed       shopee.Client
	classifier classifier.Classifier
	cfg        config.ScrapeConfig
	siteURL    string
	cdnURL     string
}

// NewService creates a new scrape Service.
func NewService(
	st store.Store,
	guard *admission.Guard,
	directory *catalog.Directory,
	feed shopee.Client,
	cls classifier.Classifier,
	cfg config.ScrapeConfig,
	shopeeCfg config.ShopeeConfig,
) *Service {
	return &Service{
		store:      st,
		guard:      guard,
		directory:  directory,
		feed:       feed,
		classifier: cls,
		cfg:        cfg,
		siteURL:    shopeeCfg.SiteURL,
		cdnURL:     shopeeCfg.CDNURL,
	}
}

// StartScrape admits the client, creates the job record and dispatches the
// scrape in a background goroutine. Returns the job immediately without
// waiting for scraping to complete.
func (s *Service) StartScrape(ctx context.Context, clientID, categoryID string, limit int) (models.Job, error) {
	jobID := "job_" + uuid.New().String()

	if !s.guard.TryAdmit(clientID, jobID) {
		return models.Job{}, ErrJobActive
	}

	job := models.Job{
		ID:         jobID,
		CategoryID: categoryID,
		Limit:      limit,
		Status:     models.JobStatusScraping,
		StartedAt:  time.Now().UTC(),
		Products:   []models.Product{},
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		s.guard.Release(clientID, jobID)
		return models.Job{}, fmt.Errorf("creating job: %w", err)
	}

	go s.run(jobID, clientID, categoryID, limit)

	return job, nil
}

// run drives one job to a terminal state. It recovers from panics and always
// releases the client's admission slot on exit.
func (s *Service) run(jobID, clientID, categoryID string, limit int) {
	ctx := context.Background()

	defer s.guard.Release(clientID, jobID)
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in scrape run", "error", r, "job_id", jobID)
			_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusError,
				store.WithError(fmt.Sprintf("panic: %v", r)))
		}
	}()

	if _, err := s.store.GetJob(ctx, jobID); err != nil {
		slog.Error("job record missing at start", "job_id", jobID, "error", err)
		return
	}

	category, ok := s.directory.Lookup(categoryID)
	if !ok {
		slog.Warn("unknown category, failing job", "job_id", jobID, "category_id", categoryID)
		_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusError,
			store.WithError(fmt.Sprintf("category %s not found", categoryID)))
		return
	}
	keywords := s.directory.Keywords(category.DisplayName)

	slog.Info("scrape started",
		"job_id", jobID,
		"category_id", categoryID,
		"limit", limit,
		"keywords", len(keywords),
	)

	accepted := []models.Product{}
	var buffer []*shopee.ItemRecord

	for page := 0; page < s.cfg.MaxPages && len(accepted) < limit; page++ {
		feeds, err := s.feed.DailyDiscover(ctx, page*s.cfg.PageSize)
		if err != nil {
			// Upstream trouble ends the job with whatever accumulated.
			slog.Warn("feed fetch failed, finishing with partial results",
				"job_id", jobID, "page", page, "error", err)
			break
		}
		if len(feeds) == 0 {
			slog.Info("feed exhausted", "job_id", jobID, "page", page)
			break
		}

		for i := range feeds {
			if len(accepted) >= limit {
				break
			}
			rec := feeds[i].Record()
			if rec == nil || rec.Name == "" {
				continue
			}
			if !IsRelevant(rec.Name, keywords) {
				continue
			}

			buffer = append(buffer, rec)
			if len(buffer) >= s.cfg.BatchSize || len(accepted)+len(buffer) >= limit {
				accepted = s.flushBatch(ctx, jobID, category.DisplayName, buffer, accepted, limit)
				buffer = buffer[:0]
			}
		}

		if len(accepted) < limit && page+1 < s.cfg.MaxPages {
			time.Sleep(s.cfg.PageDelay)
		}
	}

	// Survivors still buffered at exhaustion would otherwise be dropped.
	if len(buffer) > 0 && len(accepted) < limit {
		accepted = s.flushBatch(ctx, jobID, category.DisplayName, buffer, accepted, limit)
	}

	s.complete(ctx, jobID, category, accepted)
}

// flushBatch scores one buffered batch and accepts every member at or above
// the threshold, never exceeding limit. A classifier failure scores the whole
// batch zero instead of failing the job: an outage means fewer accepted
// products, never a dead job.
func (s *Service) flushBatch(ctx context.Context, jobID, categoryName string, batch []*shopee.ItemRecord, accepted []models.Product, limit int) []models.Product {
	names := make([]string, len(batch))
	for i, rec := range batch {
		names[i] = rec.Name
	}

	probs, err := s.classifier.Classify(ctx, names, categoryName)
	if err != nil {
		slog.Warn("classifier batch failed, scoring zero",
			"job_id", jobID, "batch_size", len(batch), "error", err)
		probs = make([]float64, len(batch))
	}

	for i, rec := range batch {
		if len(accepted) >= limit {
			break
		}
		if probs[i] >= s.cfg.Threshold {
			accepted = append(accepted, rec.Product(probs[i], s.siteURL, s.cdnURL))
		}
	}

	progress := len(accepted) * 100 / limit
	if progress > 100 {
		progress = 100
	}
	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusScraping,
		store.WithProgress(progress),
		store.WithProducts(accepted),
	)

	return accepted
}

// complete writes the job's result exactly once and marks the job terminal.
func (s *Service) complete(ctx context.Context, jobID string, category models.Category, accepted []models.Product) {
	result := models.Result{
		JobID:      jobID,
		Category:   models.ResultCategory{ID: category.ID, Name: category.DisplayName},
		TotalItems: len(accepted),
		ScrapedAt:  time.Now().UTC(),
		Data:       accepted,
	}
	if err := s.store.SetResult(ctx, jobID, result); err != nil {
		slog.Error("storing result failed", "job_id", jobID, "error", err)
	}

	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted,
		store.WithProgress(100),
		store.WithProducts(accepted),
	)

	slog.Info("scrape completed", "job_id", jobID, "accepted", len(accepted))
}
