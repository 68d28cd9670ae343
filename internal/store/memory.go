package store

import (
	"context"
	"sync"
	"time"

	"github.com/nattapongc/shopscout/pkg/models"
)

// MemoryStore implements Store with mutex-guarded maps. Reads hand out deep
// copies so a poller never observes a record mid-mutation, and terminal
// statuses are absorbing: once a job is completed or errored, further updates
// are dropped.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]*models.Job
	results map[string]*models.Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    make(map[string]*models.Job),
		results: make(map[string]*models.Result),
	}
}

func (s *MemoryStore) CreateJob(_ context.Context, job models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[job.ID]; ok {
		return ErrDuplicateJob
	}
	if job.Products == nil {
		job.Products = []models.Product{}
	}
	s.jobs[job.ID] = &job
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return copyJob(job), nil
}

func (s *MemoryStore) UpdateJobStatus(_ context.Context, id string, status string, opts ...JobUpdateOption) error {
	var params jobUpdateParams
	for _, opt := range opts {
		opt(&params)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Terminal() {
		return nil
	}

	next := copyJob(job)
	next.Status = status
	if params.Progress != nil {
		next.Progress = *params.Progress
	}
	if params.Error != nil {
		next.Error = *params.Error
	}
	if params.Products != nil {
		next.Products = copyProducts(params.Products)
	}
	if next.Terminal() && next.CompletedAt == nil {
		now := time.Now().UTC()
		next.CompletedAt = &now
	}

	// Whole-record replacement: readers holding the old pointer keep a
	// consistent snapshot.
	s.jobs[id] = &next
	return nil
}

func (s *MemoryStore) SetResult(_ context.Context, id string, result models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return ErrNotFound
	}
	if _, ok := s.results[id]; ok {
		return ErrResultExists
	}
	if result.Data == nil {
		result.Data = []models.Product{}
	}
	s.results[id] = &result
	return nil
}

func (s *MemoryStore) GetResult(_ context.Context, id string) (models.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, ok := s.results[id]
	if !ok {
		return models.Result{}, ErrNotFound
	}
	out := *result
	out.Data = copyProducts(result.Data)
	return out, nil
}

func copyJob(job *models.Job) models.Job {
	out := *job
	out.Products = copyProducts(job.Products)
	return out
}

func copyProducts(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
