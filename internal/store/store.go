// Package store is the job registry and result store. All job/result state is
// process-lifetime only; nothing survives a restart.
package store

import (
	"context"
	"errors"

	"github.com/nattapongc/shopscout/pkg/models"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateJob = errors.New("job already exists")
	ErrResultExists = errors.New("result already written")
)

// Store is the job-state access interface. Exactly one orchestrator goroutine
// writes a given job's mutable fields; reads observe whole-record snapshots,
// never a partially updated one.
type Store interface {
	CreateJob(ctx context.Context, job models.Job) error
	GetJob(ctx context.Context, id string) (models.Job, error)
	UpdateJobStatus(ctx context.Context, id string, status string, opts ...JobUpdateOption) error

	SetResult(ctx context.Context, id string, result models.Result) error
	GetResult(ctx context.Context, id string) (models.Result, error)
}

type jobUpdateParams struct {
	Progress *int
	Error    *string
	Products []models.Product
}

type JobUpdateOption func(*jobUpdateParams)

func WithProgress(p int) JobUpdateOption {
	return func(u *jobUpdateParams) {
		u.Progress = &p
	}
}

func WithError(msg string) JobUpdateOption {
	return func(u *jobUpdateParams) {
		u.Error = &msg
	}
}

// WithProducts replaces the job's accumulated product list with a snapshot.
func WithProducts(products []models.Product) JobUpdateOption {
	return func(u *jobUpdateParams) {
		u.Products = products
	}
}
