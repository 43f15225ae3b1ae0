// Package ports defines the contracts between the dispatch core and its adapters:
// repositories, the unit of work, the pricing configuration source and the
// provider-eligibility oracle.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
)

// JobRepository persists Job aggregates.
type JobRepository interface {
	// Add stores a new job with its current version.
	Add(ctx context.Context, aggregate *job.Job) error

	// Update stores the job if its stored version still equals aggregate.Version()
	// and bumps the version. A mismatch returns errs.VersionIsInvalidError.
	Update(ctx context.Context, aggregate *job.Job) error

	// Get returns errs.ObjectNotFoundError when no job has the id.
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)
}
