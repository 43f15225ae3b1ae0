package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
)

// OfferFilter narrows offer listings. Zero fields do not filter.
type OfferFilter struct {
	JobID      kernel.UUID
	ProviderID *kernel.UUID
	Status     offer.Status
}

// OfferRepository persists offers. Offers are never deleted.
type OfferRepository interface {
	// Add stores a new Pending offer. It fails when another Pending offer exists
	// for the same (job, provider) pair.
	Add(ctx context.Context, aggregate *offer.Offer) error

	// UpdateIfPending writes the offer's new terminal state only if the stored row
	// is still Pending, and for acceptance only if the stored deadline is after
	// the response time. When the condition fails it returns
	// errs.InvalidTransitionError and changes nothing.
	UpdateIfPending(ctx context.Context, aggregate *offer.Offer) error

	// Get returns errs.ObjectNotFoundError when no offer has the id.
	Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error)

	// List returns offers matching filter ordered by offered_at.
	List(ctx context.Context, filter OfferFilter) ([]*offer.Offer, error)

	// CountPending counts Pending offers of a job.
	CountPending(ctx context.Context, jobID kernel.UUID) (int, error)

	// ListElapsedPending returns up to limit Pending offers whose deadline is at or
	// before now, oldest deadline first.
	ListElapsedPending(ctx context.Context, now time.Time, limit int) ([]*offer.Offer, error)
}
