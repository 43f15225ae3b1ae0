package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

type OfferRepository struct {
	uow *UnitOfWork
}

func (r *OfferRepository) Add(_ context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	stored, err := copyOffer(aggregate)
	if err != nil {
		return err
	}

	return r.uow.with(func(s *state) error {
		if _, exists := s.offers[aggregate.ID()]; exists {
			return errs.NewValueIsInvalidErrorWithCause("offer", fmt.Errorf("%s already exists", aggregate.ID()))
		}
		if aggregate.Status() == offer.Pending {
			for _, o := range s.offers {
				if o.Status() == offer.Pending &&
					o.JobID().IsEqual(aggregate.JobID()) &&
					o.ProviderID().IsEqual(aggregate.ProviderID()) {
					return errs.NewVersionIsInvalidErrorWithCause("offer", fmt.Errorf(
						"a pending offer already exists for job %s and provider %s",
						aggregate.JobID(), aggregate.ProviderID()))
				}
			}
		}
		s.offers[aggregate.ID()] = stored
		return nil
	})
}

func (r *OfferRepository) UpdateIfPending(_ context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	respondedAt := aggregate.RespondedAt()
	if respondedAt == nil {
		return errs.NewInvalidTransitionError("offer", offer.Pending.String(), aggregate.Status().String())
	}

	stored, err := copyOffer(aggregate)
	if err != nil {
		return err
	}

	return r.uow.with(func(s *state) error {
		current, ok := s.offers[aggregate.ID()]
		if !ok {
			return errs.NewObjectNotFoundError("offer", aggregate.ID().String())
		}
		if current.Status() != offer.Pending ||
			(aggregate.Status() == offer.Accepted && !current.ExpiresAt().After(*respondedAt)) {
			return errs.NewInvalidTransitionErrorWithCause("offer", current.Status().String(), aggregate.Status().String(),
				fmt.Errorf("offer %s is no longer pending or its deadline has passed", aggregate.ID()))
		}
		s.offers[aggregate.ID()] = stored
		return nil
	})
}

func (r *OfferRepository) Get(_ context.Context, id kernel.UUID) (*offer.Offer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var found *offer.Offer
	err := r.uow.with(func(s *state) error {
		current, ok := s.offers[id]
		if !ok {
			return errs.NewObjectNotFoundError("offer", id.String())
		}
		var copyErr error
		found, copyErr = copyOffer(current)
		return copyErr
	})
	return found, err
}

func (r *OfferRepository) List(_ context.Context, filter ports.OfferFilter) ([]*offer.Offer, error) {
	if err := filter.JobID.Validate(); err != nil {
		return nil, err
	}

	matches := func(o *offer.Offer) bool {
		return o.JobID().IsEqual(filter.JobID) &&
			(filter.ProviderID == nil || o.ProviderID().IsEqual(*filter.ProviderID)) &&
			(filter.Status == offer.Unknown || o.Status() == filter.Status)
	}

	found, err := r.collect(matches)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(found, func(a, b *offer.Offer) int {
		if c := a.OfferedAt().Compare(b.OfferedAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return found, nil
}

func (r *OfferRepository) CountPending(_ context.Context, jobID kernel.UUID) (int, error) {
	if err := jobID.Validate(); err != nil {
		return 0, err
	}

	count := 0
	err := r.uow.with(func(s *state) error {
		for _, o := range s.offers {
			if o.Status() == offer.Pending && o.JobID().IsEqual(jobID) {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *OfferRepository) ListElapsedPending(_ context.Context, now time.Time, limit int) ([]*offer.Offer, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}

	found, err := r.collect(func(o *offer.Offer) bool {
		return o.Status() == offer.Pending && o.IsElapsed(now)
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(found, func(a, b *offer.Offer) int {
		if c := a.ExpiresAt().Compare(b.ExpiresAt()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (r *OfferRepository) collect(matches func(o *offer.Offer) bool) ([]*offer.Offer, error) {
	var found []*offer.Offer
	err := r.uow.with(func(s *state) error {
		for _, o := range s.offers {
			if !matches(o) {
				continue
			}
			c, err := copyOffer(o)
			if err != nil {
				return err
			}
			found = append(found, c)
		}
		return nil
	})
	return found, err
}

func copyOffer(o *offer.Offer) (*offer.Offer, error) {
	var reason *string
	if r := o.ResponseReason(); r != "" {
		reason = &r
	}
	return offer.RestoreOffer(o.ID(), o.SubjectKind(), o.JobID(), o.ProviderID(), o.OfferedPrice(), o.Status(),
		o.OfferedAt(), o.ExpiresAt(), o.RespondedAt(), reason)
}
