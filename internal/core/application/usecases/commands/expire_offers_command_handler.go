package commands

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"

	"go.uber.org/zap"
)

// ExpireOffersCommandHandler sweeps elapsed pending offers. Each offer is
// expired in its own transaction together with releasing its job, so one
// failing offer does not hold back the rest of the batch. An offer resolved by
// someone else between the listing and the update is skipped.
type ExpireOffersCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  services.OfferLifecycle
	clock      clock.Clock
	logger     *zap.Logger
}

func NewExpireOffersCommandHandler(
	uowFactory UoWFactory,
	lifecycle services.OfferLifecycle,
	c clock.Clock,
	logger *zap.Logger,
) ExpireOffersCommandHandler {
	return ExpireOffersCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		clock:      c,
		logger:     logger.With(zap.String("handler", "expire_offers")),
	}
}

// Handle returns the number of offers it expired. Errors of individual offers
// are joined; a cancelled context stops the sweep.
func (h ExpireOffersCommandHandler) Handle(ctx context.Context, cmd ExpireOffersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	now := h.clock.Now()
	elapsed, err := h.uowFactory.Create().OfferRepository().ListElapsedPending(ctx, now, cmd.Limit())
	if err != nil {
		return 0, err
	}

	var (
		expired int
		errList []error
	)
	for _, candidate := range elapsed {
		if err = ctx.Err(); err != nil {
			errList = append(errList, err)
			break
		}

		ok, err := h.expireOne(ctx, candidate, now)
		switch {
		case err == nil && ok:
			expired++
		case errors.Is(err, errs.ErrInvalidTransition):
			h.logger.Debug("offer already resolved", zap.Stringer("offer_id", candidate.ID()))
		case err != nil:
			h.logger.Warn("offer expiry failed", zap.Stringer("offer_id", candidate.ID()), zap.Error(err))
			errList = append(errList, err)
		}
	}

	if expired > 0 {
		h.logger.Info("offers expired", zap.Int("count", expired), zap.Int("candidates", len(elapsed)))
	}

	return expired, errors.Join(errList...)
}

func (h ExpireOffersCommandHandler) expireOne(ctx context.Context, candidate *offer.Offer, now time.Time) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	offerRepo := uow.OfferRepository()

	o, err := offerRepo.Get(ctx, candidate.ID())
	if err != nil {
		return false, err
	}

	changed, err := h.lifecycle.Expire(o, now)
	if err != nil || !changed {
		return false, err
	}

	if err = offerRepo.UpdateIfPending(ctx, o); err != nil {
		return false, err
	}

	j, err := jobRepo.Get(ctx, o.JobID())
	if err != nil {
		return false, err
	}

	remaining, err := offerRepo.CountPending(ctx, j.ID())
	if err != nil {
		return false, err
	}

	if err = h.lifecycle.Release(j, remaining); err != nil {
		return false, err
	}
	if err = jobRepo.Update(ctx, j); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	return true, nil
}
