package commands

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/clock"

	"go.uber.org/zap"
)

// RejectOfferResult is the rejected offer and the job it belongs to.
type RejectOfferResult struct {
	Offer *offer.Offer
	Job   *job.Job
}

// RejectOfferCommandHandler rejects an offer and reopens the job when it was the
// last pending one.
type RejectOfferCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  services.OfferLifecycle
	clock      clock.Clock
	logger     *zap.Logger
}

func NewRejectOfferCommandHandler(
	uowFactory UoWFactory,
	lifecycle services.OfferLifecycle,
	c clock.Clock,
	logger *zap.Logger,
) RejectOfferCommandHandler {
	return RejectOfferCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		clock:      c,
		logger:     logger.With(zap.String("handler", "reject_offer")),
	}
}

func (h RejectOfferCommandHandler) Handle(ctx context.Context, cmd RejectOfferCommand) (RejectOfferResult, error) {
	if err := cmd.Validate(); err != nil {
		return RejectOfferResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RejectOfferResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	offerRepo := uow.OfferRepository()

	o, err := offerRepo.Get(ctx, cmd.OfferID())
	if err != nil {
		return RejectOfferResult{}, err
	}

	j, err := jobRepo.Get(ctx, o.JobID())
	if err != nil {
		return RejectOfferResult{}, err
	}

	pending, err := offerRepo.CountPending(ctx, j.ID())
	if err != nil {
		return RejectOfferResult{}, err
	}
	otherPending := pending
	if o.Status() == offer.Pending && otherPending > 0 {
		otherPending--
	}

	if err = h.lifecycle.Reject(o, j, otherPending, cmd.Reason(), h.clock.Now()); err != nil {
		return RejectOfferResult{}, err
	}

	if err = offerRepo.UpdateIfPending(ctx, o); err != nil {
		return RejectOfferResult{}, err
	}
	// The job version is bumped even when the status stays, so two rejections
	// racing for the last pending offers cannot both leave the job Offered.
	if err = jobRepo.Update(ctx, j); err != nil {
		return RejectOfferResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return RejectOfferResult{}, err
	}

	h.logger.Info("offer rejected",
		zap.Stringer("offer_id", o.ID()),
		zap.Stringer("job_id", j.ID()),
		zap.String("reason", o.ResponseReason()),
		zap.Stringer("job_status", j.Status()),
	)

	return RejectOfferResult{Offer: o, Job: j}, nil
}
