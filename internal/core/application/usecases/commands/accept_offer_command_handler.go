package commands

import (
	"context"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/clock"

	"go.uber.org/zap"
)

// AcceptOfferResult is the accepted offer together with the assigned job.
type AcceptOfferResult struct {
	Offer  *offer.Offer
	Job    *job.Job
	Closed []*offer.Offer
}

// AcceptOfferCommandHandler accepts an offer, assigns the job and closes the
// other pending offers of the job. The offer write is conditional on the offer
// still being pending and the job write on its version, so of two concurrent
// accepts of offers of the same job at most one commits.
type AcceptOfferCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  services.OfferLifecycle
	clock      clock.Clock
	logger     *zap.Logger
}

func NewAcceptOfferCommandHandler(
	uowFactory UoWFactory,
	lifecycle services.OfferLifecycle,
	c clock.Clock,
	logger *zap.Logger,
) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		clock:      c,
		logger:     logger.With(zap.String("handler", "accept_offer")),
	}
}

func (h AcceptOfferCommandHandler) Handle(ctx context.Context, cmd AcceptOfferCommand) (AcceptOfferResult, error) {
	if err := cmd.Validate(); err != nil {
		return AcceptOfferResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AcceptOfferResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	offerRepo := uow.OfferRepository()

	o, err := offerRepo.Get(ctx, cmd.OfferID())
	if err != nil {
		return AcceptOfferResult{}, err
	}

	j, err := jobRepo.Get(ctx, o.JobID())
	if err != nil {
		return AcceptOfferResult{}, err
	}

	siblings, err := offerRepo.List(ctx, ports.OfferFilter{JobID: j.ID(), Status: offer.Pending})
	if err != nil {
		return AcceptOfferResult{}, err
	}

	closed, err := h.lifecycle.Accept(o, j, siblings, h.clock.Now())
	if err != nil {
		return AcceptOfferResult{}, err
	}

	if err = offerRepo.UpdateIfPending(ctx, o); err != nil {
		return AcceptOfferResult{}, err
	}
	for _, sibling := range closed {
		if err = offerRepo.UpdateIfPending(ctx, sibling); err != nil {
			return AcceptOfferResult{}, err
		}
	}

	if err = jobRepo.Update(ctx, j); err != nil {
		return AcceptOfferResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AcceptOfferResult{}, err
	}

	h.logger.Info("offer accepted",
		zap.Stringer("offer_id", o.ID()),
		zap.Stringer("job_id", j.ID()),
		zap.Stringer("provider_id", o.ProviderID()),
		zap.Stringer("price", o.OfferedPrice()),
		zap.Int("closed", len(closed)),
	)

	return AcceptOfferResult{Offer: o, Job: j, Closed: closed}, nil
}
