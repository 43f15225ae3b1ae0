package commands

import (
	"context"
	"time"

	"dispatch/internal/core/application/quoting"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/clock"

	"go.uber.org/zap"
)

// RequestQuoter evaluates a request snapshot.
type RequestQuoter interface {
	Quote(ctx context.Context, s request.Snapshot, now time.Time) (quoting.Quote, error)
}

// SubmitRequestResult carries the stored job, the evaluation it was built from
// and the instant offer when one was made.
type SubmitRequestResult struct {
	Job   *job.Job
	Quote quoting.Quote
	Offer *offer.Offer
}

// SubmitRequestCommandHandler scores, decides and prices a request, stores the
// resulting job and optionally offers it to the nominated provider, all in one
// transaction.
type SubmitRequestCommandHandler struct {
	uowFactory UoWFactory
	quoter     RequestQuoter
	lifecycle  services.OfferLifecycle
	clock      clock.Clock
	logger     *zap.Logger
}

func NewSubmitRequestCommandHandler(
	uowFactory UoWFactory,
	quoter RequestQuoter,
	lifecycle services.OfferLifecycle,
	c clock.Clock,
	logger *zap.Logger,
) SubmitRequestCommandHandler {
	return SubmitRequestCommandHandler{
		uowFactory: uowFactory,
		quoter:     quoter,
		lifecycle:  lifecycle,
		clock:      c,
		logger:     logger.With(zap.String("handler", "submit_request")),
	}
}

func (h SubmitRequestCommandHandler) Handle(ctx context.Context, cmd SubmitRequestCommand) (SubmitRequestResult, error) {
	if err := cmd.Validate(); err != nil {
		return SubmitRequestResult{}, err
	}

	now := h.clock.Now()
	quote, err := h.quoter.Quote(ctx, cmd.Snapshot(), now)
	if err != nil {
		return SubmitRequestResult{}, err
	}

	newJob, err := job.NewJob(cmd.JobID(), cmd.Snapshot().Kind(), quote.Decision, quote.Breakdown, now)
	if err != nil {
		return SubmitRequestResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return SubmitRequestResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	if err = jobRepo.Add(ctx, newJob); err != nil {
		return SubmitRequestResult{}, err
	}

	var created *offer.Offer
	providerID := cmd.NominatedProvider()
	if providerID != nil && quote.Decision.IsInstant() {
		expiresAt := cmd.OfferExpiresAt()
		if expiresAt == nil {
			deadline := h.lifecycle.DeadlineFor(newJob, now)
			expiresAt = &deadline
		}
		created, _, err = h.lifecycle.OfferToProvider(newJob, nil, *providerID,
			newJob.Quote().JobPrice(), expiresAt, now)
		if err != nil {
			return SubmitRequestResult{}, err
		}
		if err = uow.OfferRepository().Add(ctx, created); err != nil {
			return SubmitRequestResult{}, err
		}
		if err = jobRepo.Update(ctx, newJob); err != nil {
			return SubmitRequestResult{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return SubmitRequestResult{}, err
	}

	fields := []zap.Field{
		zap.Stringer("job_id", newJob.ID()),
		zap.Stringer("strategy", quote.Decision.Strategy()),
		zap.Stringer("job_price", quote.Breakdown.JobPrice()),
	}
	if created != nil {
		fields = append(fields, zap.Stringer("offer_id", created.ID()))
	}
	h.logger.Info("request submitted", fields...)

	return SubmitRequestResult{Job: newJob, Quote: quote, Offer: created}, nil
}
