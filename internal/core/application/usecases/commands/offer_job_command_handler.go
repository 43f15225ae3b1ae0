package commands

import (
	"context"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/clock"

	"go.uber.org/zap"
)

// OfferJobCommandHandler creates an offer, expires the superseded one and marks
// the job offered in a single transaction. Without an explicit deadline the offer
// runs for the window of the job's dispatch decision. Two concurrent offers for
// the same pair cannot both commit: storage keeps one pending offer per pair.
type OfferJobCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  services.OfferLifecycle
	clock      clock.Clock
	logger     *zap.Logger
}

func NewOfferJobCommandHandler(
	uowFactory UoWFactory,
	lifecycle services.OfferLifecycle,
	c clock.Clock,
	logger *zap.Logger,
) OfferJobCommandHandler {
	return OfferJobCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		clock:      c,
		logger:     logger.With(zap.String("handler", "offer_job")),
	}
}

func (h OfferJobCommandHandler) Handle(ctx context.Context, cmd OfferJobCommand) (*offer.Offer, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobRepo := uow.JobRepository()
	offerRepo := uow.OfferRepository()

	j, err := jobRepo.Get(ctx, cmd.JobID())
	if err != nil {
		return nil, err
	}

	providerID := cmd.ProviderID()
	pending, err := offerRepo.List(ctx, ports.OfferFilter{
		JobID:      cmd.JobID(),
		ProviderID: &providerID,
		Status:     offer.Pending,
	})
	if err != nil {
		return nil, err
	}

	price, ok := cmd.Price()
	if !ok {
		price = j.Quote().JobPrice()
	}

	now := h.clock.Now()
	expiresAt := cmd.ExpiresAt()
	if expiresAt == nil {
		deadline := h.lifecycle.DeadlineFor(j, now)
		expiresAt = &deadline
	}

	created, superseded, err := h.lifecycle.OfferToProvider(j, pending, providerID, price, expiresAt, now)
	if err != nil {
		return nil, err
	}

	for _, o := range superseded {
		if err = offerRepo.UpdateIfPending(ctx, o); err != nil {
			return nil, err
		}
	}

	if err = offerRepo.Add(ctx, created); err != nil {
		return nil, err
	}

	if err = jobRepo.Update(ctx, j); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.logger.Info("job offered",
		zap.Stringer("job_id", j.ID()),
		zap.Stringer("offer_id", created.ID()),
		zap.Stringer("provider_id", providerID),
		zap.Int("superseded", len(superseded)),
		zap.Time("expires_at", created.ExpiresAt()),
	)

	return created, nil
}
