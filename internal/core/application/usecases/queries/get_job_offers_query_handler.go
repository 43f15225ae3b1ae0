package queries

import (
	"context"

	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
)

// GetJobOffersQueryHandler reads outside a transaction through the same
// repositories the commands use.
type GetJobOffersQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
}

func NewGetJobOffersQueryHandler(uowFactory ports.UnitOfWorkFactory) GetJobOffersQueryHandler {
	return GetJobOffersQueryHandler{uowFactory: uowFactory}
}

// Handle returns an object-not-found error for an unknown job.
func (h GetJobOffersQueryHandler) Handle(ctx context.Context, query GetJobOffersQuery) (GetJobOffersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetJobOffersQueryResponse{}, err
	}

	uow := h.uowFactory.Create()

	j, err := uow.JobRepository().Get(ctx, query.JobID())
	if err != nil {
		return GetJobOffersQueryResponse{}, err
	}

	offers, err := uow.OfferRepository().List(ctx, ports.OfferFilter{
		JobID:      query.JobID(),
		ProviderID: query.ProviderID(),
	})
	if err != nil {
		return GetJobOffersQueryResponse{}, err
	}

	response := GetJobOffersQueryResponse{
		JobID:      j.ID(),
		JobStatus:  j.Status(),
		ProviderID: j.Provider(),
		Offers:     make([]OfferView, 0, len(offers)),
	}
	if price, ok := j.AgreedPrice(); ok {
		response.AgreedPrice = &price
	}

	for _, o := range offers {
		response.Offers = append(response.Offers, toOfferView(o))
	}

	return response, nil
}

func toOfferView(o *offer.Offer) OfferView {
	return OfferView{
		ID:             o.ID(),
		ProviderID:     o.ProviderID(),
		OfferedPrice:   o.OfferedPrice(),
		Status:         o.Status(),
		OfferedAt:      o.OfferedAt(),
		ExpiresAt:      o.ExpiresAt(),
		RespondedAt:    o.RespondedAt(),
		ResponseReason: o.ResponseReason(),
	}
}
