package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetJobOffersQueryIsNotConstructed = errors.New(
	"GetJobOffersQuery must be created via NewGetJobOffersQuery constructor",
)

// GetJobOffersQuery lists the offers of a job, optionally narrowed to one
// provider, oldest first.
type GetJobOffersQuery struct {
	jobID      kernel.UUID
	providerID *kernel.UUID
	guard      guard.ConstructorGuard
}

func NewGetJobOffersQuery(jobID kernel.UUID, providerID *kernel.UUID) (GetJobOffersQuery, error) {
	if err := jobID.Validate(); err != nil {
		return GetJobOffersQuery{}, err
	}
	q := GetJobOffersQuery{jobID: jobID, guard: guard.NewConstructorGuard()}
	if providerID != nil {
		if err := providerID.Validate(); err != nil {
			return GetJobOffersQuery{}, err
		}
		id := *providerID
		q.providerID = &id
	}
	return q, nil
}

func (q GetJobOffersQuery) Validate() error {
	return q.guard.Validate(ErrGetJobOffersQueryIsNotConstructed)
}

func (q GetJobOffersQuery) JobID() kernel.UUID {
	return q.jobID
}

func (q GetJobOffersQuery) ProviderID() *kernel.UUID {
	if q.providerID == nil {
		return nil
	}
	id := *q.providerID
	return &id
}

// GetJobOffersQueryResponse is the job state together with its offers.
type GetJobOffersQueryResponse struct {
	JobID       kernel.UUID
	JobStatus   job.Status
	ProviderID  *kernel.UUID
	AgreedPrice *decimal.Decimal
	Offers      []OfferView
}

// OfferView is the read model of one offer.
type OfferView struct {
	ID             kernel.UUID
	ProviderID     kernel.UUID
	OfferedPrice   decimal.Decimal
	Status         offer.Status
	OfferedAt      time.Time
	ExpiresAt      time.Time
	RespondedAt    *time.Time
	ResponseReason string
}
