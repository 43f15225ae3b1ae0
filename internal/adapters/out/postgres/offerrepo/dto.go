package offerrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferDTO is the offers table row. The partial unique index keeps at most one
// pending offer per (job, provider) pair; status 1 is offer.Pending.
type OfferDTO struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SubjectKind    int             `gorm:"not null"`
	JobID          uuid.UUID       `gorm:"type:uuid;not null;index;index:idx_offers_pending_pair,unique,where:status = 1"`
	ProviderID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_offers_pending_pair,unique,where:status = 1"`
	OfferedPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status         int             `gorm:"not null;index"`
	OfferedAt      time.Time       `gorm:"not null"`
	ExpiresAt      time.Time       `gorm:"not null;index"`
	RespondedAt    *time.Time
	ResponseReason *string
}

func (OfferDTO) TableName() string {
	return "offers"
}

func fromDomain(o *offer.Offer) OfferDTO {
	var respondedAt *time.Time
	if at := o.RespondedAt(); at != nil {
		utc := at.UTC()
		respondedAt = &utc
	}

	var reason *string
	if r := o.ResponseReason(); r != "" {
		reason = &r
	}

	return OfferDTO{
		ID:             o.ID().Google(),
		SubjectKind:    int(o.SubjectKind()),
		JobID:          o.JobID().Google(),
		ProviderID:     o.ProviderID().Google(),
		OfferedPrice:   o.OfferedPrice(),
		Status:         int(o.Status()),
		OfferedAt:      o.OfferedAt().UTC(),
		ExpiresAt:      o.ExpiresAt().UTC(),
		RespondedAt:    respondedAt,
		ResponseReason: reason,
	}
}

func toDomain(dto OfferDTO) (*offer.Offer, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}
	jobID, err := kernel.UUIDFromGoogle(dto.JobID)
	if err != nil {
		return nil, err
	}
	providerID, err := kernel.UUIDFromGoogle(dto.ProviderID)
	if err != nil {
		return nil, err
	}

	var respondedAt *time.Time
	if dto.RespondedAt != nil {
		utc := dto.RespondedAt.UTC()
		respondedAt = &utc
	}

	return offer.RestoreOffer(
		id,
		request.Kind(dto.SubjectKind),
		jobID,
		providerID,
		dto.OfferedPrice,
		offer.Status(dto.Status),
		dto.OfferedAt.UTC(),
		dto.ExpiresAt.UTC(),
		respondedAt,
		dto.ResponseReason,
	)
}

func toDomainList(dtos []OfferDTO) ([]*offer.Offer, error) {
	offers := make([]*offer.Offer, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, nil
}
