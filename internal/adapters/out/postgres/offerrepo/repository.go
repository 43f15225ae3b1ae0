// Package offerrepo stores offers with GORM. State changes are compare-and-set
// updates guarded by the pending status.
package offerrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type GormOfferRepository struct {
	db *gorm.DB
}

func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// Add inserts a new offer. A second pending offer for the same pair violates
// idx_offers_pending_pair and is reported as a version error.
func (r *GormOfferRepository) Add(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errs.NewVersionIsInvalidErrorWithCause("offer", fmt.Errorf(
				"a pending offer already exists for job %s and provider %s: %w",
				aggregate.JobID(), aggregate.ProviderID(), err))
		}
		return err
	}

	return nil
}

func (r *GormOfferRepository) UpdateIfPending(ctx context.Context, aggregate *offer.Offer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if dto.RespondedAt == nil {
		return errs.NewInvalidTransitionError("offer", offer.Pending.String(), aggregate.Status().String())
	}

	query := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Where("id = ? AND status = ?", dto.ID, int(offer.Pending))
	if aggregate.Status() == offer.Accepted {
		query = query.Where("expires_at > ?", *dto.RespondedAt)
	}

	result := query.Updates(map[string]any{
		"status":          dto.Status,
		"responded_at":    dto.RespondedAt,
		"response_reason": dto.ResponseReason,
	})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		stored, err := r.Get(ctx, aggregate.ID())
		if err != nil {
			return err
		}
		return errs.NewInvalidTransitionErrorWithCause("offer", stored.Status().String(), aggregate.Status().String(),
			fmt.Errorf("offer %s is no longer pending or its deadline has passed", aggregate.ID()))
	}

	return nil
}

func (r *GormOfferRepository) Get(ctx context.Context, id kernel.UUID) (*offer.Offer, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OfferDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Google()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("offer", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOfferRepository) List(ctx context.Context, filter ports.OfferFilter) ([]*offer.Offer, error) {
	if err := filter.JobID.Validate(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Where("job_id = ?", filter.JobID.Google())
	if filter.ProviderID != nil {
		query = query.Where("provider_id = ?", filter.ProviderID.Google())
	}
	if filter.Status != offer.Unknown {
		query = query.Where("status = ?", int(filter.Status))
	}

	var dtos []OfferDTO
	if err := query.Order("offered_at, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

func (r *GormOfferRepository) CountPending(ctx context.Context, jobID kernel.UUID) (int, error) {
	if err := jobID.Validate(); err != nil {
		return 0, err
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&OfferDTO{}).
		Where("job_id = ? AND status = ?", jobID.Google(), int(offer.Pending)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

func (r *GormOfferRepository) ListElapsedPending(ctx context.Context, now time.Time, limit int) ([]*offer.Offer, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}

	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", int(offer.Pending), now.UTC()).
		Order("expires_at, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}
