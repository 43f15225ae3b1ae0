package jobrepo

import (
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/dispatch"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/pricing"
	"dispatch/internal/core/domain/model/request"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JobDTO is the jobs table row. The decision and the price breakdown are
// immutable and stored as jsonb documents.
type JobDTO struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Kind        int              `gorm:"not null"`
	Status      int              `gorm:"not null;index"`
	ProviderID  *uuid.UUID       `gorm:"type:uuid;index"`
	AgreedPrice *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Decision    DecisionDTO      `gorm:"type:jsonb;serializer:json;not null"`
	Quote       QuoteDTO         `gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt   time.Time        `gorm:"not null"`
	Version     int              `gorm:"not null;default:0"`
}

func (JobDTO) TableName() string {
	return "jobs"
}

type DecisionDTO struct {
	Strategy              string           `json:"strategy"`
	Confidence            float64          `json:"confidence"`
	Reasoning             []string         `json:"reasoning"`
	AssignmentWindowHours *int             `json:"assignment_window_hours,omitempty"`
	MinimumBid            *decimal.Decimal `json:"minimum_bid,omitempty"`
}

type QuoteDTO struct {
	JobPrice      decimal.Decimal `json:"job_price"`
	CustomerPrice decimal.Decimal `json:"customer_price"`
	FloorApplied  bool            `json:"floor_applied"`
	Steps         []StepDTO       `json:"steps"`
}

type StepDTO struct {
	Name              string          `json:"name"`
	Kind              string          `json:"kind"`
	Value             decimal.Decimal `json:"value"`
	ResultingJobPrice decimal.Decimal `json:"resulting_job_price"`
	Skipped           bool            `json:"skipped,omitempty"`
}

func fromDomain(j *job.Job) JobDTO {
	var providerID *uuid.UUID
	if id := j.Provider(); id != nil {
		raw := id.Google()
		providerID = &raw
	}

	var agreedPrice *decimal.Decimal
	if price, ok := j.AgreedPrice(); ok {
		agreedPrice = &price
	}

	return JobDTO{
		ID:          j.ID().Google(),
		Kind:        int(j.Kind()),
		Status:      int(j.Status()),
		ProviderID:  providerID,
		AgreedPrice: agreedPrice,
		Decision:    decisionFromDomain(j.Decision()),
		Quote:       quoteFromDomain(j.Quote()),
		CreatedAt:   j.CreatedAt().UTC(),
		Version:     j.Version(),
	}
}

func decisionFromDomain(d dispatch.Decision) DecisionDTO {
	dto := DecisionDTO{
		Strategy:   d.Strategy().String(),
		Confidence: d.Confidence(),
		Reasoning:  d.Reasoning(),
	}
	if hours, ok := d.AssignmentWindowHours(); ok {
		dto.AssignmentWindowHours = &hours
	}
	if bid, ok := d.MinimumBid(); ok {
		dto.MinimumBid = &bid
	}
	return dto
}

func quoteFromDomain(b pricing.Breakdown) QuoteDTO {
	steps := make([]StepDTO, 0, len(b.Steps()))
	for _, s := range b.Steps() {
		steps = append(steps, StepDTO{
			Name:              s.Name,
			Kind:              s.Kind.String(),
			Value:             s.Value,
			ResultingJobPrice: s.ResultingJobPrice,
			Skipped:           s.Skipped,
		})
	}

	return QuoteDTO{
		JobPrice:      b.JobPrice(),
		CustomerPrice: b.CustomerPrice(),
		FloorApplied:  b.FloorApplied(),
		Steps:         steps,
	}
}

func toDomain(dto JobDTO) (*job.Job, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return nil, err
	}

	var providerID *kernel.UUID
	if dto.ProviderID != nil {
		pID, providerErr := kernel.UUIDFromGoogle(*dto.ProviderID)
		if providerErr != nil {
			return nil, providerErr
		}
		providerID = &pID
	}

	decision, err := decisionToDomain(dto.Decision)
	if err != nil {
		return nil, fmt.Errorf("job %s decision: %w", dto.ID, err)
	}

	quote, err := quoteToDomain(dto.Quote)
	if err != nil {
		return nil, fmt.Errorf("job %s quote: %w", dto.ID, err)
	}

	return job.RestoreJob(
		id,
		request.Kind(dto.Kind),
		decision,
		quote,
		job.Status(dto.Status),
		providerID,
		dto.AgreedPrice,
		dto.CreatedAt.UTC(),
		dto.Version,
	)
}

func decisionToDomain(dto DecisionDTO) (dispatch.Decision, error) {
	strategy, err := dispatch.ParseStrategy(dto.Strategy)
	if err != nil {
		return dispatch.Decision{}, err
	}
	return dispatch.RestoreDecision(strategy, dto.Confidence, dto.Reasoning, dto.AssignmentWindowHours, dto.MinimumBid)
}

func quoteToDomain(dto QuoteDTO) (pricing.Breakdown, error) {
	steps := make([]pricing.Step, 0, len(dto.Steps))
	for _, s := range dto.Steps {
		kind, err := pricing.ParseStepKind(s.Kind)
		if err != nil {
			return pricing.Breakdown{}, err
		}
		steps = append(steps, pricing.Step{
			Name:              s.Name,
			Kind:              kind,
			Value:             s.Value,
			ResultingJobPrice: s.ResultingJobPrice,
			Skipped:           s.Skipped,
		})
	}
	return pricing.NewBreakdown(dto.JobPrice, dto.CustomerPrice, dto.FloorApplied, steps)
}
