package http

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"dispatch/internal/core/application/quoting"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/request"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RequestAttributes is the wire form of a request snapshot.
type RequestAttributes struct {
	Kind                     string              `json:"kind"`
	Type                     string              `json:"type"`
	RequiresSpecialHandling  bool                `json:"requires_special_handling"`
	TotalWeightKg            *decimal.Decimal    `json:"total_weight_kg"`
	StaffRequired            *int                `json:"staff_required"`
	SpecialInstructions      string              `json:"special_instructions"`
	InsuranceRequired        bool                `json:"insurance_required"`
	InsuranceValue           *decimal.Decimal    `json:"insurance_value"`
	ServiceType              string              `json:"service_type"`
	StopCount                int                 `json:"stop_count"`
	Priority                 string              `json:"priority"`
	PickupDate               *openapi_types.Date `json:"pickup_date"`
	EstimatedDistanceKm      *decimal.Decimal    `json:"estimated_distance_km"`
	EstimatedDurationMinutes *int                `json:"estimated_duration_minutes"`
	PickupAccess             string              `json:"pickup_access"`
	DropoffAccess            string              `json:"dropoff_access"`
	BasePrice                decimal.Decimal     `json:"base_price"`
	PickupPostcode           string              `json:"pickup_postcode"`
	DropoffPostcode          string              `json:"dropoff_postcode"`
	PickupLocationKnown      *bool               `json:"pickup_location_known"`
	DropoffLocationKnown     *bool               `json:"dropoff_location_known"`
}

// Snapshot converts the wire form. A location without an explicit known flag
// counts as known when its postcode is given.
func (a RequestAttributes) Snapshot() (request.Snapshot, error) {
	kind, kindErr := request.ParseKind(a.Kind)
	requestType, typeErr := request.ParseType(a.Type)
	priority, priorityErr := request.ParsePriority(a.Priority)
	pickupAccess, pickupErr := request.ParseAccessDifficulty(a.PickupAccess)
	dropoffAccess, dropoffErr := request.ParseAccessDifficulty(a.DropoffAccess)
	if err := errors.Join(kindErr, typeErr, priorityErr, pickupErr, dropoffErr); err != nil {
		return request.Snapshot{}, err
	}

	params := request.Params{
		Kind:                      kind,
		Type:                      requestType,
		RequiresSpecialHandling:   a.RequiresSpecialHandling,
		TotalWeightKg:             a.TotalWeightKg,
		StaffRequired:             a.StaffRequired,
		SpecialInstructionsLength: utf8.RuneCountInString(a.SpecialInstructions),
		InsuranceRequired:         a.InsuranceRequired,
		InsuranceValue:            a.InsuranceValue,
		ServiceType:               a.ServiceType,
		StopCount:                 a.StopCount,
		Priority:                  priority,
		EstimatedDistanceKm:       a.EstimatedDistanceKm,
		PickupAccess:              pickupAccess,
		DropoffAccess:             dropoffAccess,
		BasePrice:                 a.BasePrice,
		PickupPostcode:            a.PickupPostcode,
		DropoffPostcode:           a.DropoffPostcode,
		PickupLocationKnown:       knownOr(a.PickupLocationKnown, a.PickupPostcode),
		DropoffLocationKnown:      knownOr(a.DropoffLocationKnown, a.DropoffPostcode),
	}
	if a.PickupDate != nil {
		date := a.PickupDate.Time
		params.PickupDate = &date
	}
	if a.EstimatedDurationMinutes != nil {
		d := time.Duration(*a.EstimatedDurationMinutes) * time.Minute
		params.EstimatedDuration = &d
	}

	return request.NewSnapshot(params)
}

func knownOr(flag *bool, postcode string) bool {
	if flag != nil {
		return *flag
	}
	return strings.TrimSpace(postcode) != ""
}

// SubmitRequest is the body of POST /api/v1/requests.
type SubmitRequest struct {
	RequestAttributes
	JobID               *openapi_types.UUID `json:"job_id"`
	NominatedProviderID *openapi_types.UUID `json:"nominated_provider_id"`
	OfferExpiresAt      *time.Time          `json:"offer_expires_at"`
}

// NewOffer is the body of POST /api/v1/jobs/{jobId}/offers.
type NewOffer struct {
	ProviderID openapi_types.UUID `json:"provider_id"`
	Price      *decimal.Decimal   `json:"price"`
	ExpiresAt  *time.Time         `json:"expires_at"`
}

// Rejection is the optional body of POST /api/v1/offers/{offerId}/reject.
type Rejection struct {
	Reason string `json:"reason"`
}

type Scores struct {
	Complexity      float64 `json:"complexity"`
	Demand          float64 `json:"demand"`
	RouteEfficiency float64 `json:"route_efficiency"`
}

type Decision struct {
	Strategy              string           `json:"strategy"`
	Confidence            float64          `json:"confidence"`
	Reasoning             []string         `json:"reasoning"`
	AssignmentWindowHours *int             `json:"assignment_window_hours,omitempty"`
	MinimumBid            *decimal.Decimal `json:"minimum_bid,omitempty"`
}

type PricingStep struct {
	Name              string          `json:"name"`
	Kind              string          `json:"kind"`
	Value             decimal.Decimal `json:"value"`
	ResultingJobPrice decimal.Decimal `json:"resulting_job_price"`
	Skipped           bool            `json:"skipped"`
}

type Pricing struct {
	JobPrice      decimal.Decimal `json:"job_price"`
	CustomerPrice decimal.Decimal `json:"customer_price"`
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	FloorApplied  bool            `json:"floor_applied"`
	Steps         []PricingStep   `json:"steps"`
}

type Quote struct {
	Scores               Scores   `json:"scores"`
	Decision             Decision `json:"decision"`
	Pricing              Pricing  `json:"pricing"`
	ProvidersAvailable   bool     `json:"providers_available"`
	DefaultConfiguration bool     `json:"default_configuration"`
}

type Job struct {
	ID            openapi_types.UUID  `json:"id"`
	Kind          string              `json:"kind"`
	Status        string              `json:"status"`
	Strategy      string              `json:"strategy"`
	ProviderID    *openapi_types.UUID `json:"provider_id,omitempty"`
	AgreedPrice   *decimal.Decimal    `json:"agreed_price,omitempty"`
	JobPrice      decimal.Decimal     `json:"job_price"`
	CustomerPrice decimal.Decimal     `json:"customer_price"`
	CreatedAt     time.Time           `json:"created_at"`
}

type Offer struct {
	ID             openapi_types.UUID `json:"id"`
	JobID          openapi_types.UUID `json:"job_id"`
	ProviderID     openapi_types.UUID `json:"provider_id"`
	OfferedPrice   decimal.Decimal    `json:"offered_price"`
	Status         string             `json:"status"`
	OfferedAt      time.Time          `json:"offered_at"`
	ExpiresAt      time.Time          `json:"expires_at"`
	RespondedAt    *time.Time         `json:"responded_at,omitempty"`
	ResponseReason string             `json:"response_reason,omitempty"`
}

type SubmitRequestResult struct {
	Job   Job    `json:"job"`
	Quote Quote  `json:"quote"`
	Offer *Offer `json:"offer,omitempty"`
}

type OfferResolution struct {
	Offer Offer `json:"offer"`
	Job   Job   `json:"job"`
}

type JobOffers struct {
	JobID       openapi_types.UUID  `json:"job_id"`
	JobStatus   string              `json:"job_status"`
	ProviderID  *openapi_types.UUID `json:"provider_id,omitempty"`
	AgreedPrice *decimal.Decimal    `json:"agreed_price,omitempty"`
	Offers      []Offer             `json:"offers"`
}

// ToQuote renders an evaluation in its wire form.
func ToQuote(q quoting.Quote) Quote {
	d := q.Decision
	response := Quote{
		Decision: Decision{
			Strategy:   d.Strategy().String(),
			Confidence: d.Confidence(),
			Reasoning:  d.Reasoning(),
		},
		ProvidersAvailable:   q.ProvidersAvailable,
		DefaultConfiguration: q.DefaultConfiguration,
	}
	if hours, ok := d.AssignmentWindowHours(); ok {
		response.Decision.AssignmentWindowHours = &hours
	}
	if bid, ok := d.MinimumBid(); ok {
		response.Decision.MinimumBid = &bid
	}

	s := q.Scores
	response.Scores = Scores{
		Complexity:      s.Complexity(),
		Demand:          s.Demand(),
		RouteEfficiency: s.RouteEfficiency(),
	}

	b := q.Breakdown
	steps := b.Steps()
	response.Pricing = Pricing{
		JobPrice:      b.JobPrice(),
		CustomerPrice: b.CustomerPrice(),
		PlatformFee:   b.PlatformFee(),
		FloorApplied:  b.FloorApplied(),
		Steps:         make([]PricingStep, 0, len(steps)),
	}
	for _, step := range steps {
		response.Pricing.Steps = append(response.Pricing.Steps, PricingStep{
			Name:              step.Name,
			Kind:              step.Kind.String(),
			Value:             step.Value,
			ResultingJobPrice: step.ResultingJobPrice,
			Skipped:           step.Skipped,
		})
	}

	return response
}

func toJob(j *job.Job) Job {
	response := Job{
		ID:            j.ID().Google(),
		Kind:          j.Kind().String(),
		Status:        strings.ToLower(j.Status().String()),
		Strategy:      j.Decision().Strategy().String(),
		ProviderID:    optionalID(j.Provider()),
		JobPrice:      j.Quote().JobPrice(),
		CustomerPrice: j.Quote().CustomerPrice(),
		CreatedAt:     j.CreatedAt(),
	}
	if price, ok := j.AgreedPrice(); ok {
		response.AgreedPrice = &price
	}
	return response
}

func toOffer(o *offer.Offer) Offer {
	return Offer{
		ID:             o.ID().Google(),
		JobID:          o.JobID().Google(),
		ProviderID:     o.ProviderID().Google(),
		OfferedPrice:   o.OfferedPrice(),
		Status:         strings.ToLower(o.Status().String()),
		OfferedAt:      o.OfferedAt(),
		ExpiresAt:      o.ExpiresAt(),
		RespondedAt:    o.RespondedAt(),
		ResponseReason: o.ResponseReason(),
	}
}

func toJobOffers(r queries.GetJobOffersQueryResponse) JobOffers {
	response := JobOffers{
		JobID:       r.JobID.Google(),
		JobStatus:   strings.ToLower(r.JobStatus.String()),
		ProviderID:  optionalID(r.ProviderID),
		AgreedPrice: r.AgreedPrice,
		Offers:      make([]Offer, 0, len(r.Offers)),
	}
	for _, o := range r.Offers {
		response.Offers = append(response.Offers, Offer{
			ID:             o.ID.Google(),
			JobID:          r.JobID.Google(),
			ProviderID:     o.ProviderID.Google(),
			OfferedPrice:   o.OfferedPrice,
			Status:         strings.ToLower(o.Status.String()),
			OfferedAt:      o.OfferedAt,
			ExpiresAt:      o.ExpiresAt,
			RespondedAt:    o.RespondedAt,
			ResponseReason: o.ResponseReason,
		})
	}
	return response
}

func optionalID(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	g := id.Google()
	return &g
}

func fromWireID(id openapi_types.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromGoogle(id)
}

func fromOptionalWireID(id *openapi_types.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	parsed, err := kernel.UUIDFromGoogle(*id)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
