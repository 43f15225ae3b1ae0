package services

import (
	"time"

	"dispatch/internal/core/domain/model/dispatch"
	"dispatch/internal/core/domain/model/pricing"
	"dispatch/internal/core/domain/model/request"

	"github.com/shopspring/decimal"
)

var (
	one = decimal.NewFromInt(1)

	complexityWeight = decimal.RequireFromString("0.3")
	demandWeight     = decimal.RequireFromString("0.2")

	peakBonusPct    = decimal.RequireFromString("0.10")
	weekendBonusPct = decimal.RequireFromString("0.15")
	sameDayBonusPct = decimal.RequireFromString("0.20")
	expressBonusPct = decimal.RequireFromString("0.15")

	specialHandlingFee = decimal.NewFromInt(25)
	extraStaffFee      = decimal.NewFromInt(15)
	insuranceFee       = decimal.NewFromInt(10)

	difficultAccessFee     = decimal.NewFromInt(15)
	veryDifficultAccessFee = decimal.NewFromInt(30)
)

// PricingPipeline computes the provider payout and the customer price.
//
// The job price starts at the base price and goes through nine steps in a fixed
// order, because later multiplicative steps compound earlier additive ones:
//
//  1. complexity multiplier, 1 + complexity*0.3
//  2. distance, km * distance rate
//  3. weight, kg * weight rate
//  4. time bonuses (peak hour, weekend pickup, same-day or express), each a share
//     of the price before this step, summed and added once
//  5. special requirements (handling, extra staff, insurance)
//  6. pickup and dropoff access difficulty
//  7. demand multiplier, 1 + demand*0.2
//  8. minimum job price floor
//  9. rounding to two decimals
//
// Steps whose input is absent are recorded as skipped with a neutral value. The
// customer price is job / (1 - platform fee) * (1 + markup), rounded, and the
// platform fee is the difference between the two rounded prices.
type PricingPipeline struct{}

func NewPricingPipeline() PricingPipeline {
	return PricingPipeline{}
}

// Price runs the pipeline. scores may be nil, in which case the complexity and
// demand multipliers are skipped. now decides the peak-hour bonus.
func (PricingPipeline) Price(
	s request.Snapshot,
	scores *dispatch.ScoreSet,
	cfg pricing.Configuration,
	now time.Time,
) (pricing.Breakdown, error) {
	if err := s.Validate(); err != nil {
		return pricing.Breakdown{}, err
	}
	if err := cfg.Validate(); err != nil {
		return pricing.Breakdown{}, err
	}
	if scores != nil {
		if err := scores.Validate(); err != nil {
			return pricing.Breakdown{}, err
		}
	}

	r := recorder{price: s.BasePrice()}

	if scores != nil {
		r.multiply(pricing.StepComplexity, one.Add(decimal.NewFromFloat(scores.Complexity()).Mul(complexityWeight)))
	} else {
		r.skip(pricing.StepComplexity, pricing.Multiplicative)
	}

	if km, ok := s.EstimatedDistanceKm(); ok {
		r.add(pricing.StepDistance, km.Mul(cfg.DistanceRate()))
	} else {
		r.skip(pricing.StepDistance, pricing.Additive)
	}

	if kg, ok := s.TotalWeightKg(); ok {
		r.add(pricing.StepWeight, kg.Mul(cfg.WeightRate()))
	} else {
		r.skip(pricing.StepWeight, pricing.Additive)
	}

	r.add(pricing.StepTimeBonus, r.price.Mul(timeBonusPct(s, cfg, now)))
	r.add(pricing.StepSpecialRequirements, specialRequirementsFee(s))
	r.add(pricing.StepLocationDifficulty, accessFee(s.PickupAccess()).Add(accessFee(s.DropoffAccess())))

	if scores != nil {
		r.multiply(pricing.StepDemand, one.Add(decimal.NewFromFloat(scores.Demand()).Mul(demandWeight)))
	} else {
		r.skip(pricing.StepDemand, pricing.Multiplicative)
	}

	floorApplied := r.price.LessThan(cfg.MinimumJobPrice())
	if floorApplied {
		r.add(pricing.StepMinimumFloor, cfg.MinimumJobPrice().Sub(r.price))
	} else {
		r.add(pricing.StepMinimumFloor, decimal.Zero)
	}

	r.add(pricing.StepRounding, r.price.Round(2).Sub(r.price))
	jobPrice := r.price

	customerPrice := jobPrice.
		Div(one.Sub(cfg.PlatformFeePct())).
		Mul(one.Add(cfg.MarkupPct())).
		Round(2)

	return pricing.NewBreakdown(jobPrice, customerPrice, floorApplied, r.steps)
}

func timeBonusPct(s request.Snapshot, cfg pricing.Configuration, now time.Time) decimal.Decimal {
	pct := decimal.Zero
	if cfg.IsPeakHour(now.Hour()) {
		pct = pct.Add(peakBonusPct)
	}
	if s.IsWeekendPickup() {
		pct = pct.Add(weekendBonusPct)
	}
	switch s.Priority() {
	case request.PrioritySameDay:
		pct = pct.Add(sameDayBonusPct)
	case request.PriorityExpress:
		pct = pct.Add(expressBonusPct)
	}
	return pct
}

func specialRequirementsFee(s request.Snapshot) decimal.Decimal {
	fee := decimal.Zero
	if s.RequiresSpecialHandling() {
		fee = fee.Add(specialHandlingFee)
	}
	if staff, ok := s.StaffRequired(); ok && staff > 1 {
		fee = fee.Add(extraStaffFee.Mul(decimal.NewFromInt(int64(staff - 1))))
	}
	if s.InsuranceRequired() {
		fee = fee.Add(insuranceFee)
	}
	return fee
}

func accessFee(a request.AccessDifficulty) decimal.Decimal {
	switch a {
	case request.AccessDifficult:
		return difficultAccessFee
	case request.AccessVeryDifficult:
		return veryDifficultAccessFee
	default:
		return decimal.Zero
	}
}

type recorder struct {
	price decimal.Decimal
	steps []pricing.Step
}

func (r *recorder) multiply(name string, factor decimal.Decimal) {
	r.price = r.price.Mul(factor)
	r.record(name, pricing.Multiplicative, factor, false)
}

func (r *recorder) add(name string, delta decimal.Decimal) {
	r.price = r.price.Add(delta)
	r.record(name, pricing.Additive, delta, false)
}

func (r *recorder) skip(name string, kind pricing.StepKind) {
	neutral := decimal.Zero
	if kind == pricing.Multiplicative {
		neutral = one
	}
	r.record(name, kind, neutral, true)
}

func (r *recorder) record(name string, kind pricing.StepKind, value decimal.Decimal, skipped bool) {
	r.steps = append(r.steps, pricing.Step{
		Name:              name,
		Kind:              kind,
		Value:             value,
		ResultingJobPrice: r.price,
		Skipped:           skipped,
	})
}
