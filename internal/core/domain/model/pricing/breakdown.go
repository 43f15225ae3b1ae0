package pricing

import (
	"errors"
	"fmt"
	"slices"

	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrBreakdownIsNotConstructed is returned when a zero-value Breakdown is used.
var ErrBreakdownIsNotConstructed = errors.New("Breakdown must be created via NewBreakdown constructor")

// StepKind tells how a step changed the running job price.
type StepKind int

const (
	StepKindUnknown StepKind = iota
	Multiplicative
	Additive
)

func (k StepKind) String() string {
	switch k {
	case Multiplicative:
		return "multiplicative"
	case Additive:
		return "additive"
	default:
		return "unknown"
	}
}

// ParseStepKind maps a stored name back to a StepKind.
func ParseStepKind(s string) (StepKind, error) {
	switch s {
	case "multiplicative":
		return Multiplicative, nil
	case "additive":
		return Additive, nil
	default:
		return StepKindUnknown, fmt.Errorf("unknown step kind %q", s)
	}
}

// Step names in pipeline order.
const (
	StepComplexity          = "complexity_multiplier"
	StepDistance            = "distance"
	StepWeight              = "weight"
	StepTimeBonus           = "time_bonus"
	StepSpecialRequirements = "special_requirements"
	StepLocationDifficulty  = "location_difficulty"
	StepDemand              = "demand_multiplier"
	StepMinimumFloor        = "minimum_price_floor"
	StepRounding            = "rounding"
)

// StepOrder lists every step name in the order the pipeline applies them.
var StepOrder = []string{
	StepComplexity,
	StepDistance,
	StepWeight,
	StepTimeBonus,
	StepSpecialRequirements,
	StepLocationDifficulty,
	StepDemand,
	StepMinimumFloor,
	StepRounding,
}

// Step is one audited adjustment. Value is the factor for multiplicative steps and
// the amount added for additive steps. A skipped step keeps the neutral value
// (1 or 0) and leaves the running price unchanged.
type Step struct {
	Name              string
	Kind              StepKind
	Value             decimal.Decimal
	ResultingJobPrice decimal.Decimal
	Skipped           bool
}

// Breakdown is the result of pricing one request.
type Breakdown struct {
	jobPrice      decimal.Decimal
	customerPrice decimal.Decimal
	platformFee   decimal.Decimal
	floorApplied  bool
	steps         []Step
	guard         guard.ConstructorGuard
}

// NewBreakdown assembles a breakdown. platformFee is derived as
// customerPrice - jobPrice so that the fee identity always holds.
func NewBreakdown(jobPrice, customerPrice decimal.Decimal, floorApplied bool, steps []Step) (Breakdown, error) {
	if jobPrice.IsNegative() || customerPrice.LessThan(jobPrice) {
		return Breakdown{}, fmt.Errorf("customer price %s must not be below job price %s", customerPrice, jobPrice)
	}
	return Breakdown{
		jobPrice:      jobPrice,
		customerPrice: customerPrice,
		platformFee:   customerPrice.Sub(jobPrice),
		floorApplied:  floorApplied,
		steps:         slices.Clone(steps),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// JobPrice is the provider payout.
func (b Breakdown) JobPrice() decimal.Decimal {
	return b.jobPrice
}

// CustomerPrice is what the customer is charged, including fee and markup.
func (b Breakdown) CustomerPrice() decimal.Decimal {
	return b.customerPrice
}

func (b Breakdown) PlatformFee() decimal.Decimal {
	return b.platformFee
}

// FloorApplied reports whether the minimum job price raised the payout.
func (b Breakdown) FloorApplied() bool {
	return b.floorApplied
}

// Steps returns a copy of the recorded steps in application order.
func (b Breakdown) Steps() []Step {
	return slices.Clone(b.steps)
}

func (b Breakdown) Validate() error {
	return b.guard.Validate(ErrBreakdownIsNotConstructed)
}
