package dispatch

import (
	"errors"
	"fmt"
	"slices"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrDecisionIsNotConstructed is returned when a zero-value Decision is used.
var ErrDecisionIsNotConstructed = errors.New("Decision must be created via NewInstantDecision or NewAssignmentDecision")

// Decision is the outcome of strategy selection for one request. It is immutable:
// re-deciding produces a new Decision.
//
// Instant decisions carry no assignment window and no minimum bid. Assignment
// decisions always carry a window and carry a minimum bid when the request's base
// price was known.
type Decision struct {
	strategy              Strategy
	confidence            float64
	reasoning             []string
	assignmentWindowHours int
	minimumBid            *decimal.Decimal
	guard                 guard.ConstructorGuard
}

// NewInstantDecision builds an instant decision.
func NewInstantDecision(confidence float64, reasoning []string) (Decision, error) {
	if err := checkConfidence(confidence); err != nil {
		return Decision{}, err
	}
	return Decision{
		strategy:   StrategyInstant,
		confidence: confidence,
		reasoning:  slices.Clone(reasoning),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// NewAssignmentDecision builds an assignment decision. minimumBid may be nil.
func NewAssignmentDecision(
	confidence float64,
	reasoning []string,
	windowHours int,
	minimumBid *decimal.Decimal,
) (Decision, error) {
	var bidErr error
	if minimumBid != nil && minimumBid.IsNegative() {
		bidErr = errs.NewValueIsInvalidErrorWithCause("minimum bid", fmt.Errorf("%s is negative", minimumBid))
	}
	var windowErr error
	if windowHours <= 0 {
		windowErr = errs.NewValueIsInvalidErrorWithCause("assignment window", fmt.Errorf("%d is not greater than 0", windowHours))
	}
	if err := errors.Join(checkConfidence(confidence), windowErr, bidErr); err != nil {
		return Decision{}, err
	}

	d := Decision{
		strategy:              StrategyAssignment,
		confidence:            confidence,
		reasoning:             slices.Clone(reasoning),
		assignmentWindowHours: windowHours,
		guard:                 guard.NewConstructorGuard(),
	}
	if minimumBid != nil {
		bid := *minimumBid
		d.minimumBid = &bid
	}
	return d, nil
}

// RestoreDecision rebuilds a persisted decision.
func RestoreDecision(
	strategy Strategy,
	confidence float64,
	reasoning []string,
	windowHours *int,
	minimumBid *decimal.Decimal,
) (Decision, error) {
	switch strategy {
	case StrategyInstant:
		return NewInstantDecision(confidence, reasoning)
	case StrategyAssignment:
		if windowHours == nil {
			return Decision{}, errs.NewValueIsRequiredError("assignment window")
		}
		return NewAssignmentDecision(confidence, reasoning, *windowHours, minimumBid)
	default:
		return Decision{}, strategy.Validate()
	}
}

func (d Decision) Strategy() Strategy {
	return d.strategy
}

func (d Decision) Confidence() float64 {
	return d.confidence
}

// Reasoning returns a copy of the ordered reasons recorded during selection.
func (d Decision) Reasoning() []string {
	return slices.Clone(d.reasoning)
}

// AssignmentWindowHours returns the listing window for assignment decisions.
func (d Decision) AssignmentWindowHours() (int, bool) {
	return d.assignmentWindowHours, d.strategy == StrategyAssignment
}

// MinimumBid returns the lowest acceptable provider bid, when known.
func (d Decision) MinimumBid() (decimal.Decimal, bool) {
	if d.minimumBid == nil {
		return decimal.Zero, false
	}
	return *d.minimumBid, true
}

func (d Decision) IsInstant() bool {
	return d.strategy == StrategyInstant
}

func (d Decision) Validate() error {
	return d.guard.Validate(ErrDecisionIsNotConstructed)
}

func checkConfidence(c float64) error {
	if c < 0 || c > 1 {
		return errs.NewValueIsOutOfRangeError("confidence", c, 0, 1)
	}
	return nil
}
