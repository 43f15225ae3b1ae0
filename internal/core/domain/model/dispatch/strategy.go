package dispatch

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Strategy is how a request is resolved.
type Strategy int

const (
	StrategyUnknown Strategy = iota
	// StrategyInstant prices the request immediately and offers it with a short window.
	StrategyInstant
	// StrategyAssignment lists the request for providers to accept over hours.
	StrategyAssignment
)

func getStrategyStrings() map[Strategy]string {
	return map[Strategy]string{
		StrategyInstant:    "instant",
		StrategyAssignment: "assignment",
	}
}

func (s Strategy) String() string {
	if str, ok := getStrategyStrings()[s]; ok {
		return str
	}
	return "unknown"
}

func (s Strategy) Validate() error {
	if _, ok := getStrategyStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("strategy", fmt.Errorf("%d is not a valid strategy", s))
	}
	return nil
}

// ParseStrategy maps a stored or wire name back to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	for strategy, name := range getStrategyStrings() {
		if strings.EqualFold(name, s) {
			return strategy, nil
		}
	}
	return StrategyUnknown, errs.NewValueIsInvalidErrorWithCause("strategy", fmt.Errorf("%q is not a valid strategy", s))
}
