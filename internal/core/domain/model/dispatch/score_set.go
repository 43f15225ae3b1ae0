package dispatch

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrScoreSetIsNotConstructed is returned when a zero-value ScoreSet is used.
var ErrScoreSetIsNotConstructed = errors.New("ScoreSet must be created via NewScoreSet constructor")

// ScoreSet groups the three normalised heuristics of a request. Every score lies
// in [0, 1]. A ScoreSet has no identity and is recomputed on demand.
type ScoreSet struct {
	complexity      float64
	demand          float64
	routeEfficiency float64
	guard           guard.ConstructorGuard
}

// NewScoreSet validates that every score is within [0, 1].
func NewScoreSet(complexity, demand, routeEfficiency float64) (ScoreSet, error) {
	if err := errors.Join(
		checkScore("complexity", complexity),
		checkScore("demand", demand),
		checkScore("route efficiency", routeEfficiency),
	); err != nil {
		return ScoreSet{}, err
	}

	return ScoreSet{
		complexity:      complexity,
		demand:          demand,
		routeEfficiency: routeEfficiency,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

func (s ScoreSet) Complexity() float64 {
	return s.complexity
}

func (s ScoreSet) Demand() float64 {
	return s.demand
}

func (s ScoreSet) RouteEfficiency() float64 {
	return s.routeEfficiency
}

func (s ScoreSet) Validate() error {
	return s.guard.Validate(ErrScoreSetIsNotConstructed)
}

func (s ScoreSet) String() string {
	return fmt.Sprintf("complexity=%.4f demand=%.4f route_efficiency=%.4f",
		s.complexity, s.demand, s.routeEfficiency)
}

func checkScore(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return errs.NewValueIsOutOfRangeError(name+" score", v, 0, 1)
	}
	return nil
}
