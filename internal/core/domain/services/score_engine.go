package services

import (
	"strings"
	"time"

	"dispatch/internal/core/domain/model/dispatch"
	"dispatch/internal/core/domain/model/request"

	"github.com/shopspring/decimal"
)

var (
	// FragileServiceKeywords mark service types that need specialist handling.
	FragileServiceKeywords = []string{
		"piano", "antique", "artwork", "sculpture", "fine art", "grandfather clock", "pool table", "safe",
	}

	// PeakSeasonMonths is the busy moving season.
	PeakSeasonMonths = map[time.Month]bool{
		time.May: true, time.June: true, time.July: true, time.August: true, time.September: true,
	}

	heavyWeightKg    = decimal.NewFromInt(500)
	mediumWeightKg   = decimal.NewFromInt(200)
	highInsuranceVal = decimal.NewFromInt(10000)
)

const (
	scoreBaseDemand = 0.6

	routeSameArea      = 0.9
	routeSameRegion    = 0.7
	routeDifferent     = 0.4
	routeNoPostcode    = 0.4
	routeUnknownPlaces = 0.3
)

// ScoreEngine computes the three normalised heuristics of a request. Scores are
// clamped to [0, 1] and rounded to four decimal places so that threshold checks
// downstream do not depend on floating point noise.
//
// Example:
//
//	engine := services.NewScoreEngine()
//	scores, err := engine.Score(snapshot, time.Now())
type ScoreEngine struct {
	fragileKeywords []string
	peakMonths      map[time.Month]bool
}

// NewScoreEngine returns an engine using FragileServiceKeywords and PeakSeasonMonths.
func NewScoreEngine() ScoreEngine {
	return ScoreEngine{
		fragileKeywords: FragileServiceKeywords,
		peakMonths:      PeakSeasonMonths,
	}
}

// Score computes every score for the snapshot. now is the reference time for
// demand.
func (e ScoreEngine) Score(s request.Snapshot, now time.Time) (dispatch.ScoreSet, error) {
	if err := s.Validate(); err != nil {
		return dispatch.ScoreSet{}, err
	}
	return dispatch.NewScoreSet(e.Complexity(s), e.Demand(s, now), e.RouteEfficiency(s))
}

// Complexity sums fixed increments for every triggered condition and clamps the
// total to 1.
func (e ScoreEngine) Complexity(s request.Snapshot) float64 {
	score := 0.0

	if s.RequiresSpecialHandling() {
		score += 0.3
	}

	if weight, ok := s.TotalWeightKg(); ok {
		switch {
		case weight.GreaterThan(heavyWeightKg):
			score += 0.2
		case weight.GreaterThan(mediumWeightKg):
			score += 0.1
		}
	}

	if staff, ok := s.StaffRequired(); ok && staff > 2 {
		score += 0.15
	}

	if s.SpecialInstructionsLength() > 100 {
		score += 0.1
	}

	if s.InsuranceRequired() {
		score += 0.1
		if value, ok := s.InsuranceValue(); ok && value.GreaterThan(highInsuranceVal) {
			score += 0.1
		}
	}

	if e.isFragile(s.ServiceType()) {
		score += 0.2
	}

	if s.StopCount() > 3 {
		score += 0.15
	}

	if s.Priority().IsRushed() {
		score += 0.1
	}

	score += accessIncrement(s.PickupAccess())
	score += accessIncrement(s.DropoffAccess())

	return round(clamp01(score), 4)
}

// Demand multiplies the base demand by seasonal, weekend and urgency factors.
// Without a pickup date the season of now is used and the other factors are
// neutral.
func (e ScoreEngine) Demand(s request.Snapshot, now time.Time) float64 {
	month := now.Month()
	if date, ok := s.PickupDate(); ok {
		month = date.Month()
	}

	seasonal := 0.8
	if e.peakMonths[month] {
		seasonal = 1.2
	}

	weekend := 1.0
	if s.IsWeekendPickup() {
		weekend = 1.3
	}

	urgency := 1.0
	if days, ok := s.DaysUntilPickup(now); ok {
		switch {
		case days <= 1:
			urgency = 1.4
		case days <= 7:
			urgency = 1.2
		}
	}

	return round(clamp01(scoreBaseDemand*seasonal*weekend*urgency), 4)
}

// RouteEfficiency compares pickup and dropoff postcodes.
func (e ScoreEngine) RouteEfficiency(s request.Snapshot) float64 {
	if !s.PickupLocationKnown() || !s.DropoffLocationKnown() {
		return routeUnknownPlaces
	}

	pickup, okPickup := s.PickupPostcode()
	dropoff, okDropoff := s.DropoffPostcode()
	if !okPickup || !okDropoff {
		return routeNoPostcode
	}

	switch {
	case pickup.Area() == dropoff.Area():
		return routeSameArea
	case pickup.Region() == dropoff.Region():
		return routeSameRegion
	default:
		return routeDifferent
	}
}

func (e ScoreEngine) isFragile(serviceType string) bool {
	if serviceType == "" {
		return false
	}
	lower := strings.ToLower(serviceType)
	for _, keyword := range e.fragileKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func accessIncrement(a request.AccessDifficulty) float64 {
	switch a {
	case request.AccessDifficult:
		return 0.2
	case request.AccessVeryDifficult:
		return 0.4
	default:
		return 0
	}
}
