package services

import (
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/dispatch"
	"dispatch/internal/core/domain/model/request"

	"github.com/shopspring/decimal"
)

const (
	instantConfidenceThreshold = 0.7
	complexityInstantLimit     = 0.6
	routeEfficiencyMinimum     = 0.5
	demandPenaltyThreshold     = 0.8
	shortNoticeDays            = 2
	complexWindowThreshold     = 0.8

	windowHoursVeryComplex = 48
	windowHoursComplex     = 24
	windowHoursDefault     = 12
)

var (
	minimumBidRatio = decimal.RequireFromString("0.8")
	overweightKg    = decimal.NewFromInt(1000)
	longDistanceKm  = decimal.NewFromInt(500)
)

// StrategySelector turns scores and the provider-availability signal into a
// dispatch Decision. It is a pure function of its inputs.
type StrategySelector struct{}

func NewStrategySelector() StrategySelector {
	return StrategySelector{}
}

// Select decides between instant dispatch and provider assignment.
//
// Requests that are not instant-eligible go to assignment with full confidence.
// Otherwise confidence starts at 1.0 and every triggered penalty is subtracted and
// explained in the reasoning. Instant dispatch needs confidence of at least 0.7,
// complexity of at most 0.6, qualified providers and route efficiency of at least
// 0.5.
func (StrategySelector) Select(
	s request.Snapshot,
	scores dispatch.ScoreSet,
	providersQualified bool,
	now time.Time,
) (dispatch.Decision, error) {
	if err := s.Validate(); err != nil {
		return dispatch.Decision{}, err
	}
	if err := scores.Validate(); err != nil {
		return dispatch.Decision{}, err
	}

	if s.Type() != request.TypeInstantEligible {
		reasons := []string{fmt.Sprintf("request type %s is not eligible for instant dispatch", s.Type())}
		return assignment(s, scores, 1.0, reasons)
	}

	// Confidence in hundredths.
	confidence := 100
	var reasons []string
	penalise := func(points int, reason string) {
		confidence -= points
		reasons = append(reasons, reason)
	}

	if scores.Complexity() > complexityInstantLimit {
		penalise(30, fmt.Sprintf("complexity %.2f exceeds %.1f", scores.Complexity(), complexityInstantLimit))
	}
	if scores.RouteEfficiency() < routeEfficiencyMinimum {
		penalise(20, fmt.Sprintf("route efficiency %.2f is below %.1f", scores.RouteEfficiency(), routeEfficiencyMinimum))
	}
	if !providersQualified {
		penalise(40, "no qualified providers available")
	}
	if days, ok := s.DaysUntilPickup(now); ok && days < shortNoticeDays {
		penalise(30, fmt.Sprintf("pickup in %d day(s) is short notice", days))
	}
	if scores.Demand() > demandPenaltyThreshold {
		penalise(20, fmt.Sprintf("demand %.2f exceeds %.1f", scores.Demand(), demandPenaltyThreshold))
	}
	if s.Priority().IsRushed() {
		penalise(20, fmt.Sprintf("%s priority", s.Priority()))
	}
	if weight, ok := s.TotalWeightKg(); ok && weight.GreaterThan(overweightKg) {
		penalise(20, fmt.Sprintf("weight %s kg exceeds %s kg", weight, overweightKg))
	}
	if distance, ok := s.EstimatedDistanceKm(); ok && distance.GreaterThan(longDistanceKm) {
		penalise(30, fmt.Sprintf("distance %s km exceeds %s km", distance, longDistanceKm))
	}

	// Penalties add up to 210 points. Decision only accepts confidence in
	// [0, 1], so the score stops at 0 and the reasons still list every penalty.
	score := round(float64(max(confidence, 0))/100, 2)

	if score >= instantConfidenceThreshold &&
		scores.Complexity() <= complexityInstantLimit &&
		providersQualified &&
		scores.RouteEfficiency() >= routeEfficiencyMinimum {
		reasons = append(reasons, "all instant dispatch criteria met")
		return dispatch.NewInstantDecision(score, reasons)
	}

	return assignment(s, scores, score, reasons)
}

func assignment(s request.Snapshot, scores dispatch.ScoreSet, confidence float64, reasons []string) (dispatch.Decision, error) {
	window := windowHoursDefault
	switch {
	case scores.Complexity() > complexWindowThreshold:
		window = windowHoursVeryComplex
	case scores.Complexity() > complexityInstantLimit:
		window = windowHoursComplex
	}

	var minimumBid *decimal.Decimal
	if s.HasBasePrice() {
		bid := s.BasePrice().Mul(minimumBidRatio).Round(2)
		minimumBid = &bid
	}

	return dispatch.NewAssignmentDecision(confidence, reasons, window, minimumBid)
}
