// Package quoting runs the dispatch evaluation shared by quotes and submitted
// requests: score, ask the provider oracle, decide the strategy and price.
package quoting

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/dispatch"
	"dispatch/internal/core/domain/model/pricing"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"go.uber.org/zap"
)

// Quote is the outcome of evaluating one request.
type Quote struct {
	Scores    dispatch.ScoreSet
	Decision  dispatch.Decision
	Breakdown pricing.Breakdown
	// DefaultConfiguration is set when no pricing configuration was active and
	// the built-in defaults were used.
	DefaultConfiguration bool
	// ProvidersAvailable is the oracle's answer, false when the oracle failed.
	ProvidersAvailable bool
}

// Quoter evaluates requests. It holds no mutable state and is safe for
// concurrent use.
type Quoter struct {
	engine   services.ScoreEngine
	selector services.StrategySelector
	pipeline services.PricingPipeline
	oracle   ports.ProviderEligibilityOracle
	configs  ports.PricingConfigurationRepository
	logger   *zap.Logger
}

func NewQuoter(
	oracle ports.ProviderEligibilityOracle,
	configs ports.PricingConfigurationRepository,
	logger *zap.Logger,
) *Quoter {
	return &Quoter{
		engine:   services.NewScoreEngine(),
		selector: services.NewStrategySelector(),
		pipeline: services.NewPricingPipeline(),
		oracle:   oracle,
		configs:  configs,
		logger:   logger.With(zap.String("component", "quoter")),
	}
}

// Quote scores s, decides the strategy and prices it at now. Instant decisions
// are priced with the complexity and demand multipliers; assignment decisions
// skip them and leave the final price to provider bids.
//
// An oracle failure counts as "no qualified providers". A missing pricing
// configuration falls back to pricing.DefaultConfiguration.
func (q *Quoter) Quote(ctx context.Context, s request.Snapshot, now time.Time) (Quote, error) {
	if err := s.Validate(); err != nil {
		return Quote{}, err
	}

	scores, err := q.engine.Score(s, now)
	if err != nil {
		return Quote{}, err
	}

	available, err := q.oracle.AreQualifiedProvidersAvailable(ctx, s)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Quote{}, ctxErr
		}
		q.logger.Warn("provider oracle failed, assuming no qualified providers", zap.Error(err))
		available = false
	}

	decision, err := q.selector.Select(s, scores, available, now)
	if err != nil {
		return Quote{}, err
	}

	cfg, fallback, err := q.configuration(ctx)
	if err != nil {
		return Quote{}, err
	}

	var pricedScores *dispatch.ScoreSet
	if decision.IsInstant() {
		pricedScores = &scores
	}

	breakdown, err := q.pipeline.Price(s, pricedScores, cfg, now)
	if err != nil {
		return Quote{}, err
	}

	q.logger.Debug("request evaluated",
		zap.Stringer("scores", scores),
		zap.Stringer("strategy", decision.Strategy()),
		zap.Float64("confidence", decision.Confidence()),
		zap.Stringer("job_price", breakdown.JobPrice()),
		zap.Stringer("customer_price", breakdown.CustomerPrice()),
	)

	return Quote{
		Scores:               scores,
		Decision:             decision,
		Breakdown:            breakdown,
		DefaultConfiguration: fallback,
		ProvidersAvailable:   available,
	}, nil
}

func (q *Quoter) configuration(ctx context.Context) (pricing.Configuration, bool, error) {
	cfg, err := q.configs.Active(ctx)
	if err == nil {
		return cfg, false, nil
	}
	if errors.Is(err, errs.ErrConfigurationMissing) {
		q.logger.Warn("no active pricing configuration, using defaults", zap.Error(err))
		return pricing.DefaultConfiguration(), true, nil
	}
	return pricing.Configuration{}, false, err
}

// DefaultsOnly is a PricingConfigurationRepository with no stored configuration.
type DefaultsOnly struct{}

func (DefaultsOnly) Active(context.Context) (pricing.Configuration, error) {
	return pricing.Configuration{}, errs.NewConfigurationMissingError("pricing configuration")
}

// Fixed serves one configuration, typically assembled from application config.
type Fixed struct {
	Configuration pricing.Configuration
}

func (f Fixed) Active(context.Context) (pricing.Configuration, error) {
	return f.Configuration, nil
}
