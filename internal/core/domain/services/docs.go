// Package services provides the domain services of the dispatch engine. They work
// on values and aggregates passed in by the caller and never perform I/O.
//
// The package includes:
//   - ScoreEngine: complexity, demand and route-efficiency scores of a request
//   - StrategySelector: instant dispatch or provider assignment, with confidence
//     and reasoning
//   - PricingPipeline: provider payout and customer price with an audited breakdown
//   - OfferLifecycle: offering jobs to providers and resolving those offers
//
// ScoreEngine, StrategySelector and PricingPipeline are stateless and safe for
// concurrent use. OfferLifecycle mutates the aggregates it is given; callers
// serialise access to them through the unit of work.
package services
