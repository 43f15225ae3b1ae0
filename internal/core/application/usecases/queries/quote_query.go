// Package queries contains read operations. None of them change stored state.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/guard"
)

var ErrQuoteQueryIsNotConstructed = errors.New(
	"QuoteQuery must be created via NewQuoteQuery constructor",
)

// QuoteQuery evaluates a request without storing anything: scores, dispatch
// decision and price breakdown.
//
// Example:
//
//	query, err := NewQuoteQuery(snapshot)
//	quote, err := handler.Handle(ctx, query)
//	fmt.Println(quote.Decision.Strategy(), quote.Breakdown.CustomerPrice())
type QuoteQuery struct {
	snapshot request.Snapshot
	guard    guard.ConstructorGuard
}

func NewQuoteQuery(snapshot request.Snapshot) (QuoteQuery, error) {
	if err := snapshot.Validate(); err != nil {
		return QuoteQuery{}, err
	}
	return QuoteQuery{snapshot: snapshot, guard: guard.NewConstructorGuard()}, nil
}

func (q QuoteQuery) Validate() error {
	return q.guard.Validate(ErrQuoteQueryIsNotConstructed)
}

func (q QuoteQuery) Snapshot() request.Snapshot {
	return q.snapshot
}
