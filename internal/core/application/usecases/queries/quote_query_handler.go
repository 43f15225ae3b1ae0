package queries

import (
	"context"
	"time"

	"dispatch/internal/core/application/quoting"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/clock"
)

// Quoter evaluates a request snapshot at a given time.
type Quoter interface {
	Quote(ctx context.Context, s request.Snapshot, now time.Time) (quoting.Quote, error)
}

type QuoteQueryHandler struct {
	quoter Quoter
	clock  clock.Clock
}

func NewQuoteQueryHandler(quoter Quoter, c clock.Clock) QuoteQueryHandler {
	return QuoteQueryHandler{quoter: quoter, clock: c}
}

func (h QuoteQueryHandler) Handle(ctx context.Context, query QuoteQuery) (quoting.Quote, error) {
	if err := query.Validate(); err != nil {
		return quoting.Quote{}, err
	}
	return h.quoter.Quote(ctx, query.Snapshot(), h.clock.Now())
}
