package queries_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/availability"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/application/quoting"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/dispatch"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/pricing"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

func snapshot(t *testing.T) request.Snapshot {
	t.Helper()
	pickup := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	distance := decimal.NewFromInt(10)
	s, err := request.NewSnapshot(request.Params{
		Type:                 request.TypeInstantEligible,
		PickupDate:           &pickup,
		EstimatedDistanceKm:  &distance,
		BasePrice:            decimal.NewFromInt(100),
		PickupPostcode:       "SW1A 1AA",
		DropoffPostcode:      "SW3 4AA",
		PickupLocationKnown:  true,
		DropoffLocationKnown: true,
	})
	require.NoError(t, err)
	return s
}

func TestQuoteQuery(t *testing.T) {
	t.Run("should fail validation on a zero value", func(t *testing.T) {
		assert.ErrorIs(t, queries.QuoteQuery{}.Validate(), queries.ErrQuoteQueryIsNotConstructed)
	})

	t.Run("should quote at the handler clock", func(t *testing.T) {
		quoter := quoting.NewQuoter(availability.Static(false), quoting.DefaultsOnly{}, zap.NewNop())
		handler := queries.NewQuoteQueryHandler(quoter, clock.NewManual(now))

		query, err := queries.NewQuoteQuery(snapshot(t))
		require.NoError(t, err)

		quote, err := handler.Handle(context.Background(), query)
		require.NoError(t, err)
		assert.Equal(t, dispatch.StrategyAssignment, quote.Decision.Strategy())
		assert.True(t, quote.Breakdown.JobPrice().Equal(decimal.NewFromInt(105)))
	})
}

func TestGetJobOffersQueryHandler_Handle(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*memory.UnitOfWorkFactory, *job.Job, kernel.UUID) {
		t.Helper()
		factory := memory.NewUnitOfWorkFactory(memory.NewStore())

		decision, err := dispatch.NewInstantDecision(1, []string{"all instant dispatch criteria met"})
		require.NoError(t, err)
		quote, err := pricing.NewBreakdown(decimal.NewFromInt(100), decimal.RequireFromString("129.41"), false, nil)
		require.NoError(t, err)
		j, err := job.NewJob(kernel.NewUUID(), request.KindMove, decision, quote, now)
		require.NoError(t, err)

		provider := kernel.NewUUID()
		first, err := offer.NewOffer(kernel.NewUUID(), request.KindMove, j.ID(), provider, decimal.NewFromInt(100), now, now.Add(time.Hour))
		require.NoError(t, err)
		second, err := offer.NewOffer(kernel.NewUUID(), request.KindMove, j.ID(), kernel.NewUUID(), decimal.NewFromInt(95), now.Add(time.Minute), now.Add(time.Hour))
		require.NoError(t, err)

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.JobRepository().Add(ctx, j))
		require.NoError(t, uow.OfferRepository().Add(ctx, first))
		require.NoError(t, uow.OfferRepository().Add(ctx, second))
		require.NoError(t, uow.Commit(ctx))

		return factory, j, provider
	}

	t.Run("should list every offer oldest first", func(t *testing.T) {
		factory, j, provider := seed(t)
		query, err := queries.NewGetJobOffersQuery(j.ID(), nil)
		require.NoError(t, err)

		response, err := queries.NewGetJobOffersQueryHandler(factory).Handle(ctx, query)
		require.NoError(t, err)

		assert.Equal(t, job.Open, response.JobStatus)
		assert.Nil(t, response.AgreedPrice)
		require.Len(t, response.Offers, 2)
		assert.True(t, response.Offers[0].ProviderID.IsEqual(provider))
		assert.Equal(t, offer.Pending, response.Offers[1].Status)
	})

	t.Run("should narrow to one provider", func(t *testing.T) {
		factory, j, provider := seed(t)
		query, err := queries.NewGetJobOffersQuery(j.ID(), &provider)
		require.NoError(t, err)

		response, err := queries.NewGetJobOffersQueryHandler(factory).Handle(ctx, query)
		require.NoError(t, err)
		require.Len(t, response.Offers, 1)
		assert.True(t, response.Offers[0].OfferedPrice.Equal(decimal.NewFromInt(100)))
	})

	t.Run("should return not found for an unknown job", func(t *testing.T) {
		factory, _, _ := seed(t)
		query, err := queries.NewGetJobOffersQuery(kernel.NewUUID(), nil)
		require.NoError(t, err)

		_, err = queries.NewGetJobOffersQueryHandler(factory).Handle(ctx, query)
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should fail validation on a zero value", func(t *testing.T) {
		factory, _, _ := seed(t)
		_, err := queries.NewGetJobOffersQueryHandler(factory).Handle(ctx, queries.GetJobOffersQuery{})
		assert.ErrorIs(t, err, queries.ErrGetJobOffersQueryIsNotConstructed)
	})
}
