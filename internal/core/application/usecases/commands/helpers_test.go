package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/availability"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/core/application/quoting"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/clock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Monday 2025-03-03 12:00 UTC, off-peak.
var now = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

type memoryUoWFactory struct {
	factory ports.UnitOfWorkFactory
}

func (f memoryUoWFactory) Create() commands.UoW {
	return f.factory.Create()
}

type jobUoWFactory struct {
	factory ports.UnitOfWorkFactory
}

func (f jobUoWFactory) Create() commands.JobUoW {
	return f.factory.Create()
}

// fixture wires the handlers to one in-memory store.
type fixture struct {
	store    *memory.Store
	uow      memoryUoWFactory
	clock    *clock.Manual
	submit   commands.SubmitRequestCommandHandler
	offer    commands.OfferJobCommandHandler
	accept   commands.AcceptOfferCommandHandler
	reject   commands.RejectOfferCommandHandler
	expire   commands.ExpireOffersCommandHandler
	complete commands.CompleteJobCommandHandler
}

func newFixture(t *testing.T, providersAvailable bool) *fixture {
	t.Helper()

	store := memory.NewStore()
	factory := memoryUoWFactory{factory: memory.NewUnitOfWorkFactory(store)}
	c := clock.NewManual(now)
	lifecycle := services.NewOfferLifecycle()
	logger := zap.NewNop()
	quoter := quoting.NewQuoter(availability.Static(providersAvailable), quoting.DefaultsOnly{}, logger)

	return &fixture{
		store:    store,
		uow:      factory,
		clock:    c,
		submit:   commands.NewSubmitRequestCommandHandler(factory, quoter, lifecycle, c, logger),
		offer:    commands.NewOfferJobCommandHandler(factory, lifecycle, c, logger),
		accept:   commands.NewAcceptOfferCommandHandler(factory, lifecycle, c, logger),
		reject:   commands.NewRejectOfferCommandHandler(factory, lifecycle, c, logger),
		expire:   commands.NewExpireOffersCommandHandler(factory, lifecycle, c, logger),
		complete: commands.NewCompleteJobCommandHandler(jobUoWFactory{factory: memory.NewUnitOfWorkFactory(store)}, logger),
	}
}

func instantSnapshot(t *testing.T) request.Snapshot {
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

// submitJob stores a job through the submit handler and returns it.
func (f *fixture) submitJob(t *testing.T) *job.Job {
	t.Helper()
	cmd, err := commands.NewSubmitRequestCommand(kernel.NewUUID(), instantSnapshot(t), nil, nil)
	require.NoError(t, err)
	result, err := f.submit.Handle(context.Background(), cmd)
	require.NoError(t, err)
	return result.Job
}

func (f *fixture) offerJob(t *testing.T, jobID, providerID kernel.UUID) *offer.Offer {
	t.Helper()
	cmd, err := commands.NewOfferJobCommand(jobID, providerID, nil, nil)
	require.NoError(t, err)
	o, err := f.offer.Handle(context.Background(), cmd)
	require.NoError(t, err)
	return o
}

func (f *fixture) getJob(t *testing.T, id kernel.UUID) *job.Job {
	t.Helper()
	j, err := f.uow.Create().JobRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return j
}

func (f *fixture) getOffer(t *testing.T, id kernel.UUID) *offer.Offer {
	t.Helper()
	o, err := f.uow.Create().OfferRepository().Get(context.Background(), id)
	require.NoError(t, err)
	return o
}

func (f *fixture) pendingCount(t *testing.T, jobID kernel.UUID) int {
	t.Helper()
	n, err := f.uow.Create().OfferRepository().CountPending(context.Background(), jobID)
	require.NoError(t, err)
	return n
}

// Mocks for failure paths.

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) JobRepository() ports.JobRepository {
	args := m.Called()
	return args.Get(0).(ports.JobRepository)
}

func (m *MockUoW) OfferRepository() ports.OfferRepository {
	args := m.Called()
	return args.Get(0).(ports.OfferRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) Add(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if j, ok := args.Get(0).(*job.Job); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockQuoter struct{ mock.Mock }

func (m *MockQuoter) Quote(ctx context.Context, s request.Snapshot, at time.Time) (quoting.Quote, error) {
	args := m.Called(ctx, s, at)
	return args.Get(0).(quoting.Quote), args.Error(1)
}
