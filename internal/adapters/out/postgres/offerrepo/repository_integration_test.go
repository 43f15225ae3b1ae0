package offerrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/offerrepo"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/offer"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OfferRepositoryIntegrationTestSuite verifies offer persistence and the
// compare-and-set transitions against PostgreSQL.
type OfferRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *offerrepo.GormOfferRepository
	now        time.Time
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&offerrepo.OfferDTO{}))
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE offers").Error)

	suite.repository = offerrepo.NewGormOfferRepository(suite.db)
	suite.now = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)
}

func (suite *OfferRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OfferRepositoryIntegrationTestSuite) TestAdd_RoundTrip() {
	ctx := context.Background()
	o := suite.newOffer(kernel.NewUUID(), kernel.NewUUID(), time.Hour)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(stored.JobID().IsEqual(o.JobID()))
	suite.True(stored.ProviderID().IsEqual(o.ProviderID()))
	suite.Equal(request.KindServiceRequest, stored.SubjectKind())
	suite.Equal(offer.Pending, stored.Status())
	suite.True(stored.OfferedPrice().Equal(decimal.RequireFromString("120.50")))
	suite.True(stored.OfferedAt().Equal(suite.now))
	suite.True(stored.ExpiresAt().Equal(suite.now.Add(time.Hour)))
	suite.Nil(stored.RespondedAt())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestAdd_SecondPendingOfferForPairFails() {
	ctx := context.Background()
	jobID, providerID := kernel.NewUUID(), kernel.NewUUID()

	suite.Require().NoError(suite.repository.Add(ctx, suite.newOffer(jobID, providerID, time.Hour)))
	err := suite.repository.Add(ctx, suite.newOffer(jobID, providerID, time.Hour))
	suite.Require().ErrorIs(err, errs.ErrVersionIsInvalid)

	suite.Require().NoError(suite.repository.Add(ctx, suite.newOffer(jobID, kernel.NewUUID(), time.Hour)),
		"another provider may hold a pending offer for the same job")
}

func (suite *OfferRepositoryIntegrationTestSuite) TestAdd_ConcurrentPendingOffersForPair() {
	ctx := context.Background()
	jobID, providerID := kernel.NewUUID(), kernel.NewUUID()

	offers := make([]*offer.Offer, 8)
	for i := range offers {
		offers[i] = suite.newOffer(jobID, providerID, time.Hour)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, o := range offers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := suite.repository.Add(ctx, o); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, successes)
	count, err := suite.repository.CountPending(ctx, jobID)
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestAdd_ResolvedOfferFreesPair() {
	ctx := context.Background()
	jobID, providerID := kernel.NewUUID(), kernel.NewUUID()

	first := suite.newOffer(jobID, providerID, time.Hour)
	suite.Require().NoError(suite.repository.Add(ctx, first))
	suite.Require().NoError(first.Expire(suite.now, offer.ReasonSuperseded))
	suite.Require().NoError(suite.repository.UpdateIfPending(ctx, first))

	suite.Require().NoError(suite.repository.Add(ctx, suite.newOffer(jobID, providerID, time.Hour)))
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdateIfPending_Accept() {
	ctx := context.Background()
	o := suite.newOffer(kernel.NewUUID(), kernel.NewUUID(), time.Hour)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Require().NoError(o.Accept(suite.now.Add(time.Minute)))
	suite.Require().NoError(suite.repository.UpdateIfPending(ctx, o))

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(offer.Accepted, stored.Status())
	suite.Require().NotNil(stored.RespondedAt())
	suite.True(stored.RespondedAt().Equal(suite.now.Add(time.Minute)))
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdateIfPending_SecondWriterLoses() {
	ctx := context.Background()
	o := suite.newOffer(kernel.NewUUID(), kernel.NewUUID(), time.Hour)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	accepting, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	rejecting, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(accepting.Accept(suite.now.Add(time.Minute)))
	suite.Require().NoError(suite.repository.UpdateIfPending(ctx, accepting))

	suite.Require().NoError(rejecting.Reject(suite.now.Add(2*time.Minute), "busy"))
	err = suite.repository.UpdateIfPending(ctx, rejecting)
	suite.Require().ErrorIs(err, errs.ErrInvalidTransition)

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(offer.Accepted, stored.Status())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdateIfPending_AcceptAfterStoredDeadlineLoses() {
	ctx := context.Background()
	o := suite.newOffer(kernel.NewUUID(), kernel.NewUUID(), time.Hour)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	// A restored copy carrying a later deadline than the stored row.
	stale, err := offer.RestoreOffer(o.ID(), o.SubjectKind(), o.JobID(), o.ProviderID(), o.OfferedPrice(),
		offer.Pending, o.OfferedAt(), o.ExpiresAt().Add(time.Hour), nil, nil)
	suite.Require().NoError(err)
	suite.Require().NoError(stale.Accept(o.ExpiresAt().Add(time.Minute)))

	err = suite.repository.UpdateIfPending(ctx, stale)
	suite.Require().ErrorIs(err, errs.ErrInvalidTransition)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdateIfPending_PendingOfferIsRejected() {
	o := suite.newOffer(kernel.NewUUID(), kernel.NewUUID(), time.Hour)
	err := suite.repository.UpdateIfPending(context.Background(), o)
	suite.Require().ErrorIs(err, errs.ErrInvalidTransition)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestList_Filters() {
	ctx := context.Background()
	jobID := kernel.NewUUID()
	providerA, providerB := kernel.NewUUID(), kernel.NewUUID()

	a := suite.newOffer(jobID, providerA, time.Hour)
	suite.Require().NoError(suite.repository.Add(ctx, a))
	suite.now = suite.now.Add(time.Second)
	b := suite.newOffer(jobID, providerB, time.Hour)
	suite.Require().NoError(suite.repository.Add(ctx, b))
	suite.Require().NoError(suite.repository.Add(ctx, suite.newOffer(kernel.NewUUID(), providerA, time.Hour)))

	suite.Require().NoError(b.Reject(suite.now.Add(time.Minute), "busy"))
	suite.Require().NoError(suite.repository.UpdateIfPending(ctx, b))

	all, err := suite.repository.List(ctx, ports.OfferFilter{JobID: jobID})
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	suite.True(all[0].ID().IsEqual(a.ID()))
	suite.True(all[1].ID().IsEqual(b.ID()))

	byProvider, err := suite.repository.List(ctx, ports.OfferFilter{JobID: jobID, ProviderID: &providerB})
	suite.Require().NoError(err)
	suite.Require().Len(byProvider, 1)
	suite.Equal(offer.Rejected, byProvider[0].Status())
	suite.Equal("busy", byProvider[0].ResponseReason())

	pending, err := suite.repository.List(ctx, ports.OfferFilter{JobID: jobID, Status: offer.Pending})
	suite.Require().NoError(err)
	suite.Require().Len(pending, 1)
	suite.True(pending[0].ID().IsEqual(a.ID()))

	count, err := suite.repository.CountPending(ctx, jobID)
	suite.Require().NoError(err)
	suite.Equal(1, count)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestListElapsedPending() {
	ctx := context.Background()
	soon := suite.newOffer(kernel.NewUUID(), kernel.NewUUID(), time.Minute)
	sooner := suite.newOffer(kernel.NewUUID(), kernel.NewUUID(), 30*time.Second)
	later := suite.newOffer(kernel.NewUUID(), kernel.NewUUID(), time.Hour)
	for _, o := range []*offer.Offer{soon, sooner, later} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	elapsed, err := suite.repository.ListElapsedPending(ctx, suite.now.Add(time.Minute), 10)
	suite.Require().NoError(err)
	suite.Require().Len(elapsed, 2)
	suite.True(elapsed[0].ID().IsEqual(sooner.ID()))
	suite.True(elapsed[1].ID().IsEqual(soon.ID()), "deadline equal to now counts as elapsed")

	limited, err := suite.repository.ListElapsedPending(ctx, suite.now.Add(2*time.Hour), 1)
	suite.Require().NoError(err)
	suite.Len(limited, 1)

	_, err = suite.repository.ListElapsedPending(ctx, suite.now, 0)
	suite.Require().ErrorIs(err, errs.ErrValueIsOutOfRange)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OfferRepositoryIntegrationTestSuite) newOffer(jobID, providerID kernel.UUID, ttl time.Duration) *offer.Offer {
	o, err := offer.NewOffer(kernel.NewUUID(), request.KindServiceRequest, jobID, providerID,
		decimal.RequireFromString("120.50"), suite.now, suite.now.Add(ttl))
	suite.Require().NoError(err)
	return o
}

func TestOfferRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OfferRepositoryIntegrationTestSuite))
}
