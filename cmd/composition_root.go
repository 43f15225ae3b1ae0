package cmd

import (
	"context"
	"errors"

	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/availability"
	"dispatch/internal/adapters/out/memory"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/pricingrepo"
	"dispatch/internal/core/application/quoting"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/pricing"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// CompositionRoot wires adapters, domain services and handlers.
type CompositionRoot struct {
	cfg    Config
	logger *zap.Logger
	clock  clock.Clock

	gormDB *gorm.DB
	pool   *pgxpool.Pool

	uowFactory ports.UnitOfWorkFactory
	configs    ports.PricingConfigurationRepository
	oracle     ports.ProviderEligibilityOracle
	lifecycle  services.OfferLifecycle
}

// NewCompositionRoot opens the configured store. Close releases it.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *zap.Logger) (*CompositionRoot, error) {
	defaults, err := cfg.Pricing.Configuration()
	if err != nil {
		return nil, eris.Wrap(err, "pricing defaults")
	}

	lifecycle, err := services.NewOfferLifecycleWithWindows(cfg.Offers.TTL, cfg.Offers.InstantTTL)
	if err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		cfg:       cfg,
		logger:    logger,
		clock:     clock.System(),
		lifecycle: lifecycle,
	}

	switch cfg.Store.Driver {
	case StoreDriverMemory:
		c.uowFactory = memory.NewUnitOfWorkFactory(memory.NewStore())
		c.configs = quoting.Fixed{Configuration: defaults}
	default:
		if err = c.openPostgres(ctx, defaults); err != nil {
			c.Close()
			return nil, err
		}
	}

	if c.oracle, err = c.newOracle(); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

func (c *CompositionRoot) openPostgres(ctx context.Context, defaults pricing.Configuration) error {
	gormDB, err := gorm.Open(gormpostgres.Open(c.cfg.Store.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return eris.Wrap(err, "open gorm connection")
	}
	c.gormDB = gormDB

	poolCfg, err := pgxpool.ParseConfig(c.cfg.Store.DatabaseURL)
	if err != nil {
		return eris.Wrap(err, "parse database url")
	}
	if c.cfg.Store.MaxConns > 0 {
		poolCfg.MaxConns = c.cfg.Store.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return eris.Wrap(err, "open pgx pool")
	}
	c.pool = pool

	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	c.configs = FallbackConfigurations{
		Primary:  pricingrepo.NewPgxConfigurationRepository(pool),
		Fallback: defaults,
	}
	return nil
}

func (c *CompositionRoot) newOracle() (ports.ProviderEligibilityOracle, error) {
	if c.cfg.Availability.URL == "" {
		c.logger.Info("no provider directory configured",
			zap.Bool("assume_available", c.cfg.Availability.Assume))
		return availability.Static(c.cfg.Availability.Assume), nil
	}

	remote, err := availability.NewHTTPOracle(availability.HTTPOptions{
		BaseURL:           c.cfg.Availability.URL,
		Timeout:           c.cfg.Availability.Timeout,
		MaxRetries:        c.cfg.Availability.MaxRetries,
		RequestsPerSecond: c.cfg.Availability.RequestsPerSecond,
	}, c.logger)
	if err != nil {
		return nil, eris.Wrap(err, "provider directory")
	}
	if c.cfg.Availability.CacheTTL <= 0 {
		return remote, nil
	}
	return availability.NewCachedOracle(remote, c.cfg.Availability.CacheTTL, c.clock, c.logger), nil
}

// Migrate creates the schema. It is a no-op for the memory store.
func (c *CompositionRoot) Migrate(ctx context.Context) error {
	if c.gormDB == nil {
		return nil
	}
	return postgres.Migrate(ctx, c.gormDB)
}

// Close releases database connections.
func (c *CompositionRoot) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.gormDB != nil {
		if sqlDB, err := c.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (c *CompositionRoot) Logger() *zap.Logger {
	return c.logger
}

func (c *CompositionRoot) CreateQuoter() *quoting.Quoter {
	return quoting.NewQuoter(c.oracle, c.configs, c.logger)
}

func (c *CompositionRoot) CreateSubmitRequestCommandHandler() commands.SubmitRequestCommandHandler {
	return commands.NewSubmitRequestCommandHandler(c.uow(), c.CreateQuoter(), c.lifecycle, c.clock, c.logger)
}

func (c *CompositionRoot) CreateOfferJobCommandHandler() commands.OfferJobCommandHandler {
	return commands.NewOfferJobCommandHandler(c.uow(), c.lifecycle, c.clock, c.logger)
}

func (c *CompositionRoot) CreateAcceptOfferCommandHandler() commands.AcceptOfferCommandHandler {
	return commands.NewAcceptOfferCommandHandler(c.uow(), c.lifecycle, c.clock, c.logger)
}

func (c *CompositionRoot) CreateRejectOfferCommandHandler() commands.RejectOfferCommandHandler {
	return commands.NewRejectOfferCommandHandler(c.uow(), c.lifecycle, c.clock, c.logger)
}

func (c *CompositionRoot) CreateExpireOffersCommandHandler() commands.ExpireOffersCommandHandler {
	return commands.NewExpireOffersCommandHandler(c.uow(), c.lifecycle, c.clock, c.logger)
}

func (c *CompositionRoot) CreateCompleteJobCommandHandler() commands.CompleteJobCommandHandler {
	var f commands.JobUoWFactory = FuncJobUoWFactory(func() commands.JobUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteJobCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateQuoteQueryHandler() queries.QuoteQueryHandler {
	return queries.NewQuoteQueryHandler(c.CreateQuoter(), c.clock)
}

func (c *CompositionRoot) CreateGetJobOffersQueryHandler() queries.GetJobOffersQueryHandler {
	return queries.NewGetJobOffersQueryHandler(c.uowFactory)
}

// CreateRouter builds the echo instance serving the public API.
func (c *CompositionRoot) CreateRouter(ctx context.Context) (*echo.Echo, error) {
	server := httpin.NewServer(httpin.Handlers{
		SubmitRequest: c.CreateSubmitRequestCommandHandler(),
		OfferJob:      c.CreateOfferJobCommandHandler(),
		AcceptOffer:   c.CreateAcceptOfferCommandHandler(),
		RejectOffer:   c.CreateRejectOfferCommandHandler(),
		CompleteJob:   c.CreateCompleteJobCommandHandler(),
		Quote:         c.CreateQuoteQueryHandler(),
		JobOffers:     c.CreateGetJobOffersQueryHandler(),
	}, c.logger)
	return httpin.NewRouter(ctx, server, c.logger)
}

func (c *CompositionRoot) CreateOfferExpiryJob() *jobs.OfferExpiryJob {
	return jobs.NewOfferExpiryJob(
		c.CreateExpireOffersCommandHandler(),
		c.cfg.Offers.ExpirySchedule,
		c.cfg.Offers.ExpiryBatchSize,
		c.logger,
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.logger, c.CreateOfferExpiryJob())
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

// FallbackConfigurations serves Fallback while no configuration is stored.
type FallbackConfigurations struct {
	Primary  ports.PricingConfigurationRepository
	Fallback pricing.Configuration
}

func (f FallbackConfigurations) Active(ctx context.Context) (pricing.Configuration, error) {
	cfg, err := f.Primary.Active(ctx)
	if errors.Is(err, errs.ErrConfigurationMissing) {
		return f.Fallback, nil
	}
	return cfg, err
}

type FuncJobUoWFactory func() commands.JobUoW

func (f FuncJobUoWFactory) Create() commands.JobUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
