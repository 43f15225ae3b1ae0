package jobs

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultOfferExpirySchedule runs the sweep every ten seconds.
const DefaultOfferExpirySchedule = "*/10 * * * * *"

// ExpireOffersHandler is the command the sweep runs.
type ExpireOffersHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireOffersCommand) (int, error)
}

// OfferExpiryJob closes pending offers whose deadline has passed and reopens
// jobs left without pending offers. Runs never overlap: a tick that arrives
// while a sweep is in progress is skipped.
type OfferExpiryJob struct {
	handler   ExpireOffersHandler
	schedule  string
	batchSize int
	timeout   time.Duration
	cron      *cron.Cron
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOfferExpiryJob creates the sweep. schedule is a six-field cron expression
// with seconds; an empty one means DefaultOfferExpirySchedule.
func NewOfferExpiryJob(handler ExpireOffersHandler, schedule string, batchSize int, logger *zap.Logger) *OfferExpiryJob {
	if schedule == "" {
		schedule = DefaultOfferExpirySchedule
	}
	if batchSize <= 0 {
		batchSize = commands.DefaultExpireBatchSize
	}

	logger = logger.With(zap.String("component", "offer_expiry_job"))
	ctx, cancel := context.WithCancel(context.Background())

	return &OfferExpiryJob{
		handler:   handler,
		schedule:  schedule,
		batchSize: batchSize,
		timeout:   30 * time.Second,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start schedules the sweep.
func (j *OfferExpiryJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunOnce(j.ctx); err != nil && j.ctx.Err() == nil {
			j.logger.Error("offer expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("offer expiry job started", zap.String("schedule", j.schedule))
	return nil
}

// RunOnce performs one sweep and returns how many offers it expired.
func (j *OfferExpiryJob) RunOnce(ctx context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	cmd, err := commands.NewExpireOffersCommand(j.batchSize)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	return j.handler.Handle(ctx, cmd)
}

// Stop cancels a running sweep and waits for it to return.
func (j *OfferExpiryJob) Stop() {
	j.cancel()
	<-j.cron.Stop().Done()
	j.logger.Info("offer expiry job stopped")
}
