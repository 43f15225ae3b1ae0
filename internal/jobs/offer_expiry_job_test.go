package jobs_test

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockExpireOffersHandler struct{ mock.Mock }

func (m *MockExpireOffersHandler) Handle(ctx context.Context, cmd commands.ExpireOffersCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

type MockJob struct{ mock.Mock }

func (m *MockJob) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockJob) Stop() {
	m.Called()
}

func TestOfferExpiryJob_RunOnce(t *testing.T) {
	t.Run("should sweep with the configured batch size", func(t *testing.T) {
		handler := new(MockExpireOffersHandler)
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ExpireOffersCommand) bool {
			return cmd.Limit() == 25
		})).Return(3, nil)

		job := jobs.NewOfferExpiryJob(handler, "", 25, zap.NewNop())
		n, err := job.RunOnce(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, n)
		handler.AssertExpectations(t)
	})

	t.Run("should fall back to the default batch size", func(t *testing.T) {
		handler := new(MockExpireOffersHandler)
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ExpireOffersCommand) bool {
			return cmd.Limit() == commands.DefaultExpireBatchSize
		})).Return(0, nil)

		_, err := jobs.NewOfferExpiryJob(handler, "", 0, zap.NewNop()).RunOnce(context.Background())
		require.NoError(t, err)
		handler.AssertExpectations(t)
	})

	t.Run("should return handler errors", func(t *testing.T) {
		sweepErr := errors.New("database unavailable")
		handler := new(MockExpireOffersHandler)
		handler.On("Handle", mock.Anything, mock.Anything).Return(0, sweepErr)

		_, err := jobs.NewOfferExpiryJob(handler, "", 10, zap.NewNop()).RunOnce(context.Background())
		assert.ErrorIs(t, err, sweepErr)
	})
}

func TestOfferExpiryJob_Start(t *testing.T) {
	t.Run("should reject an invalid schedule", func(t *testing.T) {
		job := jobs.NewOfferExpiryJob(new(MockExpireOffersHandler), "every now and then", 10, zap.NewNop())
		assert.Error(t, job.Start())
	})

	t.Run("should start and stop", func(t *testing.T) {
		job := jobs.NewOfferExpiryJob(new(MockExpireOffersHandler), "0 0 0 1 1 *", 10, zap.NewNop())
		require.NoError(t, job.Start())
		job.Stop()
	})
}

func TestJobManager(t *testing.T) {
	t.Run("should start in order and stop in reverse", func(t *testing.T) {
		first, second := new(MockJob), new(MockJob)
		mock.InOrder(
			first.On("Start").Return(nil),
			second.On("Start").Return(nil),
			second.On("Stop"),
			first.On("Stop"),
		)

		manager := jobs.NewJobManager(zap.NewNop(), first, second)
		require.NoError(t, manager.StartAll())
		manager.StopAll()

		first.AssertExpectations(t)
		second.AssertExpectations(t)
	})

	t.Run("should stop started jobs when a later one fails", func(t *testing.T) {
		first, second := new(MockJob), new(MockJob)
		first.On("Start").Return(nil)
		first.On("Stop")
		second.On("Start").Return(errors.New("bad schedule"))

		err := jobs.NewJobManager(zap.NewNop(), first, second).StartAll()
		require.Error(t, err)

		first.AssertCalled(t, "Stop")
		second.AssertNotCalled(t, "Stop")
	})
}
