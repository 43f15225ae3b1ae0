package availability_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dispatch/internal/adapters/out/availability"
	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOracle struct{ mock.Mock }

func (m *MockOracle) AreQualifiedProvidersAvailable(ctx context.Context, s request.Snapshot) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

func snapshot(t *testing.T, kind request.Kind, pickup string) request.Snapshot {
	t.Helper()
	s, err := request.NewSnapshot(request.Params{Kind: kind, PickupPostcode: pickup})
	require.NoError(t, err)
	return s
}

func TestCachedOracle(t *testing.T) {
	start := time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

	t.Run("should reuse the answer for the same area within the ttl", func(t *testing.T) {
		next := new(MockOracle)
		next.On("AreQualifiedProvidersAvailable", mock.Anything, mock.Anything).Return(true, nil).Once()
		manual := clock.NewManual(start)
		cache := availability.NewCachedOracle(next, time.Minute, manual, zap.NewNop())

		first, err := cache.AreQualifiedProvidersAvailable(context.Background(), snapshot(t, request.KindMove, "SW1A 1AA"))
		require.NoError(t, err)
		manual.Advance(59 * time.Second)
		second, err := cache.AreQualifiedProvidersAvailable(context.Background(), snapshot(t, request.KindMove, "SW19 2AB"))
		require.NoError(t, err)

		assert.True(t, first)
		assert.True(t, second)
		next.AssertExpectations(t)
	})

	t.Run("should refresh after the ttl", func(t *testing.T) {
		next := new(MockOracle)
		next.On("AreQualifiedProvidersAvailable", mock.Anything, mock.Anything).Return(true, nil).Once()
		next.On("AreQualifiedProvidersAvailable", mock.Anything, mock.Anything).Return(false, nil).Once()
		manual := clock.NewManual(start)
		cache := availability.NewCachedOracle(next, time.Minute, manual, zap.NewNop())
		s := snapshot(t, request.KindMove, "M1 1AE")

		first, err := cache.AreQualifiedProvidersAvailable(context.Background(), s)
		require.NoError(t, err)
		manual.Advance(time.Minute)
		second, err := cache.AreQualifiedProvidersAvailable(context.Background(), s)
		require.NoError(t, err)

		assert.True(t, first)
		assert.False(t, second)
		next.AssertExpectations(t)
	})

	t.Run("should key by kind and area", func(t *testing.T) {
		next := new(MockOracle)
		next.On("AreQualifiedProvidersAvailable", mock.Anything, mock.Anything).Return(true, nil).Times(3)
		cache := availability.NewCachedOracle(next, time.Hour, clock.NewManual(start), zap.NewNop())

		for _, s := range []request.Snapshot{
			snapshot(t, request.KindMove, "SW1A 1AA"),
			snapshot(t, request.KindWastePickup, "SW1A 1AA"),
			snapshot(t, request.KindMove, "EH1 1YZ"),
			snapshot(t, request.KindMove, "SW3 4AA"),
		} {
			_, err := cache.AreQualifiedProvidersAvailable(context.Background(), s)
			require.NoError(t, err)
		}

		next.AssertExpectations(t)
	})

	t.Run("should not cache failures", func(t *testing.T) {
		next := new(MockOracle)
		next.On("AreQualifiedProvidersAvailable", mock.Anything, mock.Anything).Return(false, errors.New("timeout")).Once()
		next.On("AreQualifiedProvidersAvailable", mock.Anything, mock.Anything).Return(true, nil).Once()
		cache := availability.NewCachedOracle(next, time.Hour, clock.NewManual(start), zap.NewNop())
		s := snapshot(t, request.KindMove, "")

		_, err := cache.AreQualifiedProvidersAvailable(context.Background(), s)
		require.Error(t, err)
		available, err := cache.AreQualifiedProvidersAvailable(context.Background(), s)
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("should drop answers on invalidate", func(t *testing.T) {
		next := new(MockOracle)
		next.On("AreQualifiedProvidersAvailable", mock.Anything, mock.Anything).Return(true, nil).Twice()
		cache := availability.NewCachedOracle(next, time.Hour, clock.NewManual(start), zap.NewNop())
		s := snapshot(t, request.KindMove, "SW1A 1AA")

		_, err := cache.AreQualifiedProvidersAvailable(context.Background(), s)
		require.NoError(t, err)
		cache.Invalidate()
		_, err = cache.AreQualifiedProvidersAvailable(context.Background(), s)
		require.NoError(t, err)

		next.AssertExpectations(t)
	})
}

type slowOracle struct {
	calls   atomic.Int32
	release chan struct{}
}

func (o *slowOracle) AreQualifiedProvidersAvailable(context.Context, request.Snapshot) (bool, error) {
	o.calls.Add(1)
	<-o.release
	return true, nil
}

func TestCachedOracle_ConcurrentMissesShareOneCall(t *testing.T) {
	next := &slowOracle{release: make(chan struct{})}
	cache := availability.NewCachedOracle(next, time.Hour, clock.System(), zap.NewNop())
	s := snapshot(t, request.KindMove, "SW1A 1AA")

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			available, err := cache.AreQualifiedProvidersAvailable(context.Background(), s)
			assert.NoError(t, err)
			assert.True(t, available)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
}
