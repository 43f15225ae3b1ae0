package availability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"dispatch/internal/adapters/out/availability"
	"dispatch/internal/core/domain/model/request"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPOracle(t *testing.T) {
	t.Run("should query the directory with request attributes", func(t *testing.T) {
		var query atomic.Value
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/providers/availability", r.URL.Path)
			query.Store(r.URL.Query())
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"available": true}`))
		}))
		defer srv.Close()

		oracle, err := availability.NewHTTPOracle(availability.HTTPOptions{BaseURL: srv.URL}, zap.NewNop())
		require.NoError(t, err)

		weight := decimal.NewFromInt(150)
		s, err := request.NewSnapshot(request.Params{
			Kind:           request.KindMove,
			Priority:       request.PriorityExpress,
			TotalWeightKg:  &weight,
			PickupPostcode: "sw1a 1aa",
		})
		require.NoError(t, err)

		available, err := oracle.AreQualifiedProvidersAvailable(context.Background(), s)
		require.NoError(t, err)
		assert.True(t, available)

		q := query.Load().(url.Values)
		assert.Equal(t, []string{"move"}, q["kind"])
		assert.Equal(t, []string{"express"}, q["priority"])
		assert.Equal(t, []string{"SW"}, q["area"])
		assert.Equal(t, []string{"SW1A 1AA"}, q["postcode"])
		assert.Equal(t, []string{"150"}, q["weight_kg"])
	})

	t.Run("should retry server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"available": false}`))
		}))
		defer srv.Close()

		oracle, err := availability.NewHTTPOracle(availability.HTTPOptions{BaseURL: srv.URL, MaxRetries: 3}, zap.NewNop())
		require.NoError(t, err)

		available, err := oracle.AreQualifiedProvidersAvailable(context.Background(), snapshot(t, request.KindMove, ""))
		require.NoError(t, err)
		assert.False(t, available)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("should not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		oracle, err := availability.NewHTTPOracle(availability.HTTPOptions{BaseURL: srv.URL}, zap.NewNop())
		require.NoError(t, err)

		_, err = oracle.AreQualifiedProvidersAvailable(context.Background(), snapshot(t, request.KindMove, ""))
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("should reject a response without the available field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		oracle, err := availability.NewHTTPOracle(availability.HTTPOptions{BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
		require.NoError(t, err)

		_, err = oracle.AreQualifiedProvidersAvailable(context.Background(), snapshot(t, request.KindMove, ""))
		assert.Error(t, err)
	})

	t.Run("should reject an invalid base url", func(t *testing.T) {
		_, err := availability.NewHTTPOracle(availability.HTTPOptions{BaseURL: "not a url"}, zap.NewNop())
		assert.Error(t, err)
	})
}

func TestStatic(t *testing.T) {
	available, err := availability.Static(true).AreQualifiedProvidersAvailable(context.Background(), request.Snapshot{})
	require.NoError(t, err)
	assert.True(t, available)
}
