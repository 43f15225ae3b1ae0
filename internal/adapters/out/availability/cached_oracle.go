// Package availability answers whether qualified providers exist for a request.
// HTTPOracle asks the provider directory service; CachedOracle memoizes answers
// per pickup postcode area for a fixed time.
package availability

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/request"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/clock"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// unknownArea keys requests without a pickup postcode.
const unknownArea = "-"

type cacheEntry struct {
	available bool
	expiresAt time.Time
}

// CachedOracle wraps another oracle with a TTL cache keyed by the request kind
// and the pickup postcode area. Concurrent misses for one key share a single
// upstream call. Errors are not cached.
type CachedOracle struct {
	next   ports.ProviderEligibilityOracle
	ttl    time.Duration
	clock  clock.Clock
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

func NewCachedOracle(next ports.ProviderEligibilityOracle, ttl time.Duration, c clock.Clock, logger *zap.Logger) *CachedOracle {
	return &CachedOracle{
		next:    next,
		ttl:     ttl,
		clock:   c,
		logger:  logger.With(zap.String("component", "availability_cache")),
		entries: make(map[string]cacheEntry),
	}
}

func (o *CachedOracle) AreQualifiedProvidersAvailable(ctx context.Context, snapshot request.Snapshot) (bool, error) {
	key := cacheKey(snapshot)

	if available, ok := o.lookup(key); ok {
		return available, nil
	}

	result, err, shared := o.group.Do(key, func() (any, error) {
		available, err := o.next.AreQualifiedProvidersAvailable(ctx, snapshot)
		if err != nil {
			return false, err
		}
		o.store(key, available)
		return available, nil
	})
	if err != nil {
		o.logger.Warn("provider availability lookup failed", zap.String("key", key), zap.Error(err))
		return false, err
	}

	o.logger.Debug("provider availability refreshed",
		zap.String("key", key),
		zap.Bool("available", result.(bool)),
		zap.Bool("shared", shared),
	)
	return result.(bool), nil
}

// Invalidate drops every cached answer.
func (o *CachedOracle) Invalidate() {
	o.mu.Lock()
	defer o.mu.Unlock()
	clear(o.entries)
}

func (o *CachedOracle) lookup(key string) (bool, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.entries[key]
	if !ok {
		return false, false
	}
	if !o.clock.Now().Before(entry.expiresAt) {
		delete(o.entries, key)
		return false, false
	}
	return entry.available, true
}

func (o *CachedOracle) store(key string, available bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries[key] = cacheEntry{available: available, expiresAt: o.clock.Now().Add(o.ttl)}
}

func cacheKey(snapshot request.Snapshot) string {
	area := unknownArea
	if postcode, ok := snapshot.PickupPostcode(); ok {
		area = postcode.Area()
	}
	return snapshot.Kind().String() + "/" + area
}
