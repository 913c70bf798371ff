package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ThrottledFetcher wraps a fetch function so repeated calls within the
// interval serve a cached result instead of re-issuing the network
// call. A failed live fetch with a cache present returns the stale
// cached value and only logs the error; the very first failure, with
// nothing cached yet, propagates.
type ThrottledFetcher[T any] struct {
	name     string
	interval time.Duration
	fetch    func(ctx context.Context) (T, error)
	logger   *zap.Logger

	mu        sync.Mutex
	cached    T
	hasCached bool
	lastFetch time.Time
	timeNow   func() time.Time // for testing
}

func NewThrottledFetcher[T any](name string, interval time.Duration, fetch func(ctx context.Context) (T, error), logger *zap.Logger) *ThrottledFetcher[T] {
	return &ThrottledFetcher[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		logger:   logger,
		timeNow:  time.Now,
	}
}

func (f *ThrottledFetcher[T]) Get(ctx context.Context) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.timeNow()
	if f.hasCached && now.Sub(f.lastFetch) <= f.interval {
		return f.cached, nil
	}

	value, err := f.fetch(ctx)
	if err != nil {
		if f.hasCached {
			f.logger.Warn("fetch failed, serving stale cached value",
				zap.String("fetcher", f.name), zap.Error(err))
			return f.cached, nil
		}
		var zero T
		return zero, err
	}

	f.cached = value
	f.hasCached = true
	f.lastFetch = now
	return value, nil
}
