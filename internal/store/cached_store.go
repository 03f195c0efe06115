package store

import (
	"context"
	"fmt"

	"github.com/shardviz/shardviz/internal/snapshot"
	"golang.org/x/sync/singleflight"
)

// CachedStore wraps a Store with a read-through cache. Concurrent requests
// for the same (run, step) collapse into a single underlying read; cached
// entries are immutable once inserted.
type CachedStore struct {
	inner Store
	cache Cache
	group singleflight.Group
}

// NewCachedStore wraps inner with the given cache. A nil cache returns
// inner unchanged.
func NewCachedStore(inner Store, cache Cache) Store {
	if cache == nil {
		return inner
	}
	return &CachedStore{inner: inner, cache: cache}
}

func stepKey(run RunID, t int) string {
	return fmt.Sprintf("%s/%s/%d", run.Test, run.Folder, t)
}

// LoadStep serves from cache when possible. Errors are not cached: a missing
// step may appear once the upstream run grows.
func (s *CachedStore) LoadStep(ctx context.Context, run RunID, t int) (*snapshot.SimulationStep, error) {
	key := stepKey(run, t)

	if step, ok := s.cache.Get(ctx, key); ok {
		return step, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Double-check under the flight: a concurrent caller may have
		// populated the cache between Get and Do.
		if step, ok := s.cache.Get(ctx, key); ok {
			return step, nil
		}

		step, err := s.inner.LoadStep(ctx, run, t)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, key, step)
		return step, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*snapshot.SimulationStep), nil
}

// ListRuns delegates to the underlying store: run discovery must see newly
// appended runs immediately.
func (s *CachedStore) ListRuns(ctx context.Context) ([]RunInfo, error) {
	return s.inner.ListRuns(ctx)
}

// StepCount delegates to the underlying store.
func (s *CachedStore) StepCount(ctx context.Context, run RunID) (int, error) {
	return s.inner.StepCount(ctx, run)
}
