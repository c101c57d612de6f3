package repository

import (
	"context"
	"sync/atomic"
	"time"

	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverCacheRepository serves from the primary cache and degrades to
// the fallback when the primary errors, retrying it after a minute.
type FailoverCacheRepository struct {
	primary   domain.CacheRepository
	fallback  domain.CacheRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	downSince atomic.Int64
}

func NewFailoverCacheRepository(primary, fallback domain.CacheRepository, logger *zerolog.Logger) *FailoverCacheRepository {
	return &FailoverCacheRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCacheRepository) active() domain.CacheRepository {
	if !r.isDown.Load() {
		return r.primary
	}
	if time.Since(time.Unix(r.downSince.Load(), 0)) > time.Minute {
		// Give the primary another chance.
		r.isDown.Store(false)
		return r.primary
	}
	return r.fallback
}

func (r *FailoverCacheRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	r.isDown.Store(true)
	r.downSince.Store(time.Now().Unix())
}

func (r *FailoverCacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	repo := r.active()
	val, ok, err := repo.Get(ctx, key)
	if err != nil && repo == r.primary {
		r.markDown(err)
		return r.fallback.Get(ctx, key)
	}
	return val, ok, err
}

func (r *FailoverCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	repo := r.active()
	err := repo.Set(ctx, key, value, ttl)
	if err != nil && repo == r.primary {
		r.markDown(err)
		return r.fallback.Set(ctx, key, value, ttl)
	}
	return err
}

func (r *FailoverCacheRepository) Invalidate(ctx context.Context, pattern string) error {
	// Invalidation goes to both sides so a recovered primary cannot
	// serve entries dropped while it was down.
	var firstErr error
	if err := r.primary.Invalidate(ctx, pattern); err != nil {
		r.markDown(err)
		firstErr = err
	}
	if err := r.fallback.Invalidate(ctx, pattern); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
