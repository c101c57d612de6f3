package repository

import (
	"context"
	"path"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCacheRepository is the in-process fallback cache.
type MemoryCacheRepository struct {
	entries sync.Map
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{}
}

func (r *MemoryCacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := r.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := val.(memoryEntry)
	if time.Now().After(entry.expiresAt) {
		r.entries.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (r *MemoryCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.entries.Store(key, memoryEntry{value: value, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (r *MemoryCacheRepository) Invalidate(ctx context.Context, pattern string) error {
	r.entries.Range(func(key, _ any) bool {
		if matched, _ := path.Match(pattern, key.(string)); matched {
			r.entries.Delete(key)
		}
		return true
	})
	return nil
}
