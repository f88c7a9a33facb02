// Package cache adds a Redis read-aside layer in front of a TokenStore.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jpco-admin/go-push-service/pkg/push"
)

// CacheClient defines the subset of Redis commands we need.
type CacheClient interface {
	// Get returns the value or a specific error if not found.
	Get(ctx context.Context, key string, dest interface{}) error
	// Set stores the value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Del removes the key.
	Del(ctx context.Context, key string) error
}

// CachedTokenStore is a decorator that adds read-aside caching to any
// TokenStore. Writes invalidate the cache so an unregister takes effect on
// the very next dispatch.
type CachedTokenStore struct {
	realStore push.TokenStore
	cache     CacheClient
	ttl       time.Duration
}

func NewCachedTokenStore(realStore push.TokenStore, cache CacheClient, ttl time.Duration) *CachedTokenStore {
	return &CachedTokenStore{
		realStore: realStore,
		cache:     cache,
		ttl:       ttl,
	}
}

// Get tries the cache first and falls back to the real store. ErrTokenNotFound
// is never cached: a register immediately after a miss must be visible to the
// next dispatch.
func (s *CachedTokenStore) Get(ctx context.Context, recipientID string) (push.DeviceTokenRecord, error) {
	key := s.cacheKey(recipientID)

	var cached push.DeviceTokenRecord
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	fresh, err := s.realStore.Get(ctx, recipientID)
	if err != nil {
		return push.DeviceTokenRecord{}, err
	}

	// Caching is an optimization, not a transaction. If Redis is down we just
	// serve from the real store.
	_ = s.cache.Set(ctx, key, fresh, s.ttl)

	return fresh, nil
}

func (s *CachedTokenStore) Set(ctx context.Context, recipientID, token string) error {
	if err := s.realStore.Set(ctx, recipientID, token); err != nil {
		return err
	}
	return s.invalidate(ctx, recipientID)
}

// Delete clears the cache even though the record is already gone from the
// real store, so stale tokens stop being served immediately.
func (s *CachedTokenStore) Delete(ctx context.Context, recipientID string) error {
	if err := s.realStore.Delete(ctx, recipientID); err != nil {
		return err
	}
	return s.invalidate(ctx, recipientID)
}

func (s *CachedTokenStore) invalidate(ctx context.Context, recipientID string) error {
	return s.cache.Del(ctx, s.cacheKey(recipientID))
}

func (s *CachedTokenStore) cacheKey(recipientID string) string {
	return fmt.Sprintf("push:token:%s", recipientID)
}
