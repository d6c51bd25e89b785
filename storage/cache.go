package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jerryola1/evergreen/domain"
)

type backend interface {
	FetchBusinesses(ctx context.Context) ([]domain.Business, error)
	UpdateContact(ctx context.Context, name string, upd domain.ContactUpdate) error
}

// Cache wraps a lead store with Redis-backed caching of the full list. The
// whole collection is one blob under one key; a successful contact update
// evicts it so the next fetch sees the write.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) FetchBusinesses(ctx context.Context) ([]domain.Business, error) {
	if businesses, ok := c.loadFromCache(ctx); ok {
		return businesses, nil
	}

	businesses, err := c.base.FetchBusinesses(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, businesses)
	return businesses, nil
}

func (c *Cache) UpdateContact(ctx context.Context, name string, upd domain.ContactUpdate) error {
	if err := c.base.UpdateContact(ctx, name, upd); err != nil {
		return err
	}

	c.Evict(ctx)
	return nil
}

// Evict drops the cached list. Called after writes and before forced reloads.
func (c *Cache) Evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, businessesCacheKey).Result()
}

func (c *Cache) loadFromCache(ctx context.Context) ([]domain.Business, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, businessesCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing store without failing.
			_ = c.redis.Del(ctx, businessesCacheKey).Err()
		}
		return nil, false
	}
	var businesses []domain.Business
	if err := json.Unmarshal(data, &businesses); err != nil {
		_ = c.redis.Del(ctx, businessesCacheKey).Err()
		return nil, false
	}
	return businesses, true
}

func (c *Cache) store(ctx context.Context, businesses []domain.Business) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(businesses)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, businessesCacheKey, data, c.ttl).Err()
}

const businessesCacheKey = "businesses:all"
