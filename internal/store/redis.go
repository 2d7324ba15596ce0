package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/benjaminschreck/go-clause/pkg/clause"
)

// DefaultCacheTTL is how long a cached record lives in Redis.
const DefaultCacheTTL = 10 * time.Minute

type redisCache struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *clause.Logger
}

// NewRedisCache wraps next with a read-through Redis cache. Puts go to next and
// then drop the cached copy. Redis failures are logged and never fail a call.
func NewRedisCache(next Store, client *redis.Client, ttl time.Duration, logger *clause.Logger) Store {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = clause.NopLogger()
	}
	return &redisCache{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *redisCache) key(id string) string {
	return fmt.Sprintf("template:%s", id)
}

func (c *redisCache) Get(ctx context.Context, id string) (*Template, error) {
	if t, err := c.cached(ctx, id); err != nil {
		c.logger.WithFields(clause.Fields{"id": id, "error": err}).Warn("Template cache read failed")
	} else if t != nil {
		return t, nil
	}

	t, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, t)
	return t, nil
}

func (c *redisCache) Put(ctx context.Context, id string, patch Patch) (*Template, error) {
	t, err := c.next.Put(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.logger.WithFields(clause.Fields{"id": id, "error": err}).Warn("Template cache invalidation failed")
	}
	return t, nil
}

// cached returns nil, nil on a cache miss.
func (c *redisCache) cached(ctx context.Context, id string) (*Template, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *redisCache) store(ctx context.Context, t *Template) {
	data, err := json.Marshal(t)
	if err == nil {
		err = c.client.Set(ctx, c.key(t.ID), data, c.ttl).Err()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.WithFields(clause.Fields{"id": t.ID, "error": err}).Warn("Template cache write failed")
	}
}
