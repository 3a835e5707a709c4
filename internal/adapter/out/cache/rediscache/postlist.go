package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"barefoot/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const (
	defaultPrefix = "barefoot:posts:list"
	DefaultTTL    = 10 * time.Minute
)

// PostListCache stores listing pages as JSON. Callers scope keys with the
// generation counter, and Invalidate increments it, so pages written by a
// read that raced a mutation land in a generation nobody reads again and
// expire with the TTL.
type PostListCache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	cb     *gobreaker.CircuitBreaker

	// stale is set when an invalidation could not reach Redis. The generation
	// stays unavailable until a later invalidation succeeds.
	stale atomic.Bool
}

func NewPostListCache(rdb redis.UniversalClient, ttl time.Duration) *PostListCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostListCache{
		rdb:    rdb,
		prefix: defaultPrefix,
		ttl:    ttl,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "post-list-cache",
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}),
	}
}

func (c *PostListCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *PostListCache) genKey() string {
	return c.prefix + ":gen"
}

// Generation returns the current generation. A missing counter is generation zero.
func (c *PostListCache) Generation(ctx context.Context) (uint64, error) {
	if c.stale.Load() {
		if err := c.Invalidate(ctx); err != nil {
			return 0, fmt.Errorf("pending invalidation: %w", err)
		}
	}

	res, err := c.cb.Execute(func() (interface{}, error) {
		gen, err := c.rdb.Get(ctx, c.genKey()).Uint64()
		if errors.Is(err, redis.Nil) {
			return uint64(0), nil
		}
		return gen, err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get cache generation: %w", err)
	}
	return res.(uint64), nil
}

func (c *PostListCache) Get(ctx context.Context, key string) ([]model.Post, bool, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cache: %w", err)
	}

	data, _ := res.([]byte)
	if data == nil {
		return nil, false, nil
	}

	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, true, nil
}

func (c *PostListCache) Set(ctx context.Context, key string, posts []model.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.rdb.Set(ctx, c.key(key), data, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Invalidate moves every reader to a new generation.
func (c *PostListCache) Invalidate(ctx context.Context) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return c.rdb.Incr(ctx, c.genKey()).Result()
	})
	if err != nil {
		c.stale.Store(true)
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	c.stale.Store(false)
	return nil
}
