package inmemory

import (
	"context"
	"slices"
	"sync"
	"time"

	"barefoot/internal/model"
)

type entry struct {
	posts     []model.Post
	expiresAt time.Time
}

// PostListCache is a process-local listing cache.
type PostListCache struct {
	mu      sync.RWMutex
	gen     uint64
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewPostListCache(ttl time.Duration) *PostListCache {
	return &PostListCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *PostListCache) Generation(_ context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.gen, nil
}

func (c *PostListCache) Get(_ context.Context, key string) ([]model.Post, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || (c.ttl > 0 && c.now().After(e.expiresAt)) {
		return nil, false, nil
	}
	return slices.Clone(e.posts), true, nil
}

func (c *PostListCache) Set(_ context.Context, key string, posts []model.Post) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		posts:     slices.Clone(posts),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *PostListCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	clear(c.entries)
	return nil
}
