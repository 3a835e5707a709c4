package inmemory

import (
	"context"
	"testing"
	"time"

	"barefoot/internal/model"

	"github.com/stretchr/testify/require"
)

func TestPostListCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	c := NewPostListCache(time.Minute)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	posts := []model.Post{{ID: 1, Title: "t"}}
	require.NoError(t, c.Set(ctx, "k", posts))
	posts[0].Title = "mutated"

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "t", got[0].Title)

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok, _ = c.Get(ctx, "k")
	require.False(t, ok)

	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "k", posts))
	require.NoError(t, c.Invalidate(ctx))
	_, ok, _ = c.Get(ctx, "k")
	require.False(t, ok)
}

func TestPostListCache_Generation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := NewPostListCache(time.Minute)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	require.Zero(t, gen)

	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Invalidate(ctx))

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), gen)
}
