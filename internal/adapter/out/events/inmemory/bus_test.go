package inmemory

import (
	"context"
	"testing"
	"time"

	"barefoot/internal/model"

	"github.com/stretchr/testify/require"
)

func TestPostEventBus_FanOut(t *testing.T) {
	t.Parallel()

	bus := New(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := bus.Subscribe(ctx)
	b := bus.Subscribe(ctx)
	require.Equal(t, 2, bus.Subscribers())

	ev := model.PostEvent{Type: model.PostCreated, Post: model.Post{ID: 1, Title: "t"}}
	require.NoError(t, bus.PublishPostEvent(context.Background(), ev))

	require.Equal(t, ev, <-a)
	require.Equal(t, ev, <-b)
}

func TestPostEventBus_DropsWhenFull(t *testing.T) {
	t.Parallel()

	bus := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := bus.Subscribe(ctx)
	first := model.PostEvent{Type: model.PostCreated, Post: model.Post{ID: 1}}
	second := model.PostEvent{Type: model.PostDeleted, Post: model.Post{ID: 1}}

	require.NoError(t, bus.PublishPostEvent(context.Background(), first))
	require.NoError(t, bus.PublishPostEvent(context.Background(), second))

	require.Equal(t, first, <-ch)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestPostEventBus_UnsubscribeOnCancel(t *testing.T) {
	t.Parallel()

	bus := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
	require.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
	require.NoError(t, bus.PublishPostEvent(context.Background(), model.PostEvent{Type: model.PostUpdated}))
}
