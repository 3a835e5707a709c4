package inmemory

import (
	"context"
	"sync"

	"barefoot/internal/model"
)

const defaultBuffer = 64

// PostEventBus fans post events out to in-process subscribers.
// Slow subscribers miss events instead of blocking publishers.
type PostEventBus struct {
	mu   sync.RWMutex
	subs map[chan model.PostEvent]struct{}
	buf  int
}

func New(buf int) *PostEventBus {
	if buf <= 0 {
		buf = defaultBuffer
	}
	return &PostEventBus{
		subs: make(map[chan model.PostEvent]struct{}),
		buf:  buf,
	}
}

// Subscribe returns a channel of events that is closed once ctx is done.
func (b *PostEventBus) Subscribe(ctx context.Context) <-chan model.PostEvent {
	ch := make(chan model.PostEvent, b.buf)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

func (b *PostEventBus) PublishPostEvent(_ context.Context, event model.PostEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *PostEventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
