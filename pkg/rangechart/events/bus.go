package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrBusClosed is returned when publishing on a closed Bus.
var ErrBusClosed = errors.New("event bus closed")

// Handler receives an event published on a subscribed topic.
type Handler func(ctx context.Context, event any)

type subscription struct {
	handler Handler
	active  atomic.Bool
}

// Bus is an in-process, synchronous Publisher. Handlers run on the
// publishing goroutine in subscription order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]*subscription
	closed bool
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]*subscription)}
}

// Subscribe registers h for topic. The returned cancel function is
// idempotent; once it returns, h is never called again.
func (b *Bus) Subscribe(topic string, h Handler) (cancel func()) {
	s := &subscription{handler: h}
	s.active.Store(true)

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.active.Store(false)
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[topic]
			for i, other := range list {
				if other == s {
					b.subs[topic] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers event to every handler subscribed to topic.
func (b *Bus) Publish(ctx context.Context, topic string, event any) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrBusClosed
	}
	list := append([]*subscription(nil), b.subs[topic]...)
	b.mu.RUnlock()

	for _, s := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.active.Load() {
			s.handler(ctx, event)
		}
	}
	return nil
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close drops every subscription; later publishes fail with ErrBusClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, list := range b.subs {
		for _, s := range list {
			s.active.Store(false)
		}
	}
	b.subs = make(map[string][]*subscription)
	b.closed = true
	return nil
}
