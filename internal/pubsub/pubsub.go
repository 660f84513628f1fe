// internal/pubsub/pubsub.go
//
// Small publish/subscribe primitives used by the game engine.
//
//   - Value:       holds the latest T. New subscribers get the current value
//                  immediately; slow subscribers only ever see the newest one.
//   - Broadcaster: fans each published T out to the subscribers present at
//                  that moment. Nothing is queued for absent or late
//                  subscribers, and a full subscriber buffer drops the item.
//
// Subscriptions end when the supplied context is cancelled; the channel is
// then closed.

package pubsub

import (
	"context"
	"sync"
)

// Value is a concurrency-safe holder of the latest T.
type Value[T any] struct {
	mu   sync.RWMutex
	cur  T
	subs map[chan T]struct{}
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[chan T]struct{})}
}

// Load returns the current value.
func (v *Value[T]) Load() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cur
}

// Store replaces the current value and hands it to every subscriber,
// overwriting anything a subscriber has not read yet.
func (v *Value[T]) Store(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = x
	for ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- x
	}
}

// Subscribe returns a channel that yields the current value and then every
// stored value until ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)
	v.mu.Lock()
	ch <- v.cur
	v.subs[ch] = struct{}{}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, ch)
		close(ch)
		v.mu.Unlock()
	}()
	return ch
}

// Broadcaster delivers each published item at most once to each current
// subscriber, in publish order.
type Broadcaster[T any] struct {
	mu     sync.Mutex
	subs   map[chan T]struct{}
	buffer int
}

// NewBroadcaster returns a Broadcaster whose subscribers buffer up to
// buffer undelivered items.
func NewBroadcaster[T any](buffer int) *Broadcaster[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Broadcaster[T]{subs: make(map[chan T]struct{}), buffer: buffer}
}

// Publish sends x to every subscriber with room for it and reports how many
// received it.
func (b *Broadcaster[T]) Publish(x T) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for ch := range b.subs {
		select {
		case ch <- x:
			n++
		default:
		}
	}
	return n
}

// Subscribe registers a new subscriber until ctx is done.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch
}

// Subscribers reports the number of active subscribers.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
