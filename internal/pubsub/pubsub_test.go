package pubsub

import (
	"context"
	"testing"
	"time"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestValueSubscribeGetsCurrent(t *testing.T) {
	v := NewValue(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := v.Subscribe(ctx)
	if got := recv(t, ch); got != 1 {
		t.Fatalf("initial = %d, want 1", got)
	}
	v.Store(2)
	if got := recv(t, ch); got != 2 {
		t.Fatalf("after store = %d, want 2", got)
	}
	if v.Load() != 2 {
		t.Fatalf("Load = %d", v.Load())
	}
}

func TestValueConflatesForSlowSubscriber(t *testing.T) {
	v := NewValue(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := v.Subscribe(ctx)
	for i := 1; i <= 5; i++ {
		v.Store(i)
	}
	if got := recv(t, ch); got != 5 {
		t.Fatalf("got %d, want latest value 5", got)
	}
	select {
	case x := <-ch:
		t.Fatalf("unexpected extra value %d", x)
	default:
	}
}

func TestValueCancelClosesChannel(t *testing.T) {
	v := NewValue("a")
	ctx, cancel := context.WithCancel(context.Background())
	ch := v.Subscribe(ctx)
	recv(t, ch)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				v.Store("b") // must not panic on a closed subscriber
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestBroadcasterDropsWithoutSubscribers(t *testing.T) {
	b := NewBroadcaster[string](4)
	if n := b.Publish("lost"); n != 0 {
		t.Fatalf("delivered to %d subscribers, want 0", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := b.Subscribe(ctx)
	b.Publish("one")
	b.Publish("two")
	if got := recv(t, ch); got != "one" {
		t.Fatalf("first = %q", got)
	}
	if got := recv(t, ch); got != "two" {
		t.Fatalf("second = %q", got)
	}
	select {
	case x := <-ch:
		t.Fatalf("replayed %q", x)
	default:
	}
}

func TestBroadcasterFanOut(t *testing.T) {
	b := NewBroadcaster[int](1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, c := b.Subscribe(ctx), b.Subscribe(ctx)
	if b.Subscribers() != 2 {
		t.Fatalf("Subscribers = %d", b.Subscribers())
	}
	if n := b.Publish(7); n != 2 {
		t.Fatalf("delivered %d, want 2", n)
	}
	// buffers are full now; the next item is dropped, not blocked on
	if n := b.Publish(8); n != 0 {
		t.Fatalf("delivered %d to full buffers", n)
	}
	if recv(t, a) != 7 || recv(t, c) != 7 {
		t.Fatal("fan-out mismatch")
	}
}
