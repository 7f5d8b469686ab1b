package eventbus

import (
	"testing"
	"time"

	"pkt.systems/workbench/schema"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	event := schema.SurfaceEvent{
		Type:    schema.SurfaceCreated,
		Surface: schema.SurfaceSnapshot{ID: "surface-1", Resource: "/a.txt"},
	}
	bus.OnSurfaceEvent(event)

	select {
	case got := <-ch:
		if got.Type != EventSurface {
			t.Fatalf("expected surface event, got %v", got.Type)
		}
		if got.Surface.Type != event.Type || got.Surface.Surface.ID != event.Surface.ID {
			t.Fatalf("unexpected payload: %+v", got.Surface)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for event")
	}
}

func TestPrefEventsDelivered(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.OnPrefEvent(schema.PrefEvent{Key: schema.PrefPreviewEnabled, NewValue: "false"})

	select {
	case got := <-ch:
		if got.Type != EventPref || got.Pref.Key != schema.PrefPreviewEnabled {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for event")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel to be closed")
	}
}

func TestPublishDoesNotBlockWhenFull(t *testing.T) {
	bus := New(nil)
	bus.depth = 1
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.OnSurfaceEvent(schema.SurfaceEvent{Type: schema.SurfaceCreated})
	done := make(chan struct{})
	go func() {
		bus.OnSurfaceEvent(schema.SurfaceEvent{Type: schema.SurfaceDisposed})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on full subscriber")
	}
	if got := <-ch; got.Surface.Type != schema.SurfaceCreated {
		t.Fatalf("expected first event retained, got %+v", got.Surface)
	}
}

func TestCloseDropsSubscribers(t *testing.T) {
	bus := New(nil)
	ch, cancel := bus.Subscribe()
	bus.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected channel closed by Close")
	}
	cancel()
	bus.OnSurfaceEvent(schema.SurfaceEvent{Type: schema.SurfaceCreated})
}
