package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/workbench/schema"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventSurface carries surface lifecycle updates.
	EventSurface EventType = "surface"
	// EventPref carries preference changes.
	EventPref EventType = "pref"
)

// Event represents a workbench event delivered to subscribers.
type Event struct {
	Type    EventType
	Surface schema.SurfaceEvent
	Pref    schema.PrefEvent
}

// Bus fans workbench events out to subscribers. Slow subscribers drop
// events rather than blocking the workbench.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns a channel + cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		_, ok := b.subs[ch]
		if ok {
			delete(b.subs, ch)
		}
		b.mu.Unlock()
		if ok {
			close(ch)
			if b.log != nil {
				b.log.Debug("eventbus unsubscribe")
			}
		}
	}
}

// Close drops and closes all subscriber channels.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := b.subs
	b.subs = make(map[chan Event]struct{})
	b.mu.Unlock()
	for sub := range subs {
		close(sub)
	}
}

// OnSurfaceEvent publishes a surface lifecycle event.
func (b *Bus) OnSurfaceEvent(event schema.SurfaceEvent) {
	b.publish(Event{Type: EventSurface, Surface: event})
}

// OnPrefEvent publishes a preference change event.
func (b *Bus) OnPrefEvent(event schema.PrefEvent) {
	b.publish(Event{Type: EventPref, Pref: event})
}

func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	subs := make([]chan Event, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 && b.log != nil {
		b.log.Trace("eventbus dropped", "count", dropped)
	}
}
