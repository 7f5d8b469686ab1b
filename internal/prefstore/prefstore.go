package prefstore

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/workbench/schema"
)

// Store holds workbench preferences and notifies subscribers of
// changes. Change callbacks run synchronously on the goroutine calling
// Set, outside the store lock.
type Store struct {
	log pslog.Logger

	mu      sync.Mutex
	values  map[schema.PrefKey]string
	subs    map[int]func(schema.PrefEvent)
	nextSub int
}

// New constructs a preference store seeded with the given values.
func New(seed map[schema.PrefKey]string, logger pslog.Logger) *Store {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	values := make(map[schema.PrefKey]string, len(seed))
	for key, value := range seed {
		values[key] = value
	}
	return &Store{
		log:    logger,
		values: values,
		subs:   make(map[int]func(schema.PrefEvent)),
	}
}

// Get returns the raw value for the key.
func (s *Store) Get(key schema.PrefKey) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

// Bool parses the key as a boolean, returning fallback when unset or
// unparsable.
func (s *Store) Bool(key schema.PrefKey, fallback bool) bool {
	raw, ok := s.Get(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return parsed
}

// Set stores the value and notifies subscribers when it changed.
func (s *Store) Set(key schema.PrefKey, value string) {
	s.mu.Lock()
	if current, ok := s.values[key]; ok && current == value {
		s.mu.Unlock()
		return
	}
	s.values[key] = value
	subs := make([]func(schema.PrefEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	s.log.Debug("preference updated", "key", key, "value", value)
	event := schema.PrefEvent{Key: key, NewValue: value}
	for _, fn := range subs {
		fn(event)
	}
}

// Subscribe registers a change observer and returns its cancel.
func (s *Store) Subscribe(fn func(schema.PrefEvent)) func() {
	s.mu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, key)
		s.mu.Unlock()
	}
}
