package core

import (
	"context"
	"sync"
)

// slot is a single-assignment future for the tracked preview surface.
// It doubles as the coordinator's cooperative mutex: an operation swaps
// in a pending slot before mutating preview state, so later operations
// queue behind it by awaiting the predecessor. Every installed pending
// slot must be settled on all exit paths or subsequent opens deadlock.
type slot struct {
	done chan struct{}
	once sync.Once
	val  *PreviewSurface
	err  error
}

func newPendingSlot() *slot {
	return &slot{done: make(chan struct{})}
}

func resolvedSlot(ps *PreviewSurface) *slot {
	s := newPendingSlot()
	s.resolve(ps)
	return s
}

func (s *slot) resolve(ps *PreviewSurface) {
	s.once.Do(func() {
		s.val = ps
		close(s.done)
	})
}

func (s *slot) reject(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}

// await blocks until the slot settles or the context ends. A rejected
// slot reports its error; callers serializing behind a failed operation
// treat that as an empty slot and proceed.
func (s *slot) await(ctx context.Context) (*PreviewSurface, error) {
	select {
	case <-s.done:
		return s.val, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// peek returns the settled value without blocking.
func (s *slot) peek() (*PreviewSurface, bool) {
	select {
	case <-s.done:
		return s.val, s.err == nil
	default:
		return nil, false
	}
}
