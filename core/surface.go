package core

import (
	"sync"

	"pkt.systems/workbench/schema"
)

// Surface is an editing surface tracked by the registry. Exactly two
// variants exist: the transient preview surface and permanent surfaces.
// Kind discriminates them; callers use IsPreview rather than type
// assertions.
type Surface interface {
	ID() schema.SurfaceID
	Kind() schema.SurfaceKind
	IsPreview() bool
	Resource() schema.Resource
	Title() string
	Disposed() bool
	Dispose()
	// OnDispose registers a disposal observer. The returned cancel
	// removes the registration; all observers are dropped after the
	// surface is disposed, so dangling callbacks cannot fire twice.
	OnDispose(fn func()) (cancel func())
	Snapshot() schema.SurfaceSnapshot
}

type baseSurface struct {
	id    schema.SurfaceID
	kind  schema.SurfaceKind
	title string

	mu         sync.Mutex
	resource   schema.Resource
	disposed   bool
	nextObs    int
	disposeObs map[int]func()
}

func (b *baseSurface) ID() schema.SurfaceID     { return b.id }
func (b *baseSurface) Kind() schema.SurfaceKind { return b.kind }
func (b *baseSurface) IsPreview() bool          { return b.kind == schema.KindPreview }

func (b *baseSurface) Resource() schema.Resource {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resource
}

func (b *baseSurface) Title() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.title
}

func (b *baseSurface) Disposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

func (b *baseSurface) OnDispose(fn func()) func() {
	b.mu.Lock()
	if b.disposed || fn == nil {
		b.mu.Unlock()
		return func() {}
	}
	if b.disposeObs == nil {
		b.disposeObs = make(map[int]func())
	}
	key := b.nextObs
	b.nextObs++
	b.disposeObs[key] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.disposeObs, key)
		b.mu.Unlock()
	}
}

// markDisposed flips the disposed flag and returns the observers to
// fire, or nil when already disposed.
func (b *baseSurface) markDisposed() []func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return nil
	}
	b.disposed = true
	obs := make([]func(), 0, len(b.disposeObs))
	for _, fn := range b.disposeObs {
		obs = append(obs, fn)
	}
	b.disposeObs = nil
	return obs
}

// PermanentSurface is an editing surface with no preview semantics.
// Once created it never reverts to a preview.
type PermanentSurface struct {
	baseSurface
}

func newPermanentSurface(resource schema.Resource, title string) *PermanentSurface {
	return &PermanentSurface{baseSurface{
		id:       schema.SurfaceID(newID()),
		kind:     schema.KindPermanent,
		title:    title,
		resource: resource,
	}}
}

// Dispose destroys the surface and fires disposal observers once.
func (p *PermanentSurface) Dispose() {
	for _, fn := range p.markDisposed() {
		fn()
	}
}

// Snapshot returns a transport-friendly view of the surface.
func (p *PermanentSurface) Snapshot() schema.SurfaceSnapshot {
	return schema.SurfaceSnapshot{
		ID:       p.ID(),
		Kind:     p.Kind(),
		Resource: p.Resource(),
		Title:    p.Title(),
	}
}

// PinEvent is emitted when promotion of a preview is requested. Child
// is the detached permanent-capable surface to re-parent.
type PinEvent struct {
	Surface *PreviewSurface
	Child   Surface
}

// PreviewSurface wraps exactly one permanent-capable child surface at a
// time. Its identity is stable across content replacement; its resource
// follows the child's.
type PreviewSurface struct {
	baseSurface

	childMu sync.Mutex
	child   Surface
	pinObs  map[int]func(PinEvent)
	nextPin int
}

func newPreviewSurface(child Surface) *PreviewSurface {
	return &PreviewSurface{
		baseSurface: baseSurface{
			id:       schema.SurfaceID(newID()),
			kind:     schema.KindPreview,
			title:    child.Title(),
			resource: child.Resource(),
		},
		child: child,
	}
}

// Child returns the currently hosted surface, nil after detachment.
func (p *PreviewSurface) Child() Surface {
	p.childMu.Lock()
	defer p.childMu.Unlock()
	return p.child
}

// ReplaceChild swaps the hosted surface in place and returns the prior
// child, which the caller owns from then on.
func (p *PreviewSurface) ReplaceChild(child Surface) (Surface, error) {
	if p.Disposed() {
		return nil, schema.ErrSurfaceDisposed
	}
	p.childMu.Lock()
	old := p.child
	p.child = child
	p.childMu.Unlock()
	p.mu.Lock()
	p.resource = child.Resource()
	p.title = child.Title()
	p.mu.Unlock()
	return old, nil
}

// DetachChild removes and returns the hosted surface without disposing
// it. Used by promotion to transfer ownership.
func (p *PreviewSurface) DetachChild() Surface {
	p.childMu.Lock()
	defer p.childMu.Unlock()
	child := p.child
	p.child = nil
	return child
}

// OnPin registers a promotion observer.
func (p *PreviewSurface) OnPin(fn func(PinEvent)) func() {
	p.childMu.Lock()
	if p.pinObs == nil {
		p.pinObs = make(map[int]func(PinEvent))
	}
	key := p.nextPin
	p.nextPin++
	p.pinObs[key] = fn
	p.childMu.Unlock()
	return func() {
		p.childMu.Lock()
		delete(p.pinObs, key)
		p.childMu.Unlock()
	}
}

// Pin signals that the user wants to keep the current content open.
func (p *PreviewSurface) Pin() error {
	if p.Disposed() {
		return schema.ErrSurfaceDisposed
	}
	p.childMu.Lock()
	child := p.child
	obs := make([]func(PinEvent), 0, len(p.pinObs))
	for _, fn := range p.pinObs {
		obs = append(obs, fn)
	}
	p.childMu.Unlock()
	event := PinEvent{Surface: p, Child: child}
	for _, fn := range obs {
		fn(event)
	}
	return nil
}

// Dispose destroys the preview. A child still attached at this point is
// owned by the preview and is disposed with it; promotion detaches the
// child first.
func (p *PreviewSurface) Dispose() {
	obs := p.markDisposed()
	if obs == nil {
		return
	}
	p.childMu.Lock()
	child := p.child
	p.child = nil
	p.pinObs = nil
	p.childMu.Unlock()
	if child != nil {
		child.Dispose()
	}
	for _, fn := range obs {
		fn()
	}
}

// Snapshot returns a transport-friendly view of the preview.
func (p *PreviewSurface) Snapshot() schema.SurfaceSnapshot {
	snap := schema.SurfaceSnapshot{
		ID:       p.ID(),
		Kind:     p.Kind(),
		Resource: p.Resource(),
		Title:    p.Title(),
	}
	if child := p.Child(); child != nil {
		snap.Child = child.ID()
	}
	return snap
}
