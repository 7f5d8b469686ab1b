package core

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/workbench/internal/logx"
	"pkt.systems/workbench/schema"
)

// Coordinator owns the single preview slot. It mediates every request
// to view a resource, deciding whether to reuse the existing preview,
// replace its content in place, create a new preview, or defer to an
// already-open permanent surface. It also scores itself as an opener
// against the built-in permanent opener.
//
// Concurrency discipline: the slot future serializes opens (each open
// swaps in a pending slot and awaits its predecessor before touching
// preview state), while the tracked field holds the authoritative
// current preview so that promotions and disposals, which cannot await,
// stay consistent with queued opens. The transition mutex makes
// promotion and content replacement atomic relative to each other.
type Coordinator struct {
	deps Deps
	log  pslog.Logger

	mu      sync.Mutex
	slotRef *slot
	tracked *PreviewSurface

	// transMu serializes promotion and replacement transitions.
	transMu sync.Mutex

	unsubCreated func()
	unsubPrefs   func()
}

// NewCoordinator constructs the preview slot coordinator and attaches
// it to the surface factory's creation feed.
func NewCoordinator(deps Deps) (*Coordinator, error) {
	if deps.Surfaces == nil {
		return nil, errors.New("surface service is required")
	}
	if deps.Layout == nil {
		return nil, errors.New("layout service is required")
	}
	if deps.Logger == nil {
		deps.Logger = pslog.Ctx(context.Background())
	}
	c := &Coordinator{
		deps:    deps,
		log:     deps.Logger,
		slotRef: resolvedSlot(nil),
	}
	if obs, ok := deps.Surfaces.(interface {
		OnSurfaceCreated(fn func(Surface)) func()
	}); ok {
		c.unsubCreated = obs.OnSurfaceCreated(c.surfaceCreated)
	}
	if deps.Prefs != nil {
		c.unsubPrefs = deps.Prefs.Subscribe(c.prefChanged)
	}
	return c, nil
}

// Close detaches the coordinator and disposes the tracked preview.
func (c *Coordinator) Close() {
	if c.unsubCreated != nil {
		c.unsubCreated()
	}
	if c.unsubPrefs != nil {
		c.unsubPrefs()
	}
	if cur := c.Tracked(); cur != nil {
		cur.Dispose()
	}
}

// Tracked returns the current preview surface, nil when the slot is
// empty or still pending.
func (c *Coordinator) Tracked() *PreviewSurface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracked
}

// CanHandle scores this coordinator's claim on an open request. It
// outranks the built-in opener when preview mode was explicitly
// requested or when the resource equals or nests under the resolved
// tracked preview's resource; otherwise it does not participate.
func (c *Coordinator) CanHandle(resource schema.Resource, opts schema.OpenOptions) schema.OpenPriority {
	if resource == "" || !c.previewEnabled() {
		return schema.PriorityNone
	}
	if opts.Preview {
		return schema.PriorityPreview
	}
	if cur := c.Tracked(); cur != nil && !cur.Disposed() {
		if cur.Resource().Contains(resource) {
			return schema.PriorityPreview
		}
	}
	return schema.PriorityNone
}

// CreateOptionsFor describes how this coordinator would materialize the
// resource without opening it.
func (c *Coordinator) CreateOptionsFor(resource schema.Resource, opts schema.OpenOptions) schema.CreationDescriptor {
	opts.Preview = true
	opts.Mode = schema.OpenModePreserve
	return schema.CreationDescriptor{Resource: resource, Kind: schema.KindPreview, Options: opts}
}

// Open shows the resource through the preview slot. Collaborator
// failures propagate unchanged; the installed slot placeholder settles
// on every exit path.
func (c *Coordinator) Open(ctx context.Context, resource schema.Resource, opts schema.OpenOptions) (surface Surface, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if resource == "" {
		return nil, schema.ErrInvalidResource
	}
	log := logx.WithResource(logx.Ctx(ctx), resource)
	if !c.previewEnabled() {
		log.Debug("open preview bypassed", "reason", "preview disabled")
		return c.openPermanent(ctx, resource, opts)
	}

	// Force a non-destructive open mode.
	opts.Mode = schema.OpenModePreserve

	// Install a pending placeholder so concurrent callers serialize
	// behind this open instead of racing it.
	c.mu.Lock()
	predecessor := c.slotRef
	pending := newPendingSlot()
	c.slotRef = pending
	c.mu.Unlock()
	settled := false
	defer func() {
		if settled {
			return
		}
		if err != nil {
			pending.reject(err)
		} else {
			pending.resolve(c.Tracked())
		}
	}()

	if _, aerr := predecessor.await(ctx); aerr != nil {
		// A predecessor rejection means no preview; only our own
		// context ending aborts this open.
		if ctx.Err() != nil {
			err = ctx.Err()
			return nil, err
		}
		_ = aerr
	}
	prev := c.Tracked()

	// An already-open permanent surface wins over the preview.
	if perm := c.deps.Surfaces.GetByResource(resource, schema.KindPermanent); perm != nil {
		hosted := prev != nil && !prev.Disposed() && prev.Child() != nil && prev.Child().ID() == perm.ID()
		if hosted && !opts.Preview {
			if perr := c.promote(prev); perr != nil {
				err = perr
				return nil, perr
			}
			prev = nil
			hosted = false
		}
		// This call did not touch the preview slot.
		pending.resolve(prev)
		settled = true
		revealID := perm.ID()
		if hosted {
			revealID = prev.ID()
		} else if _, _, placed := c.deps.Layout.GroupOf(perm.ID()); !placed {
			if lerr := c.deps.Layout.AddSurface(perm, schema.Placement{Group: opts.Group}); lerr != nil {
				return nil, lerr
			}
		}
		if lerr := c.deps.Layout.RevealSurface(revealID); lerr != nil {
			return nil, lerr
		}
		if hosted {
			log.Debug("open resolved to hosted preview", "surface", prev.ID())
			return prev, nil
		}
		log.Debug("open resolved to permanent surface", "surface", perm.ID())
		return perm, nil
	}

	if prev != nil && !prev.Disposed() {
		// Reuse the preview: replace its child content in place.
		rerr := c.replaceInPreview(ctx, prev, resource)
		if rerr == nil {
			surface = prev
		} else if errors.Is(rerr, schema.ErrSurfaceDisposed) {
			prev = nil
		} else {
			err = rerr
			return nil, rerr
		}
	}
	if surface == nil {
		ps, cerr := c.createPreview(ctx, resource, opts)
		if cerr != nil {
			err = cerr
			return nil, cerr
		}
		surface = ps
	}
	if ps, ok := surface.(*PreviewSurface); ok {
		pending.resolve(ps)
		settled = true
	}

	// Record the resource with the permanent-surface service; the
	// hosted child satisfies the lookup, so no duplicate appears.
	if _, terr := c.deps.Surfaces.GetOrCreateByResource(ctx, resource); terr != nil {
		return nil, terr
	}
	if lerr := c.deps.Layout.RevealSurface(surface.ID()); lerr != nil {
		return nil, lerr
	}
	log.Info("open complete", "surface", surface.ID(), "kind", surface.Kind())
	return surface, nil
}

func (c *Coordinator) createPreview(ctx context.Context, resource schema.Resource, opts schema.OpenOptions) (*PreviewSurface, error) {
	copts := opts
	copts.Preview = true
	created, err := c.deps.Surfaces.Open(ctx, resource, copts)
	if err != nil {
		return nil, err
	}
	ps, ok := created.(*PreviewSurface)
	if !ok {
		return nil, schema.ErrNotPreview
	}
	if _, _, placed := c.deps.Layout.GroupOf(ps.ID()); !placed {
		if err := c.deps.Layout.AddSurface(ps, schema.Placement{Group: opts.Group}); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

func (c *Coordinator) replaceInPreview(ctx context.Context, prev *PreviewSurface, resource schema.Resource) error {
	c.transMu.Lock()
	defer c.transMu.Unlock()
	if prev.Disposed() {
		return schema.ErrSurfaceDisposed
	}
	log := logx.WithSurface(ctx, prev.ID())
	ctx = logx.ContextWithSurfaceLogger(ctx, log, prev.ID())
	child, err := c.deps.Surfaces.GetOrCreateByResource(ctx, resource)
	if err != nil {
		return err
	}
	old, err := prev.ReplaceChild(child)
	if err != nil {
		return err
	}
	if old != nil && old != child {
		old.Dispose()
	}
	c.emit(schema.SurfaceEvent{Type: schema.SurfaceReplaced, Surface: prev.Snapshot()})
	logx.WithResource(log, resource).Debug("preview content replaced")
	return nil
}

// surfaceCreated is the registry's creation hook. A new preview
// immediately becomes the tracked one; any different live preview is
// force-promoted so two previews never coexist, even transiently.
func (c *Coordinator) surfaceCreated(s Surface) {
	ps, ok := s.(*PreviewSurface)
	if !ok || !s.IsPreview() {
		return
	}
	c.mu.Lock()
	prev := c.tracked
	if prev == ps {
		c.mu.Unlock()
		return
	}
	c.tracked = ps
	c.mu.Unlock()

	// Observer registrations are dropped by the surface itself on
	// disposal, so these never dangle.
	ps.OnPin(func(ev PinEvent) {
		if perr := c.promote(ev.Surface); perr != nil {
			c.log.Warn("preview promotion failed", "surface", ev.Surface.ID(), "err", perr)
		}
	})
	ps.OnDispose(func() { c.clearTracked(ps) })

	c.log.Debug("preview tracked", "surface", ps.ID(), "resource", ps.Resource())
	if prev != nil && !prev.Disposed() {
		c.log.Warn("stale preview displaced", "surface", prev.ID())
		if perr := c.promote(prev); perr != nil {
			c.log.Warn("stale preview promotion failed", "surface", prev.ID(), "err", perr)
		}
	}
}

// Promote runs the promotion transition for the given preview, or the
// tracked one when ps is nil.
func (c *Coordinator) Promote(ps *PreviewSurface) error {
	if ps == nil {
		ps = c.Tracked()
	}
	if ps == nil {
		return schema.ErrSurfaceNotFound
	}
	return c.promote(ps)
}

// promote converts the preview's content into a standalone permanent
// surface at the preview's former layout position and destroys the
// preview. The child is inserted before the preview is destroyed, so no
// observer sees the promoted resource without a surface showing it.
func (c *Coordinator) promote(ps *PreviewSurface) error {
	c.transMu.Lock()
	defer c.transMu.Unlock()
	if ps == nil || ps.Disposed() {
		return schema.ErrSurfaceDisposed
	}
	previewSnap := ps.Snapshot()
	// Detach under the transition mutex rather than trusting the pin
	// event's captured child: a replacement may have swapped it since.
	child := ps.DetachChild()
	if child == nil {
		// Nothing to re-parent; just clear the slot.
		ps.Dispose()
		return nil
	}
	placement := schema.Placement{}
	if _, kind, ok := c.deps.Layout.GroupOf(ps.ID()); ok && kind == schema.GroupOrdered {
		placement.AdjacentTo = ps.ID()
	}
	if err := c.deps.Layout.AddSurface(child, placement); err != nil {
		// Transition never completed; hand the child back.
		if _, rerr := ps.ReplaceChild(child); rerr != nil {
			child.Dispose()
		}
		return err
	}
	ps.Dispose()
	if err := c.deps.Layout.ActivateSurface(child.ID()); err != nil {
		c.log.Warn("promoted surface activation failed", "surface", child.ID(), "err", err)
	}
	childSnap := child.Snapshot()
	c.emit(schema.SurfaceEvent{Type: schema.SurfacePromoted, Surface: previewSnap, Promoted: &childSnap})
	c.log.Info("preview promoted", "surface", previewSnap.ID, "promoted", child.ID(), "resource", child.Resource())
	return nil
}

func (c *Coordinator) prefChanged(ev schema.PrefEvent) {
	if ev.Key != schema.PrefPreviewEnabled {
		return
	}
	if c.previewEnabled() {
		return
	}
	// Turning the feature off never leaves a transient preview behind.
	if cur := c.Tracked(); cur != nil && !cur.Disposed() {
		c.log.Info("preview disabled, promoting tracked preview", "surface", cur.ID())
		if err := c.promote(cur); err != nil {
			c.log.Warn("preview promotion on disable failed", "surface", cur.ID(), "err", err)
		}
	}
}

func (c *Coordinator) previewEnabled() bool {
	if c.deps.Prefs == nil {
		return true
	}
	return c.deps.Prefs.Bool(schema.PrefPreviewEnabled, true)
}

func (c *Coordinator) openPermanent(ctx context.Context, resource schema.Resource, opts schema.OpenOptions) (Surface, error) {
	s, err := c.deps.Surfaces.GetOrCreateByResource(ctx, resource)
	if err != nil {
		return nil, err
	}
	if _, _, placed := c.deps.Layout.GroupOf(s.ID()); !placed {
		if err := c.deps.Layout.AddSurface(s, schema.Placement{Group: opts.Group}); err != nil {
			return nil, err
		}
	}
	if err := c.deps.Layout.RevealSurface(s.ID()); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Coordinator) clearTracked(ps *PreviewSurface) {
	c.mu.Lock()
	if c.tracked == ps {
		c.tracked = nil
	}
	c.mu.Unlock()
}

func (c *Coordinator) emit(event schema.SurfaceEvent) {
	if c.deps.Events == nil {
		return
	}
	c.deps.Events.OnSurfaceEvent(event)
}
