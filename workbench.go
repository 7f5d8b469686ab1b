package workbench

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/workbench/core"
	"pkt.systems/workbench/internal/eventbus"
	"pkt.systems/workbench/internal/logx"
	"pkt.systems/workbench/internal/persist"
	"pkt.systems/workbench/internal/prefstore"
	"pkt.systems/workbench/schema"
)

// Config configures the workbench compositor.
type Config struct {
	Workbench schema.WorkbenchConfig
	// Prefs seeds the preference store.
	Prefs map[schema.PrefKey]string
}

// Deps captures dependencies supplied by the embedding application.
type Deps struct {
	Logger pslog.Logger
	// Events receives surface lifecycle events in addition to any
	// enabled event bus.
	Events core.EventSink
}

// Option toggles compositor components.
type Option func(*options)

type options struct {
	enableEventBus    bool
	enablePersistence bool
}

// WithEventBus enables the subscribable event bus.
func WithEventBus() Option {
	return func(o *options) { o.enableEventBus = true }
}

// WithPersistence enables layout persistence under the state directory.
func WithPersistence() Option {
	return func(o *options) { o.enablePersistence = true }
}

// Workbench composes the surface registry, shell layout, preference
// store, and the preview slot coordinator behind a request/response
// service surface.
type Workbench struct {
	cfg      schema.WorkbenchConfig
	log      pslog.Logger
	registry *core.Registry
	shell    *core.Shell
	prefs    *prefstore.Store
	selector *core.Selector
	coord    *core.Coordinator
	bus      *eventbus.Bus
	store    *persist.Store
	sink     core.EventSink

	cancels []func()

	mu     sync.Mutex
	closed bool
}

// New constructs a workbench from the given configuration.
func New(cfg Config, deps Deps, opts ...Option) (*Workbench, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	normalized, err := schema.NormalizeWorkbenchConfig(cfg.Workbench)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}

	seed := make(map[schema.PrefKey]string, len(cfg.Prefs)+1)
	for k, v := range cfg.Prefs {
		seed[k] = v
	}
	if _, ok := seed[schema.PrefPreviewEnabled]; !ok {
		seed[schema.PrefPreviewEnabled] = strconv.FormatBool(!normalized.DisablePreview)
	}
	prefs := prefstore.New(seed, logger)

	var bus *eventbus.Bus
	if o.enableEventBus {
		bus = eventbus.New(logger)
	}
	sinks := make([]core.EventSink, 0, 2)
	if deps.Events != nil {
		sinks = append(sinks, deps.Events)
	}
	if bus != nil {
		sinks = append(sinks, bus)
	}
	var sink core.EventSink
	switch len(sinks) {
	case 0:
	case 1:
		sink = sinks[0]
	default:
		sink = eventFanout{sinks: sinks}
	}

	w := &Workbench{
		cfg:      normalized,
		log:      logger,
		registry: core.NewRegistry(normalized, logger),
		shell:    core.NewShell(normalized, logger),
		prefs:    prefs,
		bus:      bus,
		sink:     sink,
	}

	// The compositor's creation hook registers first so lifecycle
	// events fire before the coordinator starts tracking.
	w.cancels = append(w.cancels, w.registry.OnSurfaceCreated(w.surfaceCreated))

	coord, err := core.NewCoordinator(core.Deps{
		Surfaces: w.registry,
		Layout:   w.shell,
		Prefs:    prefs,
		Events:   sink,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	w.coord = coord

	w.selector = core.NewSelector(logger)
	w.cancels = append(w.cancels,
		w.selector.Register(core.NewPermanentOpener(w.registry, w.shell, logger)),
		w.selector.Register(coord),
	)

	if bus != nil {
		w.cancels = append(w.cancels, prefs.Subscribe(bus.OnPrefEvent))
	}

	if o.enablePersistence {
		store, err := persist.NewStoreWithLogger(normalized.StateDir, logger)
		if err != nil {
			coord.Close()
			return nil, err
		}
		w.store = store
		if err := w.restoreLayout(context.Background()); err != nil {
			logger.Warn("layout restore failed", "err", err)
		}
	}
	return w, nil
}

// Close detaches the coordinator and persists the final layout.
func (w *Workbench) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()
	for _, cancel := range w.cancels {
		cancel()
	}
	w.coord.Close()
	w.persistLayout()
	if w.bus != nil {
		w.bus.Close()
	}
	w.log.Info("workbench closed")
	return nil
}

// Events returns a subscription to the workbench event bus. The bus
// must have been enabled with WithEventBus.
func (w *Workbench) Events() (<-chan eventbus.Event, func(), error) {
	if w.bus == nil {
		return nil, nil, errors.New("event bus not enabled")
	}
	ch, cancel := w.bus.Subscribe()
	return ch, cancel, nil
}

// Coordinator exposes the preview slot coordinator.
func (w *Workbench) Coordinator() *core.Coordinator { return w.coord }

// OpenResource shows a resource, routing through the registered opener
// with the highest claim on the request.
func (w *Workbench) OpenResource(ctx context.Context, req schema.OpenRequest) (schema.OpenResponse, error) {
	if err := w.guard(); err != nil {
		return schema.OpenResponse{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	resource, err := schema.NewResource(string(req.Resource))
	if err != nil {
		return schema.OpenResponse{}, err
	}
	log := logx.WithResource(pslog.Ctx(ctx), resource)
	surface, err := w.selector.Open(ctx, resource, req.Options)
	if err != nil {
		log.Warn("open failed", "err", err)
		return schema.OpenResponse{}, err
	}
	snap := w.snapshot(surface)
	w.emit(schema.SurfaceEvent{Type: schema.SurfaceRevealed, Surface: snap})
	w.persistLayout()
	return schema.OpenResponse{Surface: snap}, nil
}

// ListSurfaces reports placed surfaces in layout order.
func (w *Workbench) ListSurfaces(ctx context.Context, req schema.ListSurfacesRequest) (schema.ListSurfacesResponse, error) {
	if err := w.guard(); err != nil {
		return schema.ListSurfacesResponse{}, err
	}
	groups := w.shell.Groups()
	if req.Group != "" {
		if _, ok := w.shell.KindOf(req.Group); !ok {
			return schema.ListSurfacesResponse{}, schema.ErrGroupNotFound
		}
		groups = []schema.GroupID{req.Group}
	}
	resp := schema.ListSurfacesResponse{Active: w.shell.Active()}
	for _, gid := range groups {
		for _, id := range w.shell.SurfacesIn(gid) {
			s := w.registry.Get(id)
			if s == nil {
				continue
			}
			resp.Surfaces = append(resp.Surfaces, w.snapshot(s))
		}
	}
	if cur := w.coord.Tracked(); cur != nil && !cur.Disposed() {
		resp.Preview = cur.ID()
	}
	return resp, nil
}

// PinSurface promotes a preview into a standalone permanent surface.
// An empty surface ID targets the tracked preview.
func (w *Workbench) PinSurface(ctx context.Context, req schema.PinSurfaceRequest) (schema.PinSurfaceResponse, error) {
	if err := w.guard(); err != nil {
		return schema.PinSurfaceResponse{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var ps *core.PreviewSurface
	if req.SurfaceID == "" {
		ps = w.coord.Tracked()
		if ps == nil {
			return schema.PinSurfaceResponse{}, schema.ErrSurfaceNotFound
		}
	} else {
		s := w.registry.Get(req.SurfaceID)
		if s == nil {
			return schema.PinSurfaceResponse{}, schema.ErrSurfaceNotFound
		}
		var ok bool
		if ps, ok = s.(*core.PreviewSurface); !ok {
			return schema.PinSurfaceResponse{}, schema.ErrNotPreview
		}
	}
	resource := ps.Resource()
	log := logx.WithSurface(ctx, ps.ID())
	if err := w.coord.Promote(ps); err != nil {
		log.Warn("pin failed", "err", err)
		return schema.PinSurfaceResponse{}, err
	}
	w.persistLayout()
	perm := w.registry.GetByResource(resource, schema.KindPermanent)
	if perm == nil {
		return schema.PinSurfaceResponse{}, schema.ErrSurfaceNotFound
	}
	logx.WithResource(log, resource).Info("surface pinned", "promoted", perm.ID())
	return schema.PinSurfaceResponse{Surface: w.snapshot(perm)}, nil
}

// CloseSurface disposes a surface and removes it from the layout.
func (w *Workbench) CloseSurface(ctx context.Context, req schema.CloseSurfaceRequest) (schema.CloseSurfaceResponse, error) {
	if err := w.guard(); err != nil {
		return schema.CloseSurfaceResponse{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s := w.registry.Get(req.SurfaceID)
	if s == nil {
		return schema.CloseSurfaceResponse{}, schema.ErrSurfaceNotFound
	}
	snap := w.snapshot(s)
	s.Dispose()
	logx.WithSurface(ctx, snap.ID).Debug("surface closed", "resource", snap.Resource)
	return schema.CloseSurfaceResponse{Surface: snap}, nil
}

// ActivateSurface focuses a placed surface.
func (w *Workbench) ActivateSurface(ctx context.Context, req schema.ActivateSurfaceRequest) (schema.ActivateSurfaceResponse, error) {
	if err := w.guard(); err != nil {
		return schema.ActivateSurfaceResponse{}, err
	}
	s := w.registry.Get(req.SurfaceID)
	if s == nil {
		return schema.ActivateSurfaceResponse{}, schema.ErrSurfaceNotFound
	}
	if err := w.shell.ActivateSurface(req.SurfaceID); err != nil {
		return schema.ActivateSurfaceResponse{}, err
	}
	w.emit(schema.SurfaceEvent{Type: schema.SurfaceActivated, Surface: w.snapshot(s)})
	w.persistLayout()
	return schema.ActivateSurfaceResponse{Surface: w.snapshot(s)}, nil
}

// SetPreference updates a workbench preference and notifies listeners.
func (w *Workbench) SetPreference(ctx context.Context, req schema.SetPreferenceRequest) (schema.SetPreferenceResponse, error) {
	if err := w.guard(); err != nil {
		return schema.SetPreferenceResponse{}, err
	}
	w.prefs.Set(req.Key, req.Value)
	return schema.SetPreferenceResponse{Key: req.Key, Value: req.Value}, nil
}

// Recent returns recently shown resources, most recent first.
func (w *Workbench) Recent() []schema.Resource {
	return w.registry.Recent()
}

func (w *Workbench) guard() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return schema.ErrWorkbenchClosed
	}
	return nil
}

// surfaceCreated is the registry's creation hook. It forwards
// lifecycle events and keeps the layout store in sync with disposals.
func (w *Workbench) surfaceCreated(s core.Surface) {
	w.emit(schema.SurfaceEvent{Type: schema.SurfaceCreated, Surface: s.Snapshot()})
	id := s.ID()
	s.OnDispose(func() {
		w.shell.RemoveSurface(id)
		w.emit(schema.SurfaceEvent{Type: schema.SurfaceDisposed, Surface: s.Snapshot()})
		w.persistLayout()
	})
}

func (w *Workbench) emit(event schema.SurfaceEvent) {
	if w.sink == nil {
		return
	}
	w.sink.OnSurfaceEvent(event)
}

// snapshot decorates a surface snapshot with layout placement.
func (w *Workbench) snapshot(s core.Surface) schema.SurfaceSnapshot {
	snap := s.Snapshot()
	if gid, _, ok := w.shell.GroupOf(s.ID()); ok {
		snap.Group = gid
	}
	snap.Active = w.shell.Active() == s.ID()
	return snap
}

func (w *Workbench) restoreLayout(ctx context.Context) error {
	snapshot, ok, err := w.store.Load()
	if err != nil || !ok {
		return err
	}
	for _, g := range snapshot.Groups {
		w.shell.AddGroup(g.ID, g.Kind)
		for _, rec := range g.Surfaces {
			s, err := w.registry.GetOrCreateByResource(ctx, rec.Resource)
			if err != nil {
				w.log.Warn("layout restore skipped surface", "resource", rec.Resource, "err", err)
				continue
			}
			if err := w.shell.AddSurface(s, schema.Placement{Group: g.ID}); err != nil {
				w.log.Warn("layout restore placement failed", "surface", s.ID(), "err", err)
			}
		}
	}
	if snapshot.Active != "" {
		if s := w.registry.GetByResource(snapshot.Active, schema.KindPermanent); s != nil {
			if err := w.shell.ActivateSurface(s.ID()); err != nil {
				w.log.Warn("layout restore activation failed", "surface", s.ID(), "err", err)
			}
		}
	}
	w.log.Info("layout restored", "groups", len(snapshot.Groups))
	return nil
}

// persistLayout snapshots the permanent layout. The preview surface is
// never written; it does not survive a restart.
func (w *Workbench) persistLayout() {
	if w.store == nil {
		return
	}
	var snapshot persist.LayoutSnapshot
	for _, gid := range w.shell.Groups() {
		kind, _ := w.shell.KindOf(gid)
		gs := persist.GroupSnapshot{ID: gid, Kind: kind}
		for _, id := range w.shell.SurfacesIn(gid) {
			s := w.registry.Get(id)
			if s == nil || s.IsPreview() {
				continue
			}
			gs.Surfaces = append(gs.Surfaces, persist.SurfaceRecord{
				ID:       s.ID(),
				Resource: s.Resource(),
				Title:    s.Title(),
			})
		}
		snapshot.Groups = append(snapshot.Groups, gs)
	}
	if active := w.registry.Get(w.shell.Active()); active != nil && !active.IsPreview() {
		snapshot.Active = active.Resource()
	}
	snapshot.Recent = w.registry.Recent()
	if err := w.store.Save(snapshot); err != nil {
		w.log.Warn("layout persist failed", "err", err)
	}
}
