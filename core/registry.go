package core

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/workbench/schema"
)

const maxRecentResources = 50

// Registry creates and tracks editing surfaces. It is the surface
// factory behind the coordinator and implements SurfaceService.
type Registry struct {
	cfg schema.WorkbenchConfig
	log pslog.Logger

	mu       sync.Mutex
	surfaces map[schema.SurfaceID]Surface
	order    []schema.SurfaceID
	recent   []schema.Resource
	created  map[int]func(Surface)
	nextObs  int
}

// NewRegistry constructs a surface registry.
func NewRegistry(cfg schema.WorkbenchConfig, logger pslog.Logger) *Registry {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Registry{
		cfg:      cfg,
		log:      logger,
		surfaces: make(map[schema.SurfaceID]Surface),
		created:  make(map[int]func(Surface)),
	}
}

// OnSurfaceCreated registers an observer invoked synchronously for
// every surface the registry creates, preview children included.
func (r *Registry) OnSurfaceCreated(fn func(Surface)) func() {
	r.mu.Lock()
	key := r.nextObs
	r.nextObs++
	r.created[key] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.created, key)
		r.mu.Unlock()
	}
}

// Open materializes a surface for the resource. With opts.Preview set
// it creates a preview surface wrapping a fresh permanent-capable
// child; otherwise it reuses or creates a permanent surface.
func (r *Registry) Open(ctx context.Context, resource schema.Resource, opts schema.OpenOptions) (Surface, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if resource == "" {
		return nil, schema.ErrInvalidResource
	}
	log := pslog.Ctx(ctx).With("resource", resource)
	if !opts.Preview {
		return r.GetOrCreateByResource(ctx, resource)
	}
	child := newPermanentSurface(resource, r.title(resource))
	preview := newPreviewSurface(child)
	r.register(child)
	r.register(preview)
	log.Debug("registry preview opened", "surface", preview.ID(), "child", child.ID())
	r.notifyCreated(child)
	r.notifyCreated(preview)
	return preview, nil
}

// GetByResource returns the live surface of the given kind showing the
// resource, or nil. Preview children count as permanent surfaces.
func (r *Registry) GetByResource(resource schema.Resource, kind schema.SurfaceKind) Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		s := r.surfaces[id]
		if s == nil || s.Kind() != kind || s.Disposed() {
			continue
		}
		if s.Resource().Equal(resource) {
			return s
		}
	}
	return nil
}

// GetOrCreateByResource returns the permanent surface for the resource,
// creating one when none exists. A child hosted inside the preview
// satisfies the lookup, so opening a previewed resource never forks a
// second permanent surface.
func (r *Registry) GetOrCreateByResource(ctx context.Context, resource schema.Resource) (Surface, error) {
	if resource == "" {
		return nil, schema.ErrInvalidResource
	}
	if existing := r.GetByResource(resource, schema.KindPermanent); existing != nil {
		r.touch(resource)
		return existing, nil
	}
	s := newPermanentSurface(resource, r.title(resource))
	r.register(s)
	pslog.Ctx(ctx).Debug("registry surface created", "surface", s.ID(), "resource", resource)
	r.notifyCreated(s)
	return s, nil
}

// Get returns the surface by id, or nil.
func (r *Registry) Get(id schema.SurfaceID) Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surfaces[id]
}

// List returns live surfaces in creation order.
func (r *Registry) List() []Surface {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Surface, 0, len(r.order))
	for _, id := range r.order {
		if s := r.surfaces[id]; s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Recent returns resources in most-recently-opened order.
func (r *Registry) Recent() []schema.Resource {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]schema.Resource(nil), r.recent...)
}

func (r *Registry) register(s Surface) {
	r.mu.Lock()
	r.surfaces[s.ID()] = s
	r.order = append(r.order, s.ID())
	r.mu.Unlock()
	s.OnDispose(func() { r.remove(s.ID()) })
	r.touch(s.Resource())
}

func (r *Registry) remove(id schema.SurfaceID) {
	r.mu.Lock()
	delete(r.surfaces, id)
	for i, current := range r.order {
		if current == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	r.log.Trace("registry surface removed", "surface", id)
}

func (r *Registry) touch(resource schema.Resource) {
	if resource == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, current := range r.recent {
		if current == resource {
			r.recent = append(r.recent[:i], r.recent[i+1:]...)
			break
		}
	}
	r.recent = append([]schema.Resource{resource}, r.recent...)
	if len(r.recent) > maxRecentResources {
		r.recent = r.recent[:maxRecentResources]
	}
}

func (r *Registry) notifyCreated(s Surface) {
	r.mu.Lock()
	obs := make([]func(Surface), 0, len(r.created))
	for _, fn := range r.created {
		obs = append(obs, fn)
	}
	r.mu.Unlock()
	for _, fn := range obs {
		fn(s)
	}
}

func (r *Registry) title(resource schema.Resource) string {
	return formatTitle(resource.Base(), r.cfg.TitleMax, r.cfg.TitleSuffix)
}

func formatTitle(name string, max int, suffix string) string {
	if max <= 0 {
		return name
	}
	if len(name) <= max {
		return name
	}
	cut := max - len(suffix)
	if cut < 1 {
		return name[:max]
	}
	return name[:cut] + suffix
}
