package core

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/workbench/schema"
)

// Opener is the generic opener protocol. The selector polls CanHandle
// across registered openers and dispatches to the highest scorer; a
// zero score opts out of the request.
type Opener interface {
	CanHandle(resource schema.Resource, opts schema.OpenOptions) schema.OpenPriority
	Open(ctx context.Context, resource schema.Resource, opts schema.OpenOptions) (Surface, error)
	CreateOptionsFor(resource schema.Resource, opts schema.OpenOptions) schema.CreationDescriptor
}

// Selector dispatches open requests to the best-scoring opener.
type Selector struct {
	log pslog.Logger

	mu      sync.Mutex
	openers []Opener
}

// NewSelector constructs an opener selector.
func NewSelector(logger pslog.Logger) *Selector {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Selector{log: logger}
}

// Register adds an opener and returns its deregistration.
func (s *Selector) Register(o Opener) func() {
	s.mu.Lock()
	s.openers = append(s.openers, o)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, current := range s.openers {
			if current == o {
				s.openers = append(s.openers[:i], s.openers[i+1:]...)
				return
			}
		}
	}
}

// Open scores all openers and dispatches to the winner. Registration
// order breaks ties.
func (s *Selector) Open(ctx context.Context, resource schema.Resource, opts schema.OpenOptions) (Surface, error) {
	if resource == "" {
		return nil, schema.ErrInvalidResource
	}
	s.mu.Lock()
	openers := append([]Opener(nil), s.openers...)
	s.mu.Unlock()
	var best Opener
	bestScore := schema.PriorityNone
	for _, o := range openers {
		if score := o.CanHandle(resource, opts); score > bestScore {
			best = o
			bestScore = score
		}
	}
	if best == nil {
		return nil, schema.ErrNoOpener
	}
	s.log.Trace("opener selected", "resource", resource, "score", bestScore)
	return best.Open(ctx, resource, opts)
}

// permanentOpener is the built-in default: open the resource as a
// permanent surface in the default (or requested) group.
type permanentOpener struct {
	surfaces SurfaceService
	layout   LayoutService
	log      pslog.Logger
}

// NewPermanentOpener constructs the built-in permanent-surface opener.
func NewPermanentOpener(surfaces SurfaceService, layout LayoutService, logger pslog.Logger) Opener {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &permanentOpener{surfaces: surfaces, layout: layout, log: logger}
}

func (o *permanentOpener) CanHandle(resource schema.Resource, opts schema.OpenOptions) schema.OpenPriority {
	if resource == "" {
		return schema.PriorityNone
	}
	return schema.PriorityBuiltin
}

func (o *permanentOpener) CreateOptionsFor(resource schema.Resource, opts schema.OpenOptions) schema.CreationDescriptor {
	opts.Preview = false
	opts.Mode = schema.OpenModePreserve
	return schema.CreationDescriptor{Resource: resource, Kind: schema.KindPermanent, Options: opts}
}

func (o *permanentOpener) Open(ctx context.Context, resource schema.Resource, opts schema.OpenOptions) (Surface, error) {
	s, err := o.surfaces.GetOrCreateByResource(ctx, resource)
	if err != nil {
		return nil, err
	}
	if _, _, placed := o.layout.GroupOf(s.ID()); !placed {
		if err := o.layout.AddSurface(s, schema.Placement{Group: opts.Group}); err != nil {
			return nil, err
		}
	}
	if err := o.layout.RevealSurface(s.ID()); err != nil {
		return nil, err
	}
	return s, nil
}
