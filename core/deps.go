package core

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/workbench/schema"
)

// SurfaceService creates and tracks editing surfaces by resource.
type SurfaceService interface {
	// Open materializes a surface for the resource. Options with
	// Preview set produce a preview surface wrapping a permanent-capable
	// child; otherwise a permanent surface is returned.
	Open(ctx context.Context, resource schema.Resource, opts schema.OpenOptions) (Surface, error)
	// GetByResource returns the live surface of the given kind showing
	// the resource, or nil.
	GetByResource(resource schema.Resource, kind schema.SurfaceKind) Surface
	// GetOrCreateByResource returns the permanent surface for the
	// resource, creating one when none exists.
	GetOrCreateByResource(ctx context.Context, resource schema.Resource) (Surface, error)
}

// LayoutService places, reveals, and focuses surfaces in layout groups.
type LayoutService interface {
	AddSurface(s Surface, placement schema.Placement) error
	RevealSurface(id schema.SurfaceID) error
	ActivateSurface(id schema.SurfaceID) error
	// GroupOf reports the group hosting the surface and its kind.
	GroupOf(id schema.SurfaceID) (schema.GroupID, schema.GroupKind, bool)
}

// PrefSource exposes workbench preferences and change notification.
type PrefSource interface {
	Bool(key schema.PrefKey, fallback bool) bool
	Subscribe(fn func(schema.PrefEvent)) (cancel func())
}

// EventSink receives surface lifecycle events from the coordinator.
type EventSink interface {
	OnSurfaceEvent(event schema.SurfaceEvent)
}

// Deps captures the coordinator's collaborators.
type Deps struct {
	Surfaces SurfaceService
	Layout   LayoutService
	Prefs    PrefSource
	Events   EventSink
	Logger   pslog.Logger
}
