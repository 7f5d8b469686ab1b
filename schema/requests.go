package schema

// Surface navigation.

// OpenOptions tune an open request.
type OpenOptions struct {
	// Preview explicitly requests the preview surface.
	Preview bool
	// Mode controls treatment of existing surface state. Open paths
	// normalize this to OpenModePreserve.
	Mode OpenMode
	// Group targets a specific layout group for newly placed surfaces.
	Group GroupID
}

// CreationDescriptor describes how an opener would materialize a
// surface for a resource without opening it.
type CreationDescriptor struct {
	Resource Resource
	Kind     SurfaceKind
	Options  OpenOptions
}

// OpenRequest asks the workbench to show a resource.
type OpenRequest struct {
	Resource Resource
	Options  OpenOptions
}

// OpenResponse reports the surface now showing the resource.
type OpenResponse struct {
	Surface SurfaceSnapshot
}

// Surface lifecycle.

// ListSurfacesRequest lists live surfaces.
type ListSurfacesRequest struct {
	Group GroupID
}

// ListSurfacesResponse reports surfaces plus the active one.
type ListSurfacesResponse struct {
	Surfaces []SurfaceSnapshot
	Active   SurfaceID
	Preview  SurfaceID
}

// PinSurfaceRequest promotes the preview surface to a permanent one.
// SurfaceID may be empty to target the tracked preview.
type PinSurfaceRequest struct {
	SurfaceID SurfaceID
}

// PinSurfaceResponse reports the promoted permanent surface.
type PinSurfaceResponse struct {
	Surface SurfaceSnapshot
}

// CloseSurfaceRequest disposes a surface.
type CloseSurfaceRequest struct {
	SurfaceID SurfaceID
}

// CloseSurfaceResponse reports the closed surface snapshot.
type CloseSurfaceResponse struct {
	Surface SurfaceSnapshot
}

// ActivateSurfaceRequest focuses a surface.
type ActivateSurfaceRequest struct {
	SurfaceID SurfaceID
}

// ActivateSurfaceResponse reports the activated surface snapshot.
type ActivateSurfaceResponse struct {
	Surface SurfaceSnapshot
}

// Preferences.

// SetPreferenceRequest updates a workbench preference.
type SetPreferenceRequest struct {
	Key   PrefKey
	Value string
}

// SetPreferenceResponse reports the applied value.
type SetPreferenceResponse struct {
	Key   PrefKey
	Value string
}
