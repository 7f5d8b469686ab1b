package schema

// SurfaceID identifies an editing surface.
type SurfaceID string

// GroupID identifies a layout group.
type GroupID string

// SurfaceKind discriminates surface variants.
type SurfaceKind string

const (
	// KindPreview marks the transient, reusable preview surface.
	KindPreview SurfaceKind = "preview"
	// KindPermanent marks a pinned editing surface.
	KindPermanent SurfaceKind = "permanent"
)

// GroupKind describes the insertion semantics of a layout group.
type GroupKind string

const (
	// GroupOrdered supports insertion relative to sibling surfaces.
	GroupOrdered GroupKind = "ordered"
	// GroupFloating places surfaces without sibling ordering.
	GroupFloating GroupKind = "floating"
)

// OpenMode controls how an open request treats existing surface state.
type OpenMode string

const (
	// OpenModePreserve never destroys existing unsaved surface state.
	OpenModePreserve OpenMode = "preserve"
	// OpenModeReplace permits replacing surface state.
	OpenModeReplace OpenMode = "replace"
)

// OpenPriority scores an opener's claim on a request. Zero means the
// opener does not participate.
type OpenPriority int

const (
	// PriorityNone opts out of handling a request.
	PriorityNone OpenPriority = 0
	// PriorityBuiltin is the default permanent-open handling.
	PriorityBuiltin OpenPriority = 50
	// PriorityPreview outranks the built-in permanent opener.
	PriorityPreview OpenPriority = 100
)

// PrefKey names a workbench preference.
type PrefKey string

// PrefPreviewEnabled toggles the preview surface feature.
const PrefPreviewEnabled PrefKey = "workbench.preview.enabled"

// Placement tells the layout shell where to put a surface. AdjacentTo
// takes precedence over Group when set.
type Placement struct {
	Group      GroupID
	AdjacentTo SurfaceID
}

// SurfaceSnapshot is a transport-friendly view of a surface.
type SurfaceSnapshot struct {
	ID       SurfaceID
	Kind     SurfaceKind
	Resource Resource
	Title    string
	Group    GroupID
	Child    SurfaceID
	Active   bool
}
