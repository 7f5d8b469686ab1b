package schema

// SurfaceEventType is the lifecycle event emitted by the workbench.
type SurfaceEventType string

const (
	// SurfaceCreated indicates a surface was created.
	SurfaceCreated SurfaceEventType = "surface.created"
	// SurfaceReplaced indicates the preview's content was replaced in place.
	SurfaceReplaced SurfaceEventType = "surface.replaced"
	// SurfacePromoted indicates a preview was promoted to a permanent surface.
	SurfacePromoted SurfaceEventType = "surface.promoted"
	// SurfaceDisposed indicates a surface was destroyed.
	SurfaceDisposed SurfaceEventType = "surface.disposed"
	// SurfaceActivated indicates a surface received focus.
	SurfaceActivated SurfaceEventType = "surface.activated"
	// SurfaceRevealed indicates a surface was brought into view.
	SurfaceRevealed SurfaceEventType = "surface.revealed"
)

// SurfaceEvent reports a surface lifecycle transition. Promoted carries
// the standalone permanent surface for SurfacePromoted events.
type SurfaceEvent struct {
	Type     SurfaceEventType
	Surface  SurfaceSnapshot
	Promoted *SurfaceSnapshot
}

// PrefEvent reports a preference change.
type PrefEvent struct {
	Key      PrefKey
	NewValue string
}
