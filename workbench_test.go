package workbench

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pkt.systems/workbench/internal/eventbus"
	"pkt.systems/workbench/schema"
)

func newTestWorkbench(t *testing.T, opts ...Option) *Workbench {
	t.Helper()
	wb, err := New(Config{
		Workbench: schema.WorkbenchConfig{StateDir: t.TempDir()},
	}, Deps{}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestOpenPreviewThenPin(t *testing.T) {
	wb := newTestWorkbench(t)
	ctx := context.Background()

	resp, err := wb.OpenResource(ctx, schema.OpenRequest{
		Resource: "/docs/a.txt",
		Options:  schema.OpenOptions{Preview: true},
	})
	if err != nil {
		t.Fatalf("open preview: %v", err)
	}
	if resp.Surface.Kind != schema.KindPreview {
		t.Fatalf("expected preview surface, got %s", resp.Surface.Kind)
	}
	previewID := resp.Surface.ID

	// A second preview open reuses the same surface with new content.
	resp2, err := wb.OpenResource(ctx, schema.OpenRequest{
		Resource: "/docs/b.txt",
		Options:  schema.OpenOptions{Preview: true},
	})
	if err != nil {
		t.Fatalf("open second preview: %v", err)
	}
	if resp2.Surface.ID != previewID {
		t.Fatalf("expected preview reuse, got %s then %s", previewID, resp2.Surface.ID)
	}
	if resp2.Surface.Resource != "/docs/b.txt" {
		t.Fatalf("preview resource = %s", resp2.Surface.Resource)
	}

	pinned, err := wb.PinSurface(ctx, schema.PinSurfaceRequest{})
	if err != nil {
		t.Fatalf("pin: %v", err)
	}
	if pinned.Surface.Kind != schema.KindPermanent {
		t.Fatalf("expected permanent surface, got %s", pinned.Surface.Kind)
	}
	if pinned.Surface.Resource != "/docs/b.txt" {
		t.Fatalf("pinned resource = %s", pinned.Surface.Resource)
	}

	list, err := wb.ListSurfaces(ctx, schema.ListSurfacesRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Preview != "" {
		t.Fatalf("expected empty preview slot after pin, got %s", list.Preview)
	}
	var got []schema.Resource
	for _, s := range list.Surfaces {
		got = append(got, s.Resource)
	}
	if diff := cmp.Diff([]schema.Resource{"/docs/b.txt"}, got); diff != "" {
		t.Fatalf("surfaces mismatch (-want +got):\n%s", diff)
	}
}

func TestPinByUnknownSurface(t *testing.T) {
	wb := newTestWorkbench(t)
	ctx := context.Background()
	if _, err := wb.PinSurface(ctx, schema.PinSurfaceRequest{}); err != schema.ErrSurfaceNotFound {
		t.Fatalf("expected ErrSurfaceNotFound, got %v", err)
	}
	resp, err := wb.OpenResource(ctx, schema.OpenRequest{Resource: "/a.txt"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := wb.PinSurface(ctx, schema.PinSurfaceRequest{SurfaceID: resp.Surface.ID}); err != schema.ErrNotPreview {
		t.Fatalf("expected ErrNotPreview for permanent surface, got %v", err)
	}
}

func TestOpenWithoutPreviewFlagIsPermanent(t *testing.T) {
	wb := newTestWorkbench(t)
	ctx := context.Background()
	resp, err := wb.OpenResource(ctx, schema.OpenRequest{Resource: "/a.txt"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if resp.Surface.Kind != schema.KindPermanent {
		t.Fatalf("expected permanent surface, got %s", resp.Surface.Kind)
	}
	if resp.Surface.Group != schema.DefaultGroupID {
		t.Fatalf("expected default group, got %s", resp.Surface.Group)
	}
}

func TestCloseAndActivateSurface(t *testing.T) {
	wb := newTestWorkbench(t)
	ctx := context.Background()
	a, err := wb.OpenResource(ctx, schema.OpenRequest{Resource: "/a.txt"})
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	b, err := wb.OpenResource(ctx, schema.OpenRequest{Resource: "/b.txt"})
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	if _, err := wb.ActivateSurface(ctx, schema.ActivateSurfaceRequest{SurfaceID: b.Surface.ID}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	list, err := wb.ListSurfaces(ctx, schema.ListSurfacesRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Active != b.Surface.ID {
		t.Fatalf("active = %s, want %s", list.Active, b.Surface.ID)
	}
	if _, err := wb.CloseSurface(ctx, schema.CloseSurfaceRequest{SurfaceID: a.Surface.ID}); err != nil {
		t.Fatalf("close: %v", err)
	}
	list, err = wb.ListSurfaces(ctx, schema.ListSurfacesRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Surfaces) != 1 || list.Surfaces[0].ID != b.Surface.ID {
		t.Fatalf("unexpected surfaces after close: %+v", list.Surfaces)
	}
	if _, err := wb.CloseSurface(ctx, schema.CloseSurfaceRequest{SurfaceID: a.Surface.ID}); err != schema.ErrSurfaceNotFound {
		t.Fatalf("expected ErrSurfaceNotFound on double close, got %v", err)
	}
}

func TestDisablingPreviewPromotesTracked(t *testing.T) {
	wb := newTestWorkbench(t)
	ctx := context.Background()
	resp, err := wb.OpenResource(ctx, schema.OpenRequest{
		Resource: "/doc.md",
		Options:  schema.OpenOptions{Preview: true},
	})
	if err != nil {
		t.Fatalf("open preview: %v", err)
	}
	if _, err := wb.SetPreference(ctx, schema.SetPreferenceRequest{
		Key:   schema.PrefPreviewEnabled,
		Value: "false",
	}); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	list, err := wb.ListSurfaces(ctx, schema.ListSurfacesRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Preview != "" {
		t.Fatalf("expected preview promoted on disable, still tracking %s", list.Preview)
	}
	for _, s := range list.Surfaces {
		if s.ID == resp.Surface.ID {
			t.Fatalf("disposed preview still placed: %+v", s)
		}
	}
	perm, err := wb.OpenResource(ctx, schema.OpenRequest{
		Resource: "/other.md",
		Options:  schema.OpenOptions{Preview: true},
	})
	if err != nil {
		t.Fatalf("open with preview disabled: %v", err)
	}
	if perm.Surface.Kind != schema.KindPermanent {
		t.Fatalf("expected permanent open while disabled, got %s", perm.Surface.Kind)
	}
}

func TestEventBusDeliversLifecycle(t *testing.T) {
	wb := newTestWorkbench(t, WithEventBus())
	events, cancel, err := wb.Events()
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	defer cancel()
	ctx := context.Background()
	if _, err := wb.OpenResource(ctx, schema.OpenRequest{
		Resource: "/a.txt",
		Options:  schema.OpenOptions{Preview: true},
	}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := wb.PinSurface(ctx, schema.PinSurfaceRequest{}); err != nil {
		t.Fatalf("pin: %v", err)
	}
	seen := map[schema.SurfaceEventType]bool{}
	for {
		var ev eventbus.Event
		select {
		case ev = <-events:
		default:
			ev = eventbus.Event{}
		}
		if ev.Type == "" {
			break
		}
		if ev.Type == eventbus.EventSurface {
			seen[ev.Surface.Type] = true
		}
	}
	for _, want := range []schema.SurfaceEventType{schema.SurfaceCreated, schema.SurfacePromoted, schema.SurfaceDisposed} {
		if !seen[want] {
			t.Fatalf("missing %s event; saw %v", want, seen)
		}
	}
}

func TestLayoutPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Workbench: schema.WorkbenchConfig{StateDir: dir}}
	wb, err := New(cfg, Deps{}, WithPersistence())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	if _, err := wb.OpenResource(ctx, schema.OpenRequest{Resource: "/a.txt"}); err != nil {
		t.Fatalf("open a: %v", err)
	}
	b, err := wb.OpenResource(ctx, schema.OpenRequest{Resource: "/b.txt"})
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	if _, err := wb.ActivateSurface(ctx, schema.ActivateSurfaceRequest{SurfaceID: b.Surface.ID}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	// Previews are transient and must not be written out.
	if _, err := wb.OpenResource(ctx, schema.OpenRequest{
		Resource: "/transient.txt",
		Options:  schema.OpenOptions{Preview: true},
	}); err != nil {
		t.Fatalf("open preview: %v", err)
	}
	if err := wb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	wb2, err := New(cfg, Deps{}, WithPersistence())
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	defer wb2.Close()
	list, err := wb2.ListSurfaces(ctx, schema.ListSurfacesRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []schema.Resource
	for _, s := range list.Surfaces {
		got = append(got, s.Resource)
	}
	if diff := cmp.Diff([]schema.Resource{"/a.txt", "/b.txt"}, got); diff != "" {
		t.Fatalf("restored surfaces mismatch (-want +got):\n%s", diff)
	}
	active := wb2.registry.Get(list.Active)
	if active == nil || active.Resource() != "/b.txt" {
		t.Fatalf("expected /b.txt restored active, got %v", list.Active)
	}
}

func TestClosedWorkbenchRejectsOps(t *testing.T) {
	wb := newTestWorkbench(t)
	if err := wb.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := wb.OpenResource(context.Background(), schema.OpenRequest{Resource: "/a.txt"}); err != schema.ErrWorkbenchClosed {
		t.Fatalf("expected ErrWorkbenchClosed, got %v", err)
	}
}
