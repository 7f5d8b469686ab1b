package core

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/workbench/schema"
)

type group struct {
	id    schema.GroupID
	kind  schema.GroupKind
	order []schema.SurfaceID
}

// Shell is the layout service: it places surfaces into groups, reveals
// them, and tracks focus. The default group supports ordered insertion;
// further groups may be ordered or floating.
type Shell struct {
	log pslog.Logger

	mu           sync.Mutex
	groups       map[schema.GroupID]*group
	groupOrder   []schema.GroupID
	defaultGroup schema.GroupID
	byID         map[schema.SurfaceID]schema.GroupID
	active       schema.SurfaceID
}

// NewShell constructs a layout shell with the default ordered group.
func NewShell(cfg schema.WorkbenchConfig, logger pslog.Logger) *Shell {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	s := &Shell{
		log:          logger,
		groups:       make(map[schema.GroupID]*group),
		defaultGroup: cfg.DefaultGroup,
		byID:         make(map[schema.SurfaceID]schema.GroupID),
	}
	s.groups[cfg.DefaultGroup] = &group{id: cfg.DefaultGroup, kind: schema.GroupOrdered}
	s.groupOrder = append(s.groupOrder, cfg.DefaultGroup)
	return s
}

// AddGroup creates a layout group.
func (s *Shell) AddGroup(id schema.GroupID, kind schema.GroupKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[id]; ok {
		return
	}
	s.groups[id] = &group{id: id, kind: kind}
	s.groupOrder = append(s.groupOrder, id)
}

// AddSurface places the surface. Placement.AdjacentTo inserts directly
// after the named sibling in that sibling's group; otherwise the
// surface is appended to Placement.Group or the default group.
func (s *Shell) AddSurface(surface Surface, placement schema.Placement) error {
	if surface == nil || surface.Disposed() {
		return schema.ErrSurfaceDisposed
	}
	id := surface.ID()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; ok {
		return nil
	}
	if placement.AdjacentTo != "" {
		groupID, ok := s.byID[placement.AdjacentTo]
		if ok {
			g := s.groups[groupID]
			for i, sibling := range g.order {
				if sibling == placement.AdjacentTo {
					g.order = append(g.order[:i+1], append([]schema.SurfaceID{id}, g.order[i+1:]...)...)
					s.byID[id] = groupID
					s.log.Debug("shell surface placed", "surface", id, "group", groupID, "after", placement.AdjacentTo)
					return nil
				}
			}
		}
	}
	groupID := placement.Group
	if groupID == "" {
		groupID = s.defaultGroup
	}
	g, ok := s.groups[groupID]
	if !ok {
		return schema.ErrGroupNotFound
	}
	g.order = append(g.order, id)
	s.byID[id] = groupID
	s.log.Debug("shell surface placed", "surface", id, "group", groupID)
	return nil
}

// RemoveSurface drops the surface from its group.
func (s *Shell) RemoveSurface(id schema.SurfaceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groupID, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	g := s.groups[groupID]
	for i, current := range g.order {
		if current == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	if s.active == id {
		s.active = ""
	}
}

// RevealSurface brings the surface into view without stealing focus
// when something else already has it.
func (s *Shell) RevealSurface(id schema.SurfaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return schema.ErrSurfaceNotFound
	}
	if s.active == "" {
		s.active = id
	}
	s.log.Trace("shell surface revealed", "surface", id)
	return nil
}

// ActivateSurface focuses the surface.
func (s *Shell) ActivateSurface(id schema.SurfaceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return schema.ErrSurfaceNotFound
	}
	s.active = id
	s.log.Trace("shell surface activated", "surface", id)
	return nil
}

// Active returns the focused surface id, if any.
func (s *Shell) Active() schema.SurfaceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// GroupOf reports the group hosting the surface and its kind.
func (s *Shell) GroupOf(id schema.SurfaceID) (schema.GroupID, schema.GroupKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groupID, ok := s.byID[id]
	if !ok {
		return "", "", false
	}
	return groupID, s.groups[groupID].kind, true
}

// SurfacesIn returns the ordered surface ids of a group.
func (s *Shell) SurfacesIn(id schema.GroupID) []schema.SurfaceID {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return nil
	}
	return append([]schema.SurfaceID(nil), g.order...)
}

// Groups returns group ids in creation order.
func (s *Shell) Groups() []schema.GroupID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]schema.GroupID(nil), s.groupOrder...)
}

// KindOf reports a group's kind.
func (s *Shell) KindOf(id schema.GroupID) (schema.GroupKind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	if !ok {
		return "", false
	}
	return g.kind, true
}
