package state

import (
	"log"
	"sync"

	"PlayBoard/internal/geometry"

	"github.com/google/uuid"
)

// Scene is the ordered collection of elements on the board. Order is both draw
// order and reverse pick priority. The scene owns its elements: everything
// handed in is copied and everything handed out is a clone.
type Scene struct {
	elements []Element
	selected string
	size     geometry.Size
	mu       sync.RWMutex
}

func NewScene(size geometry.Size) *Scene {
	return &Scene{
		elements: make([]Element, 0),
		size:     size,
	}
}

// Size returns the surface size the stored coordinates refer to.
func (s *Scene) Size() geometry.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}

// Add appends a copy of e, assigning an ID when it has none, and returns the ID.
func (s *Scene) Add(e Element) string {
	c := e.clone()
	if c.ElementID() == "" {
		c.setID(uuid.NewString())
	}

	s.mu.Lock()
	s.elements = append(s.elements, c)
	s.mu.Unlock()
	return c.ElementID()
}

// AppendPath adds a finished route or block. Paths with fewer than two points
// are dropped.
func (s *Scene) AppendPath(kind Kind, points []geometry.Point, color, origin string) (string, bool) {
	if len(points) < 2 {
		return "", false
	}
	e, ok := NewPath(kind, points, color, origin)
	if !ok {
		return "", false
	}
	return s.Add(e), true
}

// Remove deletes the element with the given ID.
func (s *Scene) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

func (s *Scene) removeLocked(id string) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	return true
}

func (s *Scene) indexLocked(id string) int {
	for i, e := range s.elements {
		if e.ElementID() == id {
			return i
		}
	}
	return -1
}

// Element returns a copy of the element with the given ID.
func (s *Scene) Element(id string) (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, false
	}
	return s.elements[i].clone(), true
}

// Elements returns copies of all elements in insertion order.
func (s *Scene) Elements() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Element, 0, len(s.elements))
	for _, e := range s.elements {
		out = append(out, e.clone())
	}
	return out
}

// Positions returns copies of all positions in insertion order.
func (s *Scene) Positions() []Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Position
	for _, e := range s.elements {
		if p, ok := e.(*Position); ok {
			out = append(out, *p)
		}
	}
	return out
}

// Select marks the element with the given ID as selected. An empty or
// unknown ID clears the selection.
func (s *Scene) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		id = ""
	}
	s.selected = id
}

func (s *Scene) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Selected returns a copy of the selected element.
func (s *Scene) Selected() (Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == "" {
		return nil, false
	}
	i := s.indexLocked(s.selected)
	if i < 0 {
		return nil, false
	}
	return s.elements[i].clone(), true
}

// MovePosition moves a position and the anchored first point of every path that
// originates from it.
func (s *Scene) MovePosition(id string, to geometry.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	p, ok := s.elements[i].(*Position)
	if !ok {
		return false
	}
	p.X, p.Y = to.X, to.Y

	for _, e := range s.elements {
		if path, ok := PathOf(e); ok && path.Origin == id && len(path.Points) > 0 {
			path.Points[0] = to
		}
	}
	return true
}

// UpdatePosition applies fn to the stored position with the given ID.
func (s *Scene) UpdatePosition(id string, fn func(p *Position)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	p, ok := s.elements[i].(*Position)
	if !ok {
		return false
	}
	fn(p)
	return true
}

// ReplacePoint overwrites one vertex of a route or block.
func (s *Scene) ReplacePoint(id string, index int, pt geometry.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	path, ok := PathOf(s.elements[i])
	if !ok || index < 0 || index >= len(path.Points) {
		return false
	}
	path.Points[index] = pt
	return true
}

// PathFrom returns the ID of the route or block of the given kind that
// originates from the position origin.
func (s *Scene) PathFrom(origin string, kind Kind) (string, bool) {
	if origin == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.elements {
		if path, ok := PathOf(e); ok && e.Kind() == kind && path.Origin == origin {
			return e.ElementID(), true
		}
	}
	return "", false
}

// RemovePathsFrom deletes every path of the given kind that originates from
// origin and returns the removed IDs.
func (s *Scene) RemovePathsFrom(origin string, kind Kind) []string {
	if origin == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	kept := s.elements[:0]
	for _, e := range s.elements {
		if path, ok := PathOf(e); ok && e.Kind() == kind && path.Origin == origin {
			removed = append(removed, e.ElementID())
			if s.selected == e.ElementID() {
				s.selected = ""
			}
			continue
		}
		kept = append(kept, e)
	}
	s.elements = kept
	return removed
}

// DetachPaths clears the origin of every path that starts at origin, turning
// them into free paths, and returns their IDs.
func (s *Scene) DetachPaths(origin string) []string {
	if origin == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var detached []string
	for _, e := range s.elements {
		if path, ok := PathOf(e); ok && path.Origin == origin {
			path.Origin = ""
			detached = append(detached, e.ElementID())
		}
	}
	return detached
}

// Clear removes every element.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = make([]Element, 0)
	s.selected = ""
}

// Replace swaps the whole element list for copies of elements.
func (s *Scene) Replace(elements []Element) {
	copies := make([]Element, 0, len(elements))
	for _, e := range elements {
		if e == nil {
			continue
		}
		c := e.clone()
		if c.ElementID() == "" {
			c.setID(uuid.NewString())
		}
		copies = append(copies, c)
	}

	s.mu.Lock()
	s.elements = copies
	s.selected = ""
	s.mu.Unlock()
}

// Resize rescales every stored coordinate proportionally to the new size.
func (s *Scene) Resize(size geometry.Size) {
	if size.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.size.Empty() {
		sx, sy := s.size.ScaleTo(size)
		for _, e := range s.elements {
			e.scale(sx, sy)
		}
		log.Printf("[SCENE] Rescaled %d elements from %.0fx%.0f to %.0fx%.0f",
			len(s.elements), s.size.Width, s.size.Height, size.Width, size.Height)
	}
	s.size = size
}
