package state

import (
	"PlayBoard/internal/geometry"
)

const (
	// PositionHitRadius is slightly larger than the drawn marker radius.
	PositionHitRadius = 22.0
	// VertexHitRadius is smaller than SegmentHitRadius so vertices win only when close.
	VertexHitRadius  = 8.0
	SegmentHitRadius = 10.0
)

// Target says which part of an element a pick addressed.
type Target int

const (
	TargetPosition Target = iota
	TargetVertex
	TargetSegment
)

func (t Target) String() string {
	switch t {
	case TargetPosition:
		return "position"
	case TargetVertex:
		return "vertex"
	case TargetSegment:
		return "segment"
	}
	return "unknown"
}

// PickResult identifies the element under a point. Index is the vertex index
// for TargetVertex and the segment's first vertex for TargetSegment.
type PickResult struct {
	Element Element
	Target  Target
	Index   int
}

// Pick resolves the element under p. Path vertices are checked first, then
// positions, then path segments. Each pass scans from the most recently added
// element to the oldest.
func (s *Scene) Pick(p geometry.Point) (PickResult, bool) {
	return s.PickFor(p, func(Kind) bool { return true })
}

// PickFor is Pick for a caller that can only edit the vertices of some kinds.
// Vertices of editable paths are checked before positions; the vertices of
// every other path only win over segments. A nil editable edits nothing.
func (s *Scene) PickFor(p geometry.Point, editable func(Kind) bool) (PickResult, bool) {
	if editable == nil {
		editable = func(Kind) bool { return false }
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick(s.elements, p, editable)
}

func pick(elements []Element, p geometry.Point, editable func(Kind) bool) (PickResult, bool) {
	if res, ok := pickVertex(elements, p, editable); ok {
		return res, true
	}

	for i := len(elements) - 1; i >= 0; i-- {
		if pos, ok := elements[i].(*Position); ok && p.Distance(pos.Center()) <= PositionHitRadius {
			return PickResult{Element: pos.clone(), Target: TargetPosition}, true
		}
	}

	locked := func(k Kind) bool { return !editable(k) }
	if res, ok := pickVertex(elements, p, locked); ok {
		return res, true
	}

	for i := len(elements) - 1; i >= 0; i-- {
		switch e := elements[i].(type) {
		case *Position:
		case *Route:
			if j, ok := hitSegment(p, e.Points); ok {
				return PickResult{Element: e.clone(), Target: TargetSegment, Index: j}, true
			}
		case *Block:
			if j, ok := hitSegment(p, e.Points); ok {
				return PickResult{Element: e.clone(), Target: TargetSegment, Index: j}, true
			}
		}
	}
	return PickResult{}, false
}

func pickVertex(elements []Element, p geometry.Point, include func(Kind) bool) (PickResult, bool) {
	for i := len(elements) - 1; i >= 0; i-- {
		path, ok := PathOf(elements[i])
		if !ok || !include(elements[i].Kind()) {
			continue
		}
		for j := len(path.Points) - 1; j >= 0; j-- {
			if j == 0 && path.Anchored() {
				continue
			}
			if p.Distance(path.Points[j]) <= VertexHitRadius {
				return PickResult{Element: elements[i].clone(), Target: TargetVertex, Index: j}, true
			}
		}
	}
	return PickResult{}, false
}

func hitSegment(p geometry.Point, pts []geometry.Point) (int, bool) {
	j, d := geometry.PolylineNearest(p, pts)
	if j < 0 || d > SegmentHitRadius {
		return 0, false
	}
	return j, true
}
