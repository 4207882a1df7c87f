package state

import (
	"PlayBoard/internal/geometry"
)

// Kind tags the three element variants.
type Kind string

const (
	KindPosition Kind = "position"
	KindRoute    Kind = "route"
	KindBlock    Kind = "block"
)

// Shape is the marker drawn for a position.
type Shape string

const (
	ShapeCircle   Shape = "circle"
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapeDiamond  Shape = "diamond"
	ShapeX        Shape = "x"
	ShapeLine     Shape = "line"
)

// Shapes lists every shape in toolbar order.
var Shapes = []Shape{ShapeCircle, ShapeSquare, ShapeTriangle, ShapeDiamond, ShapeX, ShapeLine}

// Valid reports whether s is one of the known shapes.
func (s Shape) Valid() bool {
	for _, known := range Shapes {
		if s == known {
			return true
		}
	}
	return false
}

// Element is implemented by *Position, *Route and *Block only.
type Element interface {
	ElementID() string
	Kind() Kind

	clone() Element
	scale(sx, sy float64)
	setID(id string)
}

// Position is a player marker on the field.
type Position struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Shape  Shape   `json:"shape"`
	Color  string  `json:"color"`
	Label  string  `json:"name"`
	Player string  `json:"player"`
}

func (p *Position) ElementID() string { return p.ID }
func (p *Position) Kind() Kind        { return KindPosition }
func (p *Position) setID(id string)   { p.ID = id }

func (p *Position) clone() Element {
	c := *p
	return &c
}

func (p *Position) scale(sx, sy float64) {
	p.X *= sx
	p.Y *= sy
}

// Center returns the position's location.
func (p *Position) Center() geometry.Point {
	return geometry.Pt(p.X, p.Y)
}

// Path is the data shared by routes and blocks.
type Path struct {
	ID     string           `json:"id"`
	Points []geometry.Point `json:"path"`
	Color  string           `json:"color"`
	// Origin is the ID of the position the path starts from, if any.
	Origin string `json:"origin,omitempty"`
}

// Anchored reports whether the first point follows an origin position.
func (p *Path) Anchored() bool {
	return p.Origin != ""
}

// Last returns the final point of the path.
func (p *Path) Last() (geometry.Point, bool) {
	if len(p.Points) == 0 {
		return geometry.Point{}, false
	}
	return p.Points[len(p.Points)-1], true
}

func (p *Path) copyPoints() {
	p.Points = append([]geometry.Point(nil), p.Points...)
}

func (p *Path) scalePoints(sx, sy float64) {
	for i := range p.Points {
		p.Points[i] = p.Points[i].Scale(sx, sy)
	}
}

// Route is a player's movement, drawn with an arrowhead.
type Route struct {
	Path
}

func (r *Route) ElementID() string    { return r.ID }
func (r *Route) Kind() Kind           { return KindRoute }
func (r *Route) setID(id string)      { r.ID = id }
func (r *Route) scale(sx, sy float64) { r.scalePoints(sx, sy) }

func (r *Route) clone() Element {
	c := *r
	c.copyPoints()
	return &c
}

// Block is a blocking assignment, drawn with a T-bar.
type Block struct {
	Path
}

func (b *Block) ElementID() string    { return b.ID }
func (b *Block) Kind() Kind           { return KindBlock }
func (b *Block) setID(id string)      { b.ID = id }
func (b *Block) scale(sx, sy float64) { b.scalePoints(sx, sy) }

func (b *Block) clone() Element {
	c := *b
	c.copyPoints()
	return &c
}

// PathOf returns the path data of a route or block.
func PathOf(e Element) (*Path, bool) {
	switch v := e.(type) {
	case *Route:
		return &v.Path, true
	case *Block:
		return &v.Path, true
	}
	return nil, false
}

// NewPath builds a route or block of the given kind.
func NewPath(kind Kind, points []geometry.Point, color, origin string) (Element, bool) {
	p := Path{Points: append([]geometry.Point(nil), points...), Color: color, Origin: origin}
	switch kind {
	case KindRoute:
		return &Route{Path: p}, true
	case KindBlock:
		return &Block{Path: p}, true
	}
	return nil, false
}

// Clone returns a deep copy of e.
func Clone(e Element) Element {
	if e == nil {
		return nil
	}
	return e.clone()
}

type OpType string

const (
	OpInsertElement OpType = "insert_element"
	OpDeleteElement OpType = "delete_element"
	OpUpdateElement OpType = "update_element"
	OpReplaceScene  OpType = "replace_scene"
	OpClearScene    OpType = "clear_scene"
)

// Op records one committed change to the scene.
type Op struct {
	Type      OpType `json:"type"`
	ElementID string `json:"element_id,omitempty"`
	Lamport   uint64 `json:"lamport"`
	Site      string `json:"site"`
}
