package render

import (
	"image/color"
	"math"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/state"
)

const (
	PositionRadius = 22.0
	ArrowLength    = 15.0
	ArrowAngle     = math.Pi / 6
	TBarHalf       = 15.0
	RouteWidth     = 3.0
	BlockWidth     = 4.0
	PreviewAlpha   = 0.5
)

// Frame is everything needed to paint the board once.
type Frame struct {
	Size     geometry.Size
	Elements []state.Element
	Selected string
	Preview  *Preview
}

// Preview is the geometry of an interaction that has not been committed.
// Committed points belong to a path under construction; Tentative is drawn
// dashed; Vertex marks a point being edited.
type Preview struct {
	Kind      state.Kind
	Color     string
	Committed []geometry.Point
	Tentative []geometry.Point
	Vertex    *geometry.Point
}

// Renderer paints frames. It never changes the frame it is given.
type Renderer struct {
	// Dash is the on/off pattern used for previews.
	Dash [2]float64
	// Field disables the field markings when false.
	Field bool
}

func NewRenderer() *Renderer {
	return &Renderer{Dash: [2]float64{8, 6}, Field: true}
}

// Draw paints f onto s: field, elements in order, selection, then preview.
func (r *Renderer) Draw(s Surface, f Frame) {
	if f.Size.Empty() {
		return
	}
	if r.Field {
		DrawField(s, f.Size)
	}

	var selected state.Element
	for _, e := range f.Elements {
		r.drawElement(s, e)
		if e.ElementID() == f.Selected && f.Selected != "" {
			selected = e
		}
	}
	if selected != nil {
		r.highlight(s, selected)
	}
	if f.Preview != nil {
		r.drawPreview(s, f.Preview)
	}
}

// DrawField paints the turf and markings of a 30-yard window.
func DrawField(s Surface, size geometry.Size) {
	w, h := size.Width, size.Height
	s.FillRect(geometry.NewRect(0, 0, w, h), FieldGreen)

	hline := func(y, width float64) {
		s.Line(geometry.Pt(0, y), geometry.Pt(w, y), Stroke{Color: LineWhite, Width: width})
	}

	hline(h/2, 3)
	for i := 1; i <= 3; i++ {
		width := 1.0
		if i == 2 {
			width = 2
		}
		hline(h/2-h/6*float64(i), width)
		hline(h/2+h/6*float64(i), width)
	}

	hash := w * 0.08
	thin := Stroke{Color: LineWhite, Width: 1}
	ys := []float64{h / 2}
	for i := 1; i <= 3; i++ {
		ys = append(ys, h/2-h/6*float64(i), h/2+h/6*float64(i))
	}
	for _, y := range ys {
		s.Line(geometry.Pt(w*0.35, y), geometry.Pt(w*0.35+hash, y), thin)
		s.Line(geometry.Pt(w*0.65-hash, y), geometry.Pt(w*0.65, y), thin)
	}

	border := Stroke{Color: LineWhite, Width: 3}
	s.Line(geometry.Pt(0, 0), geometry.Pt(0, h), border)
	s.Line(geometry.Pt(w, 0), geometry.Pt(w, h), border)
	s.Line(geometry.Pt(0, 0), geometry.Pt(w, 0), border)
	s.Line(geometry.Pt(0, h), geometry.Pt(w, h), border)
}

func (r *Renderer) drawElement(s Surface, e state.Element) {
	switch v := e.(type) {
	case *state.Position:
		DrawPosition(s, v)
	case *state.Route:
		drawRoute(s, v.Points, Stroke{Color: ParseColor(v.Color), Width: RouteWidth})
	case *state.Block:
		drawBlock(s, v.Points, Stroke{Color: ParseColor(v.Color), Width: BlockWidth})
	}
}

// DrawPosition paints one marker with its label inside and player name below.
func DrawPosition(s Surface, p *state.Position) {
	c := p.Center()
	fill := ParseColor(p.Color)
	drawShape(s, p.Shape, c, PositionRadius, fill, Stroke{Color: LineWhite, Width: 2})

	if p.Label != "" {
		s.Text(c, p.Label, TextStyle{Size: 10, Color: LineWhite, Halo: LabelBlack, Bold: true, Anchor: AnchorCenter})
	}
	if p.Player != "" {
		s.Text(geometry.Pt(c.X, c.Y+PositionRadius+5), p.Player, TextStyle{Size: 11, Color: LabelBlack, Anchor: AnchorTop})
	}
}

func drawShape(s Surface, shape state.Shape, c geometry.Point, r float64, fill color.Color, outline Stroke) {
	switch shape {
	case state.ShapeX:
		d := r * 0.7
		st := Stroke{Color: fill, Width: 4}
		s.Line(geometry.Pt(c.X-d, c.Y-d), geometry.Pt(c.X+d, c.Y+d), st)
		s.Line(geometry.Pt(c.X+d, c.Y-d), geometry.Pt(c.X-d, c.Y+d), st)
	case state.ShapeLine:
		s.Line(geometry.Pt(c.X-r, c.Y), geometry.Pt(c.X+r, c.Y), Stroke{Color: fill, Width: 4})
	case state.ShapeSquare, state.ShapeTriangle, state.ShapeDiamond:
		s.Polygon(ShapeOutline(shape, c, r), fill, outline)
	default:
		s.Circle(c, r, fill, outline)
	}
}

// ShapeOutline returns the corners of a polygonal marker shape.
func ShapeOutline(shape state.Shape, c geometry.Point, r float64) []geometry.Point {
	switch shape {
	case state.ShapeSquare:
		return []geometry.Point{
			geometry.Pt(c.X-r, c.Y-r), geometry.Pt(c.X+r, c.Y-r),
			geometry.Pt(c.X+r, c.Y+r), geometry.Pt(c.X-r, c.Y+r),
		}
	case state.ShapeTriangle:
		return []geometry.Point{
			geometry.Pt(c.X, c.Y-r),
			geometry.Pt(c.X+r*0.86, c.Y+r*0.5),
			geometry.Pt(c.X-r*0.86, c.Y+r*0.5),
		}
	case state.ShapeDiamond:
		return []geometry.Point{
			geometry.Pt(c.X, c.Y-r), geometry.Pt(c.X+r, c.Y),
			geometry.Pt(c.X, c.Y+r), geometry.Pt(c.X-r, c.Y),
		}
	}
	return nil
}

func polyline(s Surface, pts []geometry.Point, st Stroke) {
	for i := 1; i < len(pts); i++ {
		s.Line(pts[i-1], pts[i], st)
	}
}

func drawRoute(s Surface, pts []geometry.Point, st Stroke) {
	if len(pts) < 2 {
		return
	}
	polyline(s, pts, st)
	drawArrow(s, pts[len(pts)-2], pts[len(pts)-1], st)
}

func drawBlock(s Surface, pts []geometry.Point, st Stroke) {
	if len(pts) < 2 {
		return
	}
	polyline(s, pts, st)
	drawTBar(s, pts[len(pts)-2], pts[len(pts)-1], st)
}

// ArrowHead returns the two barb ends of an arrow pointing from -> to.
func ArrowHead(from, to geometry.Point) (geometry.Point, geometry.Point) {
	angle := from.Angle(to)
	return to.Polar(-ArrowLength, angle-ArrowAngle), to.Polar(-ArrowLength, angle+ArrowAngle)
}

// TBar returns the ends of the bar drawn across to, perpendicular to from -> to.
func TBar(from, to geometry.Point) (geometry.Point, geometry.Point) {
	perp := from.Angle(to) + math.Pi/2
	return to.Polar(-TBarHalf, perp), to.Polar(TBarHalf, perp)
}

func drawArrow(s Surface, from, to geometry.Point, st Stroke) {
	if from == to {
		return
	}
	a, b := ArrowHead(from, to)
	s.Line(to, a, st)
	s.Line(to, b, st)
}

func drawTBar(s Surface, from, to geometry.Point, st Stroke) {
	if from == to {
		return
	}
	a, b := TBar(from, to)
	s.Line(a, b, st)
}

func (r *Renderer) highlight(s Surface, e state.Element) {
	st := Stroke{Color: HighlightColor, Width: 3}
	switch v := e.(type) {
	case *state.Position:
		c := v.Center()
		radius := PositionRadius + 4
		switch v.Shape {
		case state.ShapeSquare, state.ShapeTriangle, state.ShapeDiamond:
			s.Polygon(ShapeOutline(v.Shape, c, radius), nil, st)
		case state.ShapeLine:
			s.Polygon([]geometry.Point{
				geometry.Pt(c.X-radius, c.Y-6), geometry.Pt(c.X+radius, c.Y-6),
				geometry.Pt(c.X+radius, c.Y+6), geometry.Pt(c.X-radius, c.Y+6),
			}, nil, st)
		default:
			s.Circle(c, radius, nil, st)
		}
	case *state.Route:
		r.highlightPath(s, &v.Path, st)
	case *state.Block:
		r.highlightPath(s, &v.Path, st)
	}
}

func (r *Renderer) highlightPath(s Surface, p *state.Path, st Stroke) {
	for i, pt := range p.Points {
		if i == 0 && p.Anchored() {
			continue
		}
		s.Circle(pt, 5, nil, st)
	}
}

func (r *Renderer) drawPreview(s Surface, p *Preview) {
	c := ParseColor(p.Color)
	width := RouteWidth
	if p.Kind == state.KindBlock {
		width = BlockWidth
	}
	solid := Stroke{Color: c, Width: width}
	faded := Stroke{Color: WithAlpha(c, PreviewAlpha), Width: width}

	if len(p.Committed) >= 2 {
		polyline(s, p.Committed, solid)
	} else if len(p.Committed) == 1 {
		s.Circle(p.Committed[0], 4, c, Stroke{})
	}

	for i := 1; i < len(p.Tentative); i++ {
		for _, seg := range Dashes(p.Tentative[i-1], p.Tentative[i], r.Dash[0], r.Dash[1]) {
			s.Line(seg[0], seg[1], faded)
		}
	}

	if n := len(p.Tentative); n >= 2 && p.Vertex == nil {
		switch p.Kind {
		case state.KindRoute:
			drawArrow(s, p.Tentative[n-2], p.Tentative[n-1], faded)
		case state.KindBlock:
			drawTBar(s, p.Tentative[n-2], p.Tentative[n-1], faded)
		}
	}

	if p.Vertex != nil {
		s.Circle(*p.Vertex, 6, WithAlpha(c, PreviewAlpha), Stroke{Color: HighlightColor, Width: 2})
	}
}
