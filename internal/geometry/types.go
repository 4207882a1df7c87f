// Package geometry provides the point, size and distance helpers used by the play board.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a location in surface pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return r2.Norm(r2.Sub(p.vec(), other.vec()))
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return fromVec(r2.Add(p.vec(), other.vec()))
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return fromVec(r2.Sub(p.vec(), other.vec()))
}

// Scale scales the point independently along each axis.
func (p Point) Scale(sx, sy float64) Point {
	return Point{X: p.X * sx, Y: p.Y * sy}
}

// Midpoint returns the point halfway between p and other.
func (p Point) Midpoint(other Point) Point {
	return fromVec(r2.Scale(0.5, r2.Add(p.vec(), other.vec())))
}

// Angle returns the direction from p to other in radians.
func (p Point) Angle(other Point) float64 {
	return math.Atan2(other.Y-p.Y, other.X-p.X)
}

// Polar returns the point at the given distance and angle from p.
func (p Point) Polar(dist, angle float64) Point {
	return Point{X: p.X + dist*math.Cos(angle), Y: p.Y + dist*math.Sin(angle)}
}

// Size is the extent of a drawing surface.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize creates a new Size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Empty reports whether the size has no drawable area.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Contains reports whether p lies inside the [0,Width]x[0,Height] rectangle.
func (s Size) Contains(p Point) bool {
	return p.X >= 0 && p.X <= s.Width && p.Y >= 0 && p.Y <= s.Height
}

// ScaleTo returns the per-axis factors that map s onto other.
// An empty source size maps with factor 1.
func (s Size) ScaleTo(other Size) (sx, sy float64) {
	if s.Empty() || other.Empty() {
		return 1, 1
	}
	return other.Width / s.Width, other.Height / s.Height
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// CirclePoints generates n evenly-spaced points around a circle, starting at angle 0
// and proceeding in the direction of increasing angle.
func CirclePoints(center Point, radius float64, n int) []Point {
	points := make([]Point, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(n)
		points[i] = center.Polar(radius, angle)
	}
	return points
}

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
