package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistancePointToSegment(t *testing.T) {
	cases := []struct {
		name string
		p    Point
		a, b Point
		want float64
	}{
		{"perpendicular", Pt(5, 5), Pt(0, 0), Pt(10, 0), 5},
		{"before start", Pt(-3, 4), Pt(0, 0), Pt(10, 0), 5},
		{"past end", Pt(13, 4), Pt(0, 0), Pt(10, 0), 5},
		{"on segment", Pt(7, 0), Pt(0, 0), Pt(10, 0), 0},
		{"zero length", Pt(3, 4), Pt(0, 0), Pt(0, 0), 5},
		{"diagonal", Pt(0, 10), Pt(0, 0), Pt(10, 10), math.Sqrt(50)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, DistancePointToSegment(c.p, c.a, c.b), 1e-9)
		})
	}
}

func TestSegmentNearAny(t *testing.T) {
	centers := []Point{Pt(100, 100)}

	assert.True(t, SegmentNearAny(Pt(50, 100), Pt(150, 100), centers, 20))
	assert.False(t, SegmentNearAny(Pt(50, 130), Pt(150, 130), centers, 20))
	// Exactly on the radius is not a collision.
	assert.False(t, SegmentNearAny(Pt(50, 120), Pt(150, 120), centers, 20))
	assert.False(t, SegmentNearAny(Pt(0, 0), Pt(10, 0), nil, 20))
}

func TestSnapIsIdempotent(t *testing.T) {
	size := NewSize(800, 450)
	for x := -17.0; x < 820; x += 13.7 {
		for y := -9.0; y < 470; y += 11.3 {
			once := SnapToGrid(Pt(x, y), size, true)
			twice := SnapToGrid(once, size, true)
			require.Equal(t, once, twice, "snap(%v,%v)", x, y)
		}
	}
}

func TestSnapSteps(t *testing.T) {
	size := NewSize(530, 120)
	dx, dy := DefaultField.SnapStep(size)
	assert.InDelta(t, 10.0, dx, 1e-9)
	assert.InDelta(t, 1.0, dy, 1e-9)

	got := SnapToGrid(Pt(14.9, 3.4), size, true)
	assert.InDelta(t, 10.0, got.X, 1e-9)
	assert.InDelta(t, 3.0, got.Y, 1e-9)
}

func TestSnapDisabledReturnsInput(t *testing.T) {
	p := Pt(12.345, 67.891)
	assert.Equal(t, p, SnapToGrid(p, NewSize(800, 450), false))
	assert.Equal(t, p, SnapToGrid(p, Size{}, true))
}

func TestFieldFit(t *testing.T) {
	tall := DefaultField.Fit(NewSize(2000, 300))
	assert.InDelta(t, 300, tall.Height, 1e-9)
	assert.InDelta(t, 300*DefaultField.Aspect(), tall.Width, 1e-9)

	narrow := DefaultField.Fit(NewSize(400, 2000))
	assert.InDelta(t, 400, narrow.Width, 1e-9)
	assert.InDelta(t, 400/DefaultField.Aspect(), narrow.Height, 1e-9)

	assert.True(t, DefaultField.Fit(Size{}).Empty())
}

func TestFindDetourClearsObstacle(t *testing.T) {
	a, b := Pt(50, 100), Pt(150, 100)
	obstacles := []Point{Pt(100, 100)}

	c, ok := FindDetour(a, b, obstacles, DetourOptions{Radius: 60, Clearance: 20, Attempts: 3})
	require.True(t, ok)
	assert.GreaterOrEqual(t, DistancePointToSegment(obstacles[0], a, c), 20.0)
	assert.GreaterOrEqual(t, DistancePointToSegment(obstacles[0], c, b), 20.0)
}

func TestFindDetourPrefersFirstAngle(t *testing.T) {
	// A vertical segment through the obstacle: the 0 degree sample (to the right
	// of the midpoint) is already clear.
	a, b := Pt(100, 0), Pt(100, 200)
	c, ok := FindDetour(a, b, []Point{Pt(100, 100)}, DetourOptions{Radius: 60, Clearance: 20, Attempts: 1})
	require.True(t, ok)
	assert.InDelta(t, 160, c.X, 1e-9)
	assert.InDelta(t, 100, c.Y, 1e-9)
}

func TestFindDetourRespectsBounds(t *testing.T) {
	a, b := Pt(100, 0), Pt(100, 200)
	bounds := NewSize(120, 200)
	c, ok := FindDetour(a, b, []Point{Pt(100, 100)}, DetourOptions{Radius: 60, Clearance: 20, Attempts: 8, Bounds: bounds})
	require.True(t, ok)
	assert.True(t, bounds.Contains(c))
	assert.Less(t, c.X, 100.0)
	assert.InDelta(t, 60, c.Distance(Pt(100, 100)), 1e-9, "candidates keep a fixed radius")

	_, ok = FindDetour(a, b, []Point{Pt(100, 100)}, DetourOptions{Radius: 60, Clearance: 20, Attempts: 1, Bounds: bounds})
	assert.False(t, ok, "only the first candidate is tried")
}

func TestFindDetourGivesUp(t *testing.T) {
	// Obstacles on a dense ring make every candidate collide.
	ring := CirclePoints(Pt(100, 100), 60, 32)
	ring = append(ring, Pt(100, 100))
	_, ok := FindDetour(Pt(50, 100), Pt(150, 100), ring, DetourOptions{Radius: 60, Clearance: 20, Attempts: 8})
	assert.False(t, ok)

	_, ok = FindDetour(Pt(0, 0), Pt(1, 1), nil, DetourOptions{})
	assert.False(t, ok)
}

func TestPointInPolygon(t *testing.T) {
	diamond := []Point{Pt(10, 0), Pt(20, 10), Pt(10, 20), Pt(0, 10)}
	cases := []struct {
		p    Point
		want bool
	}{
		{Pt(10, 10), true},
		{Pt(4, 10), true},
		{Pt(2, 2), false},
		{Pt(25, 10), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PointInPolygon(c.p, diamond), "%v", c.p)
	}
	assert.False(t, PointInPolygon(Pt(0, 0), nil))
}
