package state

import (
	"PlayBoard/internal/geometry"
)

// CollisionRadius is the clearance a drawn segment keeps from position centers.
const CollisionRadius = 25.0

// Centers returns the locations of the given positions.
func Centers(positions []Position) []geometry.Point {
	out := make([]geometry.Point, 0, len(positions))
	for i := range positions {
		out = append(out, positions[i].Center())
	}
	return out
}

// SegmentIntersectsAnyPosition reports whether segment ab passes closer than
// radius to the center of any position.
func SegmentIntersectsAnyPosition(a, b geometry.Point, positions []Position, radius float64) bool {
	return geometry.SegmentNearAny(a, b, Centers(positions), radius)
}

// Obstacles returns the positions a segment from a to b should avoid.
// Positions sitting on either endpoint are left out: a path cannot avoid the
// marker it starts from or the one it was aimed at.
func Obstacles(a, b geometry.Point, positions []Position, radius float64) []Position {
	var out []Position
	for i := range positions {
		c := positions[i].Center()
		if c.Distance(a) < radius || c.Distance(b) < radius {
			continue
		}
		out = append(out, positions[i])
	}
	return out
}
