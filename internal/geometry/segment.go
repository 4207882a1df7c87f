package geometry

import "gonum.org/v1/gonum/spatial/r2"

// DistancePointToSegment returns the distance from p to the segment ab.
// When the projection of p falls outside the segment the distance to the
// nearest endpoint is returned.
func DistancePointToSegment(p, a, b Point) float64 {
	ab := r2.Sub(b.vec(), a.vec())
	ap := r2.Sub(p.vec(), a.vec())

	lenSq := r2.Norm2(ab)
	if lenSq == 0 {
		return r2.Norm(ap)
	}

	t := r2.Dot(ap, ab) / lenSq
	switch {
	case t < 0:
		return r2.Norm(ap)
	case t > 1:
		return p.Distance(b)
	}

	projection := r2.Add(a.vec(), r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p.vec(), projection))
}

// SegmentNearAny reports whether any center lies strictly closer than radius to segment ab.
func SegmentNearAny(a, b Point, centers []Point, radius float64) bool {
	for _, c := range centers {
		if DistancePointToSegment(c, a, b) < radius {
			return true
		}
	}
	return false
}

// PolylineNearest returns the index of the segment of pts closest to p and its distance.
// It returns -1 when pts has fewer than two points.
func PolylineNearest(p Point, pts []Point) (int, float64) {
	best, bestDist := -1, 0.0
	for i := 0; i+1 < len(pts); i++ {
		d := DistancePointToSegment(p, pts[i], pts[i+1])
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

// PointInPolygon reports whether p lies inside the closed polygon, using the
// even-odd rule.
func PointInPolygon(p Point, poly []Point) bool {
	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
