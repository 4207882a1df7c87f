package geometry

const detourSamples = 8

// DetourOptions controls the search for an intermediate point that keeps a
// segment clear of obstacles.
type DetourOptions struct {
	// Radius is the distance from the segment midpoint at which candidates are sampled.
	Radius float64
	// Clearance is the minimum distance both legs must keep from every obstacle.
	Clearance float64
	// Attempts bounds how many of the eight candidates are tried, in angular order.
	Attempts int
	// Bounds, when not empty, rejects candidates outside the surface.
	Bounds Size
}

// FindDetour looks for a point c such that a->c and c->b both stay at least
// opts.Clearance away from every obstacle. Candidates are sampled at eight angles
// (0, 45, ... 315 degrees) at a fixed radius around the midpoint of ab and the
// first clear one wins.
func FindDetour(a, b Point, obstacles []Point, opts DetourOptions) (Point, bool) {
	if opts.Radius <= 0 || opts.Attempts <= 0 {
		return Point{}, false
	}

	mid := a.Midpoint(b)
	candidates := CirclePoints(mid, opts.Radius, detourSamples)
	if opts.Attempts < len(candidates) {
		candidates = candidates[:opts.Attempts]
	}
	for _, c := range candidates {
		if !opts.Bounds.Empty() && !opts.Bounds.Contains(c) {
			continue
		}
		if SegmentNearAny(a, c, obstacles, opts.Clearance) || SegmentNearAny(c, b, obstacles, opts.Clearance) {
			continue
		}
		return c, true
	}
	return Point{}, false
}
