package render

import (
	"PlayBoard/internal/geometry"
)

// Dashes splits segment ab into visible dash pieces of length on separated by
// gaps of length off. A non-positive pattern yields the whole segment.
func Dashes(a, b geometry.Point, on, off float64) [][2]geometry.Point {
	length := a.Distance(b)
	if length == 0 {
		return nil
	}
	if on <= 0 || off < 0 {
		return [][2]geometry.Point{{a, b}}
	}

	angle := a.Angle(b)
	var out [][2]geometry.Point
	for d := 0.0; d < length; d += on + off {
		end := d + on
		if end > length {
			end = length
		}
		out = append(out, [2]geometry.Point{a.Polar(d, angle), a.Polar(end, angle)})
	}
	return out
}
