package geometry

import "math"

// Field describes the slice of a football field shown on the board: a band of
// LengthYards yards (split evenly around the center line) across the full
// CrossUnits-wide field.
type Field struct {
	CrossUnits  float64
	LengthYards float64
}

// DefaultField is a vertical 30-yard window of a 53.3-yard-wide field.
var DefaultField = Field{CrossUnits: 53.3, LengthYards: 30}

// Aspect returns the width/height ratio of the field.
func (f Field) Aspect() float64 {
	return f.CrossUnits / f.LengthYards
}

// Fit returns the largest field-shaped size that fits inside container.
func (f Field) Fit(container Size) Size {
	if container.Empty() {
		return Size{}
	}
	aspect := f.Aspect()
	height := container.Height
	width := height * aspect
	if width > container.Width {
		width = container.Width
		height = width / aspect
	}
	return Size{Width: width, Height: height}
}

// SnapStep returns the grid spacing for a surface of the given size: one
// crosswise unit horizontally and a quarter yard vertically.
func (f Field) SnapStep(size Size) (dx, dy float64) {
	cross := math.Round(f.CrossUnits)
	quarters := f.LengthYards * 4
	if size.Empty() || cross <= 0 || quarters <= 0 {
		return 0, 0
	}
	return size.Width / cross, size.Height / quarters
}

// Snap quantizes p to the field grid when enabled and returns it unchanged otherwise.
func (f Field) Snap(p Point, size Size, enabled bool) Point {
	if !enabled {
		return p
	}
	dx, dy := f.SnapStep(size)
	if dx == 0 || dy == 0 {
		return p
	}
	return Point{X: snapValue(p.X, dx), Y: snapValue(p.Y, dy)}
}

// SnapToGrid snaps p on the default field.
func SnapToGrid(p Point, size Size, enabled bool) Point {
	return DefaultField.Snap(p, size, enabled)
}

func snapValue(v, step float64) float64 {
	return math.Round(v/step) * step
}
