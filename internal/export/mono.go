package export

import (
	"image/color"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/render"
)

// Monochrome wraps a surface for black-and-white printing: the field becomes
// white and every other color turns black, keeping its alpha.
type Monochrome struct {
	render.Surface
}

func ink(c color.Color) color.Color {
	if c == nil {
		return nil
	}
	_, _, _, a := c.RGBA()
	return color.NRGBA64{A: uint16(a)}
}

func (m Monochrome) FillRect(r geometry.Rect, fill color.Color) {
	m.Surface.FillRect(r, paper(fill))
}

func (m Monochrome) Line(a, b geometry.Point, s render.Stroke) {
	m.Surface.Line(a, b, render.Stroke{Color: ink(s.Color), Width: s.Width})
}

// Circle keeps filled shapes readable by filling white and outlining black.
func (m Monochrome) Circle(center geometry.Point, radius float64, fill color.Color, s render.Stroke) {
	m.Surface.Circle(center, radius, paper(fill), outline(s))
}

func (m Monochrome) Polygon(points []geometry.Point, fill color.Color, s render.Stroke) {
	m.Surface.Polygon(points, paper(fill), outline(s))
}

func (m Monochrome) Text(at geometry.Point, text string, ts render.TextStyle) {
	ts.Color = color.Black
	ts.Halo = nil
	m.Surface.Text(at, text, ts)
}

func paper(fill color.Color) color.Color {
	if fill == nil {
		return nil
	}
	return color.White
}

func outline(s render.Stroke) render.Stroke {
	if s.Width <= 0 {
		s.Width = 2
	}
	s.Color = color.Black
	return s
}
