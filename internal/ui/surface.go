package ui

import (
	"image/color"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// canvasSurface turns renderer calls into fyne canvas objects placed relative
// to an origin inside the widget.
type canvasSurface struct {
	origin  fyne.Position
	objects []fyne.CanvasObject
}

func (s *canvasSurface) pos(p geometry.Point) fyne.Position {
	return fyne.NewPos(s.origin.X+float32(p.X), s.origin.Y+float32(p.Y))
}

func (s *canvasSurface) add(o fyne.CanvasObject) {
	s.objects = append(s.objects, o)
}

func (s *canvasSurface) FillRect(r geometry.Rect, fill color.Color) {
	rect := canvas.NewRectangle(fill)
	rect.Move(s.pos(geometry.Pt(r.X, r.Y)))
	rect.Resize(fyne.NewSize(float32(r.Width), float32(r.Height)))
	s.add(rect)
}

func (s *canvasSurface) Line(a, b geometry.Point, st render.Stroke) {
	if st.Width <= 0 || st.Color == nil {
		return
	}
	line := canvas.NewLine(st.Color)
	line.StrokeWidth = float32(st.Width)
	line.Position1 = s.pos(a)
	line.Position2 = s.pos(b)
	s.add(line)
}

func (s *canvasSurface) Circle(center geometry.Point, radius float64, fill color.Color, st render.Stroke) {
	c := canvas.NewCircle(transparentIfNil(fill))
	if st.Width > 0 && st.Color != nil {
		c.StrokeColor = st.Color
		c.StrokeWidth = float32(st.Width)
	}
	c.Move(s.pos(geometry.Pt(center.X-radius, center.Y-radius)))
	c.Resize(fyne.NewSize(float32(2*radius), float32(2*radius)))
	s.add(c)
}

// Polygon fills through a raster clipped to the polygon's bounds, then
// outlines with lines.
func (s *canvasSurface) Polygon(points []geometry.Point, fill color.Color, st render.Stroke) {
	if len(points) < 2 {
		return
	}
	if fill != nil && len(points) >= 3 {
		box := geometry.BoundingBox(points)
		pts := append([]geometry.Point(nil), points...)
		raster := canvas.NewRasterWithPixels(func(x, y, w, h int) color.Color {
			p := geometry.Pt(
				box.X+(float64(x)+0.5)*box.Width/float64(w),
				box.Y+(float64(y)+0.5)*box.Height/float64(h),
			)
			if geometry.PointInPolygon(p, pts) {
				return fill
			}
			return color.Transparent
		})
		raster.Move(s.pos(geometry.Pt(box.X, box.Y)))
		raster.Resize(fyne.NewSize(float32(box.Width), float32(box.Height)))
		s.add(raster)
	}
	if st.Width <= 0 {
		return
	}
	for i := range points {
		s.Line(points[i], points[(i+1)%len(points)], st)
	}
}

func (s *canvasSurface) Text(at geometry.Point, text string, ts render.TextStyle) {
	if text == "" || ts.Color == nil {
		return
	}
	style := fyne.TextStyle{Bold: ts.Bold}
	size := fyne.MeasureText(text, float32(ts.Size), style)

	topLeft := s.pos(at).SubtractXY(size.Width/2, 0)
	if ts.Anchor == render.AnchorCenter {
		topLeft = topLeft.SubtractXY(0, size.Height/2)
	}

	place := func(c color.Color, dx, dy float32) {
		t := canvas.NewText(text, c)
		t.TextSize = float32(ts.Size)
		t.TextStyle = style
		t.Move(topLeft.AddXY(dx, dy))
		t.Resize(size)
		s.add(t)
	}
	if ts.Halo != nil {
		for _, o := range [][2]float32{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			place(ts.Halo, o[0], o[1])
		}
	}
	place(ts.Color, 0, 0)
}

func transparentIfNil(c color.Color) color.Color {
	if c == nil {
		return color.Transparent
	}
	return c
}
