package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/render"
	"PlayBoard/internal/state"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// circleSegments is the polygon resolution used for rasterized circles.
const circleSegments = 48

// Raster is a Surface backed by an RGBA image.
type Raster struct {
	img  *image.RGBA
	face font.Face
}

func NewRaster(width, height int) *Raster {
	return &Raster{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: basicfont.Face7x13,
	}
}

// Image returns the backing image.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

func (r *Raster) fill(points []geometry.Point, c color.Color) {
	if len(points) < 3 || c == nil {
		return
	}
	b := r.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
	z.Draw(r.img, b, image.NewUniform(c), image.Point{})
}

func (r *Raster) FillRect(rect geometry.Rect, fill color.Color) {
	r.fill([]geometry.Point{
		geometry.Pt(rect.X, rect.Y),
		geometry.Pt(rect.X+rect.Width, rect.Y),
		geometry.Pt(rect.X+rect.Width, rect.Y+rect.Height),
		geometry.Pt(rect.X, rect.Y+rect.Height),
	}, fill)
}

// Line draws the segment as a quad of the stroke width.
func (r *Raster) Line(a, b geometry.Point, s render.Stroke) {
	if s.Width <= 0 || s.Color == nil {
		return
	}
	d := a.Distance(b)
	if d == 0 {
		return
	}
	half := s.Width / 2
	nx, ny := -(b.Y-a.Y)/d*half, (b.X-a.X)/d*half
	r.fill([]geometry.Point{
		geometry.Pt(a.X+nx, a.Y+ny),
		geometry.Pt(b.X+nx, b.Y+ny),
		geometry.Pt(b.X-nx, b.Y-ny),
		geometry.Pt(a.X-nx, a.Y-ny),
	}, s.Color)
}

func (r *Raster) Circle(center geometry.Point, radius float64, fill color.Color, s render.Stroke) {
	r.Polygon(geometry.CirclePoints(center, radius, circleSegments), fill, s)
}

func (r *Raster) Polygon(points []geometry.Point, fill color.Color, s render.Stroke) {
	r.fill(points, fill)
	if s.Width <= 0 || len(points) < 2 {
		return
	}
	for i := range points {
		r.Line(points[i], points[(i+1)%len(points)], s)
	}
}

// Text uses a fixed bitmap face; the requested size is ignored.
func (r *Raster) Text(at geometry.Point, text string, ts render.TextStyle) {
	if text == "" || ts.Color == nil {
		return
	}
	width := font.MeasureString(r.face, text).Ceil()
	m := r.face.Metrics()
	x := int(math.Round(at.X)) - width/2
	y := int(math.Round(at.Y))
	switch ts.Anchor {
	case render.AnchorTop:
		y += m.Ascent.Ceil()
	default:
		y += (m.Ascent.Ceil() - m.Descent.Ceil()) / 2
	}

	if ts.Halo != nil {
		for _, o := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			r.drawString(x+o[0], y+o[1], text, ts.Halo)
		}
	}
	r.drawString(x, y, text, ts.Color)
}

func (r *Raster) drawString(x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// Thumbnail renders snap scaled to width x height pixels.
func Thumbnail(snap state.Snapshot, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("export: thumbnail: bad size %dx%d", width, height)
	}
	size := geometry.NewSize(float64(width), float64(height))
	scaled := snap.ScaledTo(size)

	r := NewRaster(width, height)
	render.NewRenderer().Draw(r, render.Frame{Size: size, Elements: scaled.Elements})
	return r.Image(), nil
}

// WritePNG encodes a thumbnail of snap to w.
func WritePNG(w io.Writer, snap state.Snapshot, width, height int) error {
	img, err := Thumbnail(snap, width, height)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}
