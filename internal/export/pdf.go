// Package export turns plays into printable PDF sheets and PNG thumbnails by
// running the board renderer against non-screen surfaces.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/render"
	"PlayBoard/internal/store"

	"github.com/jung-kurt/gofpdf"
)

// FontSize names the play title size on a sheet.
type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

func (f FontSize) points() float64 {
	switch f {
	case FontSmall:
		return 12
	case FontLarge:
		return 18
	default:
		return 16
	}
}

// Layout arranges plays on A4 landscape pages.
type Layout struct {
	Columns  int
	Rows     int
	Color    bool
	FontSize FontSize
}

func DefaultLayout() Layout {
	return Layout{Columns: 2, Rows: 3, Color: true, FontSize: FontMedium}
}

const (
	pageMargin = 10.0
	cellGap    = 5.0
	cellPad    = 3.0
	mmPerPt    = 25.4 / 72
)

// Pages is how many sheets n plays fill.
func (l Layout) Pages(n int) int {
	per := l.Columns * l.Rows
	if per <= 0 || n <= 0 {
		return 0
	}
	return (n + per - 1) / per
}

// PlaySheet writes a PDF with one bordered cell per play, filled in row order.
func PlaySheet(w io.Writer, plays []store.Play, layout Layout) error {
	if len(plays) == 0 {
		return fmt.Errorf("export: play sheet: no plays")
	}
	if layout.Columns <= 0 || layout.Rows <= 0 {
		return fmt.Errorf("export: play sheet: bad layout %dx%d", layout.Columns, layout.Rows)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Football Plays", true)
	pdf.SetAutoPageBreak(false, 0)
	pageW, pageH := pdf.GetPageSize()

	cellW := (pageW - 2*pageMargin - float64(layout.Columns-1)*cellGap) / float64(layout.Columns)
	cellH := (pageH - 2*pageMargin - float64(layout.Rows-1)*cellGap) / float64(layout.Rows)
	titleH := layout.FontSize.points()*mmPerPt + 2
	perPage := layout.Columns * layout.Rows
	r := render.NewRenderer()

	for i, play := range plays {
		slot := i % perPage
		if slot == 0 {
			pdf.AddPage()
		}
		x := pageMargin + float64(slot%layout.Columns)*(cellW+cellGap)
		y := pageMargin + float64(slot/layout.Columns)*(cellH+cellGap)

		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Rect(x, y, cellW, cellH, "D")

		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", layout.FontSize.points())
		pdf.SetXY(x, y+cellPad)
		pdf.CellFormat(cellW, titleH, pdf.UnicodeTranslatorFromDescriptor("")(play.Name), "", 0, "C", false, 0, "")

		box := geometry.NewRect(x+cellPad, y+cellPad+titleH, cellW-2*cellPad, cellH-2*cellPad-titleH)
		if box.Width <= 0 || box.Height <= 0 {
			continue
		}
		drawPlay(pdf, r, play, box, layout.Color)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("export: play sheet: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("export: play sheet: %w", err)
	}
	return nil
}

// drawPlay renders the play inside box, keeping the canvas aspect ratio.
func drawPlay(pdf *gofpdf.Fpdf, r *render.Renderer, play store.Play, box geometry.Rect, colored bool) {
	size := play.Data.CanvasSize
	if size.Empty() {
		return
	}
	scale := math.Min(box.Width/size.Width, box.Height/size.Height)
	offset := geometry.Pt(
		box.X+(box.Width-size.Width*scale)/2,
		box.Y+(box.Height-size.Height*scale)/2,
	)

	var s render.Surface = &pdfSurface{pdf: pdf, scale: scale, offset: offset}
	if !colored {
		s = Monochrome{s}
	}
	pdf.ClipRect(offset.X, offset.Y, size.Width*scale, size.Height*scale, false)
	r.Draw(s, render.Frame{Size: size, Elements: play.Data.Elements})
	pdf.ClipEnd()
}

// pdfSurface maps board pixels onto page millimetres.
type pdfSurface struct {
	pdf    *gofpdf.Fpdf
	scale  float64
	offset geometry.Point
	tr     func(string) string
}

func (s *pdfSurface) pt(p geometry.Point) (float64, float64) {
	return s.offset.X + p.X*s.scale, s.offset.Y + p.Y*s.scale
}

func rgb8(c color.Color) (r, g, b int, alpha float64) {
	cr, cg, cb, ca := c.RGBA()
	if ca == 0 {
		return 0, 0, 0, 0
	}
	// un-premultiply
	return int(cr * 0xff / ca), int(cg * 0xff / ca), int(cb * 0xff / ca), float64(ca) / 0xffff
}

// style sets draw and fill state and returns the gofpdf style string, or ""
// when nothing would be visible.
func (s *pdfSurface) style(fill color.Color, st render.Stroke) string {
	out := ""
	alpha := 1.0
	if fill != nil {
		r, g, b, a := rgb8(fill)
		if a > 0 {
			s.pdf.SetFillColor(r, g, b)
			alpha = a
			out += "F"
		}
	}
	if st.Width > 0 && st.Color != nil {
		r, g, b, a := rgb8(st.Color)
		if a > 0 {
			s.pdf.SetDrawColor(r, g, b)
			s.pdf.SetLineWidth(st.Width * s.scale)
			alpha = math.Min(alpha, a)
			out = "D" + out
		}
	}
	s.pdf.SetAlpha(alpha, "Normal")
	return out
}

func (s *pdfSurface) FillRect(r geometry.Rect, fill color.Color) {
	if st := s.style(fill, render.Stroke{}); st != "" {
		x, y := s.pt(geometry.Pt(r.X, r.Y))
		s.pdf.Rect(x, y, r.Width*s.scale, r.Height*s.scale, st)
	}
}

func (s *pdfSurface) Line(a, b geometry.Point, st render.Stroke) {
	if s.style(nil, st) == "" {
		return
	}
	s.pdf.SetLineCapStyle("round")
	ax, ay := s.pt(a)
	bx, by := s.pt(b)
	s.pdf.Line(ax, ay, bx, by)
}

func (s *pdfSurface) Circle(center geometry.Point, radius float64, fill color.Color, st render.Stroke) {
	if style := s.style(fill, st); style != "" {
		x, y := s.pt(center)
		s.pdf.Circle(x, y, radius*s.scale, style)
	}
}

func (s *pdfSurface) Polygon(points []geometry.Point, fill color.Color, st render.Stroke) {
	if len(points) < 2 {
		return
	}
	style := s.style(fill, st)
	if style == "" {
		return
	}
	pts := make([]gofpdf.PointType, len(points))
	for i, p := range points {
		pts[i].X, pts[i].Y = s.pt(p)
	}
	s.pdf.Polygon(pts, style)
}

func (s *pdfSurface) Text(at geometry.Point, text string, ts render.TextStyle) {
	if text == "" || ts.Color == nil {
		return
	}
	if s.tr == nil {
		s.tr = s.pdf.UnicodeTranslatorFromDescriptor("")
	}
	text = s.tr(text)

	fontStyle := ""
	if ts.Bold {
		fontStyle = "B"
	}
	sizeMM := ts.Size * s.scale
	s.pdf.SetFont("Helvetica", fontStyle, sizeMM/mmPerPt)

	x, y := s.pt(at)
	x -= s.pdf.GetStringWidth(text) / 2
	switch ts.Anchor {
	case render.AnchorTop:
		y += sizeMM * 0.8
	default:
		y += sizeMM * 0.35
	}

	r, g, b, a := rgb8(ts.Color)
	s.pdf.SetAlpha(a, "Normal")
	if ts.Halo != nil {
		r, g, b, _ := rgb8(ts.Halo)
		s.pdf.SetTextColor(r, g, b)
		d := math.Max(sizeMM*0.08, 0.1)
		for _, o := range [][2]float64{{-d, 0}, {d, 0}, {0, -d}, {0, d}} {
			s.pdf.Text(x+o[0], y+o[1], text)
		}
	}
	s.pdf.SetTextColor(r, g, b)
	s.pdf.Text(x, y, text)
}
