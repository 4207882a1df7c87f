package render

import (
	"image/color"

	"PlayBoard/internal/geometry"
)

// Stroke describes an outline. A zero Width means no outline.
type Stroke struct {
	Color color.Color
	Width float64
}

// Anchor says which point of a text box is placed at the text position.
type Anchor int

const (
	// AnchorCenter centers the text on the point.
	AnchorCenter Anchor = iota
	// AnchorTop centers the text horizontally with its top edge on the point.
	AnchorTop
)

// TextStyle describes how a label is drawn. A non-nil Halo draws an outline
// behind the glyphs.
type TextStyle struct {
	Size   float64
	Color  color.Color
	Halo   color.Color
	Bold   bool
	Anchor Anchor
}

// Surface is a drawing target. Implementations exist for the desktop canvas,
// PDF sheets, PNG thumbnails and tests.
type Surface interface {
	FillRect(r geometry.Rect, fill color.Color)
	Line(a, b geometry.Point, s Stroke)
	// Circle draws a circle; a nil fill leaves the interior empty.
	Circle(center geometry.Point, radius float64, fill color.Color, s Stroke)
	// Polygon draws a closed polygon; a nil fill leaves the interior empty.
	Polygon(points []geometry.Point, fill color.Color, s Stroke)
	Text(at geometry.Point, text string, style TextStyle)
}

// CommandKind names a recorded drawing call.
type CommandKind string

const (
	CmdFillRect CommandKind = "fill-rect"
	CmdLine     CommandKind = "line"
	CmdCircle   CommandKind = "circle"
	CmdPolygon  CommandKind = "polygon"
	CmdText     CommandKind = "text"
)

// Command is one recorded drawing call.
type Command struct {
	Kind   CommandKind
	Points []geometry.Point
	Radius float64
	Fill   color.Color
	Stroke Stroke
	Text   string
	Style  TextStyle
}

// Recorder is a Surface that keeps every call in order.
type Recorder struct {
	Commands []Command
}

func (r *Recorder) FillRect(rect geometry.Rect, fill color.Color) {
	r.Commands = append(r.Commands, Command{
		Kind:   CmdFillRect,
		Points: []geometry.Point{geometry.Pt(rect.X, rect.Y), geometry.Pt(rect.X+rect.Width, rect.Y+rect.Height)},
		Fill:   fill,
	})
}

func (r *Recorder) Line(a, b geometry.Point, s Stroke) {
	r.Commands = append(r.Commands, Command{Kind: CmdLine, Points: []geometry.Point{a, b}, Stroke: s})
}

func (r *Recorder) Circle(center geometry.Point, radius float64, fill color.Color, s Stroke) {
	r.Commands = append(r.Commands, Command{Kind: CmdCircle, Points: []geometry.Point{center}, Radius: radius, Fill: fill, Stroke: s})
}

func (r *Recorder) Polygon(points []geometry.Point, fill color.Color, s Stroke) {
	r.Commands = append(r.Commands, Command{Kind: CmdPolygon, Points: append([]geometry.Point(nil), points...), Fill: fill, Stroke: s})
}

func (r *Recorder) Text(at geometry.Point, text string, style TextStyle) {
	r.Commands = append(r.Commands, Command{Kind: CmdText, Points: []geometry.Point{at}, Text: text, Style: style})
}

// Filter returns the recorded commands of the given kind.
func (r *Recorder) Filter(kind CommandKind) []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops all recorded commands.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
}
