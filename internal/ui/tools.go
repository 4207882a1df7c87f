package ui

import (
	"image/color"
	"strings"

	"PlayBoard/internal/board"
	"PlayBoard/internal/render"
	"PlayBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Palette is the toolbar's color choices.
var Palette = []string{
	"#32CD32", "#007BFF", "#DC3545", "#28A745", "#FFC107",
	"#FF6B35", "#17A2B8", "#6C757D", "#000000", "#FFFFFF",
}

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.Hex))
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Toolbar holds the drawing controls. Sync updates it after the selection or
// style changes elsewhere.
type Toolbar struct {
	board *board.Board

	modes  *widget.RadioGroup
	tools  *widget.Select
	shapes *widget.Select
	swatch *canvas.Rectangle
	snap   *widget.Check
	avoid  *widget.Check

	syncing bool
}

// NewToolbar builds the controls. actions are extra buttons placed first.
func NewToolbar(b *board.Board, actions ...widget.ToolbarItem) (*Toolbar, fyne.CanvasObject) {
	t := &Toolbar{board: b}

	var modeNames []string
	for _, m := range board.Modes {
		modeNames = append(modeNames, title(string(m)))
	}
	t.modes = widget.NewRadioGroup(modeNames, func(s string) {
		if t.syncing || s == "" {
			return
		}
		b.SetMode(board.Mode(strings.ToLower(s)))
	})
	t.modes.Horizontal = true
	t.modes.Required = true

	var toolNames []string
	for _, tool := range board.Tools {
		toolNames = append(toolNames, title(string(tool)))
	}
	t.tools = widget.NewSelect(toolNames, func(s string) {
		if t.syncing {
			return
		}
		b.SetTool(board.Tool(strings.ToLower(s)))
	})

	var shapeNames []string
	for _, s := range state.Shapes {
		shapeNames = append(shapeNames, title(string(s)))
	}
	t.shapes = widget.NewSelect(shapeNames, func(s string) {
		if t.syncing {
			return
		}
		b.SetShape(state.Shape(strings.ToLower(s)))
	})

	t.swatch = canvas.NewRectangle(color.Transparent)
	t.swatch.SetMinSize(fyne.NewSize(24, 24))
	t.swatch.StrokeColor = color.White
	t.swatch.StrokeWidth = 2

	onColor := func(hex string) {
		b.SetColor(hex)
		t.Sync()
	}
	colorBox := container.NewHBox()
	for _, hex := range Palette {
		colorBox.Add(newColorSwatch(hex, onColor))
	}

	t.snap = widget.NewCheck("Snap", func(on bool) {
		if !t.syncing {
			b.SetSnap(on)
		}
	})
	t.avoid = widget.NewCheck("Avoid", func(on bool) {
		if !t.syncing {
			b.SetAvoidCollisions(on)
		}
	})

	t.Sync()

	items := append([]widget.ToolbarItem(nil), actions...)
	items = append(items, widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			b.HandleKey(board.KeyEscape)
		}),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			b.HandleKey(board.KeyDelete)
		}),
	)

	bar := container.NewVBox(
		container.NewHBox(
			widget.NewToolbar(items...),
			widget.NewSeparator(),
			widget.NewLabel("Mode:"), t.modes,
			layout.NewSpacer(),
			t.snap, t.avoid,
		),
		container.NewHBox(
			widget.NewLabel("Tool:"), t.tools,
			widget.NewSeparator(),
			widget.NewLabel("Shape:"), t.shapes,
			widget.NewSeparator(),
			widget.NewLabel("Color:"), t.swatch, colorBox,
		),
	)
	return t, bar
}

// Sync reflects the board's mode, tool, style and settings in the controls.
func (t *Toolbar) Sync() {
	t.syncing = true
	defer func() { t.syncing = false }()

	t.modes.SetSelected(title(string(t.board.Mode())))
	t.tools.SetSelected(title(string(t.board.Tool())))

	style := t.board.Style()
	if p, ok := t.board.SelectedPosition(); ok {
		style.Shape, style.Color = p.Shape, p.Color
	}
	t.shapes.SetSelected(title(string(style.Shape)))
	t.swatch.FillColor = render.ParseColor(style.Color)
	t.swatch.Refresh()

	settings := t.board.Settings()
	t.snap.SetChecked(settings.Snap)
	t.avoid.SetChecked(settings.AvoidCollisions)
}
