package ui

import (
	"image/color"
	"sync"
	"time"

	"PlayBoard/internal/board"
	"PlayBoard/internal/geometry"
	"PlayBoard/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

var backdrop = color.NRGBA{R: 0x1e, G: 0x1e, B: 0x1e, A: 0xff}

// BoardWidget shows a board and translates fyne mouse, touch and key events
// into board pointer events. The field keeps its aspect ratio and is centered
// in the widget.
type BoardWidget struct {
	widget.BaseWidget

	board    *board.Board
	renderer *render.Renderer
	field    geometry.Field
	debounce time.Duration

	// ReadOnly ignores all input; used when following a host.
	ReadOnly bool
	// OnRedraw runs on the UI goroutine after each board-driven refresh.
	OnRedraw func()

	mu      sync.Mutex
	origin  fyne.Position
	size    fyne.Size
	timer   *time.Timer
	pressed bool
	last    geometry.Point
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Focusable = (*BoardWidget)(nil)
var _ fyne.DoubleTappable = (*BoardWidget)(nil)
var _ fyne.SecondaryTappable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)
var _ mobile.Touchable = (*BoardWidget)(nil)

func NewBoardWidget(b *board.Board, field geometry.Field, debounce time.Duration) *BoardWidget {
	w := &BoardWidget{
		board:    b,
		renderer: render.NewRenderer(),
		field:    field,
		debounce: debounce,
	}
	w.ExtendBaseWidget(w)
	b.OnRender(func() {
		fyne.Do(func() {
			w.Refresh()
			if w.OnRedraw != nil {
				w.OnRedraw()
			}
		})
	})
	return w
}

func (w *BoardWidget) toBoard(p fyne.Position) geometry.Point {
	w.mu.Lock()
	defer w.mu.Unlock()
	return geometry.Pt(float64(p.X-w.origin.X), float64(p.Y-w.origin.Y))
}

func (w *BoardWidget) send(ev board.PointerEvent) {
	if w.ReadOnly {
		return
	}
	w.board.HandlePointer(ev)
}

func (w *BoardWidget) focus() {
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		c.Focus(w)
	}
}

func (w *BoardWidget) press(pos fyne.Position, device board.Device) {
	if w.ReadOnly {
		return
	}
	at := w.toBoard(pos)
	w.mu.Lock()
	w.pressed, w.last = true, at
	w.mu.Unlock()
	w.send(board.PointerEvent{Type: board.PointerDown, Pos: at, Device: device})
}

func (w *BoardWidget) move(pos fyne.Position, device board.Device) {
	at := w.toBoard(pos)
	w.mu.Lock()
	w.last = at
	w.mu.Unlock()
	w.send(board.PointerEvent{Type: board.PointerMove, Pos: at, Device: device})
}

// release sends a single pointer-up per press; fyne can report both MouseUp
// and DragEnd for the same gesture.
func (w *BoardWidget) release(pos *fyne.Position, device board.Device) {
	w.mu.Lock()
	if !w.pressed {
		w.mu.Unlock()
		return
	}
	w.pressed = false
	at := w.last
	w.mu.Unlock()
	if pos != nil {
		at = w.toBoard(*pos)
	}
	w.send(board.PointerEvent{Type: board.PointerUp, Pos: at, Device: device})
}

func (w *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	w.focus()
	if e.Button == desktop.MouseButtonPrimary {
		w.press(e.Position, board.DeviceMouse)
	}
}

func (w *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		w.release(&e.Position, board.DeviceMouse)
	}
}

func (w *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (w *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	w.move(e.Position, board.DeviceMouse)
}

func (w *BoardWidget) MouseOut() {}

func (w *BoardWidget) Dragged(e *fyne.DragEvent) {
	w.move(e.Position, board.DeviceMouse)
}

func (w *BoardWidget) DragEnd() {
	w.release(nil, board.DeviceMouse)
}

func (w *BoardWidget) TouchDown(e *mobile.TouchEvent) {
	w.press(e.Position, board.DeviceTouch)
}

func (w *BoardWidget) TouchUp(e *mobile.TouchEvent) {
	w.release(&e.Position, board.DeviceTouch)
}

func (w *BoardWidget) TouchCancel(*mobile.TouchEvent) {
	w.release(nil, board.DeviceTouch)
}

// TappedSecondary covers right-click on desktop and long-press on touch.
func (w *BoardWidget) TappedSecondary(e *fyne.PointEvent) {
	w.mu.Lock()
	w.pressed = false
	w.mu.Unlock()
	w.send(board.PointerEvent{Type: board.PointerDown, Button: board.ButtonSecondary, Pos: w.toBoard(e.Position)})
}

func (w *BoardWidget) DoubleTapped(e *fyne.PointEvent) {
	if s := w.board.State(); s != board.RouteDrawing && s != board.BlockDrawing {
		return
	}
	w.send(board.PointerEvent{Type: board.PointerDown, Pos: w.toBoard(e.Position), DoubleClick: true})
}

func (w *BoardWidget) FocusGained() {}
func (w *BoardWidget) FocusLost()   {}
func (w *BoardWidget) TypedRune(rune) {}

func (w *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	if w.ReadOnly {
		return
	}
	switch e.Name {
	case fyne.KeyDelete:
		w.board.HandleKey(board.KeyDelete)
	case fyne.KeyEscape:
		w.board.HandleKey(board.KeyEscape)
	case fyne.KeyBackspace:
		w.board.HandleKey(board.KeyBackspace)
	case fyne.KeyReturn, fyne.KeyEnter:
		w.board.HandleKey(board.KeyEnter)
	}
}

// layoutChanged rescales the board to the new widget size after the debounce
// delay. The first layout applies immediately.
func (w *BoardWidget) layoutChanged(size fyne.Size) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if size == w.size {
		return
	}
	first := w.size.IsZero()
	w.size = size
	if w.timer != nil {
		w.timer.Stop()
	}
	if first || w.debounce <= 0 {
		go fyne.Do(func() { w.applySize(size) })
		return
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		fyne.Do(func() { w.applySize(size) })
	})
}

func (w *BoardWidget) applySize(size fyne.Size) {
	fit := w.field.Fit(geometry.NewSize(float64(size.Width), float64(size.Height)))
	w.mu.Lock()
	if size != w.size {
		w.mu.Unlock()
		return
	}
	w.origin = fyne.NewPos(
		(size.Width-float32(fit.Width))/2,
		(size.Height-float32(fit.Height))/2,
	)
	w.mu.Unlock()

	w.board.Resize(fit)
	w.Refresh()
}

func (w *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: w, background: canvas.NewRectangle(backdrop)}
	r.Refresh()
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *boardWidgetRenderer) Refresh() {
	w := r.board
	w.mu.Lock()
	surface := &canvasSurface{origin: w.origin}
	w.mu.Unlock()

	w.renderer.Draw(surface, w.board.Frame())
	r.objects = append([]fyne.CanvasObject{r.background}, surface.objects...)
	canvas.Refresh(w)
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.board.layoutChanged(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 180)
}

func (r *boardWidgetRenderer) Destroy() {
	w := r.board
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}
