package board

import (
	"log"
	"sync"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/render"
	"PlayBoard/internal/state"
)

// Board owns a scene and the interaction state machine that edits it. Input
// handlers run synchronously; hooks fire after the board lock is released.
type Board struct {
	scene    *state.Scene
	clock    *state.Clock
	settings Settings
	style    Style
	mode     Mode
	tool     Tool
	state    State

	// drag
	downAt     geometry.Point
	dragID     string
	dragOffset geometry.Point
	restore    *geometry.Point

	// route/block construction
	drawKind   state.Kind
	drawOrigin string
	drawPoints []geometry.Point
	preview    *geometry.Point

	// vertex editing
	editID       string
	editIndex    int
	editOriginal geometry.Point

	pending []state.Op
	redraw  bool

	onChange func(state.Op)
	onRender func()
	mu       sync.Mutex
}

func New(size geometry.Size, settings Settings) *Board {
	return &Board{
		scene:    state.NewScene(size),
		clock:    state.NewClock(),
		settings: settings,
		style:    DefaultStyle(),
		mode:     ModeMove,
		tool:     ToolSelect,
		state:    Idle,
	}
}

// OnChange registers the hook called once per committed mutation.
func (b *Board) OnChange(fn func(state.Op)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// OnRender registers the hook called whenever the board needs repainting.
func (b *Board) OnRender(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRender = fn
}

// Scene exposes the underlying scene for read access.
func (b *Board) Scene() *state.Scene {
	return b.scene
}

// Clock returns the Lamport clock stamping this board's ops.
func (b *Board) Clock() *state.Clock {
	return b.clock
}

// update runs fn under the board lock and then delivers queued ops and redraws.
func (b *Board) update(fn func()) {
	b.mu.Lock()
	fn()
	ops, redraw := b.pending, b.redraw
	b.pending, b.redraw = nil, false
	onChange, onRender := b.onChange, b.onRender
	b.mu.Unlock()

	if onChange != nil {
		for _, op := range ops {
			onChange(op)
		}
	}
	if redraw && onRender != nil {
		onRender()
	}
}

func (b *Board) emit(t state.OpType, id string) {
	b.pending = append(b.pending, b.clock.Stamp(state.Op{Type: t, ElementID: id}))
	b.redraw = true
}

func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Board) Mode() Mode {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// SetMode switches the action mode. Any interaction in progress is cancelled.
func (b *Board) SetMode(m Mode) {
	b.update(func() {
		if b.mode == m {
			return
		}
		b.cancel()
		b.mode = m
		log.Printf("[BOARD] Mode set to %s", m)
	})
}

func (b *Board) Tool() Tool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tool
}

// SetTool switches the active tool. Any interaction in progress is cancelled.
func (b *Board) SetTool(t Tool) {
	b.update(func() {
		if b.tool == t {
			return
		}
		b.cancel()
		b.tool = t
		log.Printf("[BOARD] Tool set to %s", t)
	})
}

func (b *Board) Settings() Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

func (b *Board) SetSnap(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.Snap = enabled
}

func (b *Board) SetAvoidCollisions(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings.AvoidCollisions = enabled
}

// Style returns the defaults used for new elements.
func (b *Board) Style() Style {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.style
}

// SetStyle replaces the defaults used for new elements without touching the selection.
func (b *Board) SetStyle(s Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.style = s
}

// SelectedPosition returns a copy of the selected position, if a position is selected.
func (b *Board) SelectedPosition() (state.Position, bool) {
	e, ok := b.scene.Selected()
	if !ok {
		return state.Position{}, false
	}
	p, ok := e.(*state.Position)
	if !ok {
		return state.Position{}, false
	}
	return *p, true
}

// Selected returns a copy of the selected element.
func (b *Board) Selected() (state.Element, bool) {
	return b.scene.Selected()
}

// SetLabel renames the selected position.
func (b *Board) SetLabel(label string) bool {
	return b.editSelected(func(p *state.Position) { p.Label = label })
}

// SetPlayer sets the player name of the selected position.
func (b *Board) SetPlayer(player string) bool {
	return b.editSelected(func(p *state.Position) { p.Player = player })
}

// SetShape sets the default shape and reshapes the selected position.
func (b *Board) SetShape(shape state.Shape) bool {
	if !shape.Valid() {
		return false
	}
	b.mu.Lock()
	b.style.Shape = shape
	b.mu.Unlock()
	return b.editSelected(func(p *state.Position) { p.Shape = shape })
}

// SetColor sets the default color and recolors the selected position.
func (b *Board) SetColor(color string) bool {
	b.mu.Lock()
	b.style.Color = color
	b.mu.Unlock()
	return b.editSelected(func(p *state.Position) { p.Color = color })
}

func (b *Board) editSelected(fn func(p *state.Position)) bool {
	var changed bool
	b.update(func() {
		id := b.scene.SelectedID()
		if id == "" {
			return
		}
		if changed = b.scene.UpdatePosition(id, fn); changed {
			b.emit(state.OpUpdateElement, id)
		}
	})
	return changed
}

// Clear removes every element and cancels any interaction.
func (b *Board) Clear() {
	b.update(func() {
		b.cancel()
		b.scene.Clear()
		b.emit(state.OpClearScene, "")
		log.Printf("[BOARD] Cleared")
	})
}

// LoadLineup replaces the scene with the given positions.
func (b *Board) LoadLineup(positions []state.Position) {
	elements := make([]state.Element, 0, len(positions))
	for i := range positions {
		p := positions[i]
		elements = append(elements, &p)
	}
	b.update(func() {
		b.cancel()
		b.scene.Replace(elements)
		b.emit(state.OpReplaceScene, "")
		log.Printf("[BOARD] Loaded lineup with %d positions", len(elements))
	})
}

// Snapshot exports the committed scene.
func (b *Board) Snapshot() state.Snapshot {
	return b.scene.Snapshot()
}

// LoadSnapshot replaces the scene, rescaling the snapshot onto the board size.
func (b *Board) LoadSnapshot(snap state.Snapshot) {
	b.update(func() {
		b.cancel()
		b.scene.Restore(snap)
		b.emit(state.OpReplaceScene, "")
		log.Printf("[BOARD] Loaded snapshot with %d elements", len(snap.Elements))
	})
}

// Resize rescales the scene and any in-progress geometry to a new surface size.
func (b *Board) Resize(size geometry.Size) {
	b.update(func() {
		old := b.scene.Size()
		if size.Empty() || old == size {
			return
		}
		sx, sy := old.ScaleTo(size)
		b.scene.Resize(size)
		for i := range b.drawPoints {
			b.drawPoints[i] = b.drawPoints[i].Scale(sx, sy)
		}
		if b.preview != nil {
			p := b.preview.Scale(sx, sy)
			b.preview = &p
		}
		if b.restore != nil {
			p := b.restore.Scale(sx, sy)
			b.restore = &p
		}
		b.editOriginal = b.editOriginal.Scale(sx, sy)
		b.redraw = true
	})
}

// Frame captures everything the renderer needs for one paint.
func (b *Board) Frame() render.Frame {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := render.Frame{
		Size:     b.scene.Size(),
		Elements: b.scene.Elements(),
		Selected: b.scene.SelectedID(),
	}

	switch {
	case b.state.drawing():
		pv := &render.Preview{
			Kind:      b.drawKind,
			Color:     b.style.Color,
			Committed: append([]geometry.Point(nil), b.drawPoints...),
		}
		if last := len(b.drawPoints) - 1; last >= 0 && b.preview != nil {
			pv.Tentative = []geometry.Point{b.drawPoints[last], *b.preview}
		}
		f.Preview = pv
	case b.state.editing():
		e, ok := b.scene.Element(b.editID)
		if !ok || b.preview == nil {
			break
		}
		path, _ := state.PathOf(e)
		pv := &render.Preview{Kind: e.Kind(), Color: path.Color}
		if b.editIndex > 0 {
			pv.Tentative = append(pv.Tentative, path.Points[b.editIndex-1])
		}
		pv.Tentative = append(pv.Tentative, *b.preview)
		if b.editIndex+1 < len(path.Points) {
			pv.Tentative = append(pv.Tentative, path.Points[b.editIndex+1])
		}
		vertex := *b.preview
		pv.Vertex = &vertex
		f.Preview = pv
	}
	return f
}
