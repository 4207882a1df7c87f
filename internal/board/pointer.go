package board

import (
	"log"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/state"
)

// HandlePointer feeds one pointer event through the state machine.
func (b *Board) HandlePointer(ev PointerEvent) {
	b.update(func() {
		switch ev.Type {
		case PointerDown:
			if ev.Button == ButtonSecondary {
				b.secondary()
				return
			}
			b.pointerDown(ev)
		case PointerMove:
			b.pointerMove(ev.Pos)
		case PointerUp:
			if ev.Button == ButtonPrimary {
				b.pointerUp()
			}
		}
	})
}

// HandleKey applies a keyboard command.
func (b *Board) HandleKey(k Key) {
	b.update(func() {
		switch k {
		case KeyDelete:
			b.deleteSelected()
		case KeyEscape:
			if b.state != Idle {
				b.cancel()
				b.redraw = true
			}
		case KeyBackspace:
			if b.state.drawing() && len(b.drawPoints) > 2 {
				b.drawPoints = b.drawPoints[:len(b.drawPoints)-1]
				b.redraw = true
			}
		case KeyEnter:
			if b.state.drawing() {
				b.finish()
			}
		}
	})
}

func (b *Board) snap(p geometry.Point) geometry.Point {
	return b.settings.Field.Snap(p, b.scene.Size(), b.settings.Snap)
}

func (b *Board) pointerDown(ev PointerEvent) {
	switch {
	case b.state.drawing():
		if ev.DoubleClick {
			b.finish()
			return
		}
		b.appendVertex(b.vertexAt(ev.Pos))
		b.redraw = true
		return
	case b.state != Idle:
		return
	}

	mode := b.mode
	switch b.tool {
	case ToolRoute:
		mode = ModeRoute
	case ToolBlock:
		mode = ModeBlock
	}

	hit, ok := b.scene.PickFor(ev.Pos, mode.edits)
	if !ok {
		b.pressEmpty(ev.Pos)
		return
	}

	switch hit.Target {
	case state.TargetPosition:
		b.pressPosition(hit.Element.(*state.Position), ev.Pos, mode)
	case state.TargetVertex:
		if mode.edits(hit.Element.Kind()) {
			b.startEdit(hit.Element, hit.Index)
			return
		}
		b.scene.Select(hit.Element.ElementID())
		b.redraw = true
	case state.TargetSegment:
		b.scene.Select(hit.Element.ElementID())
		b.redraw = true
	}
}

func (b *Board) pressEmpty(at geometry.Point) {
	switch b.tool {
	case ToolPosition:
		center := b.snap(at)
		id := b.scene.Add(&state.Position{
			X:      center.X,
			Y:      center.Y,
			Shape:  b.style.Shape,
			Color:  b.style.Color,
			Label:  b.style.Label,
			Player: b.style.Player,
		})
		b.scene.Select(id)
		b.emit(state.OpInsertElement, id)
	case ToolRoute:
		b.startPath(state.KindRoute, "", b.snap(at))
	case ToolBlock:
		b.startPath(state.KindBlock, "", b.snap(at))
	default:
		if b.scene.SelectedID() != "" {
			b.scene.Select("")
			b.redraw = true
		}
	}
}

func (b *Board) pressPosition(p *state.Position, at geometry.Point, mode Mode) {
	b.scene.Select(p.ID)
	b.redraw = true

	switch mode {
	case ModeMove:
		b.state = PotentialDrag
		b.downAt = at
		b.dragID = p.ID
		b.dragOffset = p.Center().Sub(at)
		center := p.Center()
		b.restore = &center
	case ModeRoute:
		b.startFrom(state.KindRoute, p)
	case ModeBlock:
		b.startFrom(state.KindBlock, p)
	}
}

// startFrom begins a path owned by p, replacing the one p already owns.
func (b *Board) startFrom(kind state.Kind, p *state.Position) {
	if prior, ok := b.scene.PathFrom(p.ID, kind); ok {
		log.Printf("[BOARD] Replacing %s %s from %s", kind, prior, p.ID)
	}
	for _, id := range b.scene.RemovePathsFrom(p.ID, kind) {
		b.emit(state.OpDeleteElement, id)
	}
	b.scene.Select(p.ID)
	b.startPath(kind, p.ID, p.Center())
}

func (b *Board) startPath(kind state.Kind, origin string, first geometry.Point) {
	b.resetConstruction()
	b.drawKind = kind
	b.drawOrigin = origin
	b.drawPoints = []geometry.Point{first}
	if kind == state.KindBlock {
		b.state = BlockDrawing
	} else {
		b.state = RouteDrawing
	}
	b.redraw = true
	log.Printf("[BOARD] Started %s at (%.0f, %.0f)", kind, first.X, first.Y)
}

func (b *Board) startEdit(e state.Element, index int) {
	path, _ := state.PathOf(e)
	b.editID = e.ElementID()
	b.editIndex = index
	b.editOriginal = path.Points[index]
	original := b.editOriginal
	b.preview = &original
	if e.Kind() == state.KindBlock {
		b.state = EditingBlockPoint
	} else {
		b.state = EditingRoutePoint
	}
	b.scene.Select(e.ElementID())
	b.redraw = true
}

// vertexAt returns the point a click at p contributes to a path: the center of
// a position other than the path's origin, or the snapped point.
func (b *Board) vertexAt(p geometry.Point) geometry.Point {
	if hit, ok := b.scene.PickFor(p, nil); ok && hit.Target == state.TargetPosition && hit.Element.ElementID() != b.drawOrigin {
		return hit.Element.(*state.Position).Center()
	}
	return b.snap(p)
}

// appendVertex extends the path under construction to p, inserting a detour
// point when the direct segment would cross a position.
func (b *Board) appendVertex(p geometry.Point) {
	if len(b.drawPoints) == 0 {
		b.drawPoints = append(b.drawPoints, p)
		return
	}
	last := b.drawPoints[len(b.drawPoints)-1]
	if last == p {
		return
	}

	if b.settings.AvoidCollisions {
		radius := b.settings.CollisionRadius
		obstacles := state.Obstacles(last, p, b.scene.Positions(), radius)
		if state.SegmentIntersectsAnyPosition(last, p, obstacles, radius) {
			detour, ok := geometry.FindDetour(last, p, state.Centers(obstacles), geometry.DetourOptions{
				Radius:    b.settings.DetourRadius,
				Clearance: radius,
				Attempts:  b.settings.DetourAttempts,
				Bounds:    b.scene.Size(),
			})
			if ok {
				b.drawPoints = append(b.drawPoints, detour)
			} else {
				log.Printf("[BOARD] No clear detour from (%.0f, %.0f) to (%.0f, %.0f)", last.X, last.Y, p.X, p.Y)
			}
		}
	}
	b.drawPoints = append(b.drawPoints, p)
}

func (b *Board) pointerMove(at geometry.Point) {
	switch b.state {
	case PotentialDrag:
		if at.Distance(b.downAt) < b.settings.DragThreshold {
			return
		}
		b.state = Dragging
		fallthrough
	case Dragging:
		b.scene.MovePosition(b.dragID, b.snap(at.Add(b.dragOffset)))
		b.redraw = true
	case RouteDrawing, BlockDrawing, EditingRoutePoint, EditingBlockPoint:
		p := b.snap(at)
		b.preview = &p
		b.redraw = true
	}
}

func (b *Board) pointerUp() {
	switch b.state {
	case PotentialDrag:
		b.resetDrag()
		b.state = Idle
	case Dragging:
		id := b.dragID
		b.resetDrag()
		b.state = Idle
		b.emit(state.OpUpdateElement, id)
	case EditingRoutePoint, EditingBlockPoint:
		id, index, p := b.editID, b.editIndex, *b.preview
		changed := p != b.editOriginal
		b.resetConstruction()
		b.state = Idle
		if changed && b.scene.ReplacePoint(id, index, p) {
			b.emit(state.OpUpdateElement, id)
		}
		b.redraw = true
	}
}

// secondary finishes a path under construction, puts a dragged position back,
// or cancels whatever else is going on.
func (b *Board) secondary() {
	switch {
	case b.state.drawing():
		b.finish()
	case b.state != Idle:
		b.cancel()
	}
	b.scene.Select("")
	b.redraw = true
}

// finish commits the path under construction. Routes keep the preview point;
// blocks end at the last clicked point.
func (b *Board) finish() {
	if b.drawKind == state.KindRoute && b.preview != nil {
		b.appendVertex(*b.preview)
	}
	kind, points, origin := b.drawKind, b.drawPoints, b.drawOrigin
	b.resetConstruction()
	b.state = Idle
	b.redraw = true

	id, ok := b.scene.AppendPath(kind, points, b.style.Color, origin)
	if !ok {
		log.Printf("[BOARD] Discarded %s with %d points", kind, len(points))
		return
	}
	b.emit(state.OpInsertElement, id)
	log.Printf("[BOARD] Added %s %s with %d points", kind, id, len(points))
}

// cancel drops any in-progress interaction, restoring a dragged position.
func (b *Board) cancel() {
	if b.state == Dragging && b.restore != nil {
		b.scene.MovePosition(b.dragID, *b.restore)
		b.redraw = true
	}
	if b.state != Idle {
		b.scene.Select("")
		b.redraw = true
	}
	b.resetDrag()
	b.resetConstruction()
	b.state = Idle
}

func (b *Board) deleteSelected() {
	if b.state != Idle {
		return
	}
	id := b.scene.SelectedID()
	if id == "" {
		return
	}
	e, ok := b.scene.Element(id)
	if !ok {
		return
	}
	if e.Kind() == state.KindPosition {
		for _, detached := range b.scene.DetachPaths(id) {
			b.emit(state.OpUpdateElement, detached)
		}
	}
	if b.scene.Remove(id) {
		b.emit(state.OpDeleteElement, id)
		log.Printf("[BOARD] Deleted %s %s", e.Kind(), id)
	}
}

func (b *Board) resetDrag() {
	b.dragID = ""
	b.dragOffset = geometry.Point{}
	b.restore = nil
}

func (b *Board) resetConstruction() {
	b.drawKind = ""
	b.drawOrigin = ""
	b.drawPoints = nil
	b.preview = nil
	b.editID = ""
	b.editIndex = 0
	b.editOriginal = geometry.Point{}
}
