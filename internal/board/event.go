package board

import (
	"PlayBoard/internal/geometry"
)

// EventType is the phase of a pointer interaction.
type EventType int

const (
	PointerDown EventType = iota
	PointerMove
	PointerUp
)

func (t EventType) String() string {
	switch t {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	}
	return "unknown"
}

// Button distinguishes the drawing button from the finish/cancel button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Device records where an event came from. The board treats all devices the same.
type Device int

const (
	DeviceMouse Device = iota
	DeviceTouch
)

// PointerEvent is a mouse or touch event in surface coordinates.
type PointerEvent struct {
	Type        EventType
	Button      Button
	Pos         geometry.Point
	Device      Device
	DoubleClick bool
}

// Down builds a primary-button pointer-down event at (x, y).
func Down(x, y float64) PointerEvent {
	return PointerEvent{Type: PointerDown, Pos: geometry.Pt(x, y)}
}

// Move builds a pointer-move event at (x, y).
func Move(x, y float64) PointerEvent {
	return PointerEvent{Type: PointerMove, Pos: geometry.Pt(x, y)}
}

// Up builds a primary-button pointer-up event at (x, y).
func Up(x, y float64) PointerEvent {
	return PointerEvent{Type: PointerUp, Pos: geometry.Pt(x, y)}
}

// SecondaryDown builds a right-click (or long-press) at (x, y).
func SecondaryDown(x, y float64) PointerEvent {
	return PointerEvent{Type: PointerDown, Button: ButtonSecondary, Pos: geometry.Pt(x, y)}
}

// Key is a keyboard command understood by the board.
type Key int

const (
	KeyDelete Key = iota
	KeyEscape
	KeyBackspace
	KeyEnter
)
