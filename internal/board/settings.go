package board

import (
	"PlayBoard/internal/geometry"
	"PlayBoard/internal/state"
)

// State is the interaction currently in progress.
type State int

const (
	Idle State = iota
	PotentialDrag
	Dragging
	RouteDrawing
	BlockDrawing
	EditingRoutePoint
	EditingBlockPoint
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PotentialDrag:
		return "potential-drag"
	case Dragging:
		return "dragging"
	case RouteDrawing:
		return "route-drawing"
	case BlockDrawing:
		return "block-drawing"
	case EditingRoutePoint:
		return "editing-route-point"
	case EditingBlockPoint:
		return "editing-block-point"
	}
	return "unknown"
}

func (s State) drawing() bool {
	return s == RouteDrawing || s == BlockDrawing
}

func (s State) editing() bool {
	return s == EditingRoutePoint || s == EditingBlockPoint
}

// Mode decides what a pointer-down on a position does.
type Mode string

const (
	ModeMove  Mode = "move"
	ModeRoute Mode = "route"
	ModeBlock Mode = "block"
	ModeEdit  Mode = "edit"
)

// Modes lists the action modes in toolbar order.
var Modes = []Mode{ModeMove, ModeRoute, ModeBlock, ModeEdit}

// edits reports whether a press in mode m may grab a vertex of a path of kind k.
func (m Mode) edits(k state.Kind) bool {
	return m == ModeEdit || string(m) == string(k)
}

// Tool decides what a pointer-down on empty canvas does.
type Tool string

const (
	ToolSelect   Tool = "select"
	ToolPosition Tool = "position"
	ToolRoute    Tool = "route"
	ToolBlock    Tool = "block"
)

// Tools lists the tools in toolbar order.
var Tools = []Tool{ToolSelect, ToolPosition, ToolRoute, ToolBlock}

// Settings holds the tunables of the interaction engine.
type Settings struct {
	Snap            bool
	AvoidCollisions bool
	CollisionRadius float64
	DetourRadius    float64
	DetourAttempts  int
	DragThreshold   float64
	Field           geometry.Field
}

func DefaultSettings() Settings {
	return Settings{
		Snap:            true,
		AvoidCollisions: true,
		CollisionRadius: state.CollisionRadius,
		DetourRadius:    60,
		DetourAttempts:  8,
		DragThreshold:   5,
		Field:           geometry.DefaultField,
	}
}

// Style is applied to newly placed positions and drawn paths.
type Style struct {
	Shape  state.Shape
	Color  string
	Label  string
	Player string
}

// DefaultStyle matches the toolbar's initial selection.
func DefaultStyle() Style {
	return Style{Shape: state.ShapeCircle, Color: "#32cd32"}
}
