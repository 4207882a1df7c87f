package board

import (
	"testing"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changes struct {
	ops     []state.Op
	renders int
}

func newTestBoard(t *testing.T) (*Board, *changes) {
	t.Helper()
	settings := DefaultSettings()
	settings.Snap = false
	b := New(geometry.NewSize(800, 600), settings)

	c := &changes{}
	b.OnChange(func(op state.Op) { c.ops = append(c.ops, op) })
	b.OnRender(func() { c.renders++ })
	return b, c
}

func addPosition(b *Board, x, y float64) string {
	return b.Scene().Add(&state.Position{X: x, Y: y, Shape: state.ShapeCircle, Color: "#ffffff"})
}

func paths(b *Board, kind state.Kind) []*state.Path {
	var out []*state.Path
	for _, e := range b.Scene().Elements() {
		if p, ok := state.PathOf(e); ok && e.Kind() == kind {
			out = append(out, p)
		}
	}
	return out
}

func TestRouteScenario(t *testing.T) {
	b, c := newTestBoard(t)
	qb := addPosition(b, 50, 50)
	b.SetMode(ModeRoute)

	b.HandlePointer(Down(50, 50))
	assert.Equal(t, RouteDrawing, b.State())
	b.HandlePointer(Down(150, 50))
	b.HandlePointer(SecondaryDown(150, 50))

	assert.Equal(t, Idle, b.State())
	assert.Equal(t, 2, b.Scene().Len())
	routes := paths(b, state.KindRoute)
	require.Len(t, routes, 1)
	assert.Equal(t, []geometry.Point{geometry.Pt(50, 50), geometry.Pt(150, 50)}, routes[0].Points)
	assert.Equal(t, qb, routes[0].Origin)

	require.Len(t, c.ops, 1)
	assert.Equal(t, state.OpInsertElement, c.ops[0].Type)
}

func TestClickWithoutDragChangesNothing(t *testing.T) {
	b, c := newTestBoard(t)
	id := addPosition(b, 100, 100)
	b.Scene().Select(id)

	b.HandlePointer(Down(100, 100))
	assert.Equal(t, PotentialDrag, b.State())
	b.HandlePointer(Move(103, 102))
	b.HandlePointer(Up(103, 102))

	e, _ := b.Scene().Element(id)
	assert.Equal(t, geometry.Pt(100, 100), e.(*state.Position).Center())
	assert.Equal(t, Idle, b.State())
	assert.Empty(t, c.ops)
}

func TestDragThreshold(t *testing.T) {
	cases := []struct {
		name  string
		dx    float64
		moved bool
	}{
		{"below threshold", 4.9, false},
		{"at threshold", 5, true},
		{"well past", 40, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, c := newTestBoard(t)
			id := addPosition(b, 100, 100)

			b.HandlePointer(Down(102, 100))
			b.HandlePointer(Move(102+tc.dx, 100))
			b.HandlePointer(Up(102+tc.dx, 100))

			e, _ := b.Scene().Element(id)
			got := e.(*state.Position).Center()
			if tc.moved {
				assert.Equal(t, geometry.Pt(100+tc.dx, 100), got)
				require.Len(t, c.ops, 1)
				assert.Equal(t, state.OpUpdateElement, c.ops[0].Type)
				assert.Equal(t, id, c.ops[0].ElementID)
			} else {
				assert.Equal(t, geometry.Pt(100, 100), got)
				assert.Empty(t, c.ops)
			}
		})
	}
}

func TestDragMovesAnchoredRoute(t *testing.T) {
	b, _ := newTestBoard(t)
	id := addPosition(b, 100, 100)
	b.Scene().AppendPath(state.KindRoute, []geometry.Point{geometry.Pt(100, 100), geometry.Pt(100, 30)}, "#fff", id)

	b.HandlePointer(Down(100, 100))
	b.HandlePointer(Move(130, 120))
	b.HandlePointer(Up(130, 120))

	routes := paths(b, state.KindRoute)
	require.Len(t, routes, 1)
	assert.Equal(t, geometry.Pt(130, 120), routes[0].Points[0])
}

func TestSecondaryDuringDragRestores(t *testing.T) {
	b, c := newTestBoard(t)
	id := addPosition(b, 100, 100)

	b.HandlePointer(Down(100, 100))
	b.HandlePointer(Move(200, 200))
	assert.Equal(t, Dragging, b.State())
	b.HandlePointer(SecondaryDown(200, 200))

	e, _ := b.Scene().Element(id)
	assert.Equal(t, geometry.Pt(100, 100), e.(*state.Position).Center())
	assert.Equal(t, Idle, b.State())
	assert.Empty(t, c.ops)
}

func TestSecondRouteReplacesFirst(t *testing.T) {
	b, _ := newTestBoard(t)
	qb := addPosition(b, 100, 300)
	b.SetMode(ModeRoute)

	for _, end := range []geometry.Point{geometry.Pt(100, 100), geometry.Pt(300, 300)} {
		b.HandlePointer(Down(100, 300))
		b.HandlePointer(Down(end.X, end.Y))
		b.HandleKey(KeyEnter)
	}

	routes := paths(b, state.KindRoute)
	require.Len(t, routes, 1)
	assert.Equal(t, qb, routes[0].Origin)
	assert.Equal(t, geometry.Pt(300, 300), routes[0].Points[1])
}

func TestRouteAndBlockCoexist(t *testing.T) {
	b, _ := newTestBoard(t)
	addPosition(b, 100, 300)

	b.SetMode(ModeRoute)
	b.HandlePointer(Down(100, 300))
	b.HandlePointer(Down(100, 100))
	b.HandleKey(KeyEnter)

	b.SetMode(ModeBlock)
	b.HandlePointer(Down(100, 300))
	b.HandlePointer(Down(200, 300))
	b.HandleKey(KeyEnter)

	assert.Len(t, paths(b, state.KindRoute), 1)
	assert.Len(t, paths(b, state.KindBlock), 1)
}

func TestFinishWithOnePointAddsNothing(t *testing.T) {
	for _, mode := range []Mode{ModeRoute, ModeBlock} {
		t.Run(string(mode), func(t *testing.T) {
			b, c := newTestBoard(t)
			addPosition(b, 100, 100)
			b.SetMode(mode)

			b.HandlePointer(Down(100, 100))
			b.HandlePointer(SecondaryDown(100, 100))

			assert.Equal(t, 1, b.Scene().Len())
			assert.Empty(t, c.ops)
			assert.Equal(t, Idle, b.State())
		})
	}
}

func TestRouteFinishKeepsPreview(t *testing.T) {
	b, _ := newTestBoard(t)
	addPosition(b, 100, 300)
	b.SetMode(ModeRoute)

	b.HandlePointer(Down(100, 300))
	b.HandlePointer(Move(100, 150))
	b.HandlePointer(SecondaryDown(100, 150))

	routes := paths(b, state.KindRoute)
	require.Len(t, routes, 1)
	assert.Equal(t, []geometry.Point{geometry.Pt(100, 300), geometry.Pt(100, 150)}, routes[0].Points)
}

func TestBlockFinishDropsPreview(t *testing.T) {
	b, _ := newTestBoard(t)
	addPosition(b, 100, 300)
	b.SetMode(ModeBlock)

	b.HandlePointer(Down(100, 300))
	b.HandlePointer(Down(200, 300))
	b.HandlePointer(Move(250, 250))
	b.HandlePointer(SecondaryDown(250, 250))

	blocks := paths(b, state.KindBlock)
	require.Len(t, blocks, 1)
	assert.Equal(t, []geometry.Point{geometry.Pt(100, 300), geometry.Pt(200, 300)}, blocks[0].Points)
}

func TestBlockTargetsPositionCenter(t *testing.T) {
	b, _ := newTestBoard(t)
	addPosition(b, 100, 300)
	addPosition(b, 200, 200)
	b.SetMode(ModeBlock)

	b.HandlePointer(Down(100, 300))
	b.HandlePointer(Down(210, 195))
	b.HandleKey(KeyEnter)

	blocks := paths(b, state.KindBlock)
	require.Len(t, blocks, 1)
	assert.Equal(t, geometry.Pt(200, 200), blocks[0].Points[1])
}

func TestBlockTargetStaysReachable(t *testing.T) {
	newBoard := func(t *testing.T) (*Board, string) {
		b, _ := newTestBoard(t)
		addPosition(b, 100, 300)
		target := addPosition(b, 200, 200)
		b.SetMode(ModeBlock)
		b.HandlePointer(Down(100, 300))
		b.HandlePointer(Down(200, 200))
		b.HandleKey(KeyEnter)
		require.Len(t, paths(b, state.KindBlock), 1)
		require.Equal(t, Idle, b.State())
		return b, target
	}

	t.Run("route mode starts a route from the target", func(t *testing.T) {
		b, target := newBoard(t)
		b.SetMode(ModeRoute)
		b.HandlePointer(Down(200, 200))
		assert.Equal(t, RouteDrawing, b.State())
		assert.Equal(t, target, b.Scene().SelectedID())
	})

	t.Run("move mode drags the target", func(t *testing.T) {
		b, target := newBoard(t)
		b.SetMode(ModeMove)
		b.HandlePointer(Down(200, 200))
		b.HandlePointer(Move(260, 260))
		b.HandlePointer(Up(260, 260))

		e, ok := b.Scene().Element(target)
		require.True(t, ok)
		assert.Equal(t, geometry.Pt(260, 260), e.(*state.Position).Center())
		assert.Equal(t, Idle, b.State())
	})

	t.Run("block mode edits the block end", func(t *testing.T) {
		b, _ := newBoard(t)
		b.HandlePointer(Down(200, 200))
		assert.Equal(t, EditingBlockPoint, b.State())
	})
}

func TestCollisionAvoidanceInsertsDetour(t *testing.T) {
	b, _ := newTestBoard(t)
	settings := b.Settings()
	b.settings.CollisionRadius = 20
	require.True(t, settings.AvoidCollisions)

	addPosition(b, 100, 100)
	b.SetTool(ToolRoute)
	b.HandlePointer(Down(50, 100))
	require.Equal(t, RouteDrawing, b.State())
	b.HandlePointer(Down(150, 100))
	b.HandleKey(KeyEnter)

	routes := paths(b, state.KindRoute)
	require.Len(t, routes, 1)
	pts := routes[0].Points
	require.Len(t, pts, 3, "a detour point is inserted")
	assert.Equal(t, geometry.Pt(50, 100), pts[0])
	assert.Equal(t, geometry.Pt(150, 100), pts[2])
	for i := 1; i < len(pts); i++ {
		d := geometry.DistancePointToSegment(geometry.Pt(100, 100), pts[i-1], pts[i])
		assert.GreaterOrEqual(t, d, 20.0)
	}
	assert.Empty(t, routes[0].Origin)
}

func TestCollisionAvoidanceDisabled(t *testing.T) {
	b, _ := newTestBoard(t)
	b.SetAvoidCollisions(false)
	addPosition(b, 100, 100)
	b.SetTool(ToolRoute)

	b.HandlePointer(Down(50, 100))
	b.HandlePointer(Down(150, 100))
	b.HandleKey(KeyEnter)

	routes := paths(b, state.KindRoute)
	require.Len(t, routes, 1)
	assert.Len(t, routes[0].Points, 2)
}

func TestBackspaceKeepsTwoPoints(t *testing.T) {
	b, _ := newTestBoard(t)
	b.SetTool(ToolBlock)

	b.HandlePointer(Down(300, 300))
	b.HandlePointer(Down(300, 200))
	b.HandlePointer(Down(400, 200))
	b.HandleKey(KeyBackspace)
	b.HandleKey(KeyBackspace)
	b.HandleKey(KeyEnter)

	blocks := paths(b, state.KindBlock)
	require.Len(t, blocks, 1)
	assert.Equal(t, []geometry.Point{geometry.Pt(300, 300), geometry.Pt(300, 200)}, blocks[0].Points)
}

func TestEscapeCancelsDrawing(t *testing.T) {
	b, c := newTestBoard(t)
	b.SetTool(ToolRoute)

	b.HandlePointer(Down(300, 300))
	b.HandlePointer(Down(300, 200))
	b.HandleKey(KeyEscape)

	assert.Equal(t, Idle, b.State())
	assert.Equal(t, 0, b.Scene().Len())
	assert.Empty(t, c.ops)
	assert.Nil(t, b.Frame().Preview)
}

func TestDoubleClickFinishes(t *testing.T) {
	b, _ := newTestBoard(t)
	b.SetTool(ToolRoute)

	b.HandlePointer(Down(300, 300))
	b.HandlePointer(Down(300, 200))
	b.HandlePointer(PointerEvent{Type: PointerDown, Pos: geometry.Pt(300, 200), DoubleClick: true, Device: DeviceTouch})

	routes := paths(b, state.KindRoute)
	require.Len(t, routes, 1)
	assert.Len(t, routes[0].Points, 2)
}

func TestEditVertex(t *testing.T) {
	b, c := newTestBoard(t)
	id, _ := b.Scene().AppendPath(state.KindRoute, []geometry.Point{geometry.Pt(200, 200), geometry.Pt(300, 200)}, "#fff", "")
	b.SetMode(ModeRoute)

	b.HandlePointer(Down(302, 201))
	require.Equal(t, EditingRoutePoint, b.State())
	b.HandlePointer(Move(320, 240))

	// the scene is untouched until release
	e, _ := b.Scene().Element(id)
	path, _ := state.PathOf(e)
	assert.Equal(t, geometry.Pt(300, 200), path.Points[1])
	f := b.Frame()
	require.NotNil(t, f.Preview)
	require.NotNil(t, f.Preview.Vertex)
	assert.Equal(t, geometry.Pt(320, 240), *f.Preview.Vertex)

	b.HandlePointer(Up(320, 240))
	e, _ = b.Scene().Element(id)
	path, _ = state.PathOf(e)
	assert.Equal(t, geometry.Pt(320, 240), path.Points[1])
	require.Len(t, c.ops, 1)
	assert.Equal(t, state.OpUpdateElement, c.ops[0].Type)
}

func TestEditRequiresMatchingMode(t *testing.T) {
	b, _ := newTestBoard(t)
	id, _ := b.Scene().AppendPath(state.KindBlock, []geometry.Point{geometry.Pt(200, 200), geometry.Pt(300, 200)}, "#fff", "")

	b.SetMode(ModeRoute)
	b.HandlePointer(Down(300, 200))
	assert.Equal(t, Idle, b.State())
	assert.Equal(t, id, b.Scene().SelectedID())

	b.SetMode(ModeEdit)
	b.HandlePointer(Down(300, 200))
	assert.Equal(t, EditingBlockPoint, b.State())
	b.HandlePointer(SecondaryDown(300, 200))
	assert.Equal(t, Idle, b.State())
	assert.Empty(t, b.Scene().SelectedID())
}

func TestPositionToolPlacesWithStyle(t *testing.T) {
	b, c := newTestBoard(t)
	b.SetTool(ToolPosition)
	b.SetStyle(Style{Shape: state.ShapeTriangle, Color: "#ff0000", Label: "WR", Player: "Lee"})

	b.HandlePointer(Down(400, 300))

	p, ok := b.SelectedPosition()
	require.True(t, ok)
	assert.Equal(t, state.Position{ID: p.ID, X: 400, Y: 300, Shape: state.ShapeTriangle, Color: "#ff0000", Label: "WR", Player: "Lee"}, p)
	require.Len(t, c.ops, 1)
	assert.Equal(t, state.OpInsertElement, c.ops[0].Type)
}

func TestPropertySetters(t *testing.T) {
	b, c := newTestBoard(t)
	assert.False(t, b.SetLabel("QB"), "nothing selected")

	id := addPosition(b, 100, 100)
	b.Scene().Select(id)
	assert.True(t, b.SetLabel("QB"))
	assert.True(t, b.SetPlayer("Sam"))
	assert.True(t, b.SetShape(state.ShapeDiamond))
	assert.False(t, b.SetShape("hexagon"))
	assert.True(t, b.SetColor("#0000ff"))

	p, ok := b.SelectedPosition()
	require.True(t, ok)
	assert.Equal(t, "QB", p.Label)
	assert.Equal(t, "Sam", p.Player)
	assert.Equal(t, state.ShapeDiamond, p.Shape)
	assert.Equal(t, "#0000ff", p.Color)
	assert.Equal(t, state.ShapeDiamond, b.Style().Shape)
	assert.Len(t, c.ops, 4)
	assert.Positive(t, c.renders)
}

func TestDeleteSelected(t *testing.T) {
	b, c := newTestBoard(t)
	id := addPosition(b, 100, 100)
	route, _ := b.Scene().AppendPath(state.KindRoute, []geometry.Point{geometry.Pt(100, 100), geometry.Pt(100, 30)}, "#fff", id)

	b.HandleKey(KeyDelete)
	assert.Equal(t, 2, b.Scene().Len(), "nothing selected")

	b.Scene().Select(id)
	b.HandleKey(KeyDelete)
	assert.Equal(t, 1, b.Scene().Len())

	e, ok := b.Scene().Element(route)
	require.True(t, ok)
	path, _ := state.PathOf(e)
	assert.Empty(t, path.Origin, "orphaned routes become free")

	types := make([]state.OpType, 0, len(c.ops))
	for _, op := range c.ops {
		types = append(types, op.Type)
	}
	assert.Equal(t, []state.OpType{state.OpUpdateElement, state.OpDeleteElement}, types)
}

func TestSelectPathInMoveMode(t *testing.T) {
	b, _ := newTestBoard(t)
	id, _ := b.Scene().AppendPath(state.KindRoute, []geometry.Point{geometry.Pt(200, 200), geometry.Pt(300, 200)}, "#fff", "")

	b.HandlePointer(Down(250, 205))
	assert.Equal(t, id, b.Scene().SelectedID())
	assert.Equal(t, Idle, b.State())

	b.HandlePointer(Down(600, 500))
	assert.Empty(t, b.Scene().SelectedID())
}

func TestFrameShowsConstruction(t *testing.T) {
	b, _ := newTestBoard(t)
	b.SetTool(ToolRoute)
	b.HandlePointer(Down(100, 100))
	b.HandlePointer(Down(200, 100))
	b.HandlePointer(Move(200, 200))

	f := b.Frame()
	require.NotNil(t, f.Preview)
	assert.Equal(t, state.KindRoute, f.Preview.Kind)
	assert.Equal(t, []geometry.Point{geometry.Pt(100, 100), geometry.Pt(200, 100)}, f.Preview.Committed)
	assert.Equal(t, []geometry.Point{geometry.Pt(200, 100), geometry.Pt(200, 200)}, f.Preview.Tentative)
}

func TestResizeHalvesEverything(t *testing.T) {
	b, _ := newTestBoard(t)
	id := addPosition(b, 400, 300)
	b.Scene().AppendPath(state.KindBlock, []geometry.Point{geometry.Pt(400, 300), geometry.Pt(600, 200)}, "#fff", id)

	b.Resize(geometry.NewSize(400, 300))

	e, _ := b.Scene().Element(id)
	assert.Equal(t, geometry.Pt(200, 150), e.(*state.Position).Center())
	blocks := paths(b, state.KindBlock)
	require.Len(t, blocks, 1)
	assert.Equal(t, []geometry.Point{geometry.Pt(200, 150), geometry.Pt(300, 100)}, blocks[0].Points)
}

func TestSnapAppliesToPlacement(t *testing.T) {
	b, _ := newTestBoard(t)
	b.SetSnap(true)
	b.SetTool(ToolPosition)
	b.HandlePointer(Down(403, 297))

	p, ok := b.SelectedPosition()
	require.True(t, ok)
	assert.Equal(t, geometry.SnapToGrid(geometry.Pt(403, 297), geometry.NewSize(800, 600), true), p.Center())
}

func TestLoadLineupAndClear(t *testing.T) {
	b, c := newTestBoard(t)
	b.LoadLineup([]state.Position{{X: 10, Y: 10, Label: "C"}, {X: 20, Y: 10, Label: "G"}})
	assert.Equal(t, 2, b.Scene().Len())

	b.Clear()
	assert.Equal(t, 0, b.Scene().Len())
	require.Len(t, c.ops, 2)
	assert.Equal(t, state.OpReplaceScene, c.ops[0].Type)
	assert.Equal(t, state.OpClearScene, c.ops[1].Type)
	assert.Less(t, c.ops[0].Lamport, c.ops[1].Lamport)
}

func TestAnySequenceEndsInKnownState(t *testing.T) {
	b, _ := newTestBoard(t)
	addPosition(b, 100, 100)
	addPosition(b, 300, 100)

	events := []PointerEvent{
		Down(100, 100), Move(150, 150), SecondaryDown(0, 0), Up(0, 0),
		Down(300, 100), Up(300, 100), Move(500, 500), Down(500, 500),
	}
	for _, mode := range Modes {
		for _, tool := range Tools {
			b.SetMode(mode)
			b.SetTool(tool)
			for _, ev := range events {
				b.HandlePointer(ev)
				assert.Contains(t, []State{Idle, PotentialDrag, Dragging, RouteDrawing, BlockDrawing, EditingRoutePoint, EditingBlockPoint}, b.State())
			}
			b.HandleKey(KeyEscape)
			assert.Equal(t, Idle, b.State())
		}
	}
}
