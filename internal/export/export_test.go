package export

import (
	"bytes"
	"image/color"
	"testing"
	"time"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/render"
	"PlayBoard/internal/state"
	"PlayBoard/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() state.Snapshot {
	return state.Snapshot{
		CanvasSize: geometry.NewSize(800, 600),
		Elements: []state.Element{
			&state.Position{ID: "qb", X: 400, Y: 300, Shape: state.ShapeCircle, Color: "#ff0000", Label: "QB", Player: "Sam"},
			&state.Route{Path: state.Path{ID: "r", Origin: "qb", Color: "#ffff00", Points: []geometry.Point{
				geometry.Pt(400, 300), geometry.Pt(600, 300), geometry.Pt(600, 100),
			}}},
		},
	}
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestThumbnail(t *testing.T) {
	snap := testSnapshot()
	snap.Elements[0].(*state.Position).Label = ""
	snap.Elements[0].(*state.Position).Player = ""

	img, err := Thumbnail(snap, 400, 300)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())

	assert.Equal(t, rgba(render.FieldGreen), img.RGBAAt(20, 25), "turf")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(200, 160), "position scaled to half")
}

func TestThumbnailRejectsBadSize(t *testing.T) {
	_, err := Thumbnail(testSnapshot(), 0, 10)
	assert.Error(t, err)
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, testSnapshot(), 200, 150))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestRasterLine(t *testing.T) {
	r := NewRaster(20, 20)
	r.Line(geometry.Pt(0, 10), geometry.Pt(20, 10), render.Stroke{Color: color.White, Width: 4})
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, r.Image().RGBAAt(5, 10))
	assert.Equal(t, color.RGBA{}, r.Image().RGBAAt(5, 2))

	r.Line(geometry.Pt(3, 3), geometry.Pt(3, 3), render.Stroke{Color: color.White, Width: 4})
	assert.Equal(t, color.RGBA{}, r.Image().RGBAAt(3, 3), "zero-length line draws nothing")
}

func TestLayoutPages(t *testing.T) {
	l := DefaultLayout()
	assert.Equal(t, 0, l.Pages(0))
	assert.Equal(t, 1, l.Pages(6))
	assert.Equal(t, 2, l.Pages(7))
	assert.Equal(t, 3, Layout{Columns: 1, Rows: 1}.Pages(3))
}

func TestPlaySheet(t *testing.T) {
	now := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	var plays []store.Play
	for _, name := range []string{"Power Run", "Slant Pass", "Toss Sweep"} {
		plays = append(plays, store.Play{ID: name, Name: name, Data: testSnapshot(), Created: now, Modified: now})
	}

	cases := []struct {
		name   string
		layout Layout
	}{
		{"color", DefaultLayout()},
		{"mono one per page", Layout{Columns: 1, Rows: 1, FontSize: FontLarge}},
		{"dense small", Layout{Columns: 4, Rows: 4, Color: true, FontSize: FontSmall}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, PlaySheet(&buf, plays, c.layout))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestPlaySheetErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, PlaySheet(&buf, nil, DefaultLayout()))
	assert.Error(t, PlaySheet(&buf, []store.Play{{Name: "x"}}, Layout{}))
}

func TestMonochrome(t *testing.T) {
	rec := &render.Recorder{}
	snap := testSnapshot()
	render.NewRenderer().Draw(Monochrome{rec}, render.Frame{Size: snap.CanvasSize, Elements: snap.Elements})

	black := rgba(color.Black)
	white := rgba(color.White)

	fills := rec.Filter(render.CmdFillRect)
	require.Len(t, fills, 1)
	assert.Equal(t, white, rgba(fills[0].Fill))

	for _, l := range rec.Filter(render.CmdLine) {
		assert.Equal(t, black, rgba(l.Stroke.Color))
	}
	circles := rec.Filter(render.CmdCircle)
	require.Len(t, circles, 1)
	assert.Equal(t, white, rgba(circles[0].Fill))
	assert.Equal(t, black, rgba(circles[0].Stroke.Color))

	for _, txt := range rec.Filter(render.CmdText) {
		assert.Equal(t, black, rgba(txt.Style.Color))
		assert.Nil(t, txt.Style.Halo)
	}
}
