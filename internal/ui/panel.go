package ui

import (
	"fmt"

	"PlayBoard/internal/board"
	"PlayBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// PropertyPanel edits the label and player name of the selected position.
type PropertyPanel struct {
	board *board.Board

	heading *widget.Label
	label   *widget.Entry
	player  *widget.Entry
	box     *fyne.Container
	current string
}

func NewPropertyPanel(b *board.Board) *PropertyPanel {
	p := &PropertyPanel{
		board:   b,
		heading: widget.NewLabelWithStyle("Nothing selected", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		label:   widget.NewEntry(),
		player:  widget.NewEntry(),
	}
	p.label.SetPlaceHolder("Position label")
	p.player.SetPlaceHolder("Player name")
	p.label.OnSubmitted = func(s string) { b.SetLabel(s) }
	p.player.OnSubmitted = func(s string) { b.SetPlayer(s) }

	apply := widget.NewButton("Apply", func() {
		b.SetLabel(p.label.Text)
		b.SetPlayer(p.player.Text)
	})

	p.box = container.NewVBox(
		p.heading,
		widget.NewForm(
			widget.NewFormItem("Label", p.label),
			widget.NewFormItem("Player", p.player),
		),
		apply,
	)
	p.Sync()
	return p
}

func (p *PropertyPanel) Object() fyne.CanvasObject {
	return p.box
}

// Sync shows the current selection. Entries are only overwritten when the
// selection changes so typing is not interrupted by unrelated updates.
func (p *PropertyPanel) Sync() {
	e, ok := p.board.Selected()
	if !ok {
		p.current = ""
		p.heading.SetText("Nothing selected")
		p.label.SetText("")
		p.player.SetText("")
		p.label.Disable()
		p.player.Disable()
		return
	}

	pos, isPosition := e.(*state.Position)
	if !isPosition {
		p.current = e.ElementID()
		path, _ := state.PathOf(e)
		p.heading.SetText(fmt.Sprintf("%s with %d points", title(string(e.Kind())), len(path.Points)))
		p.label.Disable()
		p.player.Disable()
		return
	}

	p.label.Enable()
	p.player.Enable()
	p.heading.SetText(fmt.Sprintf("%s position", title(string(pos.Shape))))
	if p.current != pos.ID {
		p.current = pos.ID
		p.label.SetText(pos.Label)
		p.player.SetText(pos.Player)
	}
}
