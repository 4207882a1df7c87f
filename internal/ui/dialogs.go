package ui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"PlayBoard/internal/export"
	"PlayBoard/internal/lineup"
	"PlayBoard/internal/store"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const allFilter = "All"

var printLayouts = []string{"1x1", "1x2", "2x2", "2x3", "3x3", "4x4"}

// background runs fn off the UI goroutine with the store timeout. done runs
// on the UI goroutine once fn succeeds; a failure is shown instead.
func (a *App) background(fn func(ctx context.Context) error, done func()) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		err := fn(ctx)
		fyne.Do(func() {
			if err != nil {
				a.showError(err)
				return
			}
			if done != nil {
				done()
			}
		})
	}()
}

func (a *App) library() (*store.Library, bool) {
	if a.opts.Library == nil {
		a.status.SetText("Library unavailable")
		return nil, false
	}
	return a.opts.Library, true
}

func (a *App) newPlay() {
	reset := func() {
		a.board.Clear()
		a.markSaved(nil)
		a.status.SetText("New play")
	}
	if !a.hasUnsaved() {
		reset()
		return
	}
	dialog.ShowConfirm("New play", "Discard unsaved changes?", func(ok bool) {
		if ok {
			reset()
		}
	}, a.window)
}

// savePlay updates the open play, or asks for a name when there is none.
func (a *App) savePlay() {
	lib, ok := a.library()
	if !ok {
		return
	}
	a.mu.Lock()
	current := a.current
	a.mu.Unlock()
	if current == nil {
		a.savePlayAs()
		return
	}

	snap := a.board.Snapshot()
	a.status.SetText(fmt.Sprintf("Saving %q...", current.Name))
	a.background(func(ctx context.Context) error {
		return lib.UpdatePlay(ctx, current.ID, snap)
	}, func() {
		saved := *current
		saved.Data = snap
		a.markSaved(&saved)
		a.status.SetText(fmt.Sprintf("Saved %q", saved.Name))
	})
}

func (a *App) savePlayAs() {
	lib, ok := a.library()
	if !ok {
		return
	}
	name := widget.NewEntry()
	name.SetPlaceHolder("e.g. Power Run Right")
	name.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("name required")
		}
		return nil
	}

	dialog.ShowForm("Save play", "Save", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Name", name),
	}, func(ok bool) {
		if !ok {
			return
		}
		snap := a.board.Snapshot()
		var p store.Play
		a.background(func(ctx context.Context) error {
			id, err := lib.SavePlay(ctx, name.Text, snap)
			if err != nil {
				return err
			}
			p, err = lib.LoadPlay(ctx, id)
			return err
		}, func() {
			a.markSaved(&p)
			a.status.SetText(fmt.Sprintf("Saved %q (%s)", p.Name, p.Formation))
		})
	}, a.window)
}

func (a *App) loadPlay(p store.Play) {
	a.board.LoadSnapshot(p.Data)
	a.markSaved(&p)
	a.status.SetText(fmt.Sprintf("Opened %q", p.Name))
}

// openLibrary lists saved plays with search, formation and tag filters and a
// thumbnail of the selected play.
func (a *App) openLibrary() {
	lib, ok := a.library()
	if !ok {
		return
	}

	var plays []store.Play
	selected := -1

	search := widget.NewEntry()
	search.SetPlaceHolder("Search plays")
	formation := widget.NewSelect([]string{allFilter, store.FormationFull, store.FormationShotgun, store.FormationI, store.FormationCustom}, nil)
	formation.SetSelected(allFilter)
	tag := widget.NewSelect([]string{allFilter, "run", "pass", "screen", "sweep", "slant"}, nil)
	tag.SetSelected(allFilter)

	preview := canvas.NewImageFromImage(nil)
	preview.FillMode = canvas.ImageFillContain
	preview.SetMinSize(fyne.NewSize(320, 180))
	info := widget.NewLabel("")

	list := widget.NewList(
		func() int { return len(plays) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			p := plays[i]
			o.(*widget.Label).SetText(fmt.Sprintf("%s  [%s]", p.Name, p.Formation))
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		selected = i
		p := plays[i]
		img, err := export.Thumbnail(p.Data, 320, 180)
		if err == nil {
			preview.Image = img
			preview.Refresh()
		}
		info.SetText(fmt.Sprintf("Tags: %s\nModified: %s", strings.Join(p.Tags, ", "), p.Modified.Local().Format("2006-01-02 15:04")))
	}

	// generation drops results of searches overtaken by newer input.
	generation := 0
	reload := func() {
		f := store.Filter{Query: search.Text}
		if formation.Selected != allFilter {
			f.Formation = formation.Selected
		}
		if tag.Selected != allFilter {
			f.Tag = tag.Selected
		}
		generation++
		gen := generation
		var found []store.Play
		a.background(func(ctx context.Context) error {
			var err error
			found, err = lib.Search(ctx, f)
			return err
		}, func() {
			if gen != generation {
				return
			}
			plays, selected = found, -1
			list.UnselectAll()
			list.Refresh()
			preview.Image = nil
			preview.Refresh()
			info.SetText(fmt.Sprintf("%d plays", len(plays)))
		})
	}
	search.OnChanged = func(string) { reload() }
	formation.OnChanged = func(string) { reload() }
	tag.OnChanged = func(string) { reload() }

	var d dialog.Dialog
	open := widget.NewButton("Open", func() {
		if selected < 0 {
			return
		}
		p := plays[selected]
		d.Hide()
		if !a.hasUnsaved() {
			a.loadPlay(p)
			return
		}
		dialog.ShowConfirm("Open play", "Discard unsaved changes?", func(ok bool) {
			if ok {
				a.loadPlay(p)
			}
		}, a.window)
	})
	remove := widget.NewButton("Delete", func() {
		if selected < 0 {
			return
		}
		p := plays[selected]
		dialog.ShowConfirm("Delete play", fmt.Sprintf("Delete %q?", p.Name), func(ok bool) {
			if !ok {
				return
			}
			a.background(func(ctx context.Context) error {
				return lib.DeletePlay(ctx, p.ID)
			}, func() {
				a.mu.Lock()
				if a.current != nil && a.current.ID == p.ID {
					a.current = nil
				}
				a.mu.Unlock()
				reload()
			})
		}, a.window)
	})

	filters := container.NewGridWithColumns(3, search, formation, tag)
	right := container.NewVBox(preview, info, container.NewHBox(open, remove))
	content := container.NewBorder(filters, nil, nil, right, list)

	d = dialog.NewCustom("Play library", "Close", content, a.window)
	d.Resize(fyne.NewSize(900, 520))
	reload()
	d.Show()
}

func (a *App) showLineups() {
	lib, ok := a.library()
	if !ok {
		return
	}

	var lineups []lineup.Lineup
	selected := -1
	builtin := 0
	if defaults, err := lineup.Defaults(); err == nil {
		builtin = len(defaults)
	}

	desc := widget.NewLabel("")
	desc.Wrapping = fyne.TextWrapWord
	list := widget.NewList(
		func() int { return len(lineups) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			l := lineups[i]
			name := l.Name
			if i >= builtin {
				name += " (custom)"
			}
			o.(*widget.Label).SetText(name)
		},
	)
	list.OnSelected = func(i widget.ListItemID) {
		selected = i
		l := lineups[i]
		desc.SetText(fmt.Sprintf("%s\n%d positions", l.Description, len(l.Positions)))
	}

	reload := func() {
		var all []lineup.Lineup
		a.background(func(ctx context.Context) error {
			var err error
			all, err = lib.Lineups(ctx)
			if err != nil && all != nil {
				log.Printf("[UI] Listing custom lineups: %v", err)
				return nil
			}
			return err
		}, func() {
			lineups, selected = all, -1
			list.UnselectAll()
			list.Refresh()
			desc.SetText("")
		})
	}

	var d dialog.Dialog
	load := widget.NewButton("Load", func() {
		if selected < 0 {
			return
		}
		l := lineups[selected]
		a.board.LoadLineup(l.Expand(a.board.Scene().Size()))
		a.status.SetText(fmt.Sprintf("Loaded lineup %q", l.Name))
		d.Hide()
	})
	remove := widget.NewButton("Delete", func() {
		if selected < builtin {
			a.status.SetText("Built-in lineups cannot be deleted")
			return
		}
		key := lineups[selected].Key
		a.background(func(ctx context.Context) error {
			return lib.DeleteLineup(ctx, key)
		}, reload)
	})
	name := widget.NewEntry()
	name.SetPlaceHolder("Save current positions as...")
	save := widget.NewButton("Save", func() {
		snap := a.board.Snapshot()
		key := name.Text
		a.background(func(ctx context.Context) error {
			return lib.SaveLineup(ctx, key, snap.Positions(), snap.CanvasSize)
		}, func() {
			a.status.SetText(fmt.Sprintf("Saved lineup %q", strings.TrimSpace(key)))
			name.SetText("")
			reload()
		})
	})

	bottom := container.NewVBox(
		desc,
		container.NewHBox(load, remove),
		widget.NewSeparator(),
		container.NewBorder(nil, nil, nil, save, name),
	)
	d = dialog.NewCustom("Lineups", "Close", container.NewBorder(nil, bottom, nil, nil, list), a.window)
	d.Resize(fyne.NewSize(480, 520))
	reload()
	d.Show()
}

func parseLayout(s string) (cols, rows int, ok bool) {
	c, r, found := strings.Cut(s, "x")
	if !found {
		return 0, 0, false
	}
	cols, err1 := strconv.Atoi(c)
	rows, err2 := strconv.Atoi(r)
	return cols, rows, err1 == nil && err2 == nil && cols > 0 && rows > 0
}

// printPlays writes a PDF sheet of the checked plays.
func (a *App) printPlays() {
	lib, ok := a.library()
	if !ok {
		return
	}
	var plays []store.Play
	a.background(func(ctx context.Context) error {
		var err error
		plays, err = lib.Plays(ctx)
		return err
	}, func() { a.showPrintDialog(plays) })
}

func (a *App) showPrintDialog(plays []store.Play) {
	if len(plays) == 0 {
		a.status.SetText("Please save plays before printing")
		return
	}

	var names []string
	for _, p := range plays {
		names = append(names, p.Name)
	}
	picks := widget.NewCheckGroup(names, nil)

	cfg := a.opts.Config.Print
	layoutSel := widget.NewSelect(printLayouts, nil)
	layoutSel.SetSelected(fmt.Sprintf("%dx%d", cfg.Columns, cfg.Rows))
	colorCheck := widget.NewCheck("Color", nil)
	colorCheck.SetChecked(true)
	fontSel := widget.NewSelect([]string{string(export.FontSmall), string(export.FontMedium), string(export.FontLarge)}, nil)
	fontSel.SetSelected(string(export.FontMedium))

	form := []*widget.FormItem{
		widget.NewFormItem("Plays", container.NewVScroll(picks)),
		widget.NewFormItem("Layout", layoutSel),
		widget.NewFormItem("Font", fontSel),
		widget.NewFormItem("", colorCheck),
	}
	d := dialog.NewForm("Print plays", "Export PDF", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		var chosen []store.Play
		for _, p := range plays {
			for _, n := range picks.Selected {
				if n == p.Name {
					chosen = append(chosen, p)
					break
				}
			}
		}
		if len(chosen) == 0 {
			a.status.SetText("Please select plays to print")
			return
		}
		cols, rows, _ := parseLayout(layoutSel.Selected)
		layout := export.Layout{Columns: cols, Rows: rows, Color: colorCheck.Checked, FontSize: export.FontSize(fontSel.Selected)}

		save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
			if err != nil {
				a.showError(err)
				return
			}
			if w == nil {
				return
			}
			a.status.SetText("Exporting...")
			a.background(func(context.Context) error {
				defer w.Close()
				return export.PlaySheet(w, chosen, layout)
			}, func() {
				a.status.SetText(fmt.Sprintf("Exported %d plays on %d pages", len(chosen), layout.Pages(len(chosen))))
			})
		}, a.window)
		save.SetFileName("plays.pdf")
		save.Show()
	}, a.window)
	d.Resize(fyne.NewSize(420, 480))
	d.Show()
}

func (a *App) exportPNG() {
	snap := a.board.Snapshot()
	size := snap.CanvasSize
	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if w == nil {
			return
		}
		defer w.Close()
		if err := export.WritePNG(w, snap, int(size.Width), int(size.Height)); err != nil {
			a.showError(err)
			return
		}
		a.status.SetText("Exported " + w.URI().Name())
	}, a.window)
	save.SetFileName("play.png")
	save.Show()
}
