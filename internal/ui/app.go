package ui

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"PlayBoard/internal/board"
	"PlayBoard/internal/config"
	"PlayBoard/internal/geometry"
	pbnet "PlayBoard/internal/net"
	"PlayBoard/internal/state"
	"PlayBoard/internal/store"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const storeTimeout = 5 * time.Second

// Options configures the desktop app.
type Options struct {
	Config *config.Config
	// Library is nil in viewer mode.
	Library *store.Library
	// Hub, when set, receives the scene after every change.
	Hub       *pbnet.Hub
	ShareLink string
	ReadOnly  bool
}

// App is the PlayBoard window: toolbar, board, property panel and status bar.
type App struct {
	opts    Options
	board   *board.Board
	fyneApp fyne.App
	window  fyne.Window

	canvas  *BoardWidget
	toolbar *Toolbar
	panel   *PropertyPanel
	status  *widget.Label
	dirty   *widget.Label

	mu      sync.Mutex
	current *store.Play
	unsaved bool
}

func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
		opts.Config = cfg
	}

	settings := cfg.Settings()
	b := board.New(settings.Field.Fit(geometry.NewSize(960, 600)), settings)
	b.SetStyle(cfg.Style())

	a := &App{
		opts:    opts,
		board:   b,
		fyneApp: app.NewWithID("io.playboard"),
		status:  widget.NewLabel("Ready"),
		dirty:   widget.NewLabel(""),
	}
	a.window = a.fyneApp.NewWindow("PlayBoard")
	a.window.Resize(fyne.NewSize(1200, 800))

	a.canvas = NewBoardWidget(b, settings.Field, cfg.Drawing.ResizeDebounce)
	a.canvas.ReadOnly = opts.ReadOnly
	a.panel = NewPropertyPanel(b)

	b.OnChange(a.changed)
	a.canvas.OnRedraw = func() {
		a.panel.Sync()
		if a.toolbar != nil {
			a.toolbar.Sync()
		}
	}

	a.window.SetContent(a.layout())
	a.window.SetCloseIntercept(a.confirmClose)
	if !opts.ReadOnly {
		a.addShortcuts()
	}
	return a
}

// Board returns the board shown in the window.
func (a *App) Board() *board.Board {
	return a.board
}

func (a *App) layout() fyne.CanvasObject {
	status := container.NewHBox(a.status, widget.NewSeparator(), a.dirty)
	if a.opts.ShareLink != "" {
		link := widget.NewLabel("Share: " + a.opts.ShareLink)
		copyLink := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
			a.window.Clipboard().SetContent(a.opts.ShareLink)
			a.SetStatus("Share link copied")
		})
		status.Add(widget.NewSeparator())
		status.Add(link)
		status.Add(copyLink)
	}

	if a.opts.ReadOnly {
		a.status.SetText("Waiting for host...")
		return container.NewBorder(nil, status, nil, nil, a.canvas)
	}

	var actions []widget.ToolbarItem
	actions = append(actions,
		widget.NewToolbarAction(theme.DocumentCreateIcon(), a.newPlay),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), a.savePlay),
		widget.NewToolbarAction(theme.FolderOpenIcon(), a.openLibrary),
		widget.NewToolbarAction(theme.ListIcon(), a.showLineups),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), a.printPlays),
		widget.NewToolbarAction(theme.FileImageIcon(), a.exportPNG),
	)
	toolbar, bar := NewToolbar(a.board, actions...)
	a.toolbar = toolbar

	side := container.NewVBox(widget.NewCard("Properties", "", a.panel.Object()))
	return container.NewBorder(bar, status, nil, side, a.canvas)
}

func (a *App) addShortcuts() {
	add := func(key fyne.KeyName, fn func()) {
		a.window.Canvas().AddShortcut(
			&desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault},
			func(fyne.Shortcut) { fn() },
		)
	}
	add(fyne.KeyS, a.savePlay)
	add(fyne.KeyO, a.openLibrary)
	add(fyne.KeyN, a.newPlay)
	add(fyne.KeyP, a.printPlays)
}

// changed runs for every committed mutation.
func (a *App) changed(op state.Op) {
	a.mu.Lock()
	a.unsaved = true
	a.mu.Unlock()
	fyne.Do(func() { a.dirty.SetText("Unsaved changes") })

	if a.opts.Hub != nil {
		msg := pbnet.Message{Snapshot: a.board.Snapshot(), Lamport: op.Lamport, Site: op.Site}
		if err := a.opts.Hub.Publish(msg); err != nil {
			log.Printf("[HOST] %v", err)
		}
	}
}

func (a *App) markSaved(p *store.Play) {
	a.mu.Lock()
	a.current = p
	a.unsaved = false
	a.mu.Unlock()
	a.dirty.SetText("")
	if p != nil {
		a.window.SetTitle("PlayBoard - " + p.Name)
	} else {
		a.window.SetTitle("PlayBoard")
	}
}

func (a *App) hasUnsaved() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unsaved && !a.opts.ReadOnly
}

// SetStatus shows text in the status bar. Safe from any goroutine.
func (a *App) SetStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

func (a *App) showError(err error) {
	log.Printf("[UI] %v", err)
	if errors.Is(err, store.ErrNotFound) {
		a.status.SetText("Not found")
		return
	}
	a.status.SetText("Error: " + err.Error())
	dialog.ShowError(err, a.window)
}

// ApplyRemote replaces the scene with a host's scene. Safe from any goroutine.
func (a *App) ApplyRemote(msg pbnet.Message) {
	a.board.Clock().Observe(msg.Lamport)
	a.board.LoadSnapshot(msg.Snapshot)
	a.SetStatus("Following host")
}

func (a *App) confirmClose() {
	if !a.hasUnsaved() {
		a.window.Close()
		return
	}
	dialog.ShowConfirm("Unsaved changes", "Discard changes and quit?", func(ok bool) {
		if ok {
			a.window.Close()
		}
	}, a.window)
}

func (a *App) watchLibrary(ctx context.Context) {
	if a.opts.Library == nil {
		return
	}
	changes, err := a.opts.Library.Watch(ctx)
	if err != nil {
		log.Printf("[UI] Library watch unavailable: %v", err)
		return
	}
	for c := range changes {
		a.mu.Lock()
		current := a.current
		a.mu.Unlock()
		if c.Kind == store.KindPlay && current != nil && c.Key == current.ID && c.Deleted {
			a.SetStatus("The open play was deleted from the library")
			continue
		}
		log.Printf("[UI] Library change: %s/%s", c.Kind, c.Key)
	}
}

// Run shows the window and blocks until it is closed.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.watchLibrary(ctx)
	a.window.ShowAndRun()
}

// Quit closes the window from any goroutine.
func (a *App) Quit() {
	fyne.Do(a.fyneApp.Quit)
}
