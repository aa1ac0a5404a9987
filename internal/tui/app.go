// Package tui renders a diff session side by side in the terminal:
// two panes with gutters and chunk highlighting, spacer rows for
// alignment, and a status line. Scroll events feed the session's
// scroll link so the panes stay synchronized.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/splitdiff/internal/config"
	"github.com/dshills/splitdiff/internal/diff/compute"
	"github.com/dshills/splitdiff/internal/session"
	"github.com/dshills/splitdiff/internal/view"
)

// App owns the terminal screen and drives one diff session.
type App struct {
	screen tcell.Screen
	sess   *session.Session
	cfg    config.Config
	logger *zap.Logger

	nameA, nameB string
	focus        view.Side
	wrap         bool
	status       string
	warning      bool
	quit         bool

	// Reload reads both files again before recomputing the diff. Set
	// by the host when live refresh is wired up.
	Reload func() error
}

// New creates the app over an initialized session. A nil logger
// disables logging.
func New(screen tcell.Screen, sess *session.Session, cfg config.Config, nameA, nameB string, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		screen: screen,
		sess:   sess,
		cfg:    cfg,
		logger: logger,
		nameA:  nameA,
		nameB:  nameB,
		focus:  view.SideA,
		wrap:   cfg.Wrap,
	}
}

// Run initializes the screen and processes events until quit.
func (a *App) Run() error {
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer a.screen.Fini()
	a.screen.EnableMouse()

	a.applyLayout()
	a.sess.SetFocus(a.focus)

	for !a.quit {
		a.render()
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		a.handle(ev)
	}
	return nil
}

// Refresh wakes the event loop for a redraw. Safe from any goroutine;
// used by file watchers and deferred recomputes.
func (a *App) Refresh() {
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

func (a *App) handle(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		a.applyLayout()
		a.sess.Resized()
		a.screen.Sync()
	case *tcell.EventKey:
		a.handleKey(e)
	case *tcell.EventMouse:
		a.handleMouse(e)
	case *tcell.EventInterrupt:
		// Redraw only.
	}
}

func (a *App) handleKey(e *tcell.EventKey) {
	switch e.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.quit = true
		return
	case tcell.KeyUp:
		a.scroll(a.focus, -1)
		return
	case tcell.KeyDown:
		a.scroll(a.focus, 1)
		return
	case tcell.KeyLeft:
		a.scrollHoriz(a.focus, -4)
		return
	case tcell.KeyRight:
		a.scrollHoriz(a.focus, 4)
		return
	case tcell.KeyPgUp:
		a.scroll(a.focus, -a.contentHeight())
		return
	case tcell.KeyPgDn:
		a.scroll(a.focus, a.contentHeight())
		return
	case tcell.KeyTab:
		a.focus = a.focus.Other()
		a.sess.SetFocus(a.focus)
		return
	}

	switch e.Rune() {
	case 'q':
		a.quit = true
	case 'j':
		a.scroll(a.focus, 1)
	case 'k':
		a.scroll(a.focus, -1)
	case 'h':
		a.scrollHoriz(a.focus, -4)
	case 'l':
		a.scrollHoriz(a.focus, 4)
	case 'n':
		a.selectChunk(a.sess.Next())
	case 'p':
		a.selectChunk(a.sess.Prev())
	case '>':
		a.copy(a.sess.CopyLeft, "copied left to right")
	case '<':
		a.copy(a.sess.CopyRight, "copied right to left")
	case 'w':
		a.wrap = !a.wrap
		a.applyLayout()
		a.sess.WrapChanged()
		if a.wrap {
			a.setStatus("wrap on", false)
		} else {
			a.setStatus("wrap off", false)
		}
	case 'r':
		a.rediff()
	}
}

func (a *App) handleMouse(e *tcell.EventMouse) {
	x, _ := e.Position()
	side := view.SideA
	if x > a.paneWidth() {
		side = view.SideB
	}

	switch {
	case e.Buttons()&tcell.WheelUp != 0:
		a.scroll(side, -3)
	case e.Buttons()&tcell.WheelDown != 0:
		a.scroll(side, 3)
	case e.Buttons()&tcell.WheelLeft != 0:
		a.scrollHoriz(side, -4)
	case e.Buttons()&tcell.WheelRight != 0:
		a.scrollHoriz(side, 4)
	}
}

// scroll moves one side by rows and propagates through the scroll link.
func (a *App) scroll(side view.Side, rows int) {
	v := a.sess.Pane(side).View
	v.SetScrollTop(v.ScrollTop() + rows*v.RowHeight())
	a.sess.Scrolled(side)
}

func (a *App) scrollHoriz(side view.Side, cells int) {
	v := a.sess.Pane(side).View
	v.SetScrollLeft(v.ScrollLeft() + cells)
	a.sess.ScrolledHorizontal(side)
}

func (a *App) selectChunk(idx int) {
	if idx == session.NoChunk {
		a.setStatus("no chunks", true)
		return
	}
	if c, ok := a.sess.Store().At(idx); ok {
		a.setStatus(fmt.Sprintf("chunk %d/%d %s", idx+1, a.sess.Store().Count(), chunkLabel(c)), false)
	}
}

func (a *App) copy(op func() error, done string) {
	err := op()
	switch {
	case errors.Is(err, session.ErrNoSelection):
		a.setStatus("no chunk selected", true)
	case err != nil:
		a.setStatus(err.Error(), true)
	default:
		a.setStatus(done, false)
	}
}

// rediff re-reads the inputs if a reload hook is wired, then reruns the
// external diff. Failures leave the current diff on screen.
func (a *App) rediff() {
	if a.Reload != nil {
		if err := a.Reload(); err != nil {
			a.setStatus(err.Error(), true)
			return
		}
	}

	opts := compute.Options{IgnoreWhitespace: a.cfg.IgnoreWhitespace}
	if a.cfg.DiffCommand != "" {
		opts.Command = strings.Fields(a.cfg.DiffCommand)
	}
	if err := a.sess.ComputeDiff(context.Background(), opts); err != nil {
		if !errors.Is(err, compute.ErrSuperseded) {
			a.setStatus("diff failed: "+err.Error(), true)
		}
		return
	}
	a.setStatus(fmt.Sprintf("%d chunks", a.sess.Store().Count()), false)
}

func (a *App) setStatus(msg string, warning bool) {
	a.status = msg
	a.warning = warning
}

// applyLayout pushes the current screen geometry into both views. Row
// height is one pixel per row, so pixel offsets and screen rows
// coincide.
func (a *App) applyLayout() {
	contentW := a.paneWidth() - a.gutterWidth()
	h := a.contentHeight()

	for _, side := range []view.Side{view.SideA, view.SideB} {
		v := a.sess.Pane(side).View
		v.SetViewport(contentW, h)
		if a.wrap {
			v.SetWrapWidth(contentW)
		} else {
			v.SetWrapWidth(0)
		}
	}
}

func (a *App) paneWidth() int {
	w, _ := a.screen.Size()
	return (w - 1) / 2
}

func (a *App) contentHeight() int {
	_, h := a.screen.Size()
	if h < 2 {
		return 0
	}
	return h - 1
}

// gutterWidth sizes the line-number gutter for the longer buffer.
func (a *App) gutterWidth() int {
	n := a.sess.Pane(view.SideA).Buffer.LineCount()
	if m := a.sess.Pane(view.SideB).Buffer.LineCount(); m > n {
		n = m
	}
	digits := 1
	for n >= 10 {
		n /= 10
		digits++
	}
	return digits + 2
}

func (a *App) render() {
	a.screen.Clear()

	w, h := a.screen.Size()
	paneW := a.paneWidth()
	gutterW := a.gutterWidth()
	contentH := a.contentHeight()

	left := pane{side: view.SideA, x: 0, gutterW: gutterW, textW: paneW - gutterW}
	right := pane{side: view.SideB, x: paneW + 1, gutterW: gutterW, textW: paneW - gutterW}
	a.renderPane(left, contentH)
	a.renderPane(right, contentH)

	for y := 0; y < contentH; y++ {
		a.screen.SetContent(paneW, y, '│', nil, styleSeparator)
	}

	a.renderStatus(w, h-1)
	a.screen.Show()
}

func (a *App) renderStatus(width, y int) {
	if y < 0 {
		return
	}

	focusMark := func(side view.Side) string {
		if side == a.focus {
			return "*"
		}
		return " "
	}
	line := fmt.Sprintf(" %s%s │ %s%s │ n/p chunk  </> copy  w wrap  r rediff  q quit",
		focusMark(view.SideA), a.nameA, focusMark(view.SideB), a.nameB)
	if a.status != "" {
		line += " │ " + a.status
	}

	style := styleStatus
	if a.warning {
		style = styleWarning
	}
	col := 0
	for _, r := range line {
		if col >= width {
			break
		}
		a.screen.SetContent(col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		a.screen.SetContent(col, y, ' ', nil, style)
	}
}
