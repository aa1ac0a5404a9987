package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/splitdiff/internal/diff"
	"github.com/dshills/splitdiff/internal/diff/worddiff"
	"github.com/dshills/splitdiff/internal/layout"
	"github.com/dshills/splitdiff/internal/view"
)

// pane is the screen region for one side.
type pane struct {
	side    view.Side
	x       int // left screen column
	gutterW int
	textW   int
}

func (a *App) renderPane(p pane, contentH int) {
	v := a.sess.Pane(p.side).View
	top := v.ScrollTop() / v.RowHeight()

	for y := 0; y < contentH; y++ {
		info, err := v.RowAt(top + y)
		if err != nil {
			a.blankRow(p, y)
			continue
		}
		if info.Spacer {
			a.spacerRow(p, y)
			continue
		}
		a.contentRow(p, y, info)
	}
}

func (a *App) blankRow(p pane, y int) {
	for x := 0; x < p.gutterW+p.textW; x++ {
		a.screen.SetContent(p.x+x, y, ' ', nil, styleDefault)
	}
}

// spacerRow renders an alignment spacer as a dashed filler so missing
// counterpart lines stay visible.
func (a *App) spacerRow(p pane, y int) {
	for x := 0; x < p.gutterW; x++ {
		a.screen.SetContent(p.x+x, y, ' ', nil, styleGutter)
	}
	for x := 0; x < p.textW; x++ {
		a.screen.SetContent(p.x+p.gutterW+x, y, '-', nil, styleSpacer)
	}
}

func (a *App) contentRow(p pane, y int, info layout.RowInfo) {
	buf := a.sess.Pane(p.side).Buffer
	v := a.sess.Pane(p.side).View

	text, err := buf.LineText(info.Line)
	if err != nil {
		a.blankRow(p, y)
		return
	}

	base, word, selected := a.lineStyles(p.side, info.Line)

	// Gutter: line number on the first wrapped row only. Rows of the
	// selected chunk carry the selection style in the gutter.
	gstyle := styleGutter
	if selected {
		gstyle = styleSelected
	}
	gutter := strings.Repeat(" ", p.gutterW)
	if info.RowInLine == 0 {
		gutter = fmt.Sprintf("%*d ", p.gutterW-1, info.Line+1)
	}
	for i, r := range []rune(gutter) {
		if i >= p.gutterW {
			break
		}
		a.screen.SetContent(p.x+i, y, r, nil, gstyle)
	}

	rowText := text
	runeOff := 0
	startCol := 0
	hscroll := 0
	if ww := v.WrapWidth(); ww > 0 {
		rows := layout.WrapRows(text, ww, a.cfg.TabWidth)
		if info.RowInLine >= len(rows) {
			a.blankRow(p, y)
			return
		}
		prefix := strings.Join(rows[:info.RowInLine], "")
		rowText = rows[info.RowInLine]
		runeOff = utf8.RuneCountInString(prefix)
		startCol = layout.VisualWidth(prefix, a.cfg.TabWidth)
	} else {
		hscroll = v.ScrollLeft()
	}

	changed := a.changedRunes(p.side, info.Line, text)

	// Clear the text area in the line's base style first so short lines
	// still carry their chunk background.
	for x := 0; x < p.textW; x++ {
		a.screen.SetContent(p.x+p.gutterW+x, y, ' ', nil, base)
	}

	col := startCol
	ri := runeOff
	for _, r := range rowText {
		w := runewidth.RuneWidth(r)
		if r == '\t' {
			w = a.cfg.TabWidth - col%a.cfg.TabWidth
			r = ' '
		}

		style := base
		if changed != nil && ri < len(changed) && changed[ri] {
			style = word
		}

		x := col - startCol - hscroll
		if x >= 0 && x+w <= p.textW {
			a.screen.SetContent(p.x+p.gutterW+x, y, r, nil, style)
			if r == ' ' {
				// Expanded tab: style its remaining cells too.
				for i := 1; i < w; i++ {
					a.screen.SetContent(p.x+p.gutterW+x+i, y, ' ', nil, style)
				}
			}
		}
		col += w
		ri++
	}
}

// lineStyles returns the base and word-emphasis styles for a line based
// on the chunk containing it, and whether that chunk is selected.
func (a *App) lineStyles(side view.Side, line uint32) (tcell.Style, tcell.Style, bool) {
	idx, ok := a.sess.Store().Containing(side, line)
	if !ok {
		return styleDefault, styleDefault, false
	}
	c, ok := a.sess.Store().At(idx)
	if !ok {
		return styleDefault, styleDefault, false
	}

	var base tcell.Style
	switch {
	case c.IsDeletion():
		base = styleRemoved
	case c.IsInsertion():
		base = styleAdded
	default:
		base = styleChanged
	}
	word := styleChangedWord
	if c.Selected {
		base = base.Bold(true).Underline(true)
		word = word.Bold(true)
	}
	return base, word, c.Selected
}

// changedRunes marks which runes of the line differ from its
// counterpart line in the paired buffer. Nil means no word diff
// applies; the line renders in its base style.
func (a *App) changedRunes(side view.Side, line uint32, text string) []bool {
	if !a.cfg.WordDiff {
		return nil
	}
	idx, ok := a.sess.Store().Containing(side, line)
	if !ok {
		return nil
	}
	c, ok := a.sess.Store().At(idx)
	if !ok || c.IsInsertion() || c.IsDeletion() {
		return nil
	}

	own := c.Range(side)
	other := c.Range(side.Other())
	off := line - own.Start
	if off >= other.Len() {
		return allChanged(text)
	}

	otherText, err := a.sess.Pane(side.Other()).Buffer.LineText(other.Start + off)
	if err != nil {
		return nil
	}
	// A wholly empty counterpart bypasses the word diff; the whole line
	// is emphasized.
	if otherText == "" && text != "" {
		return allChanged(text)
	}

	var segs []worddiff.Segment
	if side == view.SideA {
		segs, _ = worddiff.Diff(text, otherText)
	} else {
		_, segs = worddiff.Diff(otherText, text)
	}
	return segmentRunes(segs)
}

func allChanged(text string) []bool {
	marks := make([]bool, utf8.RuneCountInString(text))
	for i := range marks {
		marks[i] = true
	}
	return marks
}

func segmentRunes(segs []worddiff.Segment) []bool {
	var marks []bool
	for _, seg := range segs {
		n := utf8.RuneCountInString(seg.Text)
		for i := 0; i < n; i++ {
			marks = append(marks, seg.Changed)
		}
	}
	return marks
}

// chunkLabel summarizes a chunk for the status line.
func chunkLabel(c diff.Chunk) string {
	switch {
	case c.IsInsertion():
		return fmt.Sprintf("+%d", c.New.Len())
	case c.IsDeletion():
		return fmt.Sprintf("-%d", c.Old.Len())
	default:
		return fmt.Sprintf("-%d+%d", c.Old.Len(), c.New.Len())
	}
}
