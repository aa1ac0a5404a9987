// Package layout provides soft-wrap measurement for buffer lines and a
// concrete per-side view that backs the alignment and scroll engines:
// rendered row spans, pixel heights, spacer bookkeeping, and scroll
// offsets for one buffer under its current wrap settings.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// VisualWidth returns the terminal cell width of a line after tab
// expansion.
func VisualWidth(s string, tabWidth int) int {
	if tabWidth < 1 {
		tabWidth = 1
	}
	width := 0
	for _, r := range s {
		if r == '\t' {
			width += tabWidth - width%tabWidth
			continue
		}
		width += runewidth.RuneWidth(r)
	}
	return width
}

// RowSpan returns how many rendered rows the line occupies when wrapped
// at wrapWidth cells. A wrapWidth of 0 disables wrapping. Every line
// spans at least one row, including empty lines.
func RowSpan(s string, wrapWidth, tabWidth int) int {
	if wrapWidth <= 0 {
		return 1
	}
	return len(WrapRows(s, wrapWidth, tabWidth))
}

// WrapRows splits a line into its rendered rows at wrapWidth cells.
// Wrapping is by cell, with a wide rune that would straddle the
// boundary pushed to the next row. Tab expansion restarts its column
// count at the start of the full line, not per row, matching how the
// line is laid out visually.
func WrapRows(s string, wrapWidth, tabWidth int) []string {
	if wrapWidth <= 0 || s == "" {
		return []string{s}
	}
	if tabWidth < 1 {
		tabWidth = 1
	}

	var rows []string
	var row strings.Builder
	rowWidth := 0
	lineCol := 0

	flush := func() {
		rows = append(rows, row.String())
		row.Reset()
		rowWidth = 0
	}

	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if r == '\t' {
			w = tabWidth - lineCol%tabWidth
		}
		if rowWidth > 0 && rowWidth+w > wrapWidth {
			flush()
		}
		row.WriteRune(r)
		rowWidth += w
		lineCol += w
	}
	flush()
	return rows
}
