package tui

import "github.com/gdamore/tcell/v2"

// Pane styles. Kept to the 16-color palette so the tool reads the same
// on plain terminals.
var (
	styleDefault = tcell.StyleDefault

	styleGutter = tcell.StyleDefault.
			Foreground(tcell.ColorGray)

	styleSpacer = tcell.StyleDefault.
			Foreground(tcell.ColorGray).
			Dim(true)

	styleRemoved = tcell.StyleDefault.
			Background(tcell.ColorDarkRed)

	styleAdded = tcell.StyleDefault.
			Background(tcell.ColorDarkGreen)

	styleChanged = tcell.StyleDefault.
			Background(tcell.ColorNavy)

	// Word-level emphasis inside a changed line.
	styleChangedWord = tcell.StyleDefault.
				Background(tcell.ColorNavy).
				Bold(true).
				Underline(true)

	// Gutter marker for rows of the selected chunk.
	styleSelected = tcell.StyleDefault.
			Reverse(true)

	styleSeparator = tcell.StyleDefault.
			Foreground(tcell.ColorGray)

	styleStatus = tcell.StyleDefault.
			Reverse(true)

	styleWarning = tcell.StyleDefault.
			Foreground(tcell.ColorYellow).
			Reverse(true)
)
