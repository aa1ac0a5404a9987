package layout

import "github.com/dshills/splitdiff/internal/view"

// RowInfo describes what one rendered row displays.
type RowInfo struct {
	// Line is the logical line the row belongs to (the anchor line for
	// spacer rows).
	Line uint32

	// RowInLine is the wrapped row index within the line's own span.
	// Zero for spacer rows.
	RowInLine int

	// Spacer is true for rows produced by an alignment spacer rather
	// than buffer content.
	Spacer bool
}

// RowAt resolves a rendered row index into its content description.
// Used by renderers walking the visible row window.
func (v *View) RowAt(row int) (RowInfo, error) {
	if v.buf.IsDestroyed() {
		return RowInfo{}, ErrViewBufferDead
	}
	if row < 0 {
		return RowInfo{}, ErrRowOutOfRange
	}

	count := v.buf.LineCount()
	cursor := 0
	for line := uint32(0); line < count; line++ {
		before := v.spacerRows(line, view.Before)
		if row < cursor+before {
			return RowInfo{Line: line, Spacer: true}, nil
		}
		cursor += before

		span, err := v.WrappedRowSpan(line)
		if err != nil {
			return RowInfo{}, err
		}
		if row < cursor+span {
			return RowInfo{Line: line, RowInLine: row - cursor}, nil
		}
		cursor += span

		after := v.spacerRows(line, view.After)
		if row < cursor+after {
			return RowInfo{Line: line, Spacer: true}, nil
		}
		cursor += after
	}
	return RowInfo{}, ErrRowOutOfRange
}
