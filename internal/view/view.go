// Package view defines the boundary types shared by the alignment and
// scroll engines: which side of the pair a value belongs to, logical
// line ranges, and the ports a host view must implement (row span and
// pixel height queries, spacer insertion, scroll offset access).
package view

import "fmt"

// Side identifies one of the two buffers in a diff pair.
type Side uint8

const (
	// SideA is the left (old) buffer.
	SideA Side = iota
	// SideB is the right (new) buffer.
	SideB
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "unknown"
	}
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// LineRange is a half-open range of logical lines [Start, End).
// An empty range (End == Start) is a zero-width anchor.
type LineRange struct {
	Start uint32
	End   uint32
}

// Len returns the number of lines in the range.
func (r LineRange) Len() uint32 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsEmpty returns true if the range covers no lines.
func (r LineRange) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains returns true if the logical line falls inside the range.
func (r LineRange) Contains(line uint32) bool {
	return line >= r.Start && line < r.End
}

// String returns the range in half-open notation.
func (r LineRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// ZonePosition selects which edge of the anchor line a spacer attaches to.
type ZonePosition uint8

const (
	// Before places the spacer above the anchor line.
	Before ZonePosition = iota
	// After places the spacer below the anchor line.
	After
)

// String returns the position name.
func (p ZonePosition) String() string {
	if p == Before {
		return "before"
	}
	return "after"
}

// Metrics exposes per-side rendered geometry for logical lines.
// Implementations must answer for the view's current wrap state; all
// heights are in pixels and all rows are rendered (post-wrap) rows.
type Metrics interface {
	// LineCount returns the number of logical lines in the buffer.
	LineCount() uint32

	// WrappedRowSpan returns how many rendered rows the logical line
	// occupies under the current wrap settings (>= 1 for valid lines).
	WrappedRowSpan(line uint32) (int, error)

	// LineHeight returns the rendered pixel height of a single logical
	// line, excluding any spacer attached to it.
	LineHeight(line uint32) (int, error)

	// RangeHeight returns the total rendered pixel height of the
	// half-open line range, excluding spacers.
	RangeHeight(r LineRange) (int, error)

	// RowHeight returns the fixed pixel height of one rendered row.
	RowHeight() int

	// LineAtRenderedRow maps a rendered row index back to the logical
	// line it belongs to (inverse of the wrap function).
	LineAtRenderedRow(row int) (uint32, error)

	// RenderedRowAtLine maps a logical line to its first rendered row,
	// including the rows contributed by spacers above it.
	RenderedRowAtLine(line uint32) (int, error)
}

// SpacerHost inserts and removes fixed-height spacer blocks at line
// boundaries. Spacer ids are opaque to the engines.
type SpacerHost interface {
	// InsertSpacer places a spacer of the given pixel height at the
	// line boundary and returns its id. At most one spacer exists per
	// (line, pos) boundary: inserting at an occupied boundary replaces
	// the existing spacer with the new absolute height rather than
	// adding a second one. The alignment engine depends on this when it
	// stacks a chunk anchor onto an unchanged-pair spacer at the same
	// boundary.
	InsertSpacer(line uint32, pos ZonePosition, pixels int) (string, error)

	// UpdateSpacer changes an existing spacer's height.
	UpdateSpacer(id string, pixels int) error

	// RemoveSpacer deletes a spacer.
	RemoveSpacer(id string) error
}

// ScrollPort exposes a view's scroll offsets. Vertical offsets are in
// pixels from the top of the rendered (spacer-inclusive) content.
type ScrollPort interface {
	// ScrollTop returns the current vertical scroll offset.
	ScrollTop() int

	// SetScrollTop writes the vertical scroll offset. Implementations
	// clamp to [0, MaxScrollTop].
	SetScrollTop(px int)

	// MaxScrollTop returns the largest valid vertical offset.
	MaxScrollTop() int

	// ViewportHeight returns the visible height in pixels.
	ViewportHeight() int

	// ScrollLeft returns the current horizontal scroll offset.
	ScrollLeft() int

	// SetScrollLeft writes the horizontal scroll offset.
	SetScrollLeft(px int)
}
