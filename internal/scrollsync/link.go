// Package scrollsync keeps the vertical scroll positions of the two
// diff views locked to the same logical line even when the sides wrap
// differently. The canonical mapping anchors at the vertical center of
// the triggering viewport and carries the center line's position within
// its own wrapped row span across as a proportion, so asymmetric spacer
// placement above the fold cannot make the views drift.
//
// Propagation is a tiny state machine, Idle -> Propagating(side) ->
// Idle, realized as one plain boolean guard per side. The guard only
// has to survive the synchronous call stack of the write it brackets.
// A Link is not goroutine safe: the owning session serializes every
// call into it under its own mutex.
package scrollsync

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/splitdiff/internal/view"
)

// Host bundles the ports the link needs for one side.
type Host struct {
	Metrics view.Metrics
	Port    view.ScrollPort
}

// Link connects the two sides' scroll state for one diff session.
type Link struct {
	a, b Host

	// Reentrancy guards, one per side. A side's flag is true while the
	// link itself is writing that side's scroll offset.
	scrollingA bool
	scrollingB bool

	logger *zap.Logger
}

// NewLink creates a scroll link over the two side hosts. A nil logger
// disables logging.
func NewLink(a, b Host, logger *zap.Logger) *Link {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Link{a: a, b: b, logger: logger}
}

// Propagating reports whether the link is currently writing the given
// side's scroll offset.
func (l *Link) Propagating(side view.Side) bool {
	if side == view.SideA {
		return l.scrollingA
	}
	return l.scrollingB
}

// OnVerticalScroll handles a vertical scroll event on the given side,
// moving the other side to match. Events generated by the link's own
// writes are suppressed by the guard. Conversion failures fall back to
// a direct pixel copy so the sides are never left unsynchronized.
func (l *Link) OnVerticalScroll(from view.Side) {
	if l.Propagating(from) {
		return
	}

	src, dst := l.hosts(from)

	target, err := l.mapOffset(src, dst)
	if err != nil {
		l.logger.Debug("scroll mapping failed, copying offset",
			zap.Stringer("from", from), zap.Error(err))
		target = src.Port.ScrollTop()
	}

	l.write(from.Other(), func() {
		dst.Port.SetScrollTop(target)
	})
}

// OnHorizontalScroll mirrors a horizontal scroll directly: soft wrap
// does not affect horizontal geometry.
func (l *Link) OnHorizontalScroll(from view.Side) {
	if l.Propagating(from) {
		return
	}

	src, dst := l.hosts(from)
	l.write(from.Other(), func() {
		dst.Port.SetScrollLeft(src.Port.ScrollLeft())
	})
}

// Force runs one synchronization pass from the given side regardless of
// events. Called on session start from the focused side so the views
// begin aligned.
func (l *Link) Force(from view.Side) {
	l.OnVerticalScroll(from)
	l.OnHorizontalScroll(from)
}

// write brackets a destination scroll write with that side's guard.
// The guard is cleared synchronously so only events generated by the
// write itself are suppressed.
func (l *Link) write(dest view.Side, fn func()) {
	if dest == view.SideA {
		l.scrollingA = true
		defer func() { l.scrollingA = false }()
	} else {
		l.scrollingB = true
		defer func() { l.scrollingB = false }()
	}
	fn()
}

// hosts returns (source, destination) for a scroll originating on from.
func (l *Link) hosts(from view.Side) (Host, Host) {
	if from == view.SideA {
		return l.a, l.b
	}
	return l.b, l.a
}

// mapOffset computes the destination scroll offset that keeps the
// source viewport's center line at the same relative position.
func (l *Link) mapOffset(src, dst Host) (int, error) {
	rowH := src.Metrics.RowHeight()
	if rowH <= 0 {
		return 0, fmt.Errorf("source row height %d", rowH)
	}

	// Rendered row under the viewport center, plus the fractional
	// offset inside that row.
	center := src.Port.ScrollTop() + src.Port.ViewportHeight()/2
	if center < 0 {
		center = 0
	}
	row := center / rowH
	frac := float64(center%rowH) / float64(rowH)

	line, err := src.Metrics.LineAtRenderedRow(row)
	if err != nil {
		return 0, fmt.Errorf("line at row %d: %w", row, err)
	}

	span, err := src.Metrics.WrappedRowSpan(line)
	if err != nil {
		return 0, fmt.Errorf("source span of line %d: %w", line, err)
	}
	if span < 1 {
		span = 1
	}

	lineRow, err := src.Metrics.RenderedRowAtLine(line)
	if err != nil {
		return 0, fmt.Errorf("source row of line %d: %w", line, err)
	}

	// Position within the line's own wrapped span as p in [0,1).
	// A center resting on a spacer row clamps to the line's edge rows.
	rowInLine := row - lineRow
	if rowInLine < 0 {
		rowInLine = 0
		frac = 0
	}
	if rowInLine >= span {
		rowInLine = span - 1
		frac = 0
	}
	p := (float64(rowInLine) + frac) / float64(span)

	// Carry p into the same logical line on the destination.
	destLine := line
	if count := dst.Metrics.LineCount(); count == 0 {
		return 0, fmt.Errorf("destination empty")
	} else if destLine >= count {
		destLine = count - 1
	}

	destSpan, err := dst.Metrics.WrappedRowSpan(destLine)
	if err != nil {
		return 0, fmt.Errorf("dest span of line %d: %w", destLine, err)
	}
	if destSpan < 1 {
		destSpan = 1
	}

	destLineRow, err := dst.Metrics.RenderedRowAtLine(destLine)
	if err != nil {
		return 0, fmt.Errorf("dest row of line %d: %w", destLine, err)
	}

	destRowH := dst.Metrics.RowHeight()
	if destRowH <= 0 {
		return 0, fmt.Errorf("dest row height %d", destRowH)
	}

	centerPx := (float64(destLineRow) + p*float64(destSpan)) * float64(destRowH)
	target := int(centerPx) - dst.Port.ViewportHeight()/2
	if target < 0 {
		target = 0
	}
	if max := dst.Port.MaxScrollTop(); target > max {
		target = max
	}
	return target, nil
}
