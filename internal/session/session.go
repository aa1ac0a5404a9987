package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/splitdiff/internal/align"
	"github.com/dshills/splitdiff/internal/diff"
	"github.com/dshills/splitdiff/internal/diff/compute"
	"github.com/dshills/splitdiff/internal/engine/buffer"
	"github.com/dshills/splitdiff/internal/layout"
	"github.com/dshills/splitdiff/internal/sched"
	"github.com/dshills/splitdiff/internal/scrollsync"
	"github.com/dshills/splitdiff/internal/view"
)

// Pane bundles one side's buffer and its layout view.
type Pane struct {
	Buffer *buffer.Buffer
	View   *layout.View
}

// Session is the coordinator for one active diff between two panes.
type Session struct {
	id       string
	a, b     Pane
	store    *diff.Store
	align    *align.Engine
	link     *scrollsync.Link
	sched    *sched.Scheduler
	computer *compute.Computer
	logger   *zap.Logger

	mu              sync.Mutex
	focus           view.Side
	selectionActive bool
	selectedIndex   int
	disposed        bool

	handleA uint64
	handleB uint64
}

// New creates a session over the two panes. Pane A is the left (old)
// side, pane B the right (new) side. Buffer mutations schedule a
// deferred alignment recompute on the given clock. A nil logger
// disables logging.
func New(a, b Pane, clock sched.Clock, logger *zap.Logger, opts ...sched.Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		id:       uuid.NewString(),
		a:        a,
		b:        b,
		store:    diff.NewStore(),
		computer: compute.New(logger),
		logger:   logger,
		focus:    view.SideA,
	}
	s.align = align.NewEngine(
		align.Host{Metrics: a.View, Spacers: a.View},
		align.Host{Metrics: b.View, Spacers: b.View},
		logger,
	)
	s.link = scrollsync.NewLink(
		scrollsync.Host{Metrics: a.View, Port: a.View},
		scrollsync.Host{Metrics: b.View, Port: b.View},
		logger,
	)
	s.sched = sched.New(clock, s.recompute, opts...)

	s.handleA = a.Buffer.OnChange(s.sched.Trigger)
	s.handleB = b.Buffer.OnChange(s.sched.Trigger)
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string {
	return s.id
}

// Store returns the session's chunk store for read-only observers.
func (s *Session) Store() *diff.Store {
	return s.store
}

// Scrolled propagates a vertical scroll on the side to the other side
// through the scroll link. The session mutex serializes it against
// alignment passes running off the scheduler's clock.
func (s *Session) Scrolled(side view.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link.OnVerticalScroll(side)
}

// ScrolledHorizontal mirrors a horizontal scroll on the side to the
// other side.
func (s *Session) ScrolledHorizontal(side view.Side) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link.OnHorizontalScroll(side)
}

// Zones returns the alignment engine's current spacer zones for the
// side, for read-only observers.
func (s *Session) Zones(side view.Side) []align.Zone {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.align.Zones(side)
}

// Pane returns the pane for the side.
func (s *Session) Pane(side view.Side) Pane {
	if side == view.SideA {
		return s.a
	}
	return s.b
}

// SetFocus records which side holds editing focus. The forced scroll
// sync after each alignment pass originates from the focused side.
func (s *Session) SetFocus(side view.Side) {
	s.mu.Lock()
	s.focus = side
	s.mu.Unlock()
}

// SelectedIndex returns the current selection cursor, or NoChunk when
// no chunk is selected.
func (s *Session) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.selectionActive {
		return NoChunk
	}
	return s.selectedIndex
}

// LoadDiff replaces the chunk list wholesale. Existing spacer zones and
// any pending recompute are torn down first, selection resets, and a
// fresh alignment pass is scheduled.
func (s *Session) LoadDiff(chunks []diff.Chunk) error {
	// Cancel first: an executing recompute finishes before the mutex is
	// acquired below, and no new pass starts until the reset.
	s.sched.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}

	s.align.Clear()
	if err := s.store.Load(chunks); err != nil {
		return err
	}
	s.selectionActive = false
	s.selectedIndex = 0

	s.sched.Reset()
	s.sched.Trigger()
	return nil
}

// ComputeDiff snapshots both buffers, runs the external diff tool, and
// loads the result. A superseded request returns compute.ErrSuperseded.
// Tool failure leaves the prior diff state untouched.
func (s *Session) ComputeDiff(ctx context.Context, opts compute.Options) error {
	res, err := s.computer.Diff(ctx, s.a.Buffer.Text(), s.b.Buffer.Text(), opts)
	if err != nil {
		if !errors.Is(err, compute.ErrSuperseded) {
			s.logger.Warn("diff computation failed", zap.Error(err))
		}
		return err
	}
	return s.LoadDiff(res.Chunks)
}

// WrapChanged schedules an alignment recompute after a wrap-mode
// toggle on either side.
func (s *Session) WrapChanged() {
	s.sched.Trigger()
}

// Resized schedules a debounced alignment recompute; bursts of resize
// events coalesce into one pass.
func (s *Session) Resized() {
	s.sched.TriggerDebounced()
}

// Next advances the selection cursor with wraparound, highlights the
// chunk, and centers the focused side's viewport on its anchor line at
// one third from the top; the other side follows through the scroll
// link. Returns the new index, or NoChunk when the chunk list is empty.
func (s *Session) Next() int {
	return s.step(1)
}

// Prev steps the selection cursor backwards with wraparound.
func (s *Session) Prev() int {
	return s.step(-1)
}

func (s *Session) step(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.store.Count()
	if count == 0 {
		return NoChunk
	}

	if s.selectionActive {
		s.store.SetSelected(s.selectedIndex, false)
		s.selectedIndex = ((s.selectedIndex+delta)%count + count) % count
	} else {
		s.selectionActive = true
		if delta > 0 {
			s.selectedIndex = 0
		} else {
			s.selectedIndex = count - 1
		}
	}
	s.store.SetSelected(s.selectedIndex, true)

	if c, ok := s.store.At(s.selectedIndex); ok {
		s.centerThird(s.focus, anchorLine(c.Range(s.focus)))
		s.link.Force(s.focus)
	}
	return s.selectedIndex
}

// centerThird scrolls the side so the line sits one third from the top
// of its viewport. The write goes directly to the port; the caller
// follows up with a forced link pass so the other side lands by the
// sync mapping. Lookup failures leave the side where it is.
func (s *Session) centerThird(side view.Side, line uint32) {
	v := s.Pane(side).View
	row, err := v.RenderedRowAtLine(line)
	if err != nil {
		return
	}
	px := row*v.RowHeight() - v.ViewportHeight()/3
	if px < 0 {
		px = 0
	}
	v.SetScrollTop(px)
}

// anchorLine picks the line to center on for one side of a chunk: its
// first line when non-empty, otherwise the preceding unchanged line.
func anchorLine(r view.LineRange) uint32 {
	if !r.IsEmpty() || r.Start == 0 {
		return r.Start
	}
	return r.Start - 1
}

// CursorMoved updates selection after a manual cursor move on one side:
// the chunk previously containing the cursor is deselected on both
// ranges, and the chunk now containing it, if any, becomes the
// selection without recentring.
func (s *Session) CursorMoved(side view.Side, oldLine, newLine uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.store.Containing(side, oldLine); ok {
		s.store.SetSelected(idx, false)
		if s.selectionActive && s.selectedIndex == idx {
			s.selectionActive = false
		}
	}
	if idx, ok := s.store.Containing(side, newLine); ok {
		s.store.SetSelected(idx, true)
		s.selectionActive = true
		s.selectedIndex = idx
	}
}

// CopyLeft copies every selected chunk's content from the left (old)
// side into the right side's corresponding range.
func (s *Session) CopyLeft() error {
	return s.copyChunks(view.SideA)
}

// CopyRight copies every selected chunk's content from the right (new)
// side into the left side's corresponding range.
func (s *Session) CopyRight() error {
	return s.copyChunks(view.SideB)
}

// copyChunks replaces the destination range of each selected chunk, in
// original order, with the source side's lines. A running offset tracks
// line growth and shrinkage from earlier copies so later chunks land on
// their shifted destination coordinates. A destroyed buffer aborts the
// copy quietly; disposal ordering across the two buffers is not
// guaranteed.
func (s *Session) copyChunks(src view.Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return ErrDisposed
	}
	selected := s.store.SelectedIndices()
	if len(selected) == 0 {
		return ErrNoSelection
	}

	dst := src.Other()
	srcBuf := s.Pane(src).Buffer
	dstBuf := s.Pane(dst).Buffer

	offset := 0
	for _, idx := range selected {
		c, ok := s.store.At(idx)
		if !ok {
			continue
		}
		lines, err := srcBuf.Lines(c.Range(src))
		if err != nil {
			s.logger.Warn("copy read failed", zap.Error(err))
			return nil
		}

		target := shiftRange(c.Range(dst), offset)
		for target.Start > dstBuf.LineCount() {
			if err := dstBuf.AppendLine(""); err != nil {
				s.logger.Warn("copy append failed", zap.Error(err))
				return nil
			}
		}
		if err := dstBuf.ReplaceLineRange(target, lines); err != nil {
			s.logger.Warn("copy write failed", zap.Error(err))
			return nil
		}
		offset += len(lines) - int(target.Len())
	}

	// Step the cursor back one so the next call to Next lands on the
	// chunk after the copied ones instead of skipping it.
	if s.selectionActive {
		count := s.store.Count()
		s.selectedIndex--
		if s.selectedIndex < 0 && count > 0 {
			s.selectedIndex = count - 1
		}
	}
	return nil
}

// shiftRange applies the running copy offset to a destination range,
// clamping at zero.
func shiftRange(r view.LineRange, offset int) view.LineRange {
	start := int(r.Start) + offset
	end := int(r.End) + offset
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	return view.LineRange{Start: uint32(start), End: uint32(end)}
}

// recompute runs one alignment pass over the current chunk list and
// then forces a scroll sync from the focused side. A failed pass is
// skipped; a later event retriggers it. The session mutex is held for
// the whole pass: recompute runs on the scheduler's clock goroutine,
// and the engine and link are not goroutine safe on their own.
func (s *Session) recompute() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}

	if err := s.align.Recompute(s.store.All()); err != nil {
		s.logger.Warn("alignment pass skipped", zap.Error(err))
		return
	}
	s.link.Force(s.focus)
}

// Dispose tears the session down: pending recomputes and in-flight
// diff computations are cancelled, spacers released, and buffer change
// listeners detached. Safe to call more than once; all other
// operations return ErrDisposed afterwards.
func (s *Session) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	s.sched.Cancel()
	s.computer.CancelPending()

	s.mu.Lock()
	s.align.Clear()
	s.mu.Unlock()

	s.a.Buffer.RemoveHandler(s.handleA)
	s.b.Buffer.RemoveHandler(s.handleB)
	s.logger.Debug("session disposed", zap.String("id", s.id))
}
