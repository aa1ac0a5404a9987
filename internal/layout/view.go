package layout

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/splitdiff/internal/engine/buffer"
	"github.com/dshills/splitdiff/internal/view"
)

// Errors returned by view geometry lookups.
var (
	ErrRowOutOfRange  = errors.New("rendered row out of range")
	ErrUnknownSpacer  = errors.New("unknown spacer id")
	ErrViewBufferDead = errors.New("view buffer destroyed")
)

// View is one side's rendered geometry: the buffer under a wrap width,
// the spacers inserted by the alignment engine, and the scroll state.
// It implements the Metrics, SpacerHost, and ScrollPort boundaries.
type View struct {
	mu sync.RWMutex

	buf *buffer.Buffer

	// Wrap settings
	wrapWidth int // cells; 0 disables wrapping
	tabWidth  int

	// Geometry
	rowHeight      int // pixels per rendered row
	viewportHeight int // pixels
	viewportWidth  int // cells

	// Scroll offsets in pixels
	scrollTop  int
	scrollLeft int

	// Dynamic spacers, kept sorted by (line, position)
	spacers []spacer

	cache *spanCache
}

// spacer is one inserted alignment block. Heights stay in pixels; row
// math rounds up so a partial row still occupies a full rendered row.
type spacer struct {
	id     string
	line   uint32
	pos    view.ZonePosition
	pixels int
}

// Option configures a View.
type Option func(*View)

// WithTabWidth sets the tab expansion width (default 4).
func WithTabWidth(w int) Option {
	return func(v *View) {
		if w > 0 {
			v.tabWidth = w
		}
	}
}

// WithRowHeight sets the pixel height of one rendered row (default 1,
// which makes pixel and row units coincide for cell-based hosts).
func WithRowHeight(h int) Option {
	return func(v *View) {
		if h > 0 {
			v.rowHeight = h
		}
	}
}

// NewView creates a view over the buffer with wrapping disabled.
func NewView(buf *buffer.Buffer, opts ...Option) *View {
	v := &View{
		buf:       buf,
		tabWidth:  4,
		rowHeight: 1,
		cache:     newSpanCache(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Buffer returns the underlying buffer.
func (v *View) Buffer() *buffer.Buffer {
	return v.buf
}

// SetWrapWidth changes the soft-wrap width in cells (0 disables) and
// invalidates cached spans.
func (v *View) SetWrapWidth(width int) {
	v.mu.Lock()
	if width < 0 {
		width = 0
	}
	v.wrapWidth = width
	v.mu.Unlock()
	v.cache.clear()
}

// WrapWidth returns the current soft-wrap width.
func (v *View) WrapWidth() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.wrapWidth
}

// SetViewport records the visible size: width in cells, height in
// pixels.
func (v *View) SetViewport(widthCells, heightPx int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if widthCells < 1 {
		widthCells = 1
	}
	if heightPx < 0 {
		heightPx = 0
	}
	v.viewportWidth = widthCells
	v.viewportHeight = heightPx
}

// ViewportWidth returns the visible width in cells.
func (v *View) ViewportWidth() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.viewportWidth
}

// Metrics

// LineCount returns the buffer's logical line count.
func (v *View) LineCount() uint32 {
	return v.buf.LineCount()
}

// WrappedRowSpan returns the rendered row count of the logical line.
func (v *View) WrappedRowSpan(line uint32) (int, error) {
	text, err := v.buf.LineText(line)
	if err != nil {
		return 0, err
	}

	if span, ok := v.cache.get(line, text); ok {
		return span, nil
	}

	v.mu.RLock()
	wrapWidth, tabWidth := v.wrapWidth, v.tabWidth
	v.mu.RUnlock()

	span := RowSpan(text, wrapWidth, tabWidth)
	v.cache.put(line, text, span)
	return span, nil
}

// LineHeight returns the rendered pixel height of one logical line,
// excluding spacers.
func (v *View) LineHeight(line uint32) (int, error) {
	span, err := v.WrappedRowSpan(line)
	if err != nil {
		return 0, err
	}
	return span * v.RowHeight(), nil
}

// RangeHeight returns the total rendered pixel height of the half-open
// line range, excluding spacers.
func (v *View) RangeHeight(r view.LineRange) (int, error) {
	total := 0
	for line := r.Start; line < r.End; line++ {
		h, err := v.LineHeight(line)
		if err != nil {
			return 0, err
		}
		total += h
	}
	return total, nil
}

// RowHeight returns the fixed pixel height of one rendered row.
func (v *View) RowHeight() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.rowHeight
}

// LineAtRenderedRow maps a rendered row (spacer rows included) to the
// logical line owning it. Spacer rows belong to their anchor line. Rows
// past the end clamp to the last line.
func (v *View) LineAtRenderedRow(row int) (uint32, error) {
	if v.buf.IsDestroyed() {
		return 0, ErrViewBufferDead
	}
	if row < 0 {
		return 0, ErrRowOutOfRange
	}

	count := v.buf.LineCount()
	cursor := 0
	for line := uint32(0); line < count; line++ {
		block, err := v.lineBlockRows(line)
		if err != nil {
			return 0, err
		}
		if row < cursor+block {
			return line, nil
		}
		cursor += block
	}
	if count == 0 {
		return 0, ErrRowOutOfRange
	}
	return count - 1, nil
}

// RenderedRowAtLine maps a logical line to its first content row,
// counting wrapped rows and spacer rows above it.
func (v *View) RenderedRowAtLine(line uint32) (int, error) {
	if v.buf.IsDestroyed() {
		return 0, ErrViewBufferDead
	}
	if line >= v.buf.LineCount() {
		return 0, buffer.ErrLineOutOfRange
	}

	row := 0
	for l := uint32(0); l < line; l++ {
		block, err := v.lineBlockRows(l)
		if err != nil {
			return 0, err
		}
		row += block
	}
	row += v.spacerRows(line, view.Before)
	return row, nil
}

// lineBlockRows returns the rendered rows a line contributes including
// its attached spacers.
func (v *View) lineBlockRows(line uint32) (int, error) {
	span, err := v.WrappedRowSpan(line)
	if err != nil {
		return 0, err
	}
	return v.spacerRows(line, view.Before) + span + v.spacerRows(line, view.After), nil
}

// spacerRows converts the spacer at (line, pos), if any, to rendered
// rows, rounding partial rows up.
func (v *View) spacerRows(line uint32, pos view.ZonePosition) int {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, s := range v.spacers {
		if s.line == line && s.pos == pos {
			rh := v.rowHeight
			return (s.pixels + rh - 1) / rh
		}
	}
	return 0
}

// TotalHeight returns the full rendered height in pixels: content rows
// plus spacer pixels.
func (v *View) TotalHeight() (int, error) {
	count := v.buf.LineCount()
	total := 0
	for line := uint32(0); line < count; line++ {
		block, err := v.lineBlockRows(line)
		if err != nil {
			return 0, err
		}
		total += block * v.RowHeight()
	}
	return total, nil
}

// SpacerHost

// InsertSpacer places a spacer at the line boundary, replacing any
// existing spacer with the same (line, position) key.
func (v *View) InsertSpacer(line uint32, pos view.ZonePosition, pixels int) (string, error) {
	if v.buf.IsDestroyed() {
		return "", ErrViewBufferDead
	}
	if pixels <= 0 {
		return "", nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.spacers {
		if v.spacers[i].line == line && v.spacers[i].pos == pos {
			v.spacers[i].pixels = pixels
			return v.spacers[i].id, nil
		}
	}

	s := spacer{id: uuid.NewString(), line: line, pos: pos, pixels: pixels}
	// Keep sorted by (line, position); the slice is small, insert in place.
	at := len(v.spacers)
	for i, existing := range v.spacers {
		if existing.line > s.line || (existing.line == s.line && existing.pos > s.pos) {
			at = i
			break
		}
	}
	v.spacers = append(v.spacers, spacer{})
	copy(v.spacers[at+1:], v.spacers[at:])
	v.spacers[at] = s
	return s.id, nil
}

// UpdateSpacer changes a spacer's height. A height of zero or less
// removes it.
func (v *View) UpdateSpacer(id string, pixels int) error {
	if pixels <= 0 {
		return v.RemoveSpacer(id)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.spacers {
		if v.spacers[i].id == id {
			v.spacers[i].pixels = pixels
			return nil
		}
	}
	return ErrUnknownSpacer
}

// RemoveSpacer deletes a spacer by id. Unknown ids are not an error so
// teardown can run against a view that already cleared itself.
func (v *View) RemoveSpacer(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.spacers {
		if v.spacers[i].id == id {
			v.spacers = append(v.spacers[:i], v.spacers[i+1:]...)
			return nil
		}
	}
	return nil
}

// ClearSpacers removes every spacer.
func (v *View) ClearSpacers() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spacers = nil
}

// SpacerAt returns the pixel height of the spacer at (line, pos), if
// present.
func (v *View) SpacerAt(line uint32, pos view.ZonePosition) (int, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, s := range v.spacers {
		if s.line == line && s.pos == pos {
			return s.pixels, true
		}
	}
	return 0, false
}

// SpacerCount returns the number of active spacers.
func (v *View) SpacerCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.spacers)
}

// ScrollPort

// ScrollTop returns the vertical scroll offset in pixels.
func (v *View) ScrollTop() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scrollTop
}

// SetScrollTop writes the vertical offset, clamped to [0, MaxScrollTop].
func (v *View) SetScrollTop(px int) {
	max := v.MaxScrollTop()

	v.mu.Lock()
	defer v.mu.Unlock()
	if px < 0 {
		px = 0
	}
	if px > max {
		px = max
	}
	v.scrollTop = px
}

// MaxScrollTop returns the largest valid vertical offset.
func (v *View) MaxScrollTop() int {
	total, err := v.TotalHeight()
	if err != nil {
		return 0
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	max := total - v.viewportHeight
	if max < 0 {
		return 0
	}
	return max
}

// ViewportHeight returns the visible height in pixels.
func (v *View) ViewportHeight() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.viewportHeight
}

// ScrollLeft returns the horizontal scroll offset in pixels.
func (v *View) ScrollLeft() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scrollLeft
}

// SetScrollLeft writes the horizontal offset.
func (v *View) SetScrollLeft(px int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if px < 0 {
		px = 0
	}
	v.scrollLeft = px
}
