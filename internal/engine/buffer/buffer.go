package buffer

import (
	"errors"
	"strings"
	"sync"

	"github.com/dshills/splitdiff/internal/view"
)

// Errors returned by buffer operations.
var (
	ErrLineOutOfRange = errors.New("line out of range")
	ErrRangeInvalid   = errors.New("invalid line range")
	ErrDestroyed      = errors.New("buffer destroyed")
)

// ChangeHandler is called after any content mutation. Handlers run
// synchronously on the mutating call; they must not mutate the buffer.
type ChangeHandler func()

// Buffer is a line-oriented text buffer. All methods are thread-safe.
type Buffer struct {
	mu        sync.RWMutex
	lines     []string
	finalEOL  bool
	revision  uint64
	destroyed bool

	handlersMu sync.Mutex
	handlers   map[uint64]ChangeHandler
	nextHandle uint64
}

// New creates an empty buffer holding a single empty line.
func New() *Buffer {
	return &Buffer{
		lines:    []string{""},
		handlers: make(map[uint64]ChangeHandler),
	}
}

// FromString creates a buffer from content. CRLF and lone CR line
// endings are normalized to LF before splitting.
func FromString(s string) *Buffer {
	b := New()
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	b.finalEOL = strings.HasSuffix(s, "\n")
	if b.finalEOL {
		s = strings.TrimSuffix(s, "\n")
	}
	b.lines = strings.Split(s, "\n")
	return b
}

// LineCount returns the number of logical lines.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(len(b.lines))
}

// LineText returns the text of one logical line, without line ending.
func (b *Buffer) LineText(line uint32) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return "", ErrDestroyed
	}
	if int(line) >= len(b.lines) {
		return "", ErrLineOutOfRange
	}
	return b.lines[line], nil
}

// Lines returns a copy of the lines in the half-open range.
func (b *Buffer) Lines(r view.LineRange) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return nil, ErrDestroyed
	}
	if r.End < r.Start || int(r.End) > len(b.lines) {
		return nil, ErrRangeInvalid
	}

	out := make([]string, r.Len())
	copy(out, b.lines[r.Start:r.End])
	return out, nil
}

// Text returns the full content with LF line endings.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	text := strings.Join(b.lines, "\n")
	if b.finalEOL {
		text += "\n"
	}
	return text
}

// ReplaceLineRange replaces the lines in the half-open range with the
// replacement slice. The range may be empty (pure insertion at Start)
// and the replacement may be empty (pure deletion).
func (b *Buffer) ReplaceLineRange(r view.LineRange, replacement []string) error {
	b.mu.Lock()

	if b.destroyed {
		b.mu.Unlock()
		return ErrDestroyed
	}
	if r.End < r.Start || int(r.End) > len(b.lines) {
		b.mu.Unlock()
		return ErrRangeInvalid
	}

	updated := make([]string, 0, len(b.lines)-int(r.Len())+len(replacement))
	updated = append(updated, b.lines[:r.Start]...)
	updated = append(updated, replacement...)
	updated = append(updated, b.lines[r.End:]...)
	if len(updated) == 0 {
		updated = []string{""}
	}
	b.lines = updated
	b.revision++
	b.mu.Unlock()

	b.notify()
	return nil
}

// AppendLine adds a line at the end of the buffer.
func (b *Buffer) AppendLine(text string) error {
	b.mu.Lock()

	if b.destroyed {
		b.mu.Unlock()
		return ErrDestroyed
	}
	b.lines = append(b.lines, text)
	b.revision++
	b.mu.Unlock()

	b.notify()
	return nil
}

// Revision returns a counter incremented on every mutation.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// OnChange registers a change handler and returns a handle for removal.
func (b *Buffer) OnChange(h ChangeHandler) uint64 {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()

	b.nextHandle++
	id := b.nextHandle
	b.handlers[id] = h
	return id
}

// RemoveHandler detaches a previously registered change handler.
func (b *Buffer) RemoveHandler(id uint64) {
	b.handlersMu.Lock()
	defer b.handlersMu.Unlock()
	delete(b.handlers, id)
}

// Destroy marks the buffer as dead. Subsequent reads and writes return
// ErrDestroyed; handlers are dropped.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	b.destroyed = true
	b.mu.Unlock()

	b.handlersMu.Lock()
	b.handlers = make(map[uint64]ChangeHandler)
	b.handlersMu.Unlock()
}

// IsDestroyed reports whether Destroy has been called.
func (b *Buffer) IsDestroyed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.destroyed
}

// notify invokes change handlers outside the content lock.
func (b *Buffer) notify() {
	b.handlersMu.Lock()
	hs := make([]ChangeHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.handlersMu.Unlock()

	for _, h := range hs {
		h()
	}
}
