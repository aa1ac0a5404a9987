package diff

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/splitdiff/internal/view"
)

// Errors returned by chunk store operations.
var (
	ErrChunksUnsorted = errors.New("chunks not sorted by start line")
	ErrChunksOverlap  = errors.New("chunk ranges overlap")
)

// Chunk represents one contiguous change region between the two buffers.
// Both ranges are half-open logical-line ranges. An empty Old range is a
// pure insertion; an empty New range is a pure deletion.
type Chunk struct {
	// Old is the line range in buffer A.
	Old view.LineRange

	// New is the line range in buffer B.
	New view.LineRange

	// Selected marks the chunk as the current navigation target or as
	// containing the editing cursor.
	Selected bool
}

// Range returns the chunk's range on the given side.
func (c Chunk) Range(side view.Side) view.LineRange {
	if side == view.SideA {
		return c.Old
	}
	return c.New
}

// IsInsertion returns true if the chunk only adds lines in buffer B.
func (c Chunk) IsInsertion() bool {
	return c.Old.IsEmpty() && !c.New.IsEmpty()
}

// IsDeletion returns true if the chunk only removes lines from buffer A.
func (c Chunk) IsDeletion() bool {
	return c.New.IsEmpty() && !c.Old.IsEmpty()
}

// String returns a compact description of the chunk.
func (c Chunk) String() string {
	return fmt.Sprintf("old:%s new:%s", c.Old, c.New)
}

// Store holds the ordered chunk list for one diff session plus per-chunk
// selection state. The list is replaced wholesale on each new diff
// result; Selected is the only field mutated after load.
type Store struct {
	mu     sync.RWMutex
	chunks []Chunk
}

// NewStore creates an empty chunk store.
func NewStore() *Store {
	return &Store{}
}

// Load replaces the chunk list and clears all selection state.
// The list must be sorted by start line with non-overlapping ranges on
// each side; adjacent ranges (zero-width unchanged gap) are allowed.
func (s *Store) Load(chunks []Chunk) error {
	if err := validate(chunks); err != nil {
		return err
	}

	cp := make([]Chunk, len(chunks))
	copy(cp, chunks)
	for i := range cp {
		cp[i].Selected = false
	}

	s.mu.Lock()
	s.chunks = cp
	s.mu.Unlock()
	return nil
}

// Count returns the number of chunks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// At returns the chunk at index, or false if out of range.
func (s *Store) At(index int) (Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.chunks) {
		return Chunk{}, false
	}
	return s.chunks[index], true
}

// All returns a copy of the chunk list in order.
func (s *Store) All() []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Containing returns the index of the first chunk whose range on the
// given side contains the logical line, or false if none does.
// Chunk lists are bounded by file length, so a linear scan is fine.
func (s *Store) Containing(side view.Side, line uint32) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, c := range s.chunks {
		if c.Range(side).Contains(line) {
			return i, true
		}
	}
	return 0, false
}

// SetSelected updates the selection flag on the chunk at index.
// Out-of-range indexes are ignored.
func (s *Store) SetSelected(index int, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.chunks) {
		return
	}
	s.chunks[index].Selected = selected
}

// ClearSelection clears the selection flag on every chunk.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.chunks {
		s.chunks[i].Selected = false
	}
}

// SelectedIndices returns the indexes of all selected chunks in order.
func (s *Store) SelectedIndices() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []int
	for i, c := range s.chunks {
		if c.Selected {
			out = append(out, i)
		}
	}
	return out
}

// validate checks the load invariants: sorted by start line, ranges on
// the same side never overlap, never regress.
func validate(chunks []Chunk) error {
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		if cur.Old.Start < prev.Old.Start || cur.New.Start < prev.New.Start {
			return fmt.Errorf("chunk %d: %w", i, ErrChunksUnsorted)
		}
		if cur.Old.Start < prev.Old.End || cur.New.Start < prev.New.End {
			return fmt.Errorf("chunk %d: %w", i, ErrChunksOverlap)
		}
	}
	return nil
}
