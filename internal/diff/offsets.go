package diff

// OffsetMap is the legacy static alignment hint: a map from logical
// line number to a count of blank compensating lines that would pad the
// opposite side at that point. Dynamic view zones superseded it; the
// map is kept because external diff tools still emit it and consumers
// may consult it, but it must never be rendered as buffer content.
type OffsetMap map[uint32]uint32

// TotalThrough returns the cumulative padding at or before the given
// logical line.
func (m OffsetMap) TotalThrough(line uint32) uint32 {
	var total uint32
	for l, n := range m {
		if l <= line {
			total += n
		}
	}
	return total
}

// Result is the structured output of one external diff computation: the
// ordered chunk list plus the two legacy offset maps.
type Result struct {
	// Chunks is the ordered change list.
	Chunks []Chunk

	// OldOffsets is the legacy padding map for buffer A.
	OldOffsets OffsetMap

	// NewOffsets is the legacy padding map for buffer B.
	NewOffsets OffsetMap
}
