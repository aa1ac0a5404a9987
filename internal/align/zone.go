// Package align keeps the two sides of a diff pair visually aligned by
// inserting fixed-height spacers (view zones) on the shorter side so
// that cumulative rendered height matches at every aligned boundary:
// each unchanged line pair, and each chunk as a whole.
package align

import (
	"github.com/dshills/splitdiff/internal/view"
)

// Zone is one dynamic spacer owned by the alignment engine.
type Zone struct {
	// Line is the anchor logical line.
	Line uint32

	// Pos selects the anchor edge.
	Pos view.ZonePosition

	// Pixels is the spacer height.
	Pixels int

	// ID is the host's spacer handle.
	ID string
}

// ZoneSet tracks the zones the engine owns on one side, at most one per
// (line, position) key. Zone counts are bounded by the visible diff, so
// a vector with linear scans is enough.
type ZoneSet struct {
	zones []Zone
}

// Get returns the zone at the key, if present.
func (s *ZoneSet) Get(line uint32, pos view.ZonePosition) (Zone, bool) {
	for _, z := range s.zones {
		if z.Line == line && z.Pos == pos {
			return z, true
		}
	}
	return Zone{}, false
}

// Put inserts or updates the zone at its key. A height of zero or less
// removes the entry.
func (s *ZoneSet) Put(zone Zone) {
	if zone.Pixels <= 0 {
		s.Remove(zone.Line, zone.Pos)
		return
	}
	for i := range s.zones {
		if s.zones[i].Line == zone.Line && s.zones[i].Pos == zone.Pos {
			s.zones[i] = zone
			return
		}
	}
	s.zones = append(s.zones, zone)
}

// Remove deletes the zone at the key.
func (s *ZoneSet) Remove(line uint32, pos view.ZonePosition) {
	for i := range s.zones {
		if s.zones[i].Line == line && s.zones[i].Pos == pos {
			s.zones = append(s.zones[:i], s.zones[i+1:]...)
			return
		}
	}
}

// Len returns the number of zones.
func (s *ZoneSet) Len() int {
	return len(s.zones)
}

// All returns the zones in insertion order.
func (s *ZoneSet) All() []Zone {
	out := make([]Zone, len(s.zones))
	copy(out, s.zones)
	return out
}

// Clear empties the set.
func (s *ZoneSet) Clear() {
	s.zones = nil
}
