package align

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/splitdiff/internal/diff"
	"github.com/dshills/splitdiff/internal/view"
)

// Host bundles the ports the engine needs for one side.
type Host struct {
	Metrics view.Metrics
	Spacers view.SpacerHost
}

// Engine computes and maintains the spacer insertions that keep the two
// sides height-matched. It owns its zones exclusively: Recompute clears
// them and rebuilds from scratch, so running it twice with no
// intervening height change yields an identical spacer set.
type Engine struct {
	a, b   Host
	zoneA  ZoneSet
	zoneB  ZoneSet
	logger *zap.Logger
}

// NewEngine creates an alignment engine over the two side hosts.
// A nil logger disables logging.
func NewEngine(a, b Host, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{a: a, b: b, logger: logger}
}

// Zones returns the engine's current zones for the side. Exposed for
// observers; the engine remains the owner.
func (e *Engine) Zones(side view.Side) []Zone {
	if side == view.SideA {
		return e.zoneA.All()
	}
	return e.zoneB.All()
}

// Clear removes every zone the engine has inserted, on both sides.
// Safe against hosts that already dropped their spacers.
func (e *Engine) Clear() {
	for _, z := range e.zoneA.All() {
		_ = e.a.Spacers.RemoveSpacer(z.ID)
	}
	for _, z := range e.zoneB.All() {
		_ = e.b.Spacers.RemoveSpacer(z.ID)
	}
	e.zoneA.Clear()
	e.zoneB.Clear()
}

// Recompute rebuilds the spacer set for the chunk list. It walks both
// sides in lockstep by logical line: unchanged regions are matched
// line-by-line so each pair stays visually locked to its counterpart,
// and each chunk is matched by total height with a single spacer on the
// shorter side. Lookup failures abort the pass with an error; the
// caller skips it, since a later event retriggers recomputation.
func (e *Engine) Recompute(chunks []diff.Chunk) error {
	e.Clear()

	posA := uint32(0)
	posB := uint32(0)

	for _, c := range chunks {
		if err := e.alignUnchanged(posA, posB, c.Old.Start-posA, c.New.Start-posB); err != nil {
			return err
		}
		if err := e.alignChunk(c); err != nil {
			return err
		}
		posA = c.Old.End
		posB = c.New.End
	}

	// Trailing unchanged region. Runs even for an empty chunk list so
	// pure reflow without changes stays aligned.
	lenA := e.a.Metrics.LineCount() - min(posA, e.a.Metrics.LineCount())
	lenB := e.b.Metrics.LineCount() - min(posB, e.b.Metrics.LineCount())
	return e.alignUnchanged(posA, posB, lenA, lenB)
}

// alignUnchanged pairs min(lenA, lenB) unchanged lines starting at
// (posA, posB) and inserts a per-pair spacer after the shorter line of
// any pair whose rendered heights differ.
func (e *Engine) alignUnchanged(posA, posB, lenA, lenB uint32) error {
	n := min(lenA, lenB)
	for i := uint32(0); i < n; i++ {
		lineA := posA + i
		lineB := posB + i

		hA, err := e.a.Metrics.LineHeight(lineA)
		if err != nil {
			return fmt.Errorf("line %d side A: %w", lineA, err)
		}
		hB, err := e.b.Metrics.LineHeight(lineB)
		if err != nil {
			return fmt.Errorf("line %d side B: %w", lineB, err)
		}

		switch {
		case hA < hB:
			if err := e.addZone(view.SideA, lineA, view.After, hB-hA); err != nil {
				return err
			}
		case hB < hA:
			if err := e.addZone(view.SideB, lineB, view.After, hA-hB); err != nil {
				return err
			}
		}
	}
	return nil
}

// alignChunk matches the chunk's total rendered height across sides
// with at most one spacer on the shorter side.
func (e *Engine) alignChunk(c diff.Chunk) error {
	hA, err := e.a.Metrics.RangeHeight(c.Old)
	if err != nil {
		return fmt.Errorf("chunk %s side A: %w", c, err)
	}
	hB, err := e.b.Metrics.RangeHeight(c.New)
	if err != nil {
		return fmt.Errorf("chunk %s side B: %w", c, err)
	}

	switch {
	case hA < hB:
		line, ok := chunkAnchor(c.Old)
		if !ok {
			return nil
		}
		return e.addZone(view.SideA, line, view.After, hB-hA)
	case hB < hA:
		line, ok := chunkAnchor(c.New)
		if !ok {
			return nil
		}
		return e.addZone(view.SideB, line, view.After, hA-hB)
	}
	return nil
}

// chunkAnchor picks the spacer anchor for a chunk range on the shorter
// side: its own last line when non-empty, otherwise the preceding
// unchanged line. An empty range starting at line 0 has no valid anchor.
func chunkAnchor(r view.LineRange) (uint32, bool) {
	if !r.IsEmpty() {
		return r.End - 1, true
	}
	if r.Start == 0 {
		return 0, false
	}
	return r.Start - 1, true
}

// addZone inserts a spacer, stacking onto an existing zone when the key
// collides (an empty-chunk anchor can land on the same boundary as an
// unchanged-pair spacer).
func (e *Engine) addZone(side view.Side, line uint32, pos view.ZonePosition, pixels int) error {
	if pixels <= 0 {
		return nil
	}

	zones := &e.zoneA
	host := e.a
	if side == view.SideB {
		zones = &e.zoneB
		host = e.b
	}

	if existing, ok := zones.Get(line, pos); ok {
		pixels += existing.Pixels
	}

	id, err := host.Spacers.InsertSpacer(line, pos, pixels)
	if err != nil {
		return fmt.Errorf("insert spacer side %s line %d: %w", side, line, err)
	}

	zones.Put(Zone{Line: line, Pos: pos, Pixels: pixels, ID: id})
	e.logger.Debug("spacer inserted",
		zap.Stringer("side", side),
		zap.Uint32("line", line),
		zap.Stringer("position", pos),
		zap.Int("pixels", pixels))
	return nil
}
