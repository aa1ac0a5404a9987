package scrollsync

import (
	"errors"
	"testing"

	"github.com/dshills/splitdiff/internal/view"
)

// fakeGeo implements Metrics over explicit per-line row spans with a
// fixed row height and no spacers.
type fakeGeo struct {
	spans []int
	rowH  int
	fail  bool
}

func (g *fakeGeo) LineCount() uint32 { return uint32(len(g.spans)) }

func (g *fakeGeo) WrappedRowSpan(line uint32) (int, error) {
	if g.fail {
		return 0, errors.New("geometry gone")
	}
	if int(line) >= len(g.spans) {
		return 0, errors.New("line out of range")
	}
	return g.spans[line], nil
}

func (g *fakeGeo) LineHeight(line uint32) (int, error) {
	span, err := g.WrappedRowSpan(line)
	if err != nil {
		return 0, err
	}
	return span * g.rowH, nil
}

func (g *fakeGeo) RangeHeight(r view.LineRange) (int, error) {
	total := 0
	for line := r.Start; line < r.End; line++ {
		h, err := g.LineHeight(line)
		if err != nil {
			return 0, err
		}
		total += h
	}
	return total, nil
}

func (g *fakeGeo) RowHeight() int { return g.rowH }

func (g *fakeGeo) LineAtRenderedRow(row int) (uint32, error) {
	if g.fail {
		return 0, errors.New("geometry gone")
	}
	cursor := 0
	for line, span := range g.spans {
		if row < cursor+span {
			return uint32(line), nil
		}
		cursor += span
	}
	if len(g.spans) == 0 {
		return 0, errors.New("empty")
	}
	return uint32(len(g.spans) - 1), nil
}

func (g *fakeGeo) RenderedRowAtLine(line uint32) (int, error) {
	if g.fail {
		return 0, errors.New("geometry gone")
	}
	row := 0
	for l := 0; l < int(line); l++ {
		row += g.spans[l]
	}
	return row, nil
}

func (g *fakeGeo) totalRows() int {
	total := 0
	for _, s := range g.spans {
		total += s
	}
	return total
}

// fakePort implements ScrollPort, optionally re-entering the link on
// writes the way a host view's scroll event would.
type fakePort struct {
	top      int
	left     int
	height   int
	maxTop   int
	onSetTop func()
	setCalls int
}

func (p *fakePort) ScrollTop() int { return p.top }

func (p *fakePort) SetScrollTop(px int) {
	if px < 0 {
		px = 0
	}
	if px > p.maxTop {
		px = p.maxTop
	}
	p.top = px
	p.setCalls++
	if p.onSetTop != nil {
		p.onSetTop()
	}
}

func (p *fakePort) MaxScrollTop() int { return p.maxTop }

func (p *fakePort) ViewportHeight() int { return p.height }

func (p *fakePort) ScrollLeft() int { return p.left }

func (p *fakePort) SetScrollLeft(px int) { p.left = px }

type pair struct {
	link  *Link
	geoA  *fakeGeo
	geoB  *fakeGeo
	portA *fakePort
	portB *fakePort
}

func newPair(spansA, spansB []int, rowH, viewportH int) *pair {
	p := &pair{
		geoA: &fakeGeo{spans: spansA, rowH: rowH},
		geoB: &fakeGeo{spans: spansB, rowH: rowH},
	}
	p.portA = &fakePort{height: viewportH, maxTop: p.geoA.totalRows()*rowH - viewportH}
	p.portB = &fakePort{height: viewportH, maxTop: p.geoB.totalRows()*rowH - viewportH}
	p.link = NewLink(
		Host{Metrics: p.geoA, Port: p.portA},
		Host{Metrics: p.geoB, Port: p.portB},
		nil,
	)
	return p
}

func TestSyncIdenticalGeometry(t *testing.T) {
	p := newPair([]int{1, 1, 1, 1, 1, 1}, []int{1, 1, 1, 1, 1, 1}, 10, 20)

	p.portA.top = 20
	p.link.OnVerticalScroll(view.SideA)

	if p.portB.top != 20 {
		t.Errorf("expected B at 20, got %d", p.portB.top)
	}
}

func TestSyncProportionalMapping(t *testing.T) {
	// Line 1 wraps into 2 rows on A but 4 rows on B. With A's center a
	// quarter of the way into line 1's span, B's center must sit a
	// quarter into its own span.
	p := newPair([]int{1, 2, 1}, []int{1, 4, 1}, 10, 20)

	p.portA.top = 5 // center at 15px -> row 1, halfway in
	p.link.OnVerticalScroll(view.SideA)

	// p = 0.25 of span 4 -> dest center (1 + 1)*10 = 20px -> top 10.
	if p.portB.top != 10 {
		t.Errorf("expected B at 10, got %d", p.portB.top)
	}
}

func TestSyncRoundTripStable(t *testing.T) {
	p := newPair([]int{1, 3, 1, 2, 1}, []int{2, 1, 4, 1, 1}, 10, 30)

	p.portA.top = 25
	p.link.OnVerticalScroll(view.SideA)
	bFirst := p.portB.top

	p.portA.top = 0
	p.link.OnVerticalScroll(view.SideA)

	p.portA.top = 25
	p.link.OnVerticalScroll(view.SideA)

	diff := p.portB.top - bFirst
	if diff < 0 {
		diff = -diff
	}
	if diff > 10 {
		t.Errorf("round trip drifted %dpx, expected within one row height", diff)
	}
}

func TestSyncNoFeedbackLoop(t *testing.T) {
	p := newPair([]int{1, 1, 1, 1}, []int{1, 1, 1, 1}, 10, 20)

	// B's view echoes every programmatic write back into the link, the
	// way a real scroll event would.
	p.portB.onSetTop = func() {
		if !p.link.Propagating(view.SideB) {
			t.Error("expected guard set during propagated write")
		}
		p.link.OnVerticalScroll(view.SideB)
	}

	p.portA.top = 10
	p.link.OnVerticalScroll(view.SideA)

	if p.portA.setCalls != 0 {
		t.Errorf("echo propagated back to A (%d writes)", p.portA.setCalls)
	}
	if p.portB.setCalls != 1 {
		t.Errorf("expected exactly 1 write to B, got %d", p.portB.setCalls)
	}
}

func TestSyncGuardClearedAfterWrite(t *testing.T) {
	p := newPair([]int{1, 1}, []int{1, 1}, 10, 10)

	p.link.OnVerticalScroll(view.SideA)
	if p.link.Propagating(view.SideA) || p.link.Propagating(view.SideB) {
		t.Error("guards must clear synchronously after the write")
	}
}

func TestSyncFallbackDirectCopy(t *testing.T) {
	p := newPair([]int{1, 1, 1, 1}, []int{1, 1, 1, 1}, 10, 20)
	p.geoA.fail = true

	p.portA.top = 15
	p.link.OnVerticalScroll(view.SideA)

	if p.portB.top != 15 {
		t.Errorf("expected direct copy fallback to 15, got %d", p.portB.top)
	}
}

func TestSyncClampsToDestination(t *testing.T) {
	// B is much shorter than A; the mapped offset must clamp.
	p := newPair([]int{1, 1, 1, 1, 1, 1, 1, 1}, []int{1, 1, 1}, 10, 20)

	p.portA.top = p.portA.maxTop
	p.link.OnVerticalScroll(view.SideA)

	if p.portB.top > p.portB.maxTop {
		t.Errorf("B offset %d exceeds max %d", p.portB.top, p.portB.maxTop)
	}
}

func TestSyncHorizontalDirectCopy(t *testing.T) {
	p := newPair([]int{1, 1}, []int{1, 1}, 10, 10)

	p.portA.left = 42
	p.link.OnHorizontalScroll(view.SideA)

	if p.portB.left != 42 {
		t.Errorf("expected horizontal copy to 42, got %d", p.portB.left)
	}
}

func TestSyncForce(t *testing.T) {
	p := newPair([]int{1, 1, 1, 1}, []int{1, 1, 1, 1}, 10, 20)

	p.portB.top = 10
	p.portB.left = 7
	p.link.Force(view.SideB)

	if p.portA.top != 10 {
		t.Errorf("expected forced vertical sync to 10, got %d", p.portA.top)
	}
	if p.portA.left != 7 {
		t.Errorf("expected forced horizontal sync to 7, got %d", p.portA.left)
	}
}

func TestSyncFromSideB(t *testing.T) {
	p := newPair([]int{1, 2, 1}, []int{1, 4, 1}, 10, 20)

	// Mirror of the proportional test, driven from the other side.
	p.portB.top = 10 // center at 20px -> row 2 -> line 1, row 1 of 4
	p.link.OnVerticalScroll(view.SideB)

	if p.portA.top < 0 || p.portA.top > p.portA.maxTop {
		t.Fatalf("A offset %d out of range", p.portA.top)
	}
	// p = 0.25 of A's span 2 -> center (1 + 0.5)*10 = 15px -> top 5.
	if p.portA.top != 5 {
		t.Errorf("expected A at 5, got %d", p.portA.top)
	}
}
