package tui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/splitdiff/internal/config"
	"github.com/dshills/splitdiff/internal/diff"
	"github.com/dshills/splitdiff/internal/engine/buffer"
	"github.com/dshills/splitdiff/internal/layout"
	"github.com/dshills/splitdiff/internal/sched"
	"github.com/dshills/splitdiff/internal/session"
	"github.com/dshills/splitdiff/internal/view"
)

func newTestApp(t *testing.T, oldText, newText string, chunks []diff.Chunk) (*App, tcell.SimulationScreen, *sched.FakeClock) {
	t.Helper()

	bufA := buffer.FromString(oldText)
	bufB := buffer.FromString(newText)
	viewA := layout.NewView(bufA)
	viewB := layout.NewView(bufB)

	clock := sched.NewFakeClock()
	sess := session.New(
		session.Pane{Buffer: bufA, View: viewA},
		session.Pane{Buffer: bufB, View: viewB},
		clock, nil,
	)
	if err := sess.LoadDiff(chunks); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(80, 24)

	cfg := config.Default()
	cfg.Wrap = false
	app := New(screen, sess, cfg, "a.txt", "b.txt", nil)
	app.applyLayout()
	return app, screen, clock
}

func screenText(screen tcell.SimulationScreen) string {
	cells, width, height := screen.GetContents()
	var sb strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := cells[y*width+x]
			if len(c.Runes) > 0 {
				sb.WriteRune(c.Runes[0])
			} else {
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

func TestRenderShowsBothPanes(t *testing.T) {
	app, screen, _ := newTestApp(t,
		"alpha\nbravo\ncharlie\n",
		"alpha\nbrave\ncharlie\n",
		[]diff.Chunk{{
			Old: view.LineRange{Start: 1, End: 2},
			New: view.LineRange{Start: 1, End: 2},
		}},
	)
	defer screen.Fini()

	app.render()
	text := screenText(screen)

	if !strings.Contains(text, "bravo") {
		t.Error("expected left pane to show bravo")
	}
	if !strings.Contains(text, "brave") {
		t.Error("expected right pane to show brave")
	}
	if !strings.Contains(text, "a.txt") || !strings.Contains(text, "b.txt") {
		t.Error("expected file names in the status line")
	}
}

func TestRenderShowsSpacerRows(t *testing.T) {
	app, screen, clock := newTestApp(t,
		"a\nb\nc\nd\n",
		"a\nb\n",
		[]diff.Chunk{{
			Old: view.LineRange{Start: 2, End: 4},
			New: view.LineRange{Start: 2, End: 2},
		}},
	)
	defer screen.Fini()

	clock.Advance(sched.DefaultFrameDelay)
	app.render()

	// Right pane gets two spacer rows for the deleted lines.
	if n := app.sess.Pane(view.SideB).View.SpacerCount(); n != 1 {
		t.Fatalf("expected 1 spacer, got %d", n)
	}
	text := screenText(screen)
	if !strings.Contains(text, "----") {
		t.Error("expected spacer filler rows in the right pane")
	}
}

func TestScrollPropagatesAcrossPanes(t *testing.T) {
	oldText := strings.Repeat("line\n", 60)
	app, screen, _ := newTestApp(t, oldText, oldText, nil)
	defer screen.Fini()

	app.scroll(view.SideA, 5)
	a := app.sess.Pane(view.SideA).View.ScrollTop()
	b := app.sess.Pane(view.SideB).View.ScrollTop()
	if a != 5 {
		t.Errorf("expected scroll top 5 on side A, got %d", a)
	}
	if b != a {
		t.Errorf("expected side B to follow side A, got %d vs %d", b, a)
	}
}

func TestCopyWithoutSelectionWarns(t *testing.T) {
	app, screen, _ := newTestApp(t,
		"a\nb\n", "a\nc\n",
		[]diff.Chunk{{
			Old: view.LineRange{Start: 1, End: 2},
			New: view.LineRange{Start: 1, End: 2},
		}},
	)
	defer screen.Fini()

	app.copy(app.sess.CopyLeft, "copied")
	if !app.warning {
		t.Error("expected a warning status for copy without selection")
	}
	if app.status != "no chunk selected" {
		t.Errorf("expected no-selection status, got %q", app.status)
	}
}

func TestNextUpdatesStatus(t *testing.T) {
	app, screen, _ := newTestApp(t,
		"a\nb\n", "a\nc\n",
		[]diff.Chunk{{
			Old: view.LineRange{Start: 1, End: 2},
			New: view.LineRange{Start: 1, End: 2},
		}},
	)
	defer screen.Fini()

	app.selectChunk(app.sess.Next())
	if !strings.Contains(app.status, "chunk 1/1") {
		t.Errorf("expected chunk status, got %q", app.status)
	}
}

func TestSelectedChunkMarksGutter(t *testing.T) {
	app, screen, _ := newTestApp(t,
		"a\nb\n", "a\nc\n",
		[]diff.Chunk{{
			Old: view.LineRange{Start: 1, End: 2},
			New: view.LineRange{Start: 1, End: 2},
		}},
	)
	defer screen.Fini()

	app.render()
	_, _, before, _ := screen.GetContent(0, 1)
	if before == styleSelected {
		t.Fatal("expected plain gutter before selection")
	}

	app.selectChunk(app.sess.Next())
	app.render()
	_, _, after, _ := screen.GetContent(0, 1)
	if after != styleSelected {
		t.Error("expected selected gutter style on the chunk row")
	}
}

func TestWordDiffMarksChangedRunes(t *testing.T) {
	app, screen, _ := newTestApp(t,
		"the quick fox\n", "the slow fox\n",
		[]diff.Chunk{{
			Old: view.LineRange{Start: 0, End: 1},
			New: view.LineRange{Start: 0, End: 1},
		}},
	)
	defer screen.Fini()

	marks := app.changedRunes(view.SideA, 0, "the quick fox")
	if marks == nil {
		t.Fatal("expected word diff marks")
	}
	// "the " unchanged, "quick" changed, " fox" unchanged.
	if marks[0] {
		t.Error("expected 't' unmarked")
	}
	if !marks[4] {
		t.Error("expected 'q' marked")
	}
	if marks[len(marks)-1] {
		t.Error("expected trailing 'x' unmarked")
	}
}
