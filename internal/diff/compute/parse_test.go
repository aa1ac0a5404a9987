package compute

import (
	"errors"
	"testing"

	"github.com/dshills/splitdiff/internal/view"
)

func TestParseUnifiedModification(t *testing.T) {
	output := `diff --git a/old b/new
index 111..222 100644
--- a/old
+++ b/new
@@ -3,2 +3,3 @@
-old line three
-old line four
+new line three
+new line four
+new line five
`
	result, err := parseUnified(output)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(result.Chunks))
	}

	c := result.Chunks[0]
	want := view.LineRange{Start: 2, End: 4}
	if c.Old != want {
		t.Errorf("expected old %s, got %s", want, c.Old)
	}
	want = view.LineRange{Start: 2, End: 5}
	if c.New != want {
		t.Errorf("expected new %s, got %s", want, c.New)
	}

	// Old side is one line shorter: legacy padding at its last line.
	if got := result.OldOffsets[3]; got != 1 {
		t.Errorf("expected old offset 1 at line 3, got %d", got)
	}
	if len(result.NewOffsets) != 0 {
		t.Errorf("expected no new offsets, got %v", result.NewOffsets)
	}
}

func TestParseUnifiedPureInsertion(t *testing.T) {
	// Insert two lines after old line 3 (1-based).
	output := "@@ -3,0 +4,2 @@\n+a\n+b\n"

	result, err := parseUnified(output)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(result.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(result.Chunks))
	}

	c := result.Chunks[0]
	if !c.IsInsertion() {
		t.Fatalf("expected pure insertion, got %s", c)
	}
	if c.Old.Start != 3 || c.Old.End != 3 {
		t.Errorf("expected zero-width old anchor at 3, got %s", c.Old)
	}
	if c.New.Start != 3 || c.New.End != 5 {
		t.Errorf("expected new [3,5), got %s", c.New)
	}
}

func TestParseUnifiedPureDeletion(t *testing.T) {
	output := "@@ -3,2 +2,0 @@\n-a\n-b\n"

	result, err := parseUnified(output)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	c := result.Chunks[0]
	if !c.IsDeletion() {
		t.Fatalf("expected pure deletion, got %s", c)
	}
	if c.Old.Start != 2 || c.Old.End != 4 {
		t.Errorf("expected old [2,4), got %s", c.Old)
	}
	if c.New.Start != 2 || c.New.End != 2 {
		t.Errorf("expected zero-width new anchor at 2, got %s", c.New)
	}

	// Deleted lines pad the new side, anchored before the anchor point.
	if got := result.NewOffsets[1]; got != 2 {
		t.Errorf("expected new offset 2 at line 1, got %d", got)
	}
}

func TestParseUnifiedSingleLineCount(t *testing.T) {
	// "start" without ",count" means one line.
	output := "@@ -1 +1 @@\n-x\n+y\n"

	result, err := parseUnified(output)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	c := result.Chunks[0]
	if c.Old.Start != 0 || c.Old.End != 1 || c.New.Start != 0 || c.New.End != 1 {
		t.Errorf("expected [0,1) on both sides, got %s", c)
	}
}

func TestParseUnifiedEmpty(t *testing.T) {
	result, err := parseUnified("")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(result.Chunks))
	}
}

func TestParseUnifiedMalformedHunk(t *testing.T) {
	_, err := parseUnified("@@ garbage\n")
	if !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("expected ErrMalformedOutput, got %v", err)
	}
}

func TestParseUnifiedMultipleHunksSorted(t *testing.T) {
	output := "@@ -1,1 +1,1 @@\n-x\n+y\n@@ -5,2 +5,1 @@\n-a\n-b\n+c\n"

	result, err := parseUnified(output)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(result.Chunks))
	}
	if result.Chunks[1].Old.Start < result.Chunks[0].Old.End {
		t.Error("chunks out of order")
	}
}

func TestParseJSONProtocol(t *testing.T) {
	data := []byte(`{
		"chunks": [
			{"oldStart": 2, "oldEnd": 4, "newStart": 2, "newEnd": 2},
			{"oldStart": 6, "oldEnd": 6, "newStart": 4, "newEnd": 7}
		],
		"oldOffsets": {"5": 3},
		"newOffsets": {"1": 2}
	}`)

	result, err := parseJSON(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(result.Chunks))
	}
	if !result.Chunks[0].IsDeletion() {
		t.Errorf("expected chunk 0 to be a deletion, got %s", result.Chunks[0])
	}
	if !result.Chunks[1].IsInsertion() {
		t.Errorf("expected chunk 1 to be an insertion, got %s", result.Chunks[1])
	}
	if result.OldOffsets[5] != 3 {
		t.Errorf("expected old offset 3 at line 5, got %d", result.OldOffsets[5])
	}
	if result.NewOffsets[1] != 2 {
		t.Errorf("expected new offset 2 at line 1, got %d", result.NewOffsets[1])
	}
}

func TestParseJSONRejectsInvalid(t *testing.T) {
	if _, err := parseJSON([]byte("not json")); !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("expected ErrMalformedOutput, got %v", err)
	}

	bad := []byte(`{"chunks":[{"oldStart":4,"oldEnd":2,"newStart":0,"newEnd":0}]}`)
	if _, err := parseJSON(bad); !errors.Is(err, ErrMalformedOutput) {
		t.Errorf("expected ErrMalformedOutput for inverted range, got %v", err)
	}
}
