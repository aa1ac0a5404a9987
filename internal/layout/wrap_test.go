package layout

import "testing"

func TestVisualWidth(t *testing.T) {
	cases := []struct {
		text     string
		tabWidth int
		want     int
	}{
		{"hello", 4, 5},
		{"", 4, 0},
		{"\t", 4, 4},
		{"ab\t", 4, 4},
		{"abcd\t", 4, 8},
		{"日本", 4, 4}, // wide runes are two cells
	}

	for _, tc := range cases {
		if got := VisualWidth(tc.text, tc.tabWidth); got != tc.want {
			t.Errorf("VisualWidth(%q, %d): expected %d, got %d", tc.text, tc.tabWidth, tc.want, got)
		}
	}
}

func TestRowSpanNoWrap(t *testing.T) {
	if got := RowSpan("any length at all", 0, 4); got != 1 {
		t.Errorf("expected span 1 with wrapping disabled, got %d", got)
	}
}

func TestRowSpanWrapped(t *testing.T) {
	cases := []struct {
		text      string
		wrapWidth int
		want      int
	}{
		{"", 10, 1},
		{"short", 10, 1},
		{"exactlyten", 10, 1},
		{"elevenchars", 10, 2},
		{"aaaaaaaaaaaaaaaaaaaaa", 10, 3}, // 21 cells
	}

	for _, tc := range cases {
		if got := RowSpan(tc.text, tc.wrapWidth, 4); got != tc.want {
			t.Errorf("RowSpan(%q, %d): expected %d, got %d", tc.text, tc.wrapWidth, tc.want, got)
		}
	}
}

func TestWrapRowsReconstruct(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"
	rows := WrapRows(text, 10, 4)

	joined := ""
	for _, r := range rows {
		joined += r
	}
	if joined != text {
		t.Errorf("rows reconstruct %q, expected %q", joined, text)
	}
	for i, r := range rows {
		if w := VisualWidth(r, 4); w > 10 {
			t.Errorf("row %d is %d cells wide, expected <= 10", i, w)
		}
	}
}

func TestWrapRowsWideRuneAtBoundary(t *testing.T) {
	// Four wide runes at width 5: two fit per row, the third cannot
	// straddle the boundary.
	rows := WrapRows("日本語字", 5, 4)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d (%q)", len(rows), rows)
	}
	if rows[0] != "日本" {
		t.Errorf("expected first row %q, got %q", "日本", rows[0])
	}
}
