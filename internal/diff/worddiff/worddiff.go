// Package worddiff computes an intra-line, word-level difference
// between a pair of lines. It is a pure function over two strings: each
// side's result is a sequence of segments whose concatenation
// reconstructs the original line, with changed segments flagged for
// highlighting.
//
// Tokenization follows Unicode word boundaries (UAX #29), so
// punctuation and whitespace runs are compared as their own tokens
// rather than glued to adjacent words.
package worddiff

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Segment is one run of a line, flagged if it differs from the
// counterpart line.
type Segment struct {
	// Text is the segment content.
	Text string

	// Changed is true if this run has no match on the other side.
	Changed bool
}

// Diff compares two lines and returns per-side segment sequences.
// A wholly empty counterpart bypasses the word diff: the non-empty line
// comes back as a single fully-changed segment.
func Diff(oldLine, newLine string) (oldSegs, newSegs []Segment) {
	if oldLine == newLine {
		if oldLine == "" {
			return nil, nil
		}
		return []Segment{{Text: oldLine}}, []Segment{{Text: newLine}}
	}
	if oldLine == "" {
		return nil, []Segment{{Text: newLine, Changed: true}}
	}
	if newLine == "" {
		return []Segment{{Text: oldLine, Changed: true}}, nil
	}

	oldTokens := tokenize(oldLine)
	newTokens := tokenize(newLine)

	// Encode each distinct token as one rune so diffmatchpatch compares
	// whole words, then decode the rune-strings back to token runs.
	vocab := make(map[string]rune)
	var tokens []string
	encode := func(toks []string) string {
		var b strings.Builder
		for _, tok := range toks {
			r, ok := vocab[tok]
			if !ok {
				r = rune(len(tokens))
				vocab[tok] = r
				tokens = append(tokens, tok)
			}
			b.WriteRune(r)
		}
		return b.String()
	}
	encOld := encode(oldTokens)
	encNew := encode(newTokens)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes([]rune(encOld), []rune(encNew), false)
	diffs = dmp.DiffCleanupMerge(diffs)

	decode := func(s string) string {
		var b strings.Builder
		for _, r := range s {
			idx := int(r)
			if idx >= 0 && idx < len(tokens) {
				b.WriteString(tokens[idx])
			}
		}
		return b.String()
	}

	for _, d := range diffs {
		text := decode(d.Text)
		if text == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldSegs = appendSegment(oldSegs, Segment{Text: text})
			newSegs = appendSegment(newSegs, Segment{Text: text})
		case diffmatchpatch.DiffDelete:
			oldSegs = appendSegment(oldSegs, Segment{Text: text, Changed: true})
		case diffmatchpatch.DiffInsert:
			newSegs = appendSegment(newSegs, Segment{Text: text, Changed: true})
		}
	}
	return oldSegs, newSegs
}

// appendSegment merges adjacent segments with the same changed flag.
func appendSegment(segs []Segment, s Segment) []Segment {
	if n := len(segs); n > 0 && segs[n-1].Changed == s.Changed {
		segs[n-1].Text += s.Text
		return segs
	}
	return append(segs, s)
}

// tokenize splits a line into UAX #29 word tokens. The tokens
// concatenate back to the original string.
func tokenize(s string) []string {
	var out []string
	iter := words.FromString(s)
	for iter.Next() {
		out = append(out, iter.Value())
	}
	return out
}
