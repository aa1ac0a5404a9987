package compute

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/splitdiff/internal/diff"
	"github.com/dshills/splitdiff/internal/view"
)

// parseUnified parses zero-context unified diff output into chunks plus
// the legacy offset maps. Each @@ hunk maps onto exactly one chunk.
func parseUnified(output string) (*diff.Result, error) {
	result := &diff.Result{
		OldOffsets: diff.OffsetMap{},
		NewOffsets: diff.OffsetMap{},
	}

	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "@@") {
			continue
		}
		chunk, err := parseHunkHeader(line)
		if err != nil {
			return nil, err
		}
		result.Chunks = append(result.Chunks, chunk)
		addOffsets(result, chunk)
	}

	return result, nil
}

// parseHunkHeader converts "@@ -a,b +c,d @@" into a half-open,
// zero-based chunk. Unified counts of zero anchor at the line before
// the change, which already corresponds to the zero-based insertion
// index, so no -1 adjustment applies in that case.
func parseHunkHeader(header string) (diff.Chunk, error) {
	trimmed := strings.TrimPrefix(header, "@@")
	idx := strings.Index(trimmed, "@@")
	if idx < 0 {
		return diff.Chunk{}, fmt.Errorf("%w: %q", ErrMalformedOutput, header)
	}

	fields := strings.Fields(trimmed[:idx])
	if len(fields) != 2 || !strings.HasPrefix(fields[0], "-") || !strings.HasPrefix(fields[1], "+") {
		return diff.Chunk{}, fmt.Errorf("%w: %q", ErrMalformedOutput, header)
	}

	oldRange, err := parseRange(strings.TrimPrefix(fields[0], "-"))
	if err != nil {
		return diff.Chunk{}, fmt.Errorf("%w: %q", ErrMalformedOutput, header)
	}
	newRange, err := parseRange(strings.TrimPrefix(fields[1], "+"))
	if err != nil {
		return diff.Chunk{}, fmt.Errorf("%w: %q", ErrMalformedOutput, header)
	}

	return diff.Chunk{Old: oldRange, New: newRange}, nil
}

// parseRange converts a unified "start[,count]" (1-based) into a
// half-open zero-based line range.
func parseRange(s string) (view.LineRange, error) {
	start64 := int64(0)
	count := int64(1)

	if comma := strings.Index(s, ","); comma >= 0 {
		var err error
		if start64, err = strconv.ParseInt(s[:comma], 10, 64); err != nil {
			return view.LineRange{}, err
		}
		if count, err = strconv.ParseInt(s[comma+1:], 10, 64); err != nil {
			return view.LineRange{}, err
		}
	} else {
		var err error
		if start64, err = strconv.ParseInt(s, 10, 64); err != nil {
			return view.LineRange{}, err
		}
	}

	if start64 < 0 || count < 0 {
		return view.LineRange{}, fmt.Errorf("negative range %q", s)
	}

	if count == 0 {
		// "a,0": a is the 1-based line before the change, which equals
		// the zero-based index just past it.
		return view.LineRange{Start: uint32(start64), End: uint32(start64)}, nil
	}

	start := uint32(0)
	if start64 > 0 {
		start = uint32(start64 - 1)
	}
	return view.LineRange{Start: start, End: start + uint32(count)}, nil
}

// addOffsets records the legacy blank-line padding the chunk implies.
// The shorter side gets padding equal to the line-count difference,
// keyed at its last line, or at the line before the anchor for an empty
// range.
func addOffsets(result *diff.Result, chunk diff.Chunk) {
	oldLen := chunk.Old.Len()
	newLen := chunk.New.Len()

	switch {
	case oldLen < newLen:
		result.OldOffsets[offsetKey(chunk.Old)] += newLen - oldLen
	case newLen < oldLen:
		result.NewOffsets[offsetKey(chunk.New)] += oldLen - newLen
	}
}

// offsetKey picks the legacy map key for a (possibly empty) range.
func offsetKey(r view.LineRange) uint32 {
	if !r.IsEmpty() {
		return r.End - 1
	}
	if r.Start > 0 {
		return r.Start - 1
	}
	return 0
}
