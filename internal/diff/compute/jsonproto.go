package compute

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/dshills/splitdiff/internal/diff"
	"github.com/dshills/splitdiff/internal/view"
)

// parseJSON parses the custom-tool protocol:
//
//	{
//	  "chunks": [
//	    {"oldStart": 2, "oldEnd": 4, "newStart": 2, "newEnd": 2}
//	  ],
//	  "oldOffsets": {"3": 2},
//	  "newOffsets": {}
//	}
//
// Ranges are half-open and zero-based, matching the internal model.
func parseJSON(data []byte) (*diff.Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedOutput)
	}

	root := gjson.ParseBytes(data)
	result := &diff.Result{
		OldOffsets: diff.OffsetMap{},
		NewOffsets: diff.OffsetMap{},
	}

	var parseErr error
	root.Get("chunks").ForEach(func(_, c gjson.Result) bool {
		chunk := diff.Chunk{
			Old: view.LineRange{
				Start: uint32(c.Get("oldStart").Uint()),
				End:   uint32(c.Get("oldEnd").Uint()),
			},
			New: view.LineRange{
				Start: uint32(c.Get("newStart").Uint()),
				End:   uint32(c.Get("newEnd").Uint()),
			},
		}
		if chunk.Old.End < chunk.Old.Start || chunk.New.End < chunk.New.Start {
			parseErr = fmt.Errorf("%w: inverted range %s", ErrMalformedOutput, chunk)
			return false
		}
		result.Chunks = append(result.Chunks, chunk)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if err := parseOffsetMap(root.Get("oldOffsets"), result.OldOffsets); err != nil {
		return nil, err
	}
	if err := parseOffsetMap(root.Get("newOffsets"), result.NewOffsets); err != nil {
		return nil, err
	}

	return result, nil
}

// parseOffsetMap fills a legacy offset map from a JSON object whose
// keys are line numbers.
func parseOffsetMap(obj gjson.Result, into diff.OffsetMap) error {
	var parseErr error
	obj.ForEach(func(key, value gjson.Result) bool {
		line, err := strconv.ParseUint(key.String(), 10, 32)
		if err != nil {
			parseErr = fmt.Errorf("%w: offset key %q", ErrMalformedOutput, key.String())
			return false
		}
		into[uint32(line)] = uint32(value.Uint())
		return true
	})
	return parseErr
}
