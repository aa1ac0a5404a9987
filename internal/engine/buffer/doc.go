// Package buffer provides a thread-safe, line-oriented text buffer for
// diff sessions. Diff chunks, alignment spacers, and cross-copy all
// operate on whole logical lines, so the buffer stores a line table
// rather than a byte rope.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Whole-line reads and line-range replacement
//   - Line ending normalization on load
//   - Revision tracking for change detection
//   - Change notification callbacks
//   - A destroyed state so late operations after teardown degrade to
//     errors instead of panics
//
// Basic usage:
//
//	buf := buffer.FromString("one\ntwo\nthree\n")
//	text, _ := buf.LineText(1)          // "two"
//	buf.ReplaceLineRange(view.LineRange{Start: 1, End: 2}, []string{"2"})
//
// Disposal ordering across two independently destroyed buffers cannot
// be guaranteed, so every mutating method reports ErrDestroyed rather
// than failing hard once Destroy has been called.
package buffer
