package compute

import "errors"

// Errors returned by diff computation.
var (
	// ErrSuperseded indicates the computation was cancelled because a
	// newer request replaced it.
	ErrSuperseded = errors.New("diff computation superseded")

	// ErrMalformedOutput indicates the external tool produced output
	// the parser could not understand.
	ErrMalformedOutput = errors.New("malformed diff output")

	// ErrToolFailed indicates the external tool exited with an error.
	ErrToolFailed = errors.New("diff tool failed")
)
