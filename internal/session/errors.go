package session

import "errors"

// Errors returned by session operations.
var (
	// ErrNoSelection indicates a copy was invoked with no chunk
	// selected. Recoverable; the operation is a no-op.
	ErrNoSelection = errors.New("no chunk selected")

	// ErrDisposed indicates an operation on a disposed session.
	ErrDisposed = errors.New("session disposed")
)

// NoChunk is returned by Next and Prev when the chunk list is empty.
const NoChunk = -1
