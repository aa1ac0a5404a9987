// Package session coordinates one active diff between two buffers. A
// Session owns the chunk store, the alignment engine, the scroll link,
// and the recompute scheduler for its pair of panes, and exposes the
// consumer-facing operations: loading a diff, stepping through chunks,
// copying chunk content across sides, and disposal.
//
// The two panes are symmetric peers held by the session; neither owns
// the other. Alignment and scroll state are torn down before the
// session object is discarded, so a session never leaks spacers or
// change listeners into its buffers.
//
// The alignment engine and scroll link are not goroutine safe; the
// session mutex serializes every path into them, including recompute
// passes fired from the scheduler's clock goroutine. Hosts feed scroll
// events through Scrolled and ScrolledHorizontal rather than touching
// the link directly.
package session
