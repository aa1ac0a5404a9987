// Package sched coalesces the events that force an alignment
// recomputation. Recomputing on every wrap toggle, diff display, or
// resize tick would redo layout work many times per burst, so triggers
// are deferred one frame tick, and resize triggers are additionally
// debounced until the burst goes quiet. Scheduling is explicit timer
// state with synchronous cancellation, so session teardown can clear
// pending work and tests can step a fake clock.
package sched

import (
	"sync"
	"time"
)

// Default delays. One frame at 60Hz for ordinary triggers; resize
// bursts settle for about 100ms before recomputing.
const (
	DefaultFrameDelay = 16 * time.Millisecond
	DefaultDebounce   = 100 * time.Millisecond
)

// Scheduler owns the pending-recompute timer for one session.
type Scheduler struct {
	mu         sync.Mutex
	clock      Clock
	fn         func()
	frameDelay time.Duration
	debounce   time.Duration
	pending    Timer
	cancelled  bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithFrameDelay overrides the frame-tick deferral.
func WithFrameDelay(d time.Duration) Option {
	return func(s *Scheduler) { s.frameDelay = d }
}

// WithDebounce overrides the resize debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(s *Scheduler) { s.debounce = d }
}

// New creates a scheduler that invokes fn when a pending trigger fires.
func New(clock Clock, fn func(), opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:      clock,
		fn:         fn,
		frameDelay: DefaultFrameDelay,
		debounce:   DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trigger schedules a recompute one frame tick out. Triggers arriving
// while one is already pending coalesce into it.
func (s *Scheduler) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled || s.pending != nil {
		return
	}
	s.pending = s.clock.AfterFunc(s.frameDelay, s.fire)
}

// TriggerDebounced schedules a recompute after the debounce delay,
// restarting the delay on every call. Used for resize events so only
// the last one in a burst recomputes.
func (s *Scheduler) TriggerDebounced() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled {
		return
	}
	if s.pending != nil {
		s.pending.Stop()
	}
	s.pending = s.clock.AfterFunc(s.debounce, s.fire)
}

// Cancel synchronously clears any pending recompute. Further triggers
// are ignored; used at session teardown and when a new diff supersedes
// the current one mid-defer.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.cancelled = true
}

// Reset re-arms a cancelled scheduler for a fresh session phase.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = false
}

// Pending reports whether a trigger is waiting to fire.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// fire runs the callback after clearing pending state, so the callback
// itself may trigger again.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	fn := s.fn
	s.mu.Unlock()

	fn()
}
