// Package notify provides a coalescing "state changed" signal.
package notify

import "sync/atomic"

// Signal is fired after every mutation of the owning object. Sends never
// block: pending notifications coalesce into one, so a slow reader sees at
// least one wake-up after the latest change, not one per change.
type Signal struct {
	ch      chan struct{}
	version atomic.Uint64
}

// New creates a Signal.
func New() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify records a change and wakes a waiting reader if none is pending.
func (s *Signal) Notify() {
	s.version.Add(1)
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C returns the channel to receive change notifications on.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

// Version counts Notify calls, so readers can tell whether anything
// changed between two looks.
func (s *Signal) Version() uint64 {
	return s.version.Load()
}
