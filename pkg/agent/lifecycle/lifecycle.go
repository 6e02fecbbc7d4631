// Package lifecycle owns the process-wide restart/shutdown state and the
// outer retry loop that keeps the agent alive.
package lifecycle

import (
	"sync/atomic"
)

// State is shared between the signal handler and the controller. The
// shutdown flag is set at most once and never cleared; the restart counter
// only grows.
type State struct {
	shutdown    atomic.Bool
	restarts    atomic.Int64
	maxRestarts int64
}

func NewState(maxRestarts int) *State {
	return &State{maxRestarts: int64(maxRestarts)}
}

// RequestShutdown flips the shutdown flag. It reports whether this call was
// the one that flipped it, so the caller can log the transition exactly once.
func (s *State) RequestShutdown() bool {
	return s.shutdown.CompareAndSwap(false, true)
}

func (s *State) ShutdownRequested() bool {
	if s == nil {
		return false
	}
	return s.shutdown.Load()
}

// RecordRestart increments the restart counter and returns the new value.
func (s *State) RecordRestart() int {
	return int(s.restarts.Add(1))
}

func (s *State) RestartCount() int {
	return int(s.restarts.Load())
}

func (s *State) MaxRestarts() int {
	return int(s.maxRestarts)
}

// Exhausted reports whether the restart budget is used up.
func (s *State) Exhausted() bool {
	return s.restarts.Load() >= s.maxRestarts
}
