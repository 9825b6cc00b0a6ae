package runloop

import (
	"sync/atomic"
)

// LoopState represents the lifecycle state of a [RunLoop].
//
// State Machine:
//
//	StateNotRunning → StateRunning      [Run()]
//	StateRunning    → StateDraining     [queue, guards and work all empty]
//	StateDraining   → StateRunning      [new task, guard or work]
//	StateRunning    → StateNotRunning   [Stop() / abort / context]
//	StateDraining   → StateNotRunning   [idle timeout elapsed]
//	StateNotRunning → StateDestroyed    [Destroy()]
//	StateDestroyed  → (terminal)
//
// A loop that returned from Run may be run again; only Destroy is terminal.
type LoopState uint32

const (
	// StateNotRunning indicates the loop is not inside Run.
	StateNotRunning LoopState = iota
	// StateRunning indicates the loop is inside Run, with its wake handle installed.
	StateRunning
	// StateDraining indicates the loop is idle, counting down its idle timeout.
	StateDraining
	// StateDestroyed indicates the loop has been destroyed.
	StateDestroyed
)

// String returns a human-readable representation of the state.
func (s LoopState) String() string {
	switch s {
	case StateNotRunning:
		return "NotRunning"
	case StateRunning:
		return "Running"
	case StateDraining:
		return "Draining"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// loopState is a lock-free state cell.
//
// Use tryTransition (CAS) for the reversible states, store only for
// StateDestroyed.
type loopState struct {
	v atomic.Uint32
}

func (s *loopState) load() LoopState {
	return LoopState(s.v.Load())
}

func (s *loopState) store(state LoopState) {
	s.v.Store(uint32(state))
}

func (s *loopState) tryTransition(from, to LoopState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// running reports whether the loop is inside Run.
func (s *loopState) running() bool {
	state := s.load()
	return state == StateRunning || state == StateDraining
}
