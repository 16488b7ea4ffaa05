package loop

import "sync/atomic"

// runState is the loop's own lifecycle, distinct from any channel pinned
// to it: a loop is created Idle, becomes Running for the duration of Run,
// and Closed once Shutdown completes. Closed is terminal.
type runState uint32

const (
	stateIdle runState = iota
	stateRunning
	stateClosed
)

// fastState is a lock-free CAS state machine: pure atomic operations, no
// mutex, since Submit/Execute check it on every call from arbitrary
// goroutines.
type fastState struct {
	v atomic.Uint32
}

func (s *fastState) Load() runState {
	return runState(s.v.Load())
}

func (s *fastState) Store(state runState) {
	s.v.Store(uint32(state))
}

func (s *fastState) TryTransition(from, to runState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

func (s *fastState) IsClosed() bool {
	return s.Load() == stateClosed
}
