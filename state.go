package sctp

import "sync/atomic"

// ChannelState enumerates the lifecycle stages of an SCTP channel:
//
//	StateFresh (0) -> StateBound (1) -> StateConnected (2) -> StateClosed (3)
//
// StateBound and StateConnected are both reachable directly from StateFresh
// (a one-to-many socket never explicitly connects; a listening channel never
// leaves StateBound); StateClosed is terminal and reachable from any state.
type ChannelState uint32

const (
	StateFresh ChannelState = iota
	StateBound
	StateConnected
	StateClosed
)

func (s ChannelState) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateBound:
		return "bound"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// channelState is a lock-free CAS state machine for a single channel's
// lifecycle, avoiding a mutex on the hot bind/connect/close path.
type channelState struct {
	v atomic.Uint32
}

func (s *channelState) Load() ChannelState {
	return ChannelState(s.v.Load())
}

func (s *channelState) Store(state ChannelState) {
	s.v.Store(uint32(state))
}

// TryTransition attempts an atomic from->to move, returning true on success.
func (s *channelState) TryTransition(from, to ChannelState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// Close unconditionally transitions to StateClosed, returning false if the
// channel was already closed (so callers can tell idempotent closes apart
// from the one that actually tore the socket down).
func (s *channelState) Close() bool {
	for {
		cur := s.Load()
		if cur == StateClosed {
			return false
		}
		if s.TryTransition(cur, StateClosed) {
			return true
		}
	}
}

func (s *channelState) IsClosed() bool {
	return s.Load() == StateClosed
}
