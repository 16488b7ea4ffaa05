package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelState_String(t *testing.T) {
	cases := map[ChannelState]string{
		StateFresh:             "fresh",
		StateBound:             "bound",
		StateConnected:         "connected",
		StateClosed:            "closed",
		ChannelState(99): "unknown",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestChannelState_TryTransition(t *testing.T) {
	var s channelState
	require.Equal(t, StateFresh, s.Load())

	require.True(t, s.TryTransition(StateFresh, StateBound))
	assert.Equal(t, StateBound, s.Load())

	// wrong "from" fails and leaves state untouched
	require.False(t, s.TryTransition(StateFresh, StateConnected))
	assert.Equal(t, StateBound, s.Load())

	require.True(t, s.TryTransition(StateBound, StateConnected))
	assert.Equal(t, StateConnected, s.Load())
}

func TestChannelState_Close(t *testing.T) {
	var s channelState
	s.Store(StateConnected)

	assert.True(t, s.Close())
	assert.True(t, s.IsClosed())
	assert.Equal(t, StateClosed, s.Load())

	// idempotent: second close reports false, state stays Closed
	assert.False(t, s.Close())
	assert.True(t, s.IsClosed())
}

func TestChannelState_Close_FromFresh(t *testing.T) {
	var s channelState
	assert.True(t, s.Close())
	assert.Equal(t, StateClosed, s.Load())
}
