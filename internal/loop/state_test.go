package loop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFastState_TryTransition(t *testing.T) {
	var s fastState
	assert.Equal(t, stateIdle, s.Load())

	assert.True(t, s.TryTransition(stateIdle, stateRunning))
	assert.Equal(t, stateRunning, s.Load())

	assert.False(t, s.TryTransition(stateIdle, stateClosed), "wrong from-state must fail")
	assert.Equal(t, stateRunning, s.Load())

	assert.True(t, s.TryTransition(stateRunning, stateClosed))
	assert.True(t, s.IsClosed())
}

func TestFastState_Store(t *testing.T) {
	var s fastState
	s.Store(stateClosed)
	assert.True(t, s.IsClosed())
}
