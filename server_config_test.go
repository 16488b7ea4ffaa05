package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerChannelConfig_BacklogDefault(t *testing.T) {
	c := NewServerChannelConfig()
	v, err := c.GetOption(OptSoBacklog)
	require.NoError(t, err)
	assert.Equal(t, defaultSoBacklog, v)
}

func TestServerChannelConfig_SetBacklog(t *testing.T) {
	c := NewServerChannelConfig()
	require.NoError(t, c.SetBacklog(256))
	v, err := c.GetOption(OptSoBacklog)
	require.NoError(t, err)
	assert.Equal(t, 256, v)
}

func TestServerChannelConfig_SetBacklog_Invalid(t *testing.T) {
	c := NewServerChannelConfig()
	assert.ErrorIs(t, c.SetBacklog(-1), ErrInvalidOption)
}

func TestServerChannelConfig_SetPerformancePreferences_Unsupported(t *testing.T) {
	c := NewServerChannelConfig()
	err := c.SetPerformancePreferences(1, 2, 3)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestServerChannelConfig_DoesNotLeakIntoSiblingDefaults(t *testing.T) {
	a := NewServerChannelConfig()
	require.NoError(t, a.SetBacklog(999))

	b := NewServerChannelConfig()
	v, err := b.GetOption(OptSoBacklog)
	require.NoError(t, err)
	assert.Equal(t, defaultSoBacklog, v, "setting a's backlog must not leak into b's default")
}

func TestServerChannelConfig_InheritsBaseOptions(t *testing.T) {
	c := NewServerChannelConfig()
	v, err := c.GetOption(OptSoRcvbuf)
	require.NoError(t, err)
	assert.Equal(t, defaultChannelOptions[OptSoRcvbuf], v)
}
