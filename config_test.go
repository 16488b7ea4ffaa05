package sctp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSocket struct {
	values map[string]any
	setErr error
	getErr error
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{values: make(map[string]any)}
}

func (s *fakeSocket) SetOption(key string, value any) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *fakeSocket) GetOption(key string) (any, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return nil, errors.New("fakeSocket: no value set")
	}
	return v, nil
}

func TestChannelConfig_DefaultsBeforeAssign(t *testing.T) {
	c := NewChannelConfig()
	v, err := c.GetOption(OptSoRcvbuf)
	require.NoError(t, err)
	assert.Equal(t, 32768, v)
}

func TestChannelConfig_UnknownOption(t *testing.T) {
	c := NewChannelConfig()
	_, err := c.GetOption(OptionKey("NOT_A_REAL_OPTION"))
	assert.ErrorIs(t, err, ErrUnknownOption)

	err = c.SetOption(OptionKey("NOT_A_REAL_OPTION"), 1)
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestChannelConfig_InvalidOptionValue(t *testing.T) {
	c := NewChannelConfig()
	err := c.SetOption(OptSoRcvbuf, "not an int")
	assert.ErrorIs(t, err, ErrInvalidOption)

	err = c.SetOption(OptSoReuseaddr, 1) // must be bool
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestChannelConfig_PendingBeforeAssign(t *testing.T) {
	c := NewChannelConfig()
	require.NoError(t, c.SetOption(OptSoRcvbuf, 65536))

	v, err := c.GetOption(OptSoRcvbuf)
	require.NoError(t, err)
	assert.Equal(t, 65536, v)
}

func TestChannelConfig_AssignDrainsPending(t *testing.T) {
	c := NewChannelConfig()
	require.NoError(t, c.SetOption(OptSoRcvbuf, 65536))
	require.NoError(t, c.SetOption(OptSctpNodelay, true))

	sock := newFakeSocket()
	require.NoError(t, c.assign(sock))

	assert.Equal(t, 65536, sock.values[string(OptSoRcvbuf)])
	assert.Equal(t, true, sock.values[string(OptSctpNodelay)])
}

func TestChannelConfig_AssignIsExactlyOnce(t *testing.T) {
	c := NewChannelConfig()
	require.NoError(t, c.SetOption(OptSoRcvbuf, 65536))

	first := newFakeSocket()
	second := newFakeSocket()

	require.NoError(t, c.assign(first))
	require.NoError(t, c.assign(second)) // no-op: socket already assigned

	assert.Equal(t, 65536, first.values[string(OptSoRcvbuf)])
	assert.Empty(t, second.values)
}

func TestChannelConfig_SetOption_AfterAssign_WritesThrough(t *testing.T) {
	c := NewChannelConfig()
	sock := newFakeSocket()
	require.NoError(t, c.assign(sock))

	require.NoError(t, c.SetOption(OptSoSndbuf, 4096))
	assert.Equal(t, 4096, sock.values[string(OptSoSndbuf)])

	v, err := c.GetOption(OptSoSndbuf)
	require.NoError(t, err)
	assert.Equal(t, 4096, v)
}

func TestChannelConfig_SetOption_KernelErrorWrapped(t *testing.T) {
	c := NewChannelConfig()
	sock := newFakeSocket()
	sock.setErr = errors.New("ENOPROTOOPT")
	require.NoError(t, c.assign(sock))

	err := c.SetOption(OptSoSndbuf, 4096)
	assert.ErrorIs(t, err, ErrConfigIO)
}

func TestChannelConfig_GetOptions_Snapshot(t *testing.T) {
	c := NewChannelConfig()
	snap := c.GetOptions()
	assert.Equal(t, defaultChannelOptions[OptSoRcvbuf], snap[OptSoRcvbuf])
	assert.Len(t, snap, len(defaultChannelOptions))
}
