package sctp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSctpMessage(t *testing.T) {
	payload := []byte("hello")
	msg := NewSctpMessage(payload, 3, 7, true)
	assert.Equal(t, payload, msg.Payload)
	assert.Equal(t, uint16(3), msg.StreamID)
	assert.Equal(t, uint32(7), msg.ProtocolID)
	assert.True(t, msg.Unordered)
}

func TestNewSctpMessageFromKernel_ExactSize_ZeroCopy(t *testing.T) {
	buf := []byte("exact")
	msg := newSctpMessageFromKernel(buf, len(buf), 1, 2, false)
	// exact-sized buffer is wrapped, not copied
	assert.True(t, &buf[0] == &msg.Payload[0])
	assert.Equal(t, buf, msg.Payload)
}

func TestNewSctpMessageFromKernel_ShortData_Copies(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, "partial")
	msg := newSctpMessageFromKernel(buf, len("partial"), 5, 6, true)
	require := assert.New(t)
	require.Equal([]byte("partial"), msg.Payload)
	require.Len(msg.Payload, len("partial"))
	// not an alias of buf: mutating buf must not affect msg.Payload
	buf[0] = 'X'
	require.Equal(byte('p'), msg.Payload[0])
}

func TestAssociation_IsActive(t *testing.T) {
	assert.False(t, Association{}.IsActive())
	assert.True(t, Association{ID: 1}.IsActive())
}

func TestNewMessageInfo(t *testing.T) {
	msg := NewSctpMessage([]byte("x"), 2, 9, true)
	assoc := Association{ID: 55}
	info, err := newMessageInfo(msg, assoc)
	assert.NoError(t, err)
	assert.Equal(t, assoc, info.Association)
	assert.Equal(t, msg.StreamID, info.StreamID)
	assert.Equal(t, msg.ProtocolID, info.ProtocolID)
	assert.Equal(t, msg.Unordered, info.Unordered)
	assert.Nil(t, info.Destination)
}

func TestNewMessageInfo_ResolvesDestination(t *testing.T) {
	msg := NewSctpMessageTo([]byte("x"), 2, 9, true, "127.0.0.1:9")
	info, err := newMessageInfo(msg, Association{ID: 1})
	assert.NoError(t, err)
	require := assert.New(t)
	require.NotNil(info.Destination)
	require.Equal(9, info.Destination.Port)
}

func TestNewMessageInfo_InvalidDestination(t *testing.T) {
	msg := NewSctpMessageTo([]byte("x"), 2, 9, true, "not-an-address")
	_, err := newMessageInfo(msg, Association{ID: 1})
	assert.Error(t, err)
}
