package sctp

import "github.com/flowmesh/sctpchan/internal/rawsctp"

// SctpMessage is an immutable record of one SCTP datagram: its payload plus
// the per-message metadata SCTP carries alongside it. Once constructed, a
// SctpMessage's fields never change; ownership of Payload transfers into
// the channel on write and out of the channel on read.
type SctpMessage struct {
	Payload     []byte
	StreamID    uint16
	ProtocolID  uint32
	Unordered   bool
	Destination string
}

// NewSctpMessage constructs a message from a caller-owned payload. The
// payload is retained, not copied; callers that mutate it after handing it
// to a channel break the immutability invariant themselves.
func NewSctpMessage(payload []byte, streamID uint16, protocolID uint32, unordered bool) SctpMessage {
	return SctpMessage{
		Payload:    payload,
		StreamID:   streamID,
		ProtocolID: protocolID,
		Unordered:  unordered,
	}
}

// NewSctpMessageTo is NewSctpMessage plus a per-message destination
// override (a multi-homed peer transport address, "host:port") instead of
// the association's current primary path.
func NewSctpMessageTo(payload []byte, streamID uint16, protocolID uint32, unordered bool, destination string) SctpMessage {
	m := NewSctpMessage(payload, streamID, protocolID, unordered)
	m.Destination = destination
	return m
}

// newSctpMessageFromKernel builds a message from a kernel receive result.
// If buf was sized exactly to the datagram (dataLen == len(buf)), it is
// wrapped without copying; otherwise exactly dataLen bytes are copied out
// into a freshly allocated, exactly-sized slice. The kernel may hand back a
// receive buffer that cannot be safely retained past the current call (it
// may be pooled or reused); copying when the sizes disagree is the signal
// that the caller handed us a reusable scratch buffer rather than a
// precisely-sized allocation.
func newSctpMessageFromKernel(buf []byte, dataLen int, streamID uint16, protocolID uint32, unordered bool) SctpMessage {
	var payload []byte
	if dataLen == len(buf) {
		payload = buf
	} else {
		payload = make([]byte, dataLen)
		copy(payload, buf[:dataLen])
	}
	return SctpMessage{
		Payload:    payload,
		StreamID:   streamID,
		ProtocolID: protocolID,
		Unordered:  unordered,
	}
}

// MessageInfo is the outbound envelope derived from an SctpMessage plus the
// association it is being sent over. Destination is optional; a nil
// Destination means "send on the association's primary path," while a
// non-nil one is passed to the kernel as a per-message MSG_ADDR_OVER
// transport-address override (spec.md §4.A).
type MessageInfo struct {
	Association Association
	StreamID    uint16
	ProtocolID  uint32
	Unordered   bool
	Destination *rawsctp.Addr
}

// newMessageInfo derives the outbound envelope for m on the given
// association. If m.Destination is set, it is resolved into the transport
// address the kernel send path uses to override the association's primary
// path for this one message.
func newMessageInfo(m SctpMessage, assoc Association) (MessageInfo, error) {
	info := MessageInfo{
		Association: assoc,
		StreamID:    m.StreamID,
		ProtocolID:  m.ProtocolID,
		Unordered:   m.Unordered,
	}
	if m.Destination != "" {
		addr, err := rawsctp.ResolveAddr(m.Destination)
		if err != nil {
			return MessageInfo{}, err
		}
		info.Destination = &addr
	}
	return info, nil
}

// Association is an opaque handle identifying a live SCTP association. The
// zero value (ID == 0) denotes "no association," matching the Linux kernel's
// sctp_assoc_t convention of reserving 0 for "not associated."
type Association struct {
	ID      uint32
	Primary string
}

// IsActive reports whether a is a live association handle.
func (a Association) IsActive() bool {
	return a.ID != 0
}

// String renders the association's primary peer address, for use as the
// remote endpoint in OpError detail. Empty when no association is active.
func (a Association) String() string {
	return a.Primary
}
