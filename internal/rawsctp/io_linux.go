//go:build linux

package rawsctp

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// sndrcvinfo is the wire layout of struct sctp_sndrcvinfo, carried as
// SCTP_CMSG_SNDRCV ancillary data on both Sendmsg and Recvmsg.
type sndrcvinfo struct {
	stream    uint16
	ssn       uint16
	flags     uint16
	ppid      uint32
	context   uint32
	ttl       uint32
	tsn       uint32
	cumtsn    uint32
	assocID   int32
}

const sizeofSndrcvinfo = 32

func (i sndrcvinfo) marshal() []byte {
	buf := make([]byte, sizeofSndrcvinfo)
	binary.LittleEndian.PutUint16(buf[0:2], i.stream)
	binary.LittleEndian.PutUint16(buf[2:4], i.ssn)
	binary.LittleEndian.PutUint16(buf[4:6], i.flags)
	binary.LittleEndian.PutUint32(buf[8:12], i.ppid)
	binary.LittleEndian.PutUint32(buf[12:16], i.context)
	binary.LittleEndian.PutUint32(buf[16:20], i.ttl)
	binary.LittleEndian.PutUint32(buf[20:24], i.tsn)
	binary.LittleEndian.PutUint32(buf[24:28], i.cumtsn)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(i.assocID))
	return buf
}

func unmarshalSndrcvinfo(buf []byte) sndrcvinfo {
	var i sndrcvinfo
	if len(buf) < sizeofSndrcvinfo {
		return i
	}
	i.stream = binary.LittleEndian.Uint16(buf[0:2])
	i.ssn = binary.LittleEndian.Uint16(buf[2:4])
	i.flags = binary.LittleEndian.Uint16(buf[4:6])
	i.ppid = binary.LittleEndian.Uint32(buf[8:12])
	i.context = binary.LittleEndian.Uint32(buf[12:16])
	i.ttl = binary.LittleEndian.Uint32(buf[16:20])
	i.tsn = binary.LittleEndian.Uint32(buf[20:24])
	i.cumtsn = binary.LittleEndian.Uint32(buf[24:28])
	i.assocID = int32(binary.LittleEndian.Uint32(buf[28:32]))
	return i
}

func buildCmsg(level, typ int32, data []byte) []byte {
	hdrLen := unix.CmsgSpace(0)
	total := unix.CmsgSpace(len(data))
	buf := make([]byte, total)
	hdr := (*unix.Cmsghdr)(unsafe.Pointer(&buf[0]))
	hdr.Len = uint64(unix.CmsgLen(len(data)))
	hdr.Level = level
	hdr.Type = typ
	copy(buf[hdrLen:hdrLen+len(data)], data)
	return buf
}

// Send transmits one SCTP message with the given stream id / protocol id /
// unordered flag, optionally overriding the association's primary
// transport address for this message only (dest non-nil). SCTP is
// message-oriented; a short write is treated as all-or-nothing failure
// rather than something to retry at this layer, per spec.md §4.E.
func (s *Socket) Send(payload []byte, streamID uint16, protocolID uint32, unordered bool, dest *Addr) error {
	info := sndrcvinfo{stream: streamID, ppid: htonl(protocolID)}
	if unordered {
		info.flags |= flagUnordered
	}
	var to unix.Sockaddr
	if dest != nil {
		info.flags |= flagAddrOver
		sa, err := sockaddr(*dest)
		if err != nil {
			return fmt.Errorf("rawsctp: send: %w", err)
		}
		to = sa
	}
	oob := buildCmsg(solSCTP, int32(cmsgSndrcv), info.marshal())
	n, err := unix.SendmsgN(s.fd, payload, oob, to, 0)
	if err != nil {
		return fmt.Errorf("rawsctp: sendmsg: %w", err)
	}
	if n != len(payload) {
		return fmt.Errorf("rawsctp: short send: wrote %d of %d bytes", n, len(payload))
	}
	return nil
}

func htonl(v uint32) uint32 {
	return (v<<24)&0xff000000 | (v<<8)&0x00ff0000 | (v>>8)&0x0000ff00 | (v >> 24)
}

// ReceiveResult is the decoded outcome of one Receive call: exactly one of
// Message or Notification is populated.
type ReceiveResult struct {
	Message      []byte
	StreamID     uint16
	ProtocolID   uint32
	Unordered    bool
	Notification *Notification
}

// Receive reads one datagram or notification from the socket into buf.
// Callers size buf to SO_RCVBUF's current value, matching spec.md §4.E.
func (s *Socket) Receive(buf []byte) (ReceiveResult, error) {
	oob := make([]byte, 256)
	n, oobn, flags, _, err := unix.Recvmsg(s.fd, buf, oob, 0)
	if err != nil {
		return ReceiveResult{}, fmt.Errorf("rawsctp: recvmsg: %w", err)
	}
	if flags&msgNotification != 0 {
		notif := parseNotification(buf[:n])
		return ReceiveResult{Notification: &notif}, nil
	}
	info := parseSndrcvCmsg(oob[:oobn])
	return ReceiveResult{
		Message:    buf[:n],
		StreamID:   info.stream,
		ProtocolID: ntohl(info.ppid),
		Unordered:  info.flags&flagUnordered != 0,
	}, nil
}

func ntohl(v uint32) uint32 {
	return htonl(v)
}

func parseSndrcvCmsg(oob []byte) sndrcvinfo {
	msgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return sndrcvinfo{}
	}
	for _, m := range msgs {
		if m.Header.Level == solSCTP {
			return unmarshalSndrcvinfo(m.Data)
		}
	}
	return sndrcvinfo{}
}

// parseNotification decodes the generic sctp_notification header and
// dispatches on sn_type to fill in the variant-specific fields this
// package's Notification models.
func parseNotification(buf []byte) Notification {
	if len(buf) < 4 {
		return Notification{}
	}
	typ := notificationType(binary.LittleEndian.Uint16(buf[0:2]))
	n := Notification{Type: typ}
	switch typ {
	case snAssocChange:
		if len(buf) >= 20 {
			n.AssocState = AssociationState(binary.LittleEndian.Uint16(buf[8:10]))
			n.OutStreams = binary.LittleEndian.Uint16(buf[12:14])
			n.InStreams = binary.LittleEndian.Uint16(buf[14:16])
			n.AssocID = binary.LittleEndian.Uint32(buf[16:20])
		}
	case snPeerAddrChange:
		if len(buf) >= 148 {
			n.PeerAddrState = PeerAddressState(binary.LittleEndian.Uint32(buf[136:140]))
			n.AssocID = binary.LittleEndian.Uint32(buf[144:148])
		}
	case snSendFailed:
		if len(buf) >= 48 {
			n.SendFailedErr = int32(binary.LittleEndian.Uint32(buf[8:12]))
			n.AssocID = binary.LittleEndian.Uint32(buf[44:48])
			n.SendFailedPayload = buf[48:]
		}
	case snShutdownEvent:
		if len(buf) >= 12 {
			n.AssocID = binary.LittleEndian.Uint32(buf[8:12])
		}
	}
	return n
}
