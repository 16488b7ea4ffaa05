//go:build linux

package rawsctp

import (
	"encoding/binary"
	"fmt"
	"net"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Notification is the decoded form of whatever the kernel delivered in
// place of a data message (rcv_flags & MSG_NOTIFICATION).
type Notification struct {
	Type              notificationType
	AssocID           uint32
	AssocState        AssociationState
	OutStreams        uint16
	InStreams         uint16
	PeerAddr          string
	PeerAddrState     PeerAddressState
	SendFailedPayload []byte
	SendFailedErr     int32
}

// Socket wraps a one-to-one mode, non-blocking Linux SCTP socket.
type Socket struct {
	fd     int
	family int
}

// Open creates a one-to-one mode SCTP socket for the given address family
// ("ip4" or "ip6"), matching the SCTP4/SCTP6 distinction the reference
// implementation's SCTPAddressFamily models.
func Open(network string) (*Socket, error) {
	family := addressFamily(network)
	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_SCTP)
	if err != nil {
		return nil, fmt.Errorf("rawsctp: socket: %w", err)
	}
	return &Socket{fd: fd, family: family}, nil
}

// FD returns the underlying file descriptor, for registration with
// internal/netpoll's selectors.
func (s *Socket) FD() int {
	return s.fd
}

// SetNonblocking toggles O_NONBLOCK on the socket, required before it can
// be driven through the readiness multiplexer.
func (s *Socket) SetNonblocking(nonblocking bool) error {
	return unix.SetNonblock(s.fd, nonblocking)
}

func sockaddr(a Addr) (unix.Sockaddr, error) {
	if a.isIPv6() {
		sa := &unix.SockaddrInet6{Port: a.Port}
		copy(sa.Addr[:], a.IP.To16())
		return sa, nil
	}
	sa := &unix.SockaddrInet4{Port: a.Port}
	if a.IP != nil {
		ip4 := a.IP.To4()
		if ip4 == nil {
			return nil, fmt.Errorf("rawsctp: %s is not an IPv4 address", a.IP)
		}
		copy(sa.Addr[:], ip4)
	}
	return sa, nil
}

// Bind performs the primary bind(2) for local.
func (s *Socket) Bind(local Addr) error {
	sa, err := sockaddr(local)
	if err != nil {
		return err
	}
	if err := unix.Bind(s.fd, sa); err != nil {
		return fmt.Errorf("rawsctp: bind %s: %w", local, err)
	}
	return nil
}

// BindAddress adds a secondary local address via SCTP_SOCKOPT_BINDX_ADD
// (multi-homing).
func (s *Socket) BindAddress(addr Addr) error {
	return s.bindx(addr, sctpBindxAddAddr)
}

// UnbindAddress removes a secondary local address via
// SCTP_SOCKOPT_BINDX_REM.
func (s *Socket) UnbindAddress(addr Addr) error {
	return s.bindx(addr, sctpBindxRemAddr)
}

func (s *Socket) bindx(addr Addr, flags int32) error {
	sa, err := sockaddr(addr)
	if err != nil {
		return err
	}
	raw, _, err := rawSockaddr(sa)
	if err != nil {
		return err
	}
	name := sctpSockoptBindxAdd
	if flags == sctpBindxRemAddr {
		name = sctpSockoptBindxRem
	}
	return unix.SetsockoptString(s.fd, solSCTP, name, string(raw))
}

// rawSockaddr encodes a unix.Sockaddr to its raw wire form, as bindx's
// ancillary buffer requires a packed struct sockaddr rather than the
// higher-level unix.Sockaddr interface.
func rawSockaddr(sa unix.Sockaddr) ([]byte, int, error) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		var raw unix.RawSockaddrInet4
		raw.Family = unix.AF_INET
		raw.Port = htons(uint16(v.Port))
		copy(raw.Addr[:], v.Addr[:])
		size := int(unsafe.Sizeof(raw))
		buf := (*[1 << 20]byte)(unsafe.Pointer(&raw))[:size:size]
		out := make([]byte, size)
		copy(out, buf)
		return out, size, nil
	case *unix.SockaddrInet6:
		var raw unix.RawSockaddrInet6
		raw.Family = unix.AF_INET6
		raw.Port = htons(uint16(v.Port))
		copy(raw.Addr[:], v.Addr[:])
		size := int(unsafe.Sizeof(raw))
		buf := (*[1 << 20]byte)(unsafe.Pointer(&raw))[:size:size]
		out := make([]byte, size)
		copy(out, buf)
		return out, size, nil
	default:
		return nil, 0, fmt.Errorf("rawsctp: unsupported sockaddr type %T", sa)
	}
}

func htons(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

// Connect initiates a non-blocking connect(2); callers drive completion
// via the connect selector and finalize with FinishConnect.
func (s *Socket) Connect(remote Addr) error {
	sa, err := sockaddr(remote)
	if err != nil {
		return err
	}
	err = unix.Connect(s.fd, sa)
	if err == nil || err == unix.EINPROGRESS {
		return nil
	}
	return fmt.Errorf("rawsctp: connect %s: %w", remote, err)
}

// FinishConnect checks SO_ERROR to determine whether a non-blocking
// connect succeeded once the connect selector reports readiness.
func (s *Socket) FinishConnect() error {
	errno, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return fmt.Errorf("rawsctp: getsockopt SO_ERROR: %w", err)
	}
	if errno != 0 {
		return fmt.Errorf("rawsctp: connect: %w", unix.Errno(errno))
	}
	return nil
}

// Close closes the socket.
func (s *Socket) Close() error {
	return unix.Close(s.fd)
}

// LocalAddresses returns every local address bound to the socket, via
// SCTP_GET_LOCAL_ADDRS. Swallows kernel errors and returns an empty slice,
// matching the allLocalAddresses fallback spec.md §6 requires for idle
// introspection on partially-initialized sockets.
func (s *Socket) LocalAddresses() []Addr {
	addrs, err := s.getAddrs(sctpGetLocalAddrs)
	if err != nil {
		return nil
	}
	return addrs
}

// RemoteAddresses returns every peer address for the association, via
// SCTP_GET_PEER_ADDRS. Same swallow-on-error contract as LocalAddresses.
func (s *Socket) RemoteAddresses() []Addr {
	addrs, err := s.getAddrs(sctpGetPeerAddrs)
	if err != nil {
		return nil
	}
	return addrs
}

// getAddrs is a best-effort decode of the struct sctp_getaddrs response: a
// uint32 assoc_id, a uint32 count, then count packed addresses whose
// stride depends on their family: sockaddr_in (16 bytes) or sockaddr_in6
// (28 bytes). An entry of any other family is skipped by the size of a
// sockaddr_storage.
func (s *Socket) getAddrs(name int) ([]Addr, error) {
	buf := make([]byte, 4+4+64*sizeofSockaddrStorage)
	binary.LittleEndian.PutUint32(buf[:4], 0)
	n := len(buf)
	if err := getsockoptRaw(s.fd, solSCTP, name, buf, &n); err != nil {
		return nil, err
	}
	if n < 8 {
		return nil, fmt.Errorf("rawsctp: short getaddrs response")
	}
	count := binary.LittleEndian.Uint32(buf[4:8])
	out := make([]Addr, 0, count)
	off := 8
	for i := uint32(0); i < count && off+2 <= n; i++ {
		family := binary.LittleEndian.Uint16(buf[off : off+2])
		switch family {
		case unix.AF_INET:
			if off+sizeofSockaddrIn > n {
				break
			}
			port := ntohs(binary.LittleEndian.Uint16(buf[off+2 : off+4]))
			ip := net.IPv4(buf[off+4], buf[off+5], buf[off+6], buf[off+7])
			out = append(out, Addr{IP: ip, Port: int(port)})
			off += sizeofSockaddrIn
		case unix.AF_INET6:
			if off+sizeofSockaddrIn6 > n {
				break
			}
			port := ntohs(binary.LittleEndian.Uint16(buf[off+2 : off+4]))
			ip := make(net.IP, 16)
			copy(ip, buf[off+8:off+24])
			out = append(out, Addr{IP: ip, Port: int(port)})
			off += sizeofSockaddrIn6
		default:
			off += sizeofSockaddrStorage
		}
	}
	return out, nil
}

func ntohs(v uint16) uint16 {
	return (v << 8) | (v >> 8)
}

const (
	sizeofSockaddrIn      = 16
	sizeofSockaddrIn6     = 28
	sizeofSockaddrStorage = 128
)

// Association reports the current association id for a one-to-one socket
// via SCTP_STATUS. Failure is swallowed to the zero Association, making
// isActive() false, matching spec.md §7's propagation policy.
func (s *Socket) Association() uint32 {
	// sizeof(struct sctp_status): 24 bytes of association fields plus the
	// 152-byte sctp_paddrinfo of the primary path. The kernel rejects a
	// shorter buffer with EINVAL.
	buf := make([]byte, 176)
	n := len(buf)
	if err := getsockoptRaw(s.fd, solSCTP, sctpStatus, buf, &n); err != nil || n < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(buf[:4])
}
