// Package netpoll provides the readiness multiplexer the SCTP channel
// drives its read/write/connect loops through: three independent
// selectors, one per readiness dimension, each bound to a single file
// descriptor with a single epoll interest. This is deliberately not a
// general-purpose poller managing many descriptors — one Selector per
// channel per dimension is the whole design — so one operation's
// readiness can never starve another's on the same socket the way a
// single shared interest set would require manual toggling to avoid.
package netpoll

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// Interest is the single readiness dimension a Selector watches for.
type Interest uint32

const (
	InterestRead Interest = unix.EPOLLIN
	InterestWrite Interest = unix.EPOLLOUT
	// InterestConnect watches for a completed non-blocking connect, which
	// Linux reports as writable on the connecting socket.
	InterestConnect Interest = unix.EPOLLOUT
)

var ErrSelectorClosed = errors.New("netpoll: selector closed")

// Selector is a single-fd, single-interest epoll wrapper. Select performs
// one bounded wait and reports whether fd became ready before the timeout
// elapsed.
type Selector struct {
	epfd   int
	fd     int
	closed bool
}

// NewSelector creates an epoll instance and registers fd for interest.
func NewSelector(fd int, interest Interest) (*Selector, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	ev := unix.EpollEvent{Events: uint32(interest), Fd: int32(fd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		unix.Close(epfd)
		return nil, err
	}
	return &Selector{epfd: epfd, fd: fd}, nil
}

// Select blocks up to timeout for fd to become ready on this Selector's
// interest, returning true if it did. A zero or negative timeout polls
// without blocking. Selected-key state is implicitly cleared each call:
// epoll_wait reports only currently-ready descriptors, so there is nothing
// to clear between turns the way a manually-maintained selected-key set
// would require.
func (s *Selector) Select(timeout time.Duration) (bool, error) {
	if s.closed {
		return false, ErrSelectorClosed
	}
	var events [1]unix.EpollEvent
	ms := int(timeout / time.Millisecond)
	if ms < 0 {
		ms = 0
	}
	n, err := unix.EpollWait(s.epfd, events[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	return n > 0, nil
}

// Close closes the selector's epoll instance. Idempotent; repeated calls
// after the first are no-ops, matching doClose's requirement that
// closing all three selectors never itself fails the overall close.
func (s *Selector) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.epfd)
}
