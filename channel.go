package sctp

import (
	"fmt"
	"time"

	"github.com/flowmesh/sctpchan/internal/loop"
	"github.com/flowmesh/sctpchan/internal/netpoll"
	"github.com/flowmesh/sctpchan/internal/rawsctp"
)

// selectorTimeout is SO_TIMEOUT: the bounded wait each selector turn uses
// so the owning loop can interleave other channels and honor
// cancellation/close, per spec.md §4.D.
const selectorTimeout = time.Second

// Channel is the SCTP channel state machine: lifecycle, read/write loops,
// multi-homing, and notification dispatch, all executed on exactly one
// owner loop.
type Channel struct {
	config   *ChannelConfig
	pipeline Pipeline
	loop     *loop.Loop

	socket    *rawsctp.Socket
	selectors *netpoll.ChannelSelectors
	notify    *notificationHandler

	state         channelState
	assoc         Association
	readSuspended bool
	network       string

	connectDeadline time.Time

	writeQueue chan SctpMessage
}

// NewChannel constructs a Fresh channel over the given address family
// ("ip4" or "ip6") and pipeline. The socket is not opened until Register.
func NewChannel(network string, pipeline Pipeline) *Channel {
	return &Channel{
		config:     NewChannelConfig(),
		pipeline:   pipeline,
		network:    network,
		writeQueue: make(chan SctpMessage, 256),
	}
}

// Config returns the channel's deferred-option configuration.
func (c *Channel) Config() *ChannelConfig {
	return c.config
}

// Register pins the channel to loop and opens its kernel socket, assigning
// the deferred-option config to it. Must be called before any other
// operation; it is the one call that establishes the owner.
func (c *Channel) Register(l *loop.Loop) error {
	c.loop = l
	socket, err := rawsctp.Open(c.network)
	if err != nil {
		return WrapError(ErrBindFailed, err)
	}
	if err := socket.SetNonblocking(true); err != nil {
		socket.Close()
		return WrapError(ErrBindFailed, err)
	}
	c.socket = socket
	c.notify = newNotificationHandler(c.pipeline, func() { c.doCloseInline() })
	return c.config.assign(socket)
}

// submit re-posts fn to the owner if called off-loop, returning the
// future the caller should wait on; if already on-loop, it runs fn inline
// and the returned future is unused by the caller (result already
// reflected by the time the call returns). Every public operation routes
// through this so the single-owner invariant is a consequence of the API,
// not caller discipline, per spec.md §9.
func (c *Channel) submit(fn func(f *Future)) *Future {
	f := NewFuture()
	err := c.loop.Submit(func() { fn(f) })
	if err != nil {
		f.Fail(WrapError(ErrClosedChannel, err))
	}
	return f
}

// remoteOrNil adapts the channel's current association to fmt.Stringer for
// OpError detail, omitting it entirely when no association is active.
func (c *Channel) remoteOrNil() fmt.Stringer {
	if !c.assoc.IsActive() {
		return nil
	}
	return c.assoc
}

// localOptOrNil adapts an optional local address to fmt.Stringer, so
// wrapOpError can omit it entirely rather than printing a zero Addr.
func localOptOrNil(local *rawsctp.Addr) fmt.Stringer {
	if local == nil {
		return nil
	}
	return *local
}

// doBind binds the channel's local address. status -> Bound.
func (c *Channel) doBind(local rawsctp.Addr) *Future {
	return c.submit(func(f *Future) {
		if c.state.IsClosed() {
			f.Fail(ErrClosedChannel)
			return
		}
		if err := c.socket.Bind(local); err != nil {
			logger.Err().Err(err).Str("local", local.String()).Log("sctp: bind failed")
			f.Fail(wrapOpError(ErrBindFailed, "bind", local, nil, err))
			return
		}
		c.state.TryTransition(StateFresh, StateBound)
		logger.Info().Str("local", local.String()).Log("sctp: bound")
		f.Complete(nil)
	})
}

// bindAddress adds a secondary local address (SCTP multi-homing).
// Pre-condition: status >= Bound. Re-posted if called off-loop, preserving
// submission order per spec.md §4.E's tie-break rule.
func (c *Channel) bindAddress(addr rawsctp.Addr) *Future {
	return c.submit(func(f *Future) {
		if c.state.IsClosed() {
			f.Fail(ErrClosedChannel)
			return
		}
		if c.state.Load() == StateFresh {
			f.Fail(fmt.Errorf("sctp: bindAddress before bind"))
			return
		}
		if err := c.socket.BindAddress(addr); err != nil {
			f.Fail(wrapOpError(ErrBindFailed, "bindAddress", addr, nil, err))
			return
		}
		f.Complete(nil)
	})
}

// unbindAddress removes a secondary local address.
func (c *Channel) unbindAddress(addr rawsctp.Addr) *Future {
	return c.submit(func(f *Future) {
		if c.state.IsClosed() {
			f.Fail(ErrClosedChannel)
			return
		}
		if err := c.socket.UnbindAddress(addr); err != nil {
			f.Fail(wrapOpError(ErrBindFailed, "unbindAddress", addr, nil, err))
			return
		}
		f.Complete(nil)
	})
}

// doConnect initiates connect(remote), optionally binding localOpt first,
// then drives the connect selector in bounded-wait turns until readiness
// or connectTimeoutMs elapses. On any non-success, doClose runs before the
// failure surfaces, per spec.md §4.E.
func (c *Channel) doConnect(remote rawsctp.Addr, localOpt *rawsctp.Addr) *Future {
	return c.submit(func(f *Future) {
		if c.state.IsClosed() {
			f.Fail(ErrClosedChannel)
			return
		}
		if localOpt != nil {
			if err := c.socket.Bind(*localOpt); err != nil {
				c.doCloseInline()
				f.Fail(wrapOpError(ErrBindFailed, "bind", *localOpt, nil, err))
				return
			}
		}
		selectors, err := netpoll.NewChannelSelectors(c.socket.FD())
		if err != nil {
			c.doCloseInline()
			f.Fail(wrapOpError(ErrConnectFailed, "connect", localOptOrNil(localOpt), remote, err))
			return
		}
		c.selectors = selectors

		if err := c.socket.Connect(remote); err != nil {
			c.doCloseInline()
			f.Fail(wrapOpError(ErrConnectFailed, "connect", localOptOrNil(localOpt), remote, err))
			return
		}

		timeoutMs, _ := c.config.getOption(OptConnectTimeoutMs)
		deadline := time.Now().Add(time.Duration(timeoutMs.(int)) * time.Millisecond)
		c.connectDeadline = deadline
		c.pollConnect(remote, f)
	})
}

// pollConnect re-submits itself to the owner loop each turn, matching the
// self-resubmitting tick pattern the I/O loops use: a single bounded-wait
// connect-selector turn, then either finish, fail, or requeue.
func (c *Channel) pollConnect(remote rawsctp.Addr, f *Future) {
	if c.state.IsClosed() {
		f.Fail(ErrClosedChannel)
		return
	}
	if !c.connectDeadline.IsZero() && time.Now().After(c.connectDeadline) {
		c.doCloseInline()
		f.Fail(ErrTimeout)
		return
	}
	ready, err := c.selectors.Connect.Select(selectorTimeout)
	if err != nil {
		c.doCloseInline()
		f.Fail(wrapOpError(ErrConnectFailed, "connect", nil, remote, err))
		return
	}
	if !ready {
		// Submit from the loop goroutine would run inline; posting from a
		// separate goroutine puts the next turn at the tail of the queue.
		go func() { _ = c.loop.Submit(func() { c.pollConnect(remote, f) }) }()
		return
	}
	if err := c.socket.FinishConnect(); err != nil {
		logger.Err().Err(err).Str("remote", remote.String()).Log("sctp: connect failed")
		c.doCloseInline()
		f.Fail(wrapOpError(ErrConnectFailed, "connect", nil, remote, err))
		return
	}
	c.state.TryTransition(StateBound, StateConnected)
	c.state.TryTransition(StateFresh, StateConnected)
	c.assoc = Association{ID: c.socket.Association(), Primary: remote.String()}
	logger.Info().Str("remote", remote.String()).Uint64("assoc", uint64(c.assoc.ID)).Log("sctp: connected")
	c.pipeline.ChannelActive()
	f.Complete(nil)
}

// doReadMessages drains as many read-ready messages as are available in
// one bounded-wait turn into sink, honoring readSuspended and stopping
// mid-batch on a shutdown notification.
func (c *Channel) doReadMessages(sink func(SctpMessage)) *Future {
	return c.submit(func(f *Future) {
		n, err := c.readOnce(sink)
		if err != nil {
			f.Fail(err)
			return
		}
		f.Complete(n)
	})
}

func (c *Channel) readOnce(sink func(SctpMessage)) (int, error) {
	if c.readSuspended || c.selectors == nil {
		return 0, nil
	}
	ready, err := c.selectors.Read.Select(selectorTimeout)
	if err != nil {
		return 0, wrapOpError(ErrReadFailed, "read", nil, c.remoteOrNil(), err)
	}
	if !ready {
		return 0, nil
	}
	rcvbufAny, _ := c.config.getOption(OptSoRcvbuf)
	rcvbuf := rcvbufAny.(int)
	count := 0
	for {
		if c.readSuspended || c.state.IsClosed() {
			break
		}
		buf := make([]byte, rcvbuf)
		res, err := c.socket.Receive(buf)
		if err != nil {
			return count, wrapOpError(ErrReadFailed, "read", nil, c.remoteOrNil(), err)
		}
		if res.Notification != nil {
			n := translateNotification(*res.Notification, c.assoc)
			if c.notify.handle(n) == verdictReturn {
				break
			}
			continue
		}
		msg := newSctpMessageFromKernel(res.Message, len(res.Message), res.StreamID, res.ProtocolID, res.Unordered)
		sink(msg)
		c.pipeline.MessageReceived(msg)
		count++
		more, err := c.selectors.Read.Select(0)
		if err != nil || !more {
			break
		}
	}
	return count, nil
}

func translateNotification(n rawsctp.Notification, assoc Association) Notification {
	switch n.Type {
	case rawsctp.NotifyAssocChange:
		return Notification{
			Kind: NotificationAssociationChange,
			AssociationChange: &AssociationChangeEvent{
				State:       AssociationChangeState(n.AssocState),
				Association: Association{ID: n.AssocID},
				OutStreams:  n.OutStreams,
				InStreams:   n.InStreams,
			},
		}
	case rawsctp.NotifyPeerAddrChange:
		return Notification{
			Kind: NotificationPeerAddressChange,
			PeerAddressChange: &PeerAddressChangeEvent{
				Association: Association{ID: n.AssocID},
				Address:     n.PeerAddr,
				State:       PeerAddressChangeState(n.PeerAddrState),
			},
		}
	case rawsctp.NotifySendFailed:
		return Notification{
			Kind: NotificationSendFailed,
			SendFailed: &SendFailedEvent{
				Association: Association{ID: n.AssocID},
			},
		}
	case rawsctp.NotifyShutdownEvent:
		return Notification{
			Kind: NotificationShutdown,
			Shutdown: &ShutdownEvent{
				Association: assoc,
			},
		}
	default:
		return Notification{Kind: NotificationShutdown, Shutdown: &ShutdownEvent{Association: assoc}}
	}
}

// doWriteMessages waits up to SO_TIMEOUT for write-readiness, then sends
// exactly one message from source (if any), forming its MessageInfo from
// the current association. Short sends surface as ErrWriteFailed with no
// implicit retry, per the Open Question resolution in SPEC_FULL.md §9.
func (c *Channel) doWriteMessages(source func() (SctpMessage, bool)) *Future {
	return c.submit(func(f *Future) {
		if c.state.IsClosed() {
			f.Fail(ErrClosedChannel)
			return
		}
		if c.selectors == nil {
			f.Complete(0)
			return
		}
		ready, err := c.selectors.Write.Select(selectorTimeout)
		if err != nil {
			f.Fail(wrapOpError(ErrWriteFailed, "write", nil, c.remoteOrNil(), err))
			return
		}
		if !ready {
			f.Complete(0)
			return
		}
		msg, ok := source()
		if !ok {
			f.Complete(0)
			return
		}
		info, err := newMessageInfo(msg, c.assoc)
		if err != nil {
			f.Fail(wrapOpError(ErrWriteFailed, "write", nil, c.remoteOrNil(), err))
			return
		}
		if err := c.socket.Send(msg.Payload, info.StreamID, info.ProtocolID, info.Unordered, info.Destination); err != nil {
			f.Fail(wrapOpError(ErrWriteFailed, "write", nil, c.remoteOrNil(), err))
			return
		}
		f.Complete(1)
	})
}

// doDisconnect is equivalent to doClose: SCTP associations have no
// half-close distinct from close in this design, per spec.md §4.E.
func (c *Channel) doDisconnect() *Future {
	return c.doClose()
}

// doClose closes each selector independently (failures logged, not fatal),
// closes the socket, and transitions to Closed. Idempotent.
func (c *Channel) doClose() *Future {
	return c.submit(func(f *Future) {
		c.doCloseInline()
		f.Complete(nil)
	})
}

func (c *Channel) doCloseInline() {
	wasOpen := c.state.Close()
	if !wasOpen {
		return
	}
	if c.selectors != nil {
		for _, err := range c.selectors.CloseAll() {
			logger.Warning().Err(err).Log("selector close failed during doClose")
		}
	}
	if c.socket != nil {
		if err := c.socket.Close(); err != nil {
			logger.Warning().Err(err).Log("socket close failed during doClose")
		}
	}
	c.assoc = Association{}
	c.pipeline.ChannelInactive()
}

// Association returns a read-only snapshot of the current association.
func (c *Channel) Association() Association {
	return c.assoc
}

// AllLocalAddresses swallows I/O errors and returns the empty set, per
// spec.md §6's fallback contract for idle introspection.
func (c *Channel) AllLocalAddresses() []rawsctp.Addr {
	if c.socket == nil {
		return nil
	}
	return c.socket.LocalAddresses()
}

// AllRemoteAddresses mirrors AllLocalAddresses for the peer side.
func (c *Channel) AllRemoteAddresses() []rawsctp.Addr {
	if c.socket == nil {
		return nil
	}
	return c.socket.RemoteAddresses()
}

// SuspendReads toggles readSuspended; doReadMessages yields zero messages
// while suspended.
func (c *Channel) SuspendReads(suspend bool) {
	_ = c.loop.Submit(func() { c.readSuspended = suspend })
}

// State returns the channel's current lifecycle state.
func (c *Channel) State() ChannelState {
	return c.state.Load()
}

// ioLoopTick is the channel's self-resubmitting I/O pump: one bounded-wait
// read burst, one bounded-wait write attempt, then resubmit to the tail of
// the owner loop's queue. Resubmitting (rather than looping in place) is
// what lets bind/connect/close/config operations interleave between
// read/write bursts without starving them, per SPEC_FULL.md §5.
func (c *Channel) ioLoopTick(sink func(SctpMessage), source func() (SctpMessage, bool)) {
	if c.state.IsClosed() {
		return
	}
	if c.state.Load() == StateConnected {
		_, _ = c.readOnce(sink)
		if c.state.IsClosed() {
			return
		}
		if ready, err := c.selectors.Write.Select(0); err == nil && ready {
			if msg, ok := source(); ok {
				info, err := newMessageInfo(msg, c.assoc)
				if err != nil {
					logger.Err().Err(err).Log("write failed during io tick")
				} else if err := c.socket.Send(msg.Payload, info.StreamID, info.ProtocolID, info.Unordered, info.Destination); err != nil {
					logger.Err().Err(err).Log("write failed during io tick")
				}
			}
		}
	}
	// Posted from a separate goroutine so the next tick is queued behind
	// other work instead of running inline on the loop goroutine.
	go func() { _ = c.loop.Submit(func() { c.ioLoopTick(sink, source) }) }()
}

// StartIOPump begins the self-resubmitting read/write tick for a connected
// channel; call once after Connect succeeds.
func (c *Channel) StartIOPump(sink func(SctpMessage), source func() (SctpMessage, bool)) {
	_ = c.loop.Submit(func() { c.ioLoopTick(sink, source) })
}

// Bind is the public entry point for doBind, parsing a "host:port" string.
// This and the wrappers below play the role the pipeline's outbound handler
// chain would in a full Netty-style stack (spec.md §1's out-of-scope
// collaborator): a direct caller of the channel's unsafe operations.
func (c *Channel) Bind(hostport string) *Future {
	addr, err := rawsctp.ResolveAddr(hostport)
	if err != nil {
		f := NewFuture()
		f.Fail(WrapError(ErrBindFailed, err))
		return f
	}
	return c.doBind(addr)
}

// BindAddress adds a secondary local address for multi-homing.
func (c *Channel) BindAddress(hostport string) *Future {
	addr, err := rawsctp.ResolveAddr(hostport)
	if err != nil {
		f := NewFuture()
		f.Fail(WrapError(ErrBindFailed, err))
		return f
	}
	return c.bindAddress(addr)
}

// UnbindAddress removes a secondary local address.
func (c *Channel) UnbindAddress(hostport string) *Future {
	addr, err := rawsctp.ResolveAddr(hostport)
	if err != nil {
		f := NewFuture()
		f.Fail(WrapError(ErrBindFailed, err))
		return f
	}
	return c.unbindAddress(addr)
}

// Connect is the public entry point for doConnect. localOpt, if non-nil, is
// bound before the connect attempt.
func (c *Channel) Connect(hostport string, localOpt *string) *Future {
	remote, err := rawsctp.ResolveAddr(hostport)
	if err != nil {
		f := NewFuture()
		f.Fail(WrapError(ErrConnectFailed, err))
		return f
	}
	var local *rawsctp.Addr
	if localOpt != nil {
		a, err := rawsctp.ResolveAddr(*localOpt)
		if err != nil {
			f := NewFuture()
			f.Fail(WrapError(ErrConnectFailed, err))
			return f
		}
		local = &a
	}
	return c.doConnect(remote, local)
}

// Disconnect is the public entry point for doDisconnect.
func (c *Channel) Disconnect() *Future {
	return c.doDisconnect()
}

// Close is the public entry point for doClose.
func (c *Channel) Close() *Future {
	return c.doClose()
}

// Write sends a single message through a one-shot doWriteMessages: one
// wait of up to SO_TIMEOUT for write-readiness, then at most one send. It
// does not go through the I/O pump's source. If the socket does not become
// write-ready within that wait, the future completes with 0 and msg is not
// sent.
func (c *Channel) Write(msg SctpMessage) *Future {
	delivered := false
	return c.doWriteMessages(func() (SctpMessage, bool) {
		if delivered {
			return SctpMessage{}, false
		}
		delivered = true
		return msg, true
	})
}

// StartReadLoop begins the self-resubmitting read-only tick for a connected
// channel, delivering messages to sink; it never attempts a write.
func (c *Channel) StartReadLoop(sink func(SctpMessage)) {
	_ = c.loop.Submit(func() { c.ioLoopTick(sink, func() (SctpMessage, bool) { return SctpMessage{}, false }) })
}
