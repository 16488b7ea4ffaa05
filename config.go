package sctp

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// OptionKey names a recognized ChannelConfig option.
type OptionKey string

const (
	OptSoRcvbuf            OptionKey = "SO_RCVBUF"
	OptSoReuseaddr         OptionKey = "SO_REUSEADDR"
	OptSoSndbuf            OptionKey = "SO_SNDBUF"
	OptSctpNodelay         OptionKey = "SCTP_NODELAY"
	OptSctpInitMaxstreams  OptionKey = "SCTP_INIT_MAXSTREAMS"
	OptSctpPrimaryAddr     OptionKey = "SCTP_PRIMARY_ADDR"
	OptSoLinger            OptionKey = "SO_LINGER"
	OptConnectTimeoutMs    OptionKey = "connectTimeoutMs"
	OptWriteSpinCount      OptionKey = "writeSpinCount"
	OptAllocator           OptionKey = "allocator"
	// OptSoBacklog is recognized only by ServerChannelConfig.
	OptSoBacklog OptionKey = "SO_BACKLOG"
)

// defaultChannelOptions holds the documented defaults for every recognized
// option, used whenever a key has neither a pending nor a kernel-committed
// value. Read-only after init; ServerChannelConfig layers SO_BACKLOG's
// default on top via its own per-instance defaults map rather than
// mutating this one.
var defaultChannelOptions = map[OptionKey]any{
	OptSoRcvbuf:           32768,
	OptSoReuseaddr:        false,
	OptSoSndbuf:           32768,
	OptSctpNodelay:        false,
	OptSctpInitMaxstreams: uint16(10),
	OptSctpPrimaryAddr:    "",
	OptSoLinger:           0,
	OptConnectTimeoutMs:   5000,
	OptWriteSpinCount:     1,
	OptAllocator:          "",
}

// defaultSoBacklog is the documented default for SO_BACKLOG, standing in
// for the system SOMAXCONN value spec.md §6 references.
const defaultSoBacklog = 128

// kernelOptions is the subset of internal/rawsctp.Socket's surface
// ChannelConfig needs to drain pending options into, kept as a local
// interface so this package does not import the socket adapter directly.
type kernelOptions interface {
	SetOption(key string, value any) error
	GetOption(key string) (any, error)
}

// ChannelConfig is a typed option map with deferred application: options
// set before a socket exists are cached in a pending map, then flushed
// exactly once into the kernel when assign is called. After assign, every
// further setOption writes straight through to the kernel.
type ChannelConfig struct {
	mu       sync.Mutex
	pending  map[OptionKey]any
	socket   atomic.Pointer[kernelOptions]
	known    map[OptionKey]struct{}
	defaults map[OptionKey]any
}

// NewChannelConfig returns a config with no pending values and no socket
// assigned yet.
func NewChannelConfig() *ChannelConfig {
	return &ChannelConfig{
		pending:  make(map[OptionKey]any),
		known:    defaultKnownOptions(),
		defaults: defaultChannelOptions,
	}
}

func defaultKnownOptions() map[OptionKey]struct{} {
	m := make(map[OptionKey]struct{}, len(defaultChannelOptions))
	for k := range defaultChannelOptions {
		m[k] = struct{}{}
	}
	return m
}

// validateOption applies the per-key validation spec.md §4.C requires.
// Returns ErrInvalidOption wrapping a description of the violated
// constraint on failure.
func validateOption(key OptionKey, value any) error {
	switch key {
	case OptSoBacklog:
		n, ok := value.(int)
		if !ok || n < 0 {
			return WrapError(ErrInvalidOption, fmt.Errorf("%s must be a non-negative int, got %v", key, value))
		}
	case OptSoRcvbuf, OptSoSndbuf:
		n, ok := value.(int)
		if !ok || n <= 0 {
			return WrapError(ErrInvalidOption, fmt.Errorf("%s must be a positive int, got %v", key, value))
		}
	case OptConnectTimeoutMs:
		n, ok := value.(int)
		if !ok || n < 0 {
			return WrapError(ErrInvalidOption, fmt.Errorf("%s must be a non-negative int, got %v", key, value))
		}
	case OptWriteSpinCount:
		n, ok := value.(int)
		if !ok || n < 0 {
			return WrapError(ErrInvalidOption, fmt.Errorf("%s must be a non-negative int, got %v", key, value))
		}
	case OptSoReuseaddr, OptSctpNodelay:
		if _, ok := value.(bool); !ok {
			return WrapError(ErrInvalidOption, fmt.Errorf("%s must be a bool, got %v", key, value))
		}
	}
	return nil
}

// isKnown reports whether key is recognized by this config.
// NewServerChannelConfig widens the known set by adding SO_BACKLOG to known.
func (c *ChannelConfig) isKnown(key OptionKey) bool {
	_, ok := c.known[key]
	return ok
}

// getOption returns the current value for key: the pending value if set,
// else the kernel-reported value if a socket is assigned, else the
// documented default. Fails with ErrUnknownOption for an unrecognized key.
func (c *ChannelConfig) getOption(key OptionKey) (any, error) {
	if !c.isKnown(key) {
		return nil, WrapError(ErrUnknownOption, fmt.Errorf("%s", key))
	}
	c.mu.Lock()
	if v, ok := c.pending[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()
	if s := c.socket.Load(); s != nil {
		if v, err := (*s).GetOption(string(key)); err == nil {
			return v, nil
		}
	}
	return c.defaults[key], nil
}

// getOptions returns a snapshot of every known option's current value.
func (c *ChannelConfig) getOptions() map[OptionKey]any {
	out := make(map[OptionKey]any, len(c.known))
	for k := range c.known {
		v, _ := c.getOption(k)
		out[k] = v
	}
	return out
}

// setOption validates value for key, then either caches it in the pending
// map (socket not yet assigned) or writes it straight through to the
// kernel (socket assigned), per spec.md §4.C / §9's Pending->Applied model.
func (c *ChannelConfig) setOption(key OptionKey, value any) error {
	if !c.isKnown(key) {
		return WrapError(ErrUnknownOption, fmt.Errorf("%s", key))
	}
	if err := validateOption(key, value); err != nil {
		return err
	}
	if s := c.socket.Load(); s != nil {
		if err := (*s).SetOption(string(key), value); err != nil {
			return WrapError(ErrConfigIO, err)
		}
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// re-check under lock: assign may have raced us onto the kernel path
	if s := c.socket.Load(); s != nil {
		if err := (*s).SetOption(string(key), value); err != nil {
			return WrapError(ErrConfigIO, err)
		}
		return nil
	}
	c.pending[key] = value
	return nil
}

// GetOption is the public accessor for getOption.
func (c *ChannelConfig) GetOption(key OptionKey) (any, error) {
	return c.getOption(key)
}

// GetOptions is the public accessor for getOptions.
func (c *ChannelConfig) GetOptions() map[OptionKey]any {
	return c.getOptions()
}

// SetOption is the public accessor for setOption.
func (c *ChannelConfig) SetOption(key OptionKey, value any) error {
	return c.setOption(key, value)
}

// assign is the exactly-once Pending(map) -> Applied transition: it
// publishes socket, then drains the pending map into kernel setOption
// calls. Concurrent assign calls are safe; only the first drains, the rest
// are no-ops, matching the CAS-handoff spec.md §5 and §9 require.
func (c *ChannelConfig) assign(socket kernelOptions) error {
	if !c.socket.CompareAndSwap(nil, &socket) {
		return nil
	}
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	var firstErr error
	for k, v := range pending {
		if err := socket.SetOption(string(k), v); err != nil && firstErr == nil {
			firstErr = WrapError(ErrConfigIO, err)
		}
	}
	return firstErr
}
