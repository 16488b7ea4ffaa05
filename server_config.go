package sctp

import "fmt"

// ServerChannelConfig is the AIO (completion-based) server variant of
// ChannelConfig: it adds the listen backlog option and explicitly refuses
// setPerformancePreferences, which this implementation does not support.
// Everything else delegates to the shared deferred-option mechanism.
type ServerChannelConfig struct {
	*ChannelConfig
}

// NewServerChannelConfig returns a server config with SO_BACKLOG added to
// the known option set.
func NewServerChannelConfig() *ServerChannelConfig {
	c := &ServerChannelConfig{ChannelConfig: NewChannelConfig()}
	c.known[OptSoBacklog] = struct{}{}
	// Per-instance defaults map: SOMAXCONN stands in as the documented
	// system default; callers needing a specific platform value should
	// setOption explicitly. Copied rather than mutating the shared
	// package-level defaults map other ChannelConfig instances read.
	defaults := make(map[OptionKey]any, len(defaultChannelOptions)+1)
	for k, v := range defaultChannelOptions {
		defaults[k] = v
	}
	defaults[OptSoBacklog] = defaultSoBacklog
	c.defaults = defaults
	return c
}

// SetBacklog validates and sets SO_BACKLOG. Negative values fail with
// ErrInvalidOption per spec.md §8's boundary behavior.
func (c *ServerChannelConfig) SetBacklog(n int) error {
	return c.setOption(OptSoBacklog, n)
}

// SetPerformancePreferences is refused unconditionally: this server
// channel does not implement the tuning knob, matching the
// UnsupportedOperation contract spec.md §4.G and §8 require.
func (c *ServerChannelConfig) SetPerformancePreferences(connectionTime, latency, bandwidth int) error {
	return WrapError(ErrUnsupportedOperation, fmt.Errorf("setPerformancePreferences(%d, %d, %d)", connectionTime, latency, bandwidth))
}
