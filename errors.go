package sctp

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by channel and configuration operations. Each
// wraps its underlying cause (typically a unix.Errno from internal/rawsctp)
// via %w, so errors.Is/errors.As match against both the sentinel and the
// original kernel error.
var (
	ErrClosedChannel        = errors.New("sctp: use of closed channel")
	ErrBindFailed           = errors.New("sctp: bind failed")
	ErrConnectFailed        = errors.New("sctp: connect failed")
	ErrWriteFailed          = errors.New("sctp: short or failed send")
	ErrReadFailed           = errors.New("sctp: read failed")
	ErrTimeout              = errors.New("sctp: operation timed out")
	ErrUnknownOption        = errors.New("sctp: unknown option")
	ErrInvalidOption        = errors.New("sctp: invalid option value")
	ErrConfigIO             = errors.New("sctp: option I/O failed")
	ErrUnsupportedOperation = errors.New("sctp: unsupported operation")
	ErrMissingFlushOverride = errors.New("sctp: handler must override flush")
)

// WrapError attaches a sentinel to an underlying cause, preserving the
// cause for errors.Is/errors.As while presenting a stable, documented
// message for the sentinel itself.
func WrapError(sentinel error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// OpError decorates a sentinel/cause pair with the channel operation and
// local/remote endpoints it occurred against, matching the detail the
// kernel socket adapter has available at the point of failure.
type OpError struct {
	Op     string
	Local  fmt.Stringer
	Remote fmt.Stringer
	Err    error
}

func (e *OpError) Error() string {
	switch {
	case e.Local != nil && e.Remote != nil:
		return fmt.Sprintf("sctp: %s %s->%s: %v", e.Op, e.Local, e.Remote, e.Err)
	case e.Local != nil:
		return fmt.Sprintf("sctp: %s %s: %v", e.Op, e.Local, e.Err)
	default:
		return fmt.Sprintf("sctp: %s: %v", e.Op, e.Err)
	}
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// wrapOpError builds the sentinel/OpError pair doBind/doConnect/read/write
// failure paths return, so errors.Is still matches sentinel while
// errors.As(&OpError{}) recovers the op/local/remote detail. Returns nil
// when cause is nil.
func wrapOpError(sentinel error, op string, local, remote fmt.Stringer, cause error) error {
	if cause == nil {
		return nil
	}
	return WrapError(sentinel, &OpError{Op: op, Local: local, Remote: remote, Err: cause})
}
