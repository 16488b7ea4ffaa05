package sctp

import "context"

// Future is a single-settle result cell: exactly one of Complete or Fail is
// ever called, after which Done's channel closes and Result returns the
// settled value/error forever. Unlike the JS-style Promise/A+ chaining the
// owner event loop's sibling package offers, a Future here is awaited at
// most once per call site, so no .Then chaining or waiter registry is
// needed — a channel closed-once is the whole primitive.
type Future struct {
	done   chan struct{}
	value  any
	err    error
}

// NewFuture returns an unsettled Future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Complete settles the future successfully with value. Calling Complete or
// Fail more than once on the same Future is a bug; only the first call has
// any effect.
func (f *Future) Complete(value any) {
	select {
	case <-f.done:
		return
	default:
	}
	f.value = value
	close(f.done)
}

// Fail settles the future with an error.
func (f *Future) Fail(err error) {
	select {
	case <-f.done:
		return
	default:
	}
	f.err = err
	close(f.done)
}

// Done returns a channel closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the future settles or ctx is done, returning the
// settled value/error, or ctx.Err() if ctx completes first.
func (f *Future) Result(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Wait blocks uninterruptibly until the future settles.
func (f *Future) Wait() (any, error) {
	<-f.done
	return f.value, f.err
}
