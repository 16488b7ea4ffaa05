// Package loop provides a minimal single-goroutine task executor: the
// "owner event loop" an sctp channel pins itself to for its lifetime.
// Submit enqueues a task for later execution on the loop goroutine;
// Execute does the same but blocks until the task has run. A task already
// running on the loop goroutine that calls Submit or Execute runs the new
// task inline instead of re-entering the queue, so Execute never waits on
// itself; Submit called on the loop goroutine therefore never places a
// task at the tail of the queue.
//
// This is intentionally a reference implementation, not a general-purpose
// scheduler: no timers, no microtasks, no per-fd I/O registration. Socket
// readiness is the channel's concern (internal/netpoll); all this package
// owns is "one goroutine, one FIFO queue, one way to wake it up."
package loop
