package loop

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Task is a unit of work queued on a Loop.
type Task func()

// Loop is a single-goroutine task executor. Submit/Execute enqueue work;
// Run drains the queue on the calling goroutine until Shutdown is called.
//
// The queue itself is the "goja-style" double-buffer: producers append to
// jobs under a mutex, and each tick swaps jobs with a spare slice and
// drains the swapped-out batch without the lock held, so a long-running
// task never blocks a concurrent Submit. This is the same shape the
// owner-loop reference it's adapted from uses for its auxiliary job queue,
// without that implementation's timer heap, microtask ring, or promise
// registry — none of which this domain's channel needs.
type Loop struct {
	state   fastState
	goID    atomic.Uint64 // goroutine id of the running loop, 0 if not running
	wakeFD  int

	mu        sync.Mutex
	jobs      []Task
	jobsSpare []Task

	done chan struct{}
}

// New creates an unstarted Loop.
func New() (*Loop, error) {
	fd, err := createWakeFd()
	if err != nil {
		return nil, err
	}
	return &Loop{
		wakeFD: fd,
		done:   make(chan struct{}),
	}, nil
}

// Run drains tasks on the calling goroutine until Shutdown is called.
// Only one Run may be active at a time.
func (l *Loop) Run() error {
	if !l.state.TryTransition(stateIdle, stateRunning) {
		return ErrAlreadyRunning
	}
	l.goID.Store(goroutineID())
	defer l.goID.Store(0)

	for {
		l.runBatch()
		if l.state.IsClosed() {
			l.runBatch() // final drain: pick up anything queued during shutdown
			close(l.done)
			return nil
		}
		l.waitForWork()
	}
}

func (l *Loop) runBatch() {
	l.mu.Lock()
	l.jobs, l.jobsSpare = l.jobsSpare, l.jobs
	batch := l.jobsSpare
	l.mu.Unlock()

	for _, t := range batch {
		t()
	}
	for i := range batch {
		batch[i] = nil
	}
	l.jobsSpare = batch[:0]
}

func (l *Loop) waitForWork() {
	l.mu.Lock()
	empty := len(l.jobs) == 0
	l.mu.Unlock()
	if empty && !l.state.IsClosed() {
		blockingReadWake(l.wakeFD)
	}
}

// InEventLoop reports whether the calling goroutine is the one currently
// executing Run.
func (l *Loop) InEventLoop() bool {
	id := l.goID.Load()
	return id != 0 && id == goroutineID()
}

// goroutineID parses the numeric id out of the calling goroutine's own
// stack trace header ("goroutine NNN [running]: ..."). Go exposes no
// public goroutine-local storage, so this is the only portable way to
// answer "am I the same goroutine as last time" without threading an
// explicit token through every call site.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// Submit enqueues task to run on the loop goroutine. If called from the
// loop goroutine itself, task runs inline instead of being queued, so it
// runs before any task already waiting in the queue.
func (l *Loop) Submit(task Task) error {
	if l.InEventLoop() {
		task()
		return nil
	}
	return l.enqueue(task)
}

// Execute enqueues task and blocks until it has run, returning after the
// task completes. If called from the loop goroutine, runs inline.
func (l *Loop) Execute(task Task) error {
	if l.InEventLoop() {
		task()
		return nil
	}
	done := make(chan struct{})
	err := l.enqueue(func() {
		defer close(done)
		task()
	})
	if err != nil {
		return err
	}
	<-done
	return nil
}

func (l *Loop) enqueue(task Task) error {
	if l.state.IsClosed() {
		return ErrClosed
	}
	l.mu.Lock()
	if l.state.IsClosed() {
		l.mu.Unlock()
		return ErrClosed
	}
	l.jobs = append(l.jobs, task)
	l.mu.Unlock()
	signalWakeFd(l.wakeFD)
	return nil
}

// Shutdown requests the loop stop after draining currently-queued tasks.
// It does not block; callers that need to know Run has returned should
// wait on Close's return or a side channel of their own.
func (l *Loop) Shutdown() {
	l.state.Store(stateClosed)
	signalWakeFd(l.wakeFD)
}

// Close requests shutdown and blocks until Run has returned, then closes
// the wake descriptor.
func (l *Loop) Close() error {
	l.Shutdown()
	<-l.done
	return closeFD(l.wakeFD)
}
