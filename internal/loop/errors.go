package loop

import "errors"

var (
	// ErrClosed is returned by Submit/Execute once the loop has begun
	// shutting down; no further tasks are accepted.
	ErrClosed = errors.New("loop: closed")
	// ErrAlreadyRunning is returned by Run if called a second time.
	ErrAlreadyRunning = errors.New("loop: already running")
)
