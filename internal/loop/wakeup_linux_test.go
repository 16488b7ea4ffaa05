//go:build linux

package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWakeFd_SignalUnblocksRead(t *testing.T) {
	fd, err := createWakeFd()
	require.NoError(t, err)
	defer closeFD(fd)

	done := make(chan struct{})
	go func() {
		blockingReadWake(fd)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("blockingReadWake returned before any signal")
	default:
	}

	signalWakeFd(fd)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("blockingReadWake never unblocked after signal")
	}
}

func TestWakeFd_CoalescesMultipleSignals(t *testing.T) {
	fd, err := createWakeFd()
	require.NoError(t, err)
	defer closeFD(fd)

	signalWakeFd(fd)
	signalWakeFd(fd)
	signalWakeFd(fd)

	// A single read must drain the accumulated counter in one call,
	// regardless of how many times signalWakeFd was called before it.
	done := make(chan struct{})
	go func() {
		blockingReadWake(fd)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("blockingReadWake never returned")
	}
}
