//go:build linux

package loop

import "golang.org/x/sys/unix"

// createWakeFd opens a blocking eventfd used to park the loop goroutine
// between batches: Submit/Execute bump its counter to interrupt the wait.
func createWakeFd() (int, error) {
	return unix.Eventfd(0, unix.EFD_CLOEXEC)
}

// signalWakeFd bumps the eventfd counter by one, waking anyone blocked on
// a read of it. Multiple signals before the next read coalesce into a
// single wake-up, which is fine here: the thing being waited for is "is
// there more work", not "how many times was I asked."
func signalWakeFd(fd int) {
	var buf [8]byte
	buf[7] = 1
	_, _ = unix.Write(fd, buf[:])
}

// blockingReadWake blocks until the eventfd counter is non-zero, then
// resets it to zero.
func blockingReadWake(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}
