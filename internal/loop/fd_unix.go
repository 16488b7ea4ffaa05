//go:build linux || darwin

package loop

import "golang.org/x/sys/unix"

func closeFD(fd int) error {
	return unix.Close(fd)
}
