//go:build linux

package waiter

import "golang.org/x/sys/unix"

// Gettid returns the OS thread ID of the caller.
func Gettid() int {
	return unix.Gettid()
}
