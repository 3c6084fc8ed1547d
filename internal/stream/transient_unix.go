//go:build unix

package stream

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsTransient reports whether err is an interruption that should be retried.
func IsTransient(err error) bool {
	return errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK)
}
