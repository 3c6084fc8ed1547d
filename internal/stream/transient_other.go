//go:build !unix

package stream

import (
	"errors"
	"syscall"
)

// IsTransient reports whether err is an interruption that should be retried.
func IsTransient(err error) bool {
	return errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN)
}
