//go:build !linux

package waiter

import "os"

// Gettid falls back to the process ID where thread IDs are not exposed.
func Gettid() int {
	return os.Getpid()
}
