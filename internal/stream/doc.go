// Package stream provides full-length reads and writes over a blocking duplex
// byte stream.
//
// Transient conditions (interrupted system call, would-block) are retried
// transparently and never surface to callers. Any other error is returned and
// is considered fatal to the connection by the layers above.
package stream
