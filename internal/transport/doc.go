// Package transport provides the TCP transport between the runtime and the
// orchestrator (or its local relay).
//
// This package implements the config.Transport interface over a single
// duplex stream. Writes are serialized by a lock held across "encode + write
// frame" so frames from different goroutines never interleave; reads are
// expected from exactly one goroutine.
package transport
