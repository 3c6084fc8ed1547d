package config

import "github.com/wagiedev/nmz-inspector-go/internal/wire"

// Transport is the duplex channel to the orchestrator.
//
// The default implementation is transport.TCPTransport. Custom transports can
// be injected via Options.Transport for testing.
type Transport interface {
	// Send frames and writes one request.
	// This method must be safe for concurrent use; frames are never interleaved.
	Send(req *wire.Request) error

	// Receive reads one response. Only one goroutine calls Receive.
	Receive() (*wire.Response, error)

	// Close releases the connection. It's safe to call Close multiple times.
	Close() error

	// Addr describes the remote end for diagnostics.
	Addr() string
}
