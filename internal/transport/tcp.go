package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/wagiedev/nmz-inspector-go/internal/config"
	inserrors "github.com/wagiedev/nmz-inspector-go/internal/errors"
	"github.com/wagiedev/nmz-inspector-go/internal/wire"
)

// TCPTransport implements Transport over one stream connection.
type TCPTransport struct {
	log  *slog.Logger
	addr string
	rwc  io.ReadWriteCloser

	mu        sync.Mutex // Protects writes
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Compile-time verification that TCPTransport implements the Transport interface.
var _ config.Transport = (*TCPTransport)(nil)

// Dial connects to addr and returns a ready transport.
//
// Nagle's algorithm is disabled: every request is a small frame the sender
// blocks on, so batching only adds latency.
func Dial(ctx context.Context, log *slog.Logger, addr string) (*TCPTransport, error) {
	log = log.With("component", "transport", "addr", addr)
	log.Debug("Connecting to orchestrator")

	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		log.Error("Failed to connect", "error", err)

		return nil, &inserrors.ConnectionError{Addr: addr, Op: "dial", Err: err}
	}

	if tcp, ok := conn.(*net.TCPConn); ok {
		if err := tcp.SetNoDelay(true); err != nil {
			log.Warn("Failed to set TCP_NODELAY", "error", err)
		}
	}

	log.Info("Connected to orchestrator", "local", conn.LocalAddr().String())

	return &TCPTransport{log: log, addr: addr, rwc: conn}, nil
}

// NewStreamTransport wraps an already connected stream, such as an inherited
// socket or one end of a net.Pipe.
func NewStreamTransport(log *slog.Logger, rwc io.ReadWriteCloser, addr string) *TCPTransport {
	return &TCPTransport{
		log:  log.With("component", "transport", "addr", addr),
		addr: addr,
		rwc:  rwc,
	}
}

// Addr returns the remote address.
func (t *TCPTransport) Addr() string {
	return t.addr
}

// Send writes one framed request.
//
// This method is safe for concurrent use.
func (t *TCPTransport) Send(req *wire.Request) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed.Load() {
		return inserrors.ErrRuntimeClosed
	}

	if err := wire.WriteRequest(t.rwc, req); err != nil {
		if errors.Is(err, inserrors.ErrFrameTooLarge) {
			return &inserrors.ProtocolError{MsgID: req.MsgID, Err: err}
		}

		return &inserrors.ConnectionError{Addr: t.addr, Op: "write", Err: err}
	}

	t.log.Debug("Sent request",
		"type", req.Type.String(),
		"msg_id", req.MsgID,
	)

	return nil
}

// Receive reads one framed response.
//
// Decode failures are reported as ProtocolError, stream failures (including
// the peer closing) as ConnectionError.
func (t *TCPTransport) Receive() (*wire.Response, error) {
	body, err := wire.ReadFrame(t.rwc)
	if err != nil {
		if errors.Is(err, inserrors.ErrFrameTooLarge) {
			return nil, &inserrors.ProtocolError{Err: err}
		}

		if t.closed.Load() {
			return nil, inserrors.ErrRuntimeClosed
		}

		return nil, &inserrors.ConnectionError{Addr: t.addr, Op: "read", Err: err}
	}

	rsp, err := wire.UnmarshalResponse(body)
	if err != nil {
		return nil, &inserrors.ProtocolError{Err: err}
	}

	return rsp, nil
}

// Close closes the connection. It's safe to call Close multiple times.
func (t *TCPTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		t.log.Debug("Closing connection")

		if err := t.rwc.Close(); err != nil {
			t.closeErr = fmt.Errorf("close %s: %w", t.addr, err)
		}
	})

	return t.closeErr
}
