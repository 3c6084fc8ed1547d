package peer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/wagiedev/nmz-inspector-go/internal/wire"
)

// ErrNotInitiation is returned by Handshake when the first request is not an
// initiation with msg_id 0.
var ErrNotInitiation = errors.New("first request is not an initiation")

// Listener accepts runtime connections.
type Listener struct {
	log *slog.Logger
	ln  net.Listener
}

// Listen opens a TCP listener on addr. Use "127.0.0.1:0" for an ephemeral port.
func Listen(log *slog.Logger, addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	log = log.With("component", "peer", "listen", ln.Addr().String())
	log.Debug("Listening for runtimes")

	return &Listener{log: log, ln: ln}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Accept waits for the next connection or for ctx to be done.
func (l *Listener) Accept(ctx context.Context) (*Conn, error) {
	if tl, ok := l.ln.(*net.TCPListener); ok {
		stop := context.AfterFunc(ctx, func() {
			_ = tl.SetDeadline(time.Unix(1, 0))
		})
		defer stop()
	}

	conn, err := l.ln.Accept()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		return nil, fmt.Errorf("accept: %w", err)
	}

	l.log.Debug("Accepted runtime", "remote", conn.RemoteAddr().String())

	return newConn(l.log, conn), nil
}

// Close stops accepting connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// Conn is one runtime connection.
//
// Recv must be called from a single goroutine; Ack and End are safe for
// concurrent use.
type Conn struct {
	log  *slog.Logger
	conn net.Conn

	mu        sync.Mutex // Protects writes, processID and log
	processID string
}

func newConn(log *slog.Logger, conn net.Conn) *Conn {
	return &Conn{
		log:  log.With("remote", conn.RemoteAddr().String()),
		conn: conn,
	}
}

// ProcessID returns the id announced in the handshake.
func (c *Conn) ProcessID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.processID
}

// RemoteAddr returns the runtime's address.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Handshake reads the initiation request and ACKs it.
func (c *Conn) Handshake() (*wire.Request, error) {
	req, err := c.Recv()
	if err != nil {
		return nil, err
	}

	if req.Type != wire.RequestInitiation || req.MsgID != 0 {
		return req, fmt.Errorf("%w: type=%s msg_id=%d", ErrNotInitiation, req.Type, req.MsgID)
	}

	c.mu.Lock()
	c.processID = req.ProcessID
	c.log = c.log.With("process_id", req.ProcessID)
	c.mu.Unlock()

	c.logger().Info("Runtime initiated", "pid", req.PID)

	return req, c.Ack(0)
}

// Recv reads the next request. It returns io.EOF when the runtime closes the
// connection between frames.
func (c *Conn) Recv() (*wire.Request, error) {
	req, err := wire.ReadRequest(c.conn)
	if err != nil {
		return nil, err
	}

	c.logger().Debug("Received request",
		"type", req.Type.String(),
		"msg_id", req.MsgID,
		"tid", req.TID,
		"func", req.Event.FuncName(),
	)

	return req, nil
}

// Ack lets the runtime goroutine waiting on msgID continue.
func (c *Conn) Ack(msgID int32) error {
	return c.send(wire.Ack(msgID))
}

// End ends inspection for the runtime.
func (c *Conn) End() error {
	c.logger().Info("Ending inspection")

	return c.send(wire.End())
}

func (c *Conn) send(rsp *wire.Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := wire.WriteResponse(c.conn, rsp); err != nil {
		return fmt.Errorf("send %s: %w", rsp.Result, err)
	}

	return nil
}

func (c *Conn) logger() *slog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.log
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
