package peer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/nmz-inspector-go/internal/transport"
	"github.com/wagiedev/nmz-inspector-go/internal/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func listen(t *testing.T) *Listener {
	t.Helper()

	ln, err := Listen(discardLogger(), "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = ln.Close() })

	return ln
}

func TestConn_HandshakeAndAck(t *testing.T) {
	ln := listen(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accepted := make(chan *Conn, 1)
	acceptErr := make(chan error, 1)

	go func() {
		conn, err := ln.Accept(ctx)
		acceptErr <- err
		accepted <- conn
	}()

	tr, err := transport.Dial(ctx, discardLogger(), ln.Addr())
	require.NoError(t, err)

	defer func() { _ = tr.Close() }()

	require.NoError(t, <-acceptErr)

	conn := <-accepted
	defer func() { _ = conn.Close() }()

	require.NoError(t, tr.Send(wire.NewInitiation("p1", 10, 11)))

	req, err := conn.Handshake()
	require.NoError(t, err)
	require.Equal(t, int32(10), req.PID)
	require.Equal(t, "p1", conn.ProcessID())

	rsp, err := tr.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.ResultAck, rsp.Result)
	require.Equal(t, int32(0), rsp.MsgID)

	require.NoError(t, tr.Send(wire.NewEvent("p1", 10, 11, 1, wire.FuncCallEvent("foo"))))

	req, err = conn.Recv()
	require.NoError(t, err)
	require.Equal(t, "foo", req.Event.FuncName())
	require.NoError(t, conn.Ack(req.MsgID))

	rsp, err = tr.Receive()
	require.NoError(t, err)
	require.Equal(t, int32(1), rsp.MsgID)

	require.NoError(t, conn.End())

	rsp, err = tr.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.ResultEnd, rsp.Result)
	require.False(t, rsp.HasMsgID)

	require.NoError(t, tr.Close())

	_, err = conn.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestConn_HandshakeRejectsEvent(t *testing.T) {
	ln := listen(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accepted := make(chan *Conn, 1)

	go func() {
		conn, _ := ln.Accept(ctx)
		accepted <- conn
	}()

	tr, err := transport.Dial(ctx, discardLogger(), ln.Addr())
	require.NoError(t, err)

	defer func() { _ = tr.Close() }()

	conn := <-accepted
	require.NotNil(t, conn)

	defer func() { _ = conn.Close() }()

	require.NoError(t, tr.Send(wire.NewEvent("p1", 1, 1, 5, wire.FuncCallEvent("foo"))))

	_, err = conn.Handshake()
	require.ErrorIs(t, err, ErrNotInitiation)
}

// End may run on another goroutine while the handshake is still in progress.
func TestConn_EndDuringHandshake(t *testing.T) {
	ln := listen(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	accepted := make(chan *Conn, 1)

	go func() {
		conn, _ := ln.Accept(ctx)
		accepted <- conn
	}()

	tr, err := transport.Dial(ctx, discardLogger(), ln.Addr())
	require.NoError(t, err)

	defer func() { _ = tr.Close() }()

	conn := <-accepted
	require.NotNil(t, conn)

	defer func() { _ = conn.Close() }()

	ended := make(chan error, 1)

	go func() {
		ended <- conn.End()
	}()

	require.NoError(t, tr.Send(wire.NewInitiation("p1", 1, 1)))

	_, err = conn.Handshake()
	require.NoError(t, err)
	require.NoError(t, <-ended)

	results := make([]wire.Result, 0, 2)

	for range 2 {
		rsp, err := tr.Receive()
		require.NoError(t, err)

		results = append(results, rsp.Result)
	}

	require.ElementsMatch(t, []wire.Result{wire.ResultAck, wire.ResultEnd}, results)
}

func TestListener_AcceptHonorsContext(t *testing.T) {
	ln := listen(t)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)

	go func() {
		_, err := ln.Accept(ctx)
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not return after cancel")
	}
}
