package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inserrors "github.com/wagiedev/nmz-inspector-go/internal/errors"
	"github.com/wagiedev/nmz-inspector-go/internal/wire"
)

func newPipeTransport(t *testing.T) (*TCPTransport, net.Conn) {
	t.Helper()

	client, server := net.Pipe()
	tr := NewStreamTransport(slog.Default(), client, "pipe")

	t.Cleanup(func() {
		_ = tr.Close()
		_ = server.Close()
	})

	return tr, server
}

func TestSend_WritesFrame(t *testing.T) {
	tr, server := newPipeTransport(t)

	go func() {
		_ = tr.Send(wire.NewEvent("p", 1, 2, 3, wire.FuncCallEvent("f")))
	}()

	req, err := wire.ReadRequest(server)
	require.NoError(t, err)
	require.Equal(t, int32(3), req.MsgID)
	require.Equal(t, "f", req.Event.FuncName())
}

func TestSend_ConcurrentFramesDoNotInterleave(t *testing.T) {
	tr, server := newPipeTransport(t)

	const senders = 20

	var wg sync.WaitGroup

	for i := range senders {
		wg.Go(func() {
			name := string(rune('a'+i)) + "-function-with-a-longer-name"
			assert.NoError(t, tr.Send(wire.NewEvent("p", 1, 2, int32(i+1), wire.FuncCallEvent(name))))
		})
	}

	seen := make(map[int32]bool, senders)

	for range senders {
		req, err := wire.ReadRequest(server)
		require.NoError(t, err)
		require.Equal(t, wire.RequestEvent, req.Type)
		seen[req.MsgID] = true
	}

	wg.Wait()
	require.Len(t, seen, senders)
}

func TestReceive_Response(t *testing.T) {
	tr, server := newPipeTransport(t)

	go func() {
		_ = wire.WriteResponse(server, wire.Ack(9))
	}()

	rsp, err := tr.Receive()
	require.NoError(t, err)
	require.Equal(t, wire.Ack(9), rsp)
}

func TestReceive_PeerClosed(t *testing.T) {
	tr, server := newPipeTransport(t)
	require.NoError(t, server.Close())

	_, err := tr.Receive()

	ce, ok := errors.AsType[*inserrors.ConnectionError](err)
	require.True(t, ok)
	require.Equal(t, "read", ce.Op)
	require.ErrorIs(t, err, io.EOF)
}

func TestReceive_MalformedBody(t *testing.T) {
	tr, server := newPipeTransport(t)

	go func() {
		_ = wire.WriteFrame(server, []byte{0xff})
	}()

	_, err := tr.Receive()

	_, ok := errors.AsType[*inserrors.ProtocolError](err)
	require.True(t, ok)
	require.ErrorIs(t, err, inserrors.ErrMalformedFrame)
}

func TestSend_AfterClose(t *testing.T) {
	tr, _ := newPipeTransport(t)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	err := tr.Send(wire.NewInitiation("p", 1, 1))
	require.ErrorIs(t, err, inserrors.ErrRuntimeClosed)
}

func TestReceive_AfterClose(t *testing.T) {
	tr, _ := newPipeTransport(t)
	require.NoError(t, tr.Close())

	_, err := tr.Receive()
	require.ErrorIs(t, err, inserrors.ErrRuntimeClosed)
}

func TestDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer ln.Close()

	accepted := make(chan net.Conn, 1)

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tr, err := Dial(ctx, slog.Default(), ln.Addr().String())
	require.NoError(t, err)

	defer tr.Close()

	conn := <-accepted
	defer conn.Close()

	require.Equal(t, ln.Addr().String(), tr.Addr())
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = Dial(context.Background(), slog.Default(), addr)

	ce, ok := errors.AsType[*inserrors.ConnectionError](err)
	require.True(t, ok)
	require.Equal(t, "dial", ce.Op)
}
