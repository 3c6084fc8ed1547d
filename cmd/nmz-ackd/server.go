package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/nmz-inspector-go/internal/peer"
	"github.com/wagiedev/nmz-inspector-go/internal/wire"
)

// server answers every accepted runtime according to one policy.
type server struct {
	log    *slog.Logger
	ln     *peer.Listener
	policy Policy
}

func newServer(log *slog.Logger, ln *peer.Listener, policy Policy) *server {
	return &server{
		log:    log.With("component", "ackd"),
		ln:     ln,
		policy: policy,
	}
}

// Serve accepts connections until ctx is done. Each connection is handled on
// its own goroutine; Serve returns once all of them have finished.
func (s *server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()

		_ = s.ln.Close()

		return nil
	})

	g.Go(func() error {
		for {
			conn, err := s.ln.Accept(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}

				return err
			}

			g.Go(func() error {
				s.handle(ctx, conn)

				return nil
			})
		}
	})

	return g.Wait()
}

func (s *server) handle(ctx context.Context, conn *peer.Conn) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	defer func() { _ = conn.Close() }()

	log := s.log.With("remote", conn.RemoteAddr())

	initReq, err := conn.Handshake()
	if err != nil {
		log.Error("Handshake failed", "error", err)

		return
	}

	log = log.With("process_id", initReq.ProcessID, "pid", initReq.PID)

	var (
		calls int
		ended bool
	)

	for {
		req, err := conn.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				log.Info("Runtime disconnected", "func_calls", calls)
			} else {
				log.Error("Receive failed", "error", err)
			}

			return
		}

		if req.Type != wire.RequestEvent || req.Event == nil {
			log.Warn("Ignoring unexpected request", "type", req.Type.String(), "msg_id", req.MsgID)

			continue
		}

		switch req.Event.Type {
		case wire.EventExit:
			// Not ACKed: closing the connection releases the runtime.
			log.Info("Process exiting", "msg_id", req.MsgID, "func_calls", calls)

			return

		case wire.EventFuncCall, wire.EventFuncReturn:
			if ended {
				continue
			}

			if req.Event.Type == wire.EventFuncCall {
				calls++
			}

			log.Debug("Function event",
				"kind", req.Event.Type.String(),
				"msg_id", req.MsgID,
				"func", req.Event.FuncName(),
				"tid", req.TID,
			)

			if !sleepCtx(ctx, s.policy.AckDelay) {
				return
			}

			if err := conn.Ack(req.MsgID); err != nil {
				log.Error("Failed to ACK", "msg_id", req.MsgID, "error", err)

				return
			}

			if req.Event.Type == wire.EventFuncCall && s.policy.EndAfter > 0 && calls >= s.policy.EndAfter {
				if err := conn.End(); err != nil {
					log.Error("Failed to send END", "error", err)

					return
				}

				ended = true
			}

		default:
			log.Warn("Ignoring unsupported event", "kind", req.Event.Type.String(), "msg_id", req.MsgID)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
