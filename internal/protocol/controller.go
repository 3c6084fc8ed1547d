package protocol

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wagiedev/nmz-inspector-go/internal/config"
	inserrors "github.com/wagiedev/nmz-inspector-go/internal/errors"
	"github.com/wagiedev/nmz-inspector-go/internal/metrics"
	"github.com/wagiedev/nmz-inspector-go/internal/waiter"
	"github.com/wagiedev/nmz-inspector-go/internal/wire"
)

// Identity is stamped on every request sent by the controller.
type Identity struct {
	ProcessID string
	PID       int32
}

// Controller correlates event reports with orchestrator decisions.
//
// The Controller handles:
//   - Sending the initiation request and waiting for its ACK
//   - Registering each reporting goroutine's waiter before its request is sent
//   - Reading every response on a single goroutine and waking the matching waiter
//   - Going inactive and releasing all waiters on END or a fatal error
//
// Handshake must succeed and Start must be called before Report is used.
type Controller struct {
	log       *slog.Logger
	transport config.Transport
	identity  Identity
	registry  *Registry
	metrics   *metrics.Metrics
	onFatal   config.FatalHandler

	active  atomic.Bool
	exiting atomic.Bool
	started atomic.Bool

	// Fatal error handling - stores error and broadcasts via done channel
	errMu     sync.RWMutex
	fatalErr  error
	fatalOnce sync.Once

	// Lifecycle management
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewController creates a controller over a connected transport.
//
// onFatal is invoked once, after all waiters have been released, with the
// first fatal error. It must not call Close.
func NewController(
	log *slog.Logger,
	transport config.Transport,
	identity Identity,
	m *metrics.Metrics,
	onFatal config.FatalHandler,
) *Controller {
	if m == nil {
		m = metrics.New(nil)
	}

	return &Controller{
		log:       log.With("component", "protocol", "process_id", identity.ProcessID),
		transport: transport,
		identity:  identity,
		registry:  NewRegistry(),
		metrics:   m,
		onFatal:   onFatal,
		done:      make(chan struct{}),
	}
}

// Handshake sends the initiation request with msg_id 0 and blocks for the
// reply. It runs before the dispatcher exists, so it reads the transport
// directly. Any reply other than ACK is a HandshakeError.
func (c *Controller) Handshake() error {
	req := wire.NewInitiation(c.identity.ProcessID, c.identity.PID, int32(waiter.Gettid()))

	c.log.Debug("Sending initiation", "pid", req.PID, "tid", req.TID)

	if err := c.transport.Send(req); err != nil {
		return &inserrors.HandshakeError{ProcessID: c.identity.ProcessID, Err: err}
	}

	rsp, err := c.transport.Receive()
	if err != nil {
		return &inserrors.HandshakeError{ProcessID: c.identity.ProcessID, Err: err}
	}

	if rsp.Result != wire.ResultAck {
		c.log.Error("Initiation rejected", "result", rsp.Result.String())

		return &inserrors.HandshakeError{ProcessID: c.identity.ProcessID, Result: int32(rsp.Result)}
	}

	c.active.Store(true)
	c.log.Info("Initiation succeeded")

	return nil
}

// Start launches the dispatcher goroutine. Calls after the first are ignored.
func (c *Controller) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}

	c.wg.Go(c.readLoop)

	c.log.Debug("Dispatcher started")
}

// Active reports whether events are still being reported.
func (c *Controller) Active() bool {
	return c.active.Load()
}

// Pending returns the number of goroutines waiting for a decision.
func (c *Controller) Pending() int {
	return c.registry.Len()
}

// Done returns a channel that is closed when the dispatcher stops, whether on
// END, a fatal error, or Close.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// FatalError returns the fatal error if one occurred.
func (c *Controller) FatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

// SetFatalError stores a fatal error, releases every waiter and invokes the
// fatal handler. Only the first error is kept and reported.
func (c *Controller) SetFatalError(err error) {
	c.errMu.Lock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}

	c.errMu.Unlock()

	c.metrics.FatalErrors.WithLabelValues(errorClass(err)).Inc()
	c.log.Error("Fatal inspection error", "error", err)

	c.finish()

	c.fatalOnce.Do(func() {
		if c.onFatal != nil {
			c.onFatal(err)
		}
	})
}

// Report sends ev on behalf of the goroutine owning w and blocks until the
// orchestrator ACKs it or ends inspection.
//
// It returns nil immediately when inspection is inactive. Any other failure
// is fatal and is also returned.
func (c *Controller) Report(ev *wire.Event, w *waiter.Waiter) error {
	err := c.emit(ev, w, 0)
	if err == nil || errors.Is(err, inserrors.ErrRuntimeInactive) {
		return nil
	}

	c.SetFatalError(err)

	return err
}

// Exit sends the EXIT event. Failures are returned but never fatal, and from
// this point on the connection closing is treated as a normal shutdown.
// A positive timeout bounds the wait for a decision.
func (c *Controller) Exit(ev *wire.Event, w *waiter.Waiter, timeout time.Duration) error {
	c.exiting.Store(true)

	return c.emit(ev, w, timeout)
}

func (c *Controller) emit(ev *wire.Event, w *waiter.Waiter, timeout time.Duration) error {
	if !c.active.Load() {
		return inserrors.ErrRuntimeInactive
	}

	msgID := c.registry.NextMsgID()
	w.Arm(msgID)

	// Register before sending: the ACK can be dispatched before Send returns.
	if err := c.registry.Register(w); err != nil {
		return err
	}

	kind := ev.Type.String()
	req := wire.NewEvent(c.identity.ProcessID, c.identity.PID, int32(waiter.Gettid()), msgID, ev)

	c.metrics.Pending.Inc()
	defer c.metrics.Pending.Dec()

	if err := c.transport.Send(req); err != nil {
		c.registry.Resolve(msgID)
		c.log.Error("Failed to send event", "msg_id", msgID, "kind", kind, "error", err)

		return err
	}

	c.metrics.EventsSent.WithLabelValues(kind).Inc()
	c.log.Debug("Waiting for decision", "msg_id", msgID, "kind", kind, "func", ev.FuncName(), "tid", req.TID)

	start := time.Now()

	if !w.WaitTimeout(timeout) {
		c.log.Warn("No decision before timeout", "msg_id", msgID, "kind", kind, "timeout", timeout)

		return fmt.Errorf("%w: msg_id %d after %s", inserrors.ErrWaitTimeout, msgID, timeout)
	}

	c.metrics.ObserveWait(start)

	return nil
}

// readLoop is the only reader of the transport.
func (c *Controller) readLoop() {
	defer c.log.Debug("Dispatcher stopped")

	for {
		rsp, err := c.transport.Receive()
		if err != nil {
			if c.exiting.Load() || errors.Is(err, inserrors.ErrRuntimeClosed) {
				c.log.Debug("Connection closed during shutdown", "error", err)
				c.finish()

				return
			}

			c.SetFatalError(err)

			return
		}

		c.metrics.Responses.WithLabelValues(rsp.Result.String()).Inc()

		switch rsp.Result {
		case wire.ResultEnd:
			c.log.Info("Inspection ended by orchestrator")
			c.finish()

			return

		case wire.ResultAck:
			w := c.registry.Resolve(rsp.MsgID)
			if w == nil {
				c.SetFatalError(&inserrors.ProtocolError{
					MsgID:  rsp.MsgID,
					Result: int32(rsp.Result),
					Err:    inserrors.ErrUnknownMsgID,
				})

				return
			}

			c.log.Debug("Decision received", "msg_id", rsp.MsgID, "goid", w.GoID)
			w.Signal()

		default:
			c.SetFatalError(&inserrors.ProtocolError{
				MsgID:  rsp.MsgID,
				Result: int32(rsp.Result),
				Err:    inserrors.ErrUnexpectedResult,
			})

			return
		}
	}
}

// finish moves to the terminal state: inactive, every waiter released, done
// closed. It is idempotent.
func (c *Controller) finish() {
	c.active.Store(false)

	drained := c.registry.DrainAll()
	for _, w := range drained {
		w.Signal()
	}

	if len(drained) > 0 {
		c.log.Info("Released waiting goroutines", "count", len(drained))
	}

	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Close stops the dispatcher and closes the transport. Blocked reporters are
// released. It's safe to call Close multiple times.
func (c *Controller) Close() error {
	c.exiting.Store(true)

	err := c.transport.Close()

	if c.started.Load() {
		c.wg.Wait()
	}

	c.finish()

	return err
}

func errorClass(err error) string {
	if _, ok := errors.AsType[*inserrors.ProtocolError](err); ok {
		return "protocol"
	}

	if _, ok := errors.AsType[*inserrors.ConnectionError](err); ok {
		return "connection"
	}

	return "internal"
}
