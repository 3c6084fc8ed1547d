package inspector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/nmz-inspector-go/internal/config"
	"github.com/wagiedev/nmz-inspector-go/internal/metrics"
	"github.com/wagiedev/nmz-inspector-go/internal/protocol"
	"github.com/wagiedev/nmz-inspector-go/internal/transport"
	"github.com/wagiedev/nmz-inspector-go/internal/waiter"
	"github.com/wagiedev/nmz-inspector-go/internal/wire"
)

// EventKind is the kind of event reported by instrumented code.
type EventKind int32

const (
	// EventFuncCall reports that an instrumented function is being called.
	EventFuncCall = EventKind(wire.EventFuncCall)
	// EventFuncReturn reports that an instrumented function has returned.
	EventFuncReturn = EventKind(wire.EventFuncReturn)
	// EventExit reports that the process is terminating.
	EventExit = EventKind(wire.EventExit)
)

func (k EventKind) String() string {
	return wire.EventType(k).String()
}

// Runtime is the inspection runtime of one process.
//
// A Runtime moves from active to inactive exactly once: on END from the
// orchestrator, on a fatal error, on Exit or on Close. A Runtime created with
// inspection disabled starts inactive and never connects. All methods are
// safe for concurrent use.
type Runtime struct {
	log       *slog.Logger
	cfg       *config.Config
	sessionID ulid.ULID

	// ctrl is nil when inspection is disabled.
	ctrl    *protocol.Controller
	waiters *waiter.Pool

	exitOnce sync.Once
	exitErr  error

	disabledDone chan struct{}
}

// New reads the configuration, connects to the orchestrator, performs the
// initiation handshake and starts dispatching responses.
//
// Configuration, connection and handshake failures are returned; callers that
// follow the abort-on-startup-failure model should treat them as fatal.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	options := applyOptions(opts)

	cfg := options.Config
	if cfg == nil {
		var err error

		cfg, err = config.FromEnv()
		if err != nil {
			return nil, err
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sessionID := ulid.Make()
	log := resolveLogger(options.Logger, cfg.LogLevel).With("session", sessionID.String())

	rt := &Runtime{
		log:       log,
		cfg:       cfg,
		sessionID: sessionID,
		waiters:   waiter.NewPool(),
	}

	if cfg.Disabled {
		log.Info("Inspection disabled", "env", config.EnvDisable)

		rt.disabledDone = make(chan struct{})
		close(rt.disabledDone)

		return rt, nil
	}

	log = log.With("process_id", cfg.ProcessID)
	rt.log = log

	tr := options.Transport
	if tr == nil {
		log.Debug("Dialing", "mode", cfg.Mode(), "addr", cfg.Addr())

		tcp, err := transport.Dial(ctx, log, cfg.Addr())
		if err != nil {
			return nil, err
		}

		tr = tcp
	}

	onFatal := options.FatalHandler
	if onFatal == nil {
		onFatal = exitOnFatal(log)
	}

	ctrl := protocol.NewController(
		log,
		tr,
		protocol.Identity{ProcessID: cfg.ProcessID, PID: int32(os.Getpid())},
		metrics.New(options.MetricsRegisterer),
		onFatal,
	)

	if err := ctrl.Handshake(); err != nil {
		_ = tr.Close()

		return nil, err
	}

	ctrl.Start()
	rt.ctrl = ctrl

	return rt, nil
}

// exitOnFatal is the default fatal handler: the process cannot keep running
// outside orchestrator control once the channel is broken.
func exitOnFatal(log *slog.Logger) FatalHandler {
	return func(err error) {
		log.Error("Aborting process", "error", err)
		fmt.Fprintf(os.Stderr, "nmz-inspector: fatal: %v\n", err)
		os.Exit(1)
	}
}

// ProcessID returns the logical process identifier sent with every request.
func (r *Runtime) ProcessID() string {
	return r.cfg.ProcessID
}

// SessionID identifies this runtime instance in logs.
func (r *Runtime) SessionID() string {
	return r.sessionID.String()
}

// Active reports whether event reports are still sent to the orchestrator.
func (r *Runtime) Active() bool {
	return r.ctrl != nil && r.ctrl.Active()
}

// Done returns a channel that is closed once the runtime is inactive for
// good: END received, fatal error, Exit or Close. It is already closed when
// inspection is disabled.
func (r *Runtime) Done() <-chan struct{} {
	if r.ctrl == nil {
		return r.disabledDone
	}

	return r.ctrl.Done()
}

// Err returns the fatal error that ended inspection, if any.
func (r *Runtime) Err() error {
	if r.ctrl == nil {
		return nil
	}

	return r.ctrl.FatalError()
}

// ReportEvent reports an event on behalf of the calling goroutine and blocks
// until the orchestrator ACKs it or ends inspection.
//
// It returns immediately when the runtime is inactive. EventExit is handled
// by Exit.
//
// The first report from a goroutine allocates its wait handle, which is kept
// until ForgetGoroutine is called from that goroutine. Goroutine ids are never
// reused, so instrumentation that reports from many short-lived goroutines
// must call ForgetGoroutine before each exits or the handles accumulate.
func (r *Runtime) ReportEvent(kind EventKind, name string) {
	var ev *wire.Event

	switch kind {
	case EventFuncCall:
		ev = wire.FuncCallEvent(name)

	case EventFuncReturn:
		ev = wire.FuncReturnEvent(name)

	case EventExit:
		_ = r.Exit()

		return

	default:
		r.log.Warn("Ignoring unsupported event kind", "kind", kind.String(), "func", name)

		return
	}

	if !r.Active() {
		return
	}

	// Failures are fatal and already routed to the fatal handler.
	_ = r.ctrl.Report(ev, r.waiters.Current())
}

// FuncCall reports that the instrumented function name is being called.
// Like ReportEvent, it keeps a wait handle per calling goroutine; see
// ForgetGoroutine.
func (r *Runtime) FuncCall(name string) {
	r.ReportEvent(EventFuncCall, name)
}

// FuncReturn reports that the instrumented function name has returned.
// Like ReportEvent, it keeps a wait handle per calling goroutine; see
// ForgetGoroutine.
func (r *Runtime) FuncReturn(name string) {
	r.ReportEvent(EventFuncReturn, name)
}

// Exit reports process termination with exit code 0. See ExitWithCode.
func (r *Runtime) Exit() error {
	return r.ExitWithCode(0)
}

// ExitWithCode reports process termination and closes the connection.
//
// The EXIT event waits for a decision like any other event; END or the
// orchestrator closing the connection also release it, and a positive
// Config.ExitTimeout bounds the wait. Failures are returned but never fatal.
// Only the first call has any effect.
func (r *Runtime) ExitWithCode(code int) error {
	r.exitOnce.Do(func() {
		r.exitErr = r.exit(int32(code))
	})

	return r.exitErr
}

func (r *Runtime) exit(code int32) error {
	if r.ctrl == nil {
		return nil
	}

	r.log.Info("Process exiting", "exit_code", code)

	err := r.ctrl.Exit(wire.ExitEvent(code), r.waiters.Current(), r.cfg.ExitTimeout)
	if errors.Is(err, ErrRuntimeInactive) {
		err = nil
	}

	if err != nil {
		r.log.Warn("EXIT not acknowledged", "error", err)
	}

	if closeErr := r.ctrl.Close(); closeErr != nil {
		r.log.Debug("Failed to close connection", "error", closeErr)
	}

	return err
}

// Close closes the connection without reporting EXIT and releases every
// blocked goroutine. It's safe to call Close multiple times.
func (r *Runtime) Close() error {
	if r.ctrl == nil {
		return nil
	}

	return r.ctrl.Close()
}

// ForgetGoroutine drops the calling goroutine's wait handle. Instrumentation
// that spawns many short-lived goroutines should call it before each exits;
// otherwise every goroutine that ever reported keeps one handle alive.
func (r *Runtime) ForgetGoroutine() {
	r.waiters.Forget()
}
