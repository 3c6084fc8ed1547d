// Package inspector is the embedded runtime of the Namazu inspection
// framework.
//
// Instrumented code reports events (function calls, process exit) to an
// external orchestrator over a single TCP connection. Each report blocks the
// calling goroutine until the orchestrator lets it continue with ACK, or ends
// inspection with END. By choosing when to ACK, the orchestrator controls how
// the goroutines of the process interleave.
//
// # Basic Usage
//
// Create one runtime at startup and report from instrumented call sites.
// Startup failures (configuration, connection, handshake) are returned rather
// than handled; an instrumented process must abort on them, since running on
// without the orchestrator would invalidate the test:
//
//	rt, err := inspector.New(ctx, inspector.WithLogger(log))
//	if err != nil {
//	    log.Error("inspection unavailable", "error", err)
//	    os.Exit(1)
//	}
//	defer rt.Exit()
//
//	rt.FuncCall("raft.(*node).Propose")
//	defer rt.FuncReturn("raft.(*node).Propose")
//
// Rewritten code that cannot pass a *Runtime around uses the package-level
// hooks instead, with the same abort on startup failure:
//
//	if _, err := inspector.Init(ctx); err != nil {
//	    fmt.Fprintf(os.Stderr, "nmz-inspector: %v\n", err)
//	    os.Exit(1)
//	}
//	defer inspector.Exit()
//
//	inspector.FuncCall("raft.(*node).Propose")
//
// # Configuration
//
// Without WithConfig the runtime reads the environment:
//
//	NMZ_DISABLE            any value: never connect, every report is a no-op
//	NMZ_ENV_PROCESS_ID     required logical process identifier
//	NMZ_GA_TCP_PORT        local port to connect to, default 10000
//	NMZ_MODE_DIRECT        any value: the orchestrator itself listens on the port
//	NMZ_ORCHESTRATOR_ADDR  direct mode only: host:port overriding localhost:<port>
//	NMZ_EXIT_TIMEOUT       Go duration bounding the wait on EXIT
//	NMZ_LOG_LEVEL          debug, info, warn or error; logs to stderr
//
// # Failure Handling
//
// Once the connection is established, any I/O failure or protocol violation
// is fatal: every blocked goroutine is released, the runtime goes inactive and
// the fatal handler runs. The default handler terminates the process, because
// continuing outside orchestrator control would invalidate the test. Use
// WithFatalHandler to change that.
package inspector
