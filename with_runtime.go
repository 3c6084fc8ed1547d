package inspector

import (
	"context"
	"fmt"
)

// WithRuntime manages runtime lifecycle with automatic teardown.
//
// This helper creates a runtime with the provided options, executes the
// callback function, and reports EXIT when done, mirroring a process that
// reports its termination from an exit hook.
//
// If the callback returns an error, it is returned to the caller.
// If Exit fails, a warning is logged but does not override the callback's error.
//
// Example usage:
//
//	err := inspector.WithRuntime(ctx, func(rt *inspector.Runtime) error {
//	    rt.FuncCall("replica.Propose")
//	    return propose(ctx)
//	},
//	    inspector.WithLogger(log),
//	)
func WithRuntime(ctx context.Context, fn func(*Runtime) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	rt, err := New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to start inspection runtime: %w", err)
	}

	defer func() {
		if exitErr := rt.Exit(); exitErr != nil {
			rt.log.Warn("failed to report exit", "error", exitErr)
		}
	}()

	return fn(rt)
}
