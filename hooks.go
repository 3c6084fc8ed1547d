package inspector

import (
	"context"
	"sync"
)

// Package-level hooks for rewritten code that cannot thread a *Runtime
// through its call sites. They act on the runtime installed by Init and are
// no-ops until then.

var (
	defaultMu      sync.Mutex
	defaultRuntime *Runtime
)

// Init creates the process runtime with New and installs it for the
// package-level hooks. It fails with ErrAlreadyInitialized on a second call.
//
// Like New, it returns startup failures instead of aborting; callers must
// terminate the process on error to stay under orchestrator control.
func Init(ctx context.Context, opts ...Option) (*Runtime, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRuntime != nil {
		return nil, ErrAlreadyInitialized
	}

	rt, err := New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	defaultRuntime = rt

	return rt, nil
}

// Default returns the runtime installed by Init, or nil.
func Default() *Runtime {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	return defaultRuntime
}

// FuncCall reports a call to name through the installed runtime.
func FuncCall(name string) {
	if rt := Default(); rt != nil {
		rt.FuncCall(name)
	}
}

// FuncReturn reports a return from name through the installed runtime.
func FuncReturn(name string) {
	if rt := Default(); rt != nil {
		rt.FuncReturn(name)
	}
}

// Exit reports process termination through the installed runtime.
func Exit() error {
	if rt := Default(); rt != nil {
		return rt.Exit()
	}

	return nil
}

// resetDefault uninstalls the process runtime.
func resetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultRuntime = nil
}
