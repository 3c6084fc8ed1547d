// Package waiter provides the per-goroutine wake handles that reporting
// goroutines block on while the orchestrator decides.
//
// A Waiter is created lazily the first time a goroutine reports an event and
// is reused for every later report from the same goroutine. It is never handed
// to another goroutine.
package waiter
