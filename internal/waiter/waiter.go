package waiter

import (
	"sync"
	"sync/atomic"
	"time"
)

// Waiter is the wake handle of one reporting goroutine.
type Waiter struct {
	// GoID identifies the owning goroutine.
	GoID uint64
	// TID is the OS thread the owner was running on when the waiter was created.
	TID int

	wake     chan struct{}
	expected atomic.Int32
}

func newWaiter(goID uint64) *Waiter {
	return &Waiter{
		GoID: goID,
		TID:  Gettid(),
		wake: make(chan struct{}, 1),
	}
}

// New returns a standalone waiter that is not tracked by a Pool.
func New() *Waiter {
	return newWaiter(CurrentGoID())
}

// Expected returns the message ID this waiter is currently waiting for.
func (w *Waiter) Expected() int32 {
	return w.expected.Load()
}

// Arm resets the wake handle to unsignaled and records msgID as the
// outstanding message.
func (w *Waiter) Arm(msgID int32) {
	select {
	case <-w.wake:
	default:
	}

	w.expected.Store(msgID)
}

// Signal wakes the owner. Extra signals before the owner consumes the first
// are coalesced.
func (w *Waiter) Signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Wait blocks until Signal is called.
func (w *Waiter) Wait() {
	<-w.wake
}

// WaitTimeout blocks until Signal is called or d elapses. A non-positive d
// waits indefinitely. It reports whether the waiter was signaled.
func (w *Waiter) WaitTimeout(d time.Duration) bool {
	if d <= 0 {
		w.Wait()

		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-w.wake:
		return true
	case <-timer.C:
		return false
	}
}

// Pool hands out one Waiter per goroutine.
type Pool struct {
	mu      sync.Mutex
	waiters map[uint64]*Waiter
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{waiters: make(map[uint64]*Waiter, 16)}
}

// Current returns the calling goroutine's waiter, creating it on first use.
// Goroutine ids are never reused, so the waiter stays in the pool until the
// goroutine calls Forget.
func (p *Pool) Current() *Waiter {
	id := CurrentGoID()

	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.waiters[id]
	if !ok {
		w = newWaiter(id)
		p.waiters[id] = w
	}

	return w
}

// Forget drops the calling goroutine's waiter. The goroutine must not have an
// outstanding registration.
func (p *Pool) Forget() {
	id := CurrentGoID()

	p.mu.Lock()
	delete(p.waiters, id)
	p.mu.Unlock()
}

// Len returns the number of tracked goroutines.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.waiters)
}
