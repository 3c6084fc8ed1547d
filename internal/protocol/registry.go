package protocol

import (
	"sync"
	"sync/atomic"

	inserrors "github.com/wagiedev/nmz-inspector-go/internal/errors"
	"github.com/wagiedev/nmz-inspector-go/internal/waiter"
)

// Registry tracks outstanding message IDs and the waiters expecting them.
//
// IDs come from a process-wide atomic counter starting at 1; 0 is reserved for
// the initiation request.
type Registry struct {
	nextID atomic.Int32

	mu       sync.Mutex
	byID     map[int32]*waiter.Waiter
	byWaiter map[*waiter.Waiter]int32
	closed   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[int32]*waiter.Waiter, 16),
		byWaiter: make(map[*waiter.Waiter]int32, 16),
	}
}

// NextMsgID returns a fresh, monotonically increasing message ID.
func (r *Registry) NextMsgID() int32 {
	return r.nextID.Add(1)
}

// Register records w under its expected message ID.
//
// It fails with ErrAlreadyRegistered if w or its ID is already outstanding,
// and with ErrRuntimeInactive once DrainAll has run.
func (r *Registry) Register(w *waiter.Waiter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return inserrors.ErrRuntimeInactive
	}

	id := w.Expected()

	if _, ok := r.byWaiter[w]; ok {
		return inserrors.ErrAlreadyRegistered
	}

	if _, ok := r.byID[id]; ok {
		return inserrors.ErrAlreadyRegistered
	}

	r.byID[id] = w
	r.byWaiter[w] = id

	return nil
}

// Resolve removes and returns the waiter for msgID, or nil if none.
func (r *Registry) Resolve(msgID int32) *waiter.Waiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.byID[msgID]
	if !ok {
		return nil
	}

	delete(r.byID, msgID)
	delete(r.byWaiter, w)

	return w
}

// DrainAll removes and returns every outstanding waiter and refuses all later
// registrations.
func (r *Registry) DrainAll() []*waiter.Waiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	drained := make([]*waiter.Waiter, 0, len(r.byID))
	for _, w := range r.byID {
		drained = append(drained, w)
	}

	clear(r.byID)
	clear(r.byWaiter)

	return drained
}

// Len returns the number of outstanding registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.byID)
}
