package protocol

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"

	inserrors "github.com/wagiedev/nmz-inspector-go/internal/errors"
	"github.com/wagiedev/nmz-inspector-go/internal/waiter"
)

func TestRegistry_FirstMsgIDIsOne(t *testing.T) {
	r := NewRegistry()

	require.Equal(t, int32(1), r.NextMsgID())
	require.Equal(t, int32(2), r.NextMsgID())
}

// Message IDs must never repeat, however many goroutines draw them.
func TestRegistry_NextMsgIDUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		goroutines := rapid.IntRange(1, 16).Draw(rt, "goroutines")
		perGoroutine := rapid.IntRange(1, 64).Draw(rt, "per_goroutine")

		r := NewRegistry()

		var (
			mu  sync.Mutex
			all = make([]int32, 0, goroutines*perGoroutine)
		)

		var g errgroup.Group

		for range goroutines {
			g.Go(func() error {
				ids := make([]int32, 0, perGoroutine)
				for range perGoroutine {
					ids = append(ids, r.NextMsgID())
				}

				mu.Lock()
				all = append(all, ids...)
				mu.Unlock()

				return nil
			})
		}

		_ = g.Wait()

		seen := make(map[int32]struct{}, len(all))
		for _, id := range all {
			if _, dup := seen[id]; dup {
				rt.Fatalf("duplicate msg_id %d", id)
			}

			seen[id] = struct{}{}
		}

		if len(seen) != goroutines*perGoroutine {
			rt.Fatalf("expected %d ids, got %d", goroutines*perGoroutine, len(seen))
		}

		if _, ok := seen[0]; ok {
			rt.Fatalf("msg_id 0 is reserved")
		}
	})
}

func TestRegistry_RegisterResolve(t *testing.T) {
	r := NewRegistry()
	w := waiter.New()
	w.Arm(r.NextMsgID())

	require.NoError(t, r.Register(w))
	require.Equal(t, 1, r.Len())

	require.Nil(t, r.Resolve(99))
	require.Same(t, w, r.Resolve(w.Expected()))
	require.Nil(t, r.Resolve(w.Expected()))
	require.Zero(t, r.Len())
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()

	w := waiter.New()
	w.Arm(r.NextMsgID())
	require.NoError(t, r.Register(w))

	// Same waiter again, even under a new ID.
	w.Arm(r.NextMsgID())
	require.ErrorIs(t, r.Register(w), inserrors.ErrAlreadyRegistered)

	// Different waiter, same ID.
	other := waiter.New()
	other.Arm(1)
	require.ErrorIs(t, r.Register(other), inserrors.ErrAlreadyRegistered)
}

func TestRegistry_DrainAllClosesRegistry(t *testing.T) {
	r := NewRegistry()

	waiters := make([]*waiter.Waiter, 3)
	for i := range waiters {
		waiters[i] = waiter.New()
		waiters[i].Arm(r.NextMsgID())
		require.NoError(t, r.Register(waiters[i]))
	}

	drained := r.DrainAll()
	require.ElementsMatch(t, waiters, drained)
	require.Zero(t, r.Len())

	late := waiter.New()
	late.Arm(r.NextMsgID())
	require.ErrorIs(t, r.Register(late), inserrors.ErrRuntimeInactive)

	require.Empty(t, r.DrainAll())
}
