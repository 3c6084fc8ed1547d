package waiter

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCurrentGoID_DistinctPerGoroutine(t *testing.T) {
	main := CurrentGoID()
	require.NotZero(t, main)
	require.Equal(t, main, CurrentGoID())

	other := make(chan uint64)

	go func() {
		other <- CurrentGoID()
	}()

	require.NotEqual(t, main, <-other)
}

func TestPool_ReusesWaiterPerGoroutine(t *testing.T) {
	p := NewPool()

	w1 := p.Current()
	w2 := p.Current()
	require.Same(t, w1, w2)

	var other *Waiter

	var wg sync.WaitGroup

	wg.Go(func() {
		other = p.Current()
	})
	wg.Wait()

	require.NotSame(t, w1, other)
	require.Equal(t, 2, p.Len())
}

func TestPool_Forget(t *testing.T) {
	p := NewPool()

	w1 := p.Current()
	p.Forget()
	require.Zero(t, p.Len())

	w2 := p.Current()
	require.NotSame(t, w1, w2)
}

func TestWaiter_SignalThenWait(t *testing.T) {
	w := New()
	w.Arm(5)
	require.Equal(t, int32(5), w.Expected())

	w.Signal()
	w.Signal() // coalesced

	require.True(t, w.WaitTimeout(time.Second))
	require.False(t, w.WaitTimeout(10*time.Millisecond))
}

func TestWaiter_ArmClearsStaleSignal(t *testing.T) {
	w := New()
	w.Signal()

	w.Arm(1)

	require.False(t, w.WaitTimeout(10*time.Millisecond))
}

func TestWaiter_WaitBlocksUntilSignal(t *testing.T) {
	w := New()
	w.Arm(1)

	done := make(chan struct{})

	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Signal")
	case <-time.After(20 * time.Millisecond):
	}

	w.Signal()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Signal")
	}
}

func TestGettid(t *testing.T) {
	require.Positive(t, Gettid())
}
