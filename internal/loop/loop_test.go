package loop

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningLoop(t *testing.T) *Loop {
	t.Helper()
	l, err := New()
	require.NoError(t, err)
	go l.Run()
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLoop_SubmitRunsTask(t *testing.T) {
	l := newRunningLoop(t)

	done := make(chan struct{})
	require.NoError(t, l.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestLoop_Execute_BlocksUntilDone(t *testing.T) {
	l := newRunningLoop(t)

	var ran atomic.Bool
	err := l.Execute(func() { ran.Store(true) })
	require.NoError(t, err)
	assert.True(t, ran.Load())
}

func TestLoop_SubmitOrder_FIFO(t *testing.T) {
	l := newRunningLoop(t)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		i := i
		require.NoError(t, l.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		}))
	}
	wg.Wait()
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestLoop_InEventLoop(t *testing.T) {
	l := newRunningLoop(t)

	assert.False(t, l.InEventLoop(), "caller is not the loop goroutine")

	var inside bool
	require.NoError(t, l.Execute(func() {
		inside = l.InEventLoop()
	}))
	assert.True(t, inside)
}

func TestLoop_SubmitFromWithinLoopRunsInline(t *testing.T) {
	l := newRunningLoop(t)

	var order []int
	require.NoError(t, l.Execute(func() {
		order = append(order, 1)
		// Submit called from the loop goroutine must run inline, not
		// re-enqueue, so this append happens before Execute returns.
		_ = l.Submit(func() { order = append(order, 2) })
		order = append(order, 3)
	}))
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestLoop_SubmitAfterClose(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	go l.Run()
	require.NoError(t, l.Close())

	err = l.Submit(func() {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLoop_RunTwiceFails(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	go l.Run()
	defer l.Close()

	// give the first Run a moment to actually claim stateRunning
	deadline := time.Now().Add(time.Second)
	for l.state.Load() != stateRunning && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	assert.ErrorIs(t, l.Run(), ErrAlreadyRunning)
}

func TestLoop_CloseStopsRunningLoop(t *testing.T) {
	l, err := New()
	require.NoError(t, err)
	go l.Run()
	require.NoError(t, l.Close())
}

func TestGoroutineID_DiffersAcrossGoroutines(t *testing.T) {
	id1 := goroutineID()
	idCh := make(chan uint64)
	go func() { idCh <- goroutineID() }()
	id2 := <-idCh

	assert.NotEqual(t, uint64(0), id1)
	assert.NotEqual(t, uint64(0), id2)
	assert.NotEqual(t, id1, id2)
}
