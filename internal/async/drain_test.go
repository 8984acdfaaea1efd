package async

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain posts a runnable that enqueues the next one, n links deep.
func chain(loop Loop, n int, count *atomic.Int32) {
	var link func(i int)
	link = func(i int) {
		count.Add(1)
		if i+1 < n {
			loop.Post(func() { link(i + 1) })
		}
	}
	loop.Post(func() { link(0) })
}

func TestWaitForEventsDrainsChainWithinBound(t *testing.T) {
	loop := newTestLoop(t)
	p := fastProfile()
	b := NewBridge(loop, p)

	for n := 1; n <= p.DrainAttempts; n++ {
		var count atomic.Int32
		chain(loop, n, &count)
		b.WaitForEvents()
		assert.Equal(t, int32(n), count.Load(), "chain of %d", n)
	}
}

func TestWaitForEventsOnLoopReturnsImmediately(t *testing.T) {
	loop := newTestLoop(t)
	p := fastProfile()
	p.DrainSleep = time.Second
	b := NewBridge(loop, p)

	took, err := CallOnUI(b, 2*time.Second, func() (time.Duration, error) {
		start := time.Now()
		b.WaitForEvents()
		return time.Since(start), b.WaitForEventsTimeout(3, time.Millisecond)
	})
	require.NoError(t, err)
	assert.Less(t, took, 100*time.Millisecond)
}

func TestWaitForEventsTimeout(t *testing.T) {
	loop := newTestLoop(t)
	b := NewBridge(loop, fastProfile())
	require.NoError(t, b.WaitForEventsTimeout(3, time.Second))

	release := loop.block()
	defer release()
	err := b.WaitForEventsTimeout(3, 10*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "drain attempt 1/3")
}

func TestWaitForEventsStoppedLoop(t *testing.T) {
	loop := newTestLoop(t)
	m := newCountingMetrics()
	b := NewBridge(loop, fastProfile(), WithMetrics(m))
	loop.stop()

	b.WaitForEvents()
	require.ErrorIs(t, b.WaitForEventsTimeout(2, time.Second), ErrLoopStopped)
	assert.Equal(t, 2, m.drains)
}

func TestWaitForEventsBlockedLoopReturnsWhenStopped(t *testing.T) {
	loop := newTestLoop(t)
	b := NewBridge(loop, fastProfile())
	release := loop.block()
	defer release()

	done := make(chan struct{})
	go func() {
		b.WaitForEvents()
		close(done)
	}()
	loop.stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drain did not return after the loop stopped")
	}
}
