package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForSucceeds(t *testing.T) {
	var n atomic.Int32
	err := WaitFor(context.Background(), time.Second, time.Millisecond, func() (bool, error) {
		return n.Add(1) >= 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), n.Load())
}

func TestWaitForTimeoutReportsLastError(t *testing.T) {
	err := WaitFor(context.Background(), 20*time.Millisecond, time.Millisecond, func() (bool, error) {
		return false, errors.New("label missing")
	})
	require.ErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "label missing")

	err = WaitFor(context.Background(), 5*time.Millisecond, time.Millisecond, func() (bool, error) {
		return false, nil
	})
	require.ErrorIs(t, err, ErrTimeout)
}

func TestWaitForContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitFor(ctx, time.Second, time.Millisecond, func() (bool, error) { return false, nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestWaitForStopsOnDelayedError(t *testing.T) {
	start := time.Now()
	delayed := &DelayedError{Err: errors.New("stale")}
	err := WaitFor(context.Background(), time.Second, time.Millisecond, func() (bool, error) {
		return false, delayed
	})
	require.ErrorIs(t, err, delayed.Err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitForUIEvaluatesOnLoop(t *testing.T) {
	loop := newTestLoop(t)
	b := NewBridge(loop, fastProfile())

	var polls atomic.Int32
	err := b.WaitForUI(context.Background(), time.Second, func() (bool, error) {
		if !loop.IsLoopThread() {
			return false, errors.New("off loop")
		}
		return polls.Add(1) == 4, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(4), polls.Load())
	assert.Equal(t, 0, b.Aggregator().Len(), "condition errors are not aggregated")
}

func TestWaitForUIPicksUpStaleFailure(t *testing.T) {
	loop := newTestLoop(t)
	b := NewBridge(loop, fastProfile())
	errBoom := errors.New("boom")

	failing, err := RunOnUI(b, func() (int, error) { return 0, errBoom })
	require.NoError(t, err)
	<-failing.Done()

	err = b.WaitForUI(context.Background(), time.Second, func() (bool, error) { return false, nil })
	require.ErrorIs(t, err, errBoom)
	var de *DelayedError
	assert.ErrorAs(t, err, &de)
}
