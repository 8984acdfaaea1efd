package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRunOnce(t *testing.T) {
	calls := 0
	task := NewTask(func() (int, error) {
		calls++
		return 42, nil
	})
	assert.Equal(t, StatePending, task.State())
	require.NoError(t, task.Run())
	require.ErrorIs(t, task.Run(), ErrTaskAlreadyRun)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateCompleted, task.State())

	v, err := task.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestTaskReturnsErrorUnwrapped(t *testing.T) {
	errBoom := errors.New("boom")
	task := NewTask(func() (string, error) { return "ignored", errBoom })
	require.NoError(t, task.Run())

	v, err := task.Get()
	assert.Equal(t, "", v)
	assert.True(t, err == errBoom, "want the original error value, got %v", err)
	assert.Equal(t, StateFailed, task.State())
}

func TestTaskPanicValues(t *testing.T) {
	errState := errors.New("illegal state")
	task := NewTask(func() (int, error) { panic(errState) })
	require.NoError(t, task.Run())
	_, err := task.Get()
	assert.True(t, err == errState)

	task = NewTask(func() (int, error) { panic("not an error") })
	require.NoError(t, task.Run())
	_, err = task.Get()
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "not an error", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Equal(t, "panic: not an error", err.Error())
}

func TestTaskGetTimeout(t *testing.T) {
	task := NewTask(func() (int, error) { return 1, nil })

	_, err := task.GetTimeout(5 * time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, task.Err())

	go func() { _ = task.Run() }()
	v, err := task.GetTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestTaskGetContext(t *testing.T) {
	task := NewTask(func() (int, error) { return 1, nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := task.GetContext(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTaskStackAndID(t *testing.T) {
	a := NewTask(func() (int, error) { return 0, nil })
	b := NewTask(func() (int, error) { return 0, nil })
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Contains(t, string(a.Stack()), "TestTaskStackAndID")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
