package async

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a Task.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Task is a single-shot unit of work with a result slot. It runs at most
// once; Get and friends block until it has finished.
//
// A propagating task registers its failure with an Aggregator. Whichever of
// Get or Aggregator.CheckAndThrow reaches the failure first reports it; the
// other stays silent.
type Task[T any] struct {
	id        uuid.UUID
	fn        func() (T, error)
	propagate bool
	stack     []byte

	agg         *Aggregator
	logger      *slog.Logger
	metrics     Metrics
	printErrors bool

	state  atomic.Int32
	done   chan struct{}
	val    T
	err    error
	record *Record
}

// TaskOption tunes a task created by the bridge.
type TaskOption func(*taskConfig)

type taskConfig struct {
	propagate bool
}

// Propagate controls whether a failure is registered with the aggregator.
// Bridge tasks propagate by default.
func Propagate(on bool) TaskOption {
	return func(c *taskConfig) {
		c.propagate = on
	}
}

// NewTask wraps fn in a non-propagating Task. Run it with Run.
func NewTask[T any](fn func() (T, error)) *Task[T] {
	return &Task[T]{
		id:      uuid.New(),
		fn:      fn,
		stack:   debug.Stack(),
		logger:  discardLogger(),
		metrics: NopMetrics{},
		done:    make(chan struct{}),
	}
}

func (t *Task[T]) ID() uuid.UUID { return t.id }

func (t *Task[T]) State() State { return State(t.state.Load()) }

// Stack is the goroutine stack at the point the task was created.
func (t *Task[T]) Stack() []byte { return t.stack }

// Done is closed once the task has completed or failed.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

func (t *Task[T]) IsDone() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Run executes the wrapped function on the calling goroutine.
func (t *Task[T]) Run() error {
	if !t.state.CompareAndSwap(int32(StatePending), int32(StateRunning)) {
		return fmt.Errorf("task %s: %w", t.id, ErrTaskAlreadyRun)
	}
	val, err := t.call()
	t.finish(val, err)
	return nil
}

func (t *Task[T]) call() (val T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			val = zero
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return t.fn()
}

func (t *Task[T]) finish(val T, err error) {
	t.val, t.err = val, err
	if err == nil {
		t.state.Store(int32(StateCompleted))
		close(t.done)
		return
	}

	t.state.Store(int32(StateFailed))
	t.metrics.TaskFailed()
	if t.propagate && t.agg != nil {
		if t.printErrors {
			t.logger.Error("ui task failed", "task", t.id, "err", err, "created_at", string(t.stack))
		}
		t.record = t.agg.Register(t.id, err, t.stack)
	}
	close(t.done)
}

// abandon fails a task that never got to run.
func (t *Task[T]) abandon(err error) {
	if !t.state.CompareAndSwap(int32(StatePending), int32(StateFailed)) {
		return
	}
	t.err = err
	close(t.done)
}

// Err returns the raw failure without claiming it. It is nil until the
// task is done.
func (t *Task[T]) Err() error {
	if !t.IsDone() {
		return nil
	}
	return t.err
}

// Get blocks until the task is done and returns its result. A failure is
// returned unwrapped. If the aggregator has already reported the failure,
// Get returns the zero value and a nil error.
func (t *Task[T]) Get() (T, error) {
	<-t.done
	return t.result()
}

// GetContext is Get bounded by ctx. Cancellation returns ctx.Err().
func (t *Task[T]) GetContext(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// GetTimeout is Get bounded by d. A non-positive d waits forever.
func (t *Task[T]) GetTimeout(d time.Duration) (T, error) {
	if d <= 0 {
		return t.Get()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.done:
		return t.result()
	case <-timer.C:
		var zero T
		return zero, fmt.Errorf("task %s not done after %s: %w", t.id, d, ErrTimeout)
	}
}

func (t *Task[T]) result() (T, error) {
	if t.err == nil {
		return t.val, nil
	}
	var zero T
	if t.record != nil && !t.agg.claim(t.record, ownerTask) {
		return zero, nil
	}
	return zero, t.err
}
