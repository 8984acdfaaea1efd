package async

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mj1618/desktop-harness/internal/platform"
)

var (
	// ErrTimeout is wrapped by every bounded wait that runs out of time.
	ErrTimeout = errors.New("timed out")

	// ErrLoopStopped is returned when the UI loop refuses or abandons work.
	ErrLoopStopped = errors.New("ui loop stopped")

	// ErrNotOnLoop is returned by operations that must run on the UI goroutine.
	ErrNotOnLoop = platform.ErrNotOnLoop

	// ErrTaskAlreadyRun is returned when a Task is run a second time.
	ErrTaskAlreadyRun = errors.New("task already run")
)

// PanicError carries a recovered panic value that was not itself an error.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// DelayedError is a failure surfaced by the Aggregator after the fact,
// typically on the next submission following the task that raised it.
type DelayedError struct {
	TaskID uuid.UUID
	Err    error
	Stack  []byte
}

func (e *DelayedError) Error() string {
	if e.TaskID == uuid.Nil {
		return fmt.Sprintf("delayed exception (uncaught): %v", e.Err)
	}
	return fmt.Sprintf("delayed exception from task %s: %v", e.TaskID, e.Err)
}

func (e *DelayedError) Unwrap() error {
	return e.Err
}
