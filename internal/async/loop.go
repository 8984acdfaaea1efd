package async

import (
	"log/slog"
	"time"
)

// Loop is the part of a UI toolkit the bridge needs: a FIFO queue drained
// by one goroutine.
type Loop interface {
	// Post enqueues fn. It reports false if the loop no longer accepts work.
	Post(fn func()) bool

	// IsLoopThread reports whether the calling goroutine is the UI goroutine.
	IsLoopThread() bool

	// Done is closed once the loop has stopped running work.
	Done() <-chan struct{}
}

// Metrics receives bridge and aggregator events. Implementations must be
// safe for concurrent use.
type Metrics interface {
	TaskSubmitted(target string)
	TaskFailed()
	AggregatorPending(n int)
	DrainObserved(d time.Duration)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) TaskSubmitted(string)        {}
func (NopMetrics) TaskFailed()                 {}
func (NopMetrics) AggregatorPending(int)       {}
func (NopMetrics) DrainObserved(time.Duration) {}

// Submission targets reported to Metrics.TaskSubmitted.
const (
	TargetUI     = "ui"
	TargetInline = "inline"
	TargetAsync  = "async"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
