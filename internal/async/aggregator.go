package async

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mj1618/desktop-harness/internal/platform"
)

type owner int

const (
	ownerNone owner = iota
	ownerTask
	ownerAggregator
)

// Record is one captured failure awaiting delivery.
type Record struct {
	ID         uuid.UUID
	TaskID     uuid.UUID
	Err        error
	Stack      []byte
	CapturedAt time.Time

	owner owner
}

// Aggregator queues failures raised away from the caller in FIFO order.
// Each record is delivered exactly once: by CheckAndThrow, or by Get on the
// task that raised it.
type Aggregator struct {
	mu      sync.Mutex
	records []*Record

	ignore   []func(error) bool
	checkAll bool
	logger   *slog.Logger
	metrics  Metrics
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithIgnore drops failures for which fn reports true.
func WithIgnore(fn func(error) bool) AggregatorOption {
	return func(a *Aggregator) {
		a.ignore = append(a.ignore, fn)
	}
}

// WithCheckAll controls whether Uncaught records anything.
func WithCheckAll(on bool) AggregatorOption {
	return func(a *Aggregator) {
		a.checkAll = on
	}
}

func WithAggregatorLogger(l *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

func WithAggregatorMetrics(m Metrics) AggregatorOption {
	return func(a *Aggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}

// IgnoreRenderCollector matches the pulse-listener noise a toolkit emits
// when a window is torn down mid-paint.
func IgnoreRenderCollector(err error) bool {
	return errors.Is(err, platform.ErrRenderCollector)
}

// NewAggregator returns an empty aggregator with uncaught capture on and
// render-collector noise ignored.
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		checkAll: true,
		ignore:   []func(error) bool{IgnoreRenderCollector},
		logger:   discardLogger(),
		metrics:  NopMetrics{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register queues err. It returns nil when the failure is ignored.
func (a *Aggregator) Register(taskID uuid.UUID, err error, stack []byte) *Record {
	if err == nil {
		return nil
	}
	for _, skip := range a.ignore {
		if skip(err) {
			a.logger.Debug("ignoring failure", "task", taskID, "err", err)
			return nil
		}
	}
	rec := &Record{
		ID:         uuid.New(),
		TaskID:     taskID,
		Err:        err,
		Stack:      stack,
		CapturedAt: time.Now(),
	}
	a.mu.Lock()
	a.records = append(a.records, rec)
	n := len(a.records)
	a.mu.Unlock()
	a.metrics.AggregatorPending(n)
	return rec
}

// Uncaught is the funnel for panics recovered outside any Task, such as
// inside the UI loop or a goroutine started with Go.
func (a *Aggregator) Uncaught(v any, stack []byte) {
	err, ok := v.(error)
	if !ok {
		err = &PanicError{Value: v, Stack: stack}
	}
	if !a.checkAll {
		a.logger.Warn("uncaught failure not recorded", "err", err)
		return
	}
	a.Register(uuid.Nil, err, stack)
}

// Go runs fn on a new goroutine, funnelling a panic into Uncaught.
func (a *Aggregator) Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.Uncaught(r, debug.Stack())
			}
		}()
		fn()
	}()
}

// CheckAndThrow removes the oldest pending record and returns it as a
// *DelayedError. It returns nil when nothing is pending.
func (a *Aggregator) CheckAndThrow() error {
	a.mu.Lock()
	if len(a.records) == 0 {
		a.mu.Unlock()
		return nil
	}
	rec := a.records[0]
	rec.owner = ownerAggregator
	a.records[0] = nil
	a.records = a.records[1:]
	n := len(a.records)
	a.mu.Unlock()

	a.metrics.AggregatorPending(n)
	return &DelayedError{TaskID: rec.TaskID, Err: rec.Err, Stack: rec.Stack}
}

// Clear drops all pending records and returns how many were dropped.
func (a *Aggregator) Clear() int {
	a.mu.Lock()
	for _, rec := range a.records {
		rec.owner = ownerAggregator
	}
	n := len(a.records)
	a.records = nil
	a.mu.Unlock()
	a.metrics.AggregatorPending(0)
	return n
}

func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

// Pending returns copies of the queued records, oldest first.
func (a *Aggregator) Pending() []Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Record, len(a.records))
	for i, rec := range a.records {
		out[i] = *rec
	}
	return out
}

// claim hands rec to by. It reports whether by now owns the record.
func (a *Aggregator) claim(rec *Record, by owner) bool {
	a.mu.Lock()
	switch rec.owner {
	case by:
		a.mu.Unlock()
		return true
	case ownerNone:
	default:
		a.mu.Unlock()
		return false
	}
	rec.owner = by
	for i, r := range a.records {
		if r == rec {
			a.records = append(a.records[:i], a.records[i+1:]...)
			break
		}
	}
	n := len(a.records)
	a.mu.Unlock()

	a.metrics.AggregatorPending(n)
	return true
}
