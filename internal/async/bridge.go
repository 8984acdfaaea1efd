package async

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/mj1618/desktop-harness/internal/timing"
)

// Environment switches read by EnvOptions and AggregatorFromEnv.
const (
	EnvCheckAll   = "HARNESS_CHECK_ALL_EXCEPTIONS"
	EnvAutoCheck  = "HARNESS_AUTO_CHECK_EXCEPTIONS"
	EnvPrintError = "HARNESS_PRINT_EXCEPTIONS"
)

// Bridge submits work to a UI loop and waits for it.
type Bridge struct {
	loop        Loop
	profile     timing.Profile
	agg         *Aggregator
	logger      *slog.Logger
	metrics     Metrics
	autoCheck   bool
	printErrors bool
}

// Option configures a Bridge.
type Option func(*Bridge)

func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(b *Bridge) {
		if m != nil {
			b.metrics = m
		}
	}
}

// WithAutoCheck makes every submission first surface a pending failure
// from the aggregator instead of running.
func WithAutoCheck(on bool) Option {
	return func(b *Bridge) {
		b.autoCheck = on
	}
}

// WithPrintErrors logs failures at the moment they are captured.
func WithPrintErrors(on bool) Option {
	return func(b *Bridge) {
		b.printErrors = on
	}
}

func WithAggregator(a *Aggregator) Option {
	return func(b *Bridge) {
		if a != nil {
			b.agg = a
		}
	}
}

// EnvOptions reads the auto-check and print switches from the environment.
// Unset or unparsable values keep the defaults.
func EnvOptions() []Option {
	var opts []Option
	if v, ok := envBool(EnvAutoCheck); ok {
		opts = append(opts, WithAutoCheck(v))
	}
	if v, ok := envBool(EnvPrintError); ok {
		opts = append(opts, WithPrintErrors(v))
	}
	return opts
}

// AggregatorFromEnv builds an aggregator honoring HARNESS_CHECK_ALL_EXCEPTIONS.
func AggregatorFromEnv(opts ...AggregatorOption) *Aggregator {
	if v, ok := envBool(EnvCheckAll); ok {
		opts = append(opts, WithCheckAll(v))
	}
	return NewAggregator(opts...)
}

func envBool(name string) (bool, bool) {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// NewBridge binds a bridge to loop. Auto-check and error printing default
// to on; a fresh Aggregator is created unless one is supplied.
func NewBridge(loop Loop, profile timing.Profile, opts ...Option) *Bridge {
	b := &Bridge{
		loop:        loop,
		profile:     profile,
		logger:      discardLogger(),
		metrics:     NopMetrics{},
		autoCheck:   true,
		printErrors: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.agg == nil {
		b.agg = NewAggregator(WithAggregatorLogger(b.logger), WithAggregatorMetrics(b.metrics))
	}
	return b
}

func (b *Bridge) Loop() Loop              { return b.loop }
func (b *Bridge) Profile() timing.Profile { return b.profile }
func (b *Bridge) Aggregator() *Aggregator { return b.agg }
func (b *Bridge) Logger() *slog.Logger    { return b.logger }
func (b *Bridge) Metrics() Metrics        { return b.metrics }
func (b *Bridge) IsLoopThread() bool      { return b.loop.IsLoopThread() }
func (b *Bridge) CheckException() error   { return b.agg.CheckAndThrow() }

func newBridgeTask[T any](b *Bridge, fn func() (T, error), opts []TaskOption) *Task[T] {
	cfg := taskConfig{propagate: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	t := NewTask(fn)
	t.propagate = cfg.propagate
	t.agg = b.agg
	t.logger = b.logger
	t.metrics = b.metrics
	t.printErrors = b.printErrors
	return t
}

func (b *Bridge) preflight() error {
	if !b.autoCheck {
		return nil
	}
	return b.agg.CheckAndThrow()
}

// RunAsync runs fn on a new goroutine.
func RunAsync[T any](b *Bridge, fn func() (T, error), opts ...TaskOption) (*Task[T], error) {
	if err := b.preflight(); err != nil {
		return nil, err
	}
	t := newBridgeTask(b, fn, opts)
	b.metrics.TaskSubmitted(TargetAsync)
	go func() {
		_ = t.Run()
	}()
	return t, nil
}

// RunOnUI runs fn on the UI goroutine. Called from the UI goroutine it runs
// fn in place before returning; otherwise fn is queued behind pending work.
func RunOnUI[T any](b *Bridge, fn func() (T, error), opts ...TaskOption) (*Task[T], error) {
	if err := b.preflight(); err != nil {
		return nil, err
	}
	t := newBridgeTask(b, fn, opts)
	if b.loop.IsLoopThread() {
		b.metrics.TaskSubmitted(TargetInline)
		_ = t.Run()
		return t, nil
	}

	b.metrics.TaskSubmitted(TargetUI)
	if !b.loop.Post(func() { _ = t.Run() }) {
		return nil, fmt.Errorf("submit task %s: %w", t.id, ErrLoopStopped)
	}
	go func() {
		select {
		case <-t.done:
		case <-b.loop.Done():
			t.abandon(fmt.Errorf("task %s: %w", t.id, ErrLoopStopped))
		}
	}()
	return t, nil
}

// CallOnUI submits fn to the UI goroutine and waits up to timeout for it.
func CallOnUI[T any](b *Bridge, timeout time.Duration, fn func() (T, error)) (T, error) {
	t, err := RunOnUI(b, fn)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.GetTimeout(timeout)
}

// Exec is CallOnUI for work without a result.
func (b *Bridge) Exec(timeout time.Duration, fn func() error) error {
	_, err := CallOnUI(b, timeout, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Post queues fn on the UI goroutine without waiting. A failure inside fn
// reaches the caller through the aggregator.
func (b *Bridge) Post(fn func() error) error {
	_, err := RunOnUI(b, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
