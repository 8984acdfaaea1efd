// Package robot sequences synthetic input. Every primitive runs on the UI
// goroutine through an async.Bridge; waited primitives also let the UI
// settle before returning, no-wait variants return as soon as the work is
// queued.
//
// A primitive that exceeds its timeout is logged and counted and, unless
// the timing profile sets StrictTimeouts, otherwise ignored: the gesture
// carries on and any resulting problem shows up in later assertions.
package robot

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// ErrUnknownKey is returned when a key name cannot be parsed.
var ErrUnknownKey = platform.ErrUnknownKey

// Metrics receives gesture and timeout events.
type Metrics interface {
	GestureObserved(gesture string)
	PrimitiveTimedOut(op string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) GestureObserved(string)   {}
func (NopMetrics) PrimitiveTimedOut(string) {}

// Option configures the robots built by New.
type Option func(*core)

func WithLogger(l *slog.Logger) Option {
	return func(c *core) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(c *core) {
		if m != nil {
			c.metrics = m
		}
	}
}

// core is shared by all robots of one facade.
type core struct {
	bridge  *async.Bridge
	inj     platform.Injector
	scene   platform.SceneQuery
	logger  *slog.Logger
	metrics Metrics
}

func newCore(b *async.Bridge, inj platform.Injector, scene platform.SceneQuery, opts []Option) *core {
	c := &core{
		bridge:  b,
		inj:     inj,
		scene:   scene,
		logger:  b.Logger(),
		metrics: NopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// exec runs fn on the UI goroutine bounded by timeout, then drains events.
func (c *core) exec(op string, timeout time.Duration, fn func() error) error {
	err := c.bridge.Exec(timeout, fn)
	if err != nil {
		return c.primitiveErr(op, timeout, err)
	}
	c.bridge.WaitForEvents()
	return nil
}

// post queues fn on the UI goroutine without waiting for it.
func (c *core) post(op string, fn func() error) error {
	if err := c.bridge.Post(fn); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *core) primitiveErr(op string, timeout time.Duration, err error) error {
	if !errors.Is(err, async.ErrTimeout) {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.metrics.PrimitiveTimedOut(op)
	if c.bridge.Profile().StrictTimeouts {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.logger.Warn("input primitive timed out", "op", op, "timeout", timeout)
	return nil
}

func (c *core) profileSleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
