package diag

import (
	"fmt"
	"sync"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/lifecycle"
	"github.com/mj1618/desktop-harness/internal/model"
)

// EventSource is the part of a toolkit the recorder listens on.
type EventSource interface {
	AddEventFilter(w *model.Window, fn func(model.InputEvent)) (remove func())
}

// Recorder keeps the most recent input events delivered to the registered
// window.
type Recorder struct {
	bridge *async.Bridge
	src    EventSource
	max    int

	mu     sync.Mutex
	events []model.InputEvent
	bound  *model.Window
	remove func()
}

// NewRecorder keeps up to max events; max <= 0 means 256.
func NewRecorder(b *async.Bridge, src EventSource, max int) *Recorder {
	if max <= 0 {
		max = 256
	}
	return &Recorder{bridge: b, src: src, max: max}
}

// Attach binds the recorder to every window c registers from now on.
func (r *Recorder) Attach(c *lifecycle.Controller) {
	c.OnRebind(func(_, w *model.Window) {
		if err := r.Bind(w); err != nil {
			r.bridge.Logger().Warn("event recorder rebind failed", "window", w.Title, "error", err)
		}
	})
}

// Bind moves the recorder's filter onto w. Recorded events are kept.
func (r *Recorder) Bind(w *model.Window) error {
	err := r.bridge.Exec(r.bridge.Profile().SetupTimeout, func() error {
		r.mu.Lock()
		remove := r.remove
		r.remove, r.bound = nil, nil
		r.mu.Unlock()
		if remove != nil {
			remove()
		}
		if w == nil {
			return nil
		}
		remove = r.src.AddEventFilter(w, r.record)
		r.mu.Lock()
		r.remove, r.bound = remove, w
		r.mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("bind recorder: %w", err)
	}
	return nil
}

// Close stops recording.
func (r *Recorder) Close() error { return r.Bind(nil) }

func (r *Recorder) record(ev model.InputEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if len(r.events) > r.max {
		r.events = r.events[len(r.events)-r.max:]
	}
}

// Bound returns the window being recorded, if any.
func (r *Recorder) Bound() *model.Window {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bound
}

// Events returns up to the last n events, oldest first. n <= 0 returns all.
func (r *Recorder) Events(n int) []model.InputEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := 0
	if n > 0 && len(r.events) > n {
		start = len(r.events) - n
	}
	return append([]model.InputEvent(nil), r.events[start:]...)
}

func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
