package async

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/desktop-harness/internal/model"
)

// PulseSource exposes a toolkit's paint pulse. Listeners fire once, on the
// UI goroutine, at the next pulse of the given window.
type PulseSource interface {
	Windows() []*model.Window
	AddPulseListener(w *model.Window, fn func())
}

// RenderWaiter reports when every showing window has been painted a given
// number of times since the waiter first saw it. All methods must be
// called on the UI goroutine.
type RenderWaiter struct {
	loop   Loop
	src    PulseSource
	pulses int
	left   map[*model.Window]int
}

// NewRenderWaiter returns a waiter that needs pulses paints per window.
func NewRenderWaiter(loop Loop, src PulseSource, pulses int) *RenderWaiter {
	if pulses < 1 {
		pulses = 1
	}
	return &RenderWaiter{
		loop:   loop,
		src:    src,
		pulses: pulses,
		left:   make(map[*model.Window]int),
	}
}

// Done picks up newly shown windows and reports whether all tracked,
// still-showing windows have seen their pulses.
func (r *RenderWaiter) Done() (bool, error) {
	if !r.loop.IsLoopThread() {
		return false, fmt.Errorf("render wait: %w", ErrNotOnLoop)
	}
	done := true
	for _, w := range r.src.Windows() {
		if !w.Showing {
			continue
		}
		n, tracked := r.left[w]
		if !tracked {
			n = r.pulses
			r.left[w] = n
			r.listen(w)
		}
		if n > 0 {
			done = false
		}
	}
	return done, nil
}

func (r *RenderWaiter) listen(w *model.Window) {
	r.src.AddPulseListener(w, func() {
		r.left[w]--
		if r.left[w] > 0 {
			r.listen(w)
		}
	})
}

// WaitForRender blocks until every showing window of src has been painted
// Profile.RenderPulses times, or timeout elapses.
func (b *Bridge) WaitForRender(ctx context.Context, src PulseSource, timeout time.Duration) error {
	waiter, err := CallOnUI(b, timeout, func() (*RenderWaiter, error) {
		return NewRenderWaiter(b.loop, src, b.profile.RenderPulses), nil
	})
	if err != nil {
		return err
	}
	return b.WaitForUI(ctx, timeout, waiter.Done)
}
