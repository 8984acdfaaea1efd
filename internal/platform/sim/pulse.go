package sim

import (
	"fmt"
	"time"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// AddPulseListener runs fn once at the next paint pulse of w.
func (t *Toolkit) AddPulseListener(w *model.Window, fn func()) {
	t.mustLoop("add pulse listener")
	t.listeners[w] = append(t.listeners[w], fn)
}

func (t *Toolkit) pulse() {
	ticker := time.NewTicker(t.pulseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopPulse:
			return
		case <-ticker.C:
			if !t.loop.post(t.paint) {
				return
			}
		}
	}
}

// paint fires the pending listeners of every window. Listeners of hidden
// windows are dropped with an ErrRenderCollector raised through the panic
// handler.
func (t *Toolkit) paint() {
	pending := t.listeners
	t.listeners = map[*model.Window][]func(){}
	var stale []int
	for w, fns := range pending {
		if !w.Showing {
			stale = append(stale, w.ID)
			continue
		}
		for _, fn := range fns {
			fn()
		}
	}
	if len(stale) > 0 {
		panic(fmt.Errorf("windows %v: %w", stale, platform.ErrRenderCollector))
	}
}
