// Package sim is an in-process toolkit with a real UI goroutine, a paint
// pulse and a small widget set. It gives the harness something concrete to
// drive: buttons fire actions, text inputs take characters and scroll
// areas count wheel units.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// ErrStopped is returned when starting a toolkit that was already stopped.
var ErrStopped = errors.New("toolkit stopped")

// Toolkit implements platform.Toolkit, platform.Injector and
// platform.SceneQuery.
type Toolkit struct {
	loop   *loop
	logger *slog.Logger

	pulseInterval time.Duration
	launchDelay   time.Duration
	screen        platform.Bounds

	ready     chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	stopPulse chan struct{}

	// Guards the window list for readers off the UI goroutine; the nodes
	// themselves are owned by the UI goroutine.
	mu      sync.RWMutex
	windows []*model.Window
	nextID  int

	// UI goroutine state.
	filters   map[*model.Window][]*filter
	listeners map[*model.Window][]func()
	actions   map[*model.Node][]func()
	scrolls   map[*model.Node][]func(dx, dy int)
	offsets   map[*model.Node]*ScrollOffset
	input     inputState
	events    []model.InputEvent
	maxEvents int
}

type filter struct {
	fn func(model.InputEvent)
}

// ScrollOffset accumulates wheel units delivered to a scroll area.
type ScrollOffset struct {
	X, Y int
}

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithPulseInterval sets the paint pulse period.
func WithPulseInterval(d time.Duration) Option {
	return func(t *Toolkit) {
		if d > 0 {
			t.pulseInterval = d
		}
	}
}

// WithLaunchDelay postpones readiness after Start.
func WithLaunchDelay(d time.Duration) Option {
	return func(t *Toolkit) {
		t.launchDelay = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Toolkit) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithScreen sets the screen rectangle used for captures and clamping.
func WithScreen(b platform.Bounds) Option {
	return func(t *Toolkit) {
		t.screen = b
	}
}

// New returns a toolkit that has not been started.
func New(opts ...Option) *Toolkit {
	t := &Toolkit{
		loop:          newLoop(),
		logger:        slog.New(slog.DiscardHandler),
		pulseInterval: 16 * time.Millisecond,
		screen:        platform.Bounds{Width: 1920, Height: 1080},
		ready:         make(chan struct{}),
		stopPulse:     make(chan struct{}),
		nextID:        1,
		filters:       map[*model.Window][]*filter{},
		listeners:     map[*model.Window][]func(){},
		actions:       map[*model.Node][]func(){},
		scrolls:       map[*model.Node][]func(dx, dy int){},
		offsets:       map[*model.Node]*ScrollOffset{},
		maxEvents:     1024,
	}
	t.input = newInputState()
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches the UI goroutine and the pulse. Readiness is signalled on
// Ready after the launch delay. Start returns at once.
func (t *Toolkit) Start(ctx context.Context) error {
	select {
	case <-t.loop.done:
		return fmt.Errorf("start toolkit: %w", ErrStopped)
	default:
	}
	t.startOnce.Do(func() {
		go func() {
			if t.launchDelay > 0 {
				timer := time.NewTimer(t.launchDelay)
				defer timer.Stop()
				select {
				case <-timer.C:
				case <-ctx.Done():
					return
				case <-t.stopPulse:
					return
				}
			}
			t.loop.start()
			go t.pulse()
			t.logger.Debug("toolkit ready", "pulse", t.pulseInterval)
			close(t.ready)
		}()
	})
	return nil
}

func (t *Toolkit) Ready() <-chan struct{} { return t.ready }

func (t *Toolkit) Post(fn func()) bool     { return t.loop.post(fn) }
func (t *Toolkit) IsLoopThread() bool      { return t.loop.isLoopThread() }
func (t *Toolkit) Done() <-chan struct{}   { return t.loop.done }
func (t *Toolkit) Pending() int            { return t.loop.pending() }
func (t *Toolkit) Screen() platform.Bounds { return t.screen }

// Stop ends the pulse and the UI goroutine. Queued work is discarded.
func (t *Toolkit) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopPulse)
		t.loop.stop()
	})
}

func (t *Toolkit) SetPanicHandler(fn func(v any, stack []byte)) {
	t.loop.setPanicHandler(fn)
}

func (t *Toolkit) mustLoop(op string) {
	if !t.loop.isLoopThread() {
		panic(fmt.Errorf("%s: %w", op, platform.ErrNotOnLoop))
	}
}

// NewWindow creates a hidden window with an empty root pane.
func (t *Toolkit) NewWindow(title string, bounds platform.Bounds) *model.Window {
	t.mustLoop("new window")
	t.mu.Lock()
	w := &model.Window{ID: t.nextID, Title: title, Bounds: bounds.Array()}
	t.nextID++
	t.windows = append(t.windows, w)
	t.mu.Unlock()
	w.SetRoot(Pane("root", bounds))
	return w
}

// Show makes w visible and moves it to the top of the stacking order.
func (t *Toolkit) Show(w *model.Window) {
	t.mustLoop("show window")
	t.mu.Lock()
	defer t.mu.Unlock()
	t.raiseLocked(w)
	w.Showing = true
	for _, other := range t.windows {
		other.Focused = other == w
	}
}

func (t *Toolkit) raiseLocked(w *model.Window) {
	for i, other := range t.windows {
		if other == w {
			t.windows = append(t.windows[:i], t.windows[i+1:]...)
			break
		}
	}
	t.windows = append(t.windows, w)
}

// Hide hides w. Its pending pulse listeners will report ErrRenderCollector.
func (t *Toolkit) Hide(w *model.Window) {
	t.mustLoop("hide window")
	t.mu.Lock()
	defer t.mu.Unlock()
	w.Showing = false
	w.Focused = false
}

// Windows returns the windows in stacking order, bottom first.
func (t *Toolkit) Windows() []*model.Window {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*model.Window, len(t.windows))
	copy(out, t.windows)
	return out
}

// AddEventFilter observes input events delivered to w.
func (t *Toolkit) AddEventFilter(w *model.Window, fn func(model.InputEvent)) func() {
	t.mustLoop("add event filter")
	f := &filter{fn: fn}
	t.filters[w] = append(t.filters[w], f)
	return func() {
		remove := func() {
			fs := t.filters[w]
			for i, other := range fs {
				if other == f {
					t.filters[w] = append(fs[:i], fs[i+1:]...)
					return
				}
			}
		}
		if t.loop.isLoopThread() {
			remove()
			return
		}
		t.loop.post(remove)
	}
}

// OnAction registers fn to run when button n fires.
func (t *Toolkit) OnAction(n *model.Node, fn func()) {
	t.mustLoop("on action")
	t.actions[n] = append(t.actions[n], fn)
}

// OnScroll registers fn to run when scroll area n receives wheel units.
func (t *Toolkit) OnScroll(n *model.Node, fn func(dx, dy int)) {
	t.mustLoop("on scroll")
	t.scrolls[n] = append(t.scrolls[n], fn)
}

// ScrollOffsetOf reports the accumulated wheel units of scroll area n.
func (t *Toolkit) ScrollOffsetOf(n *model.Node) ScrollOffset {
	t.mustLoop("scroll offset")
	if off, ok := t.offsets[n]; ok {
		return *off
	}
	return ScrollOffset{}
}

// Events returns the most recent input events, oldest first.
func (t *Toolkit) Events() []model.InputEvent {
	t.mustLoop("events")
	out := make([]model.InputEvent, len(t.events))
	copy(out, t.events)
	return out
}

func (t *Toolkit) windowOf(n *model.Node) *model.Window {
	if n == nil {
		return nil
	}
	return n.Window()
}

func (t *Toolkit) dispatch(ev model.InputEvent, w *model.Window) {
	ev.At = time.Now()
	t.events = append(t.events, ev)
	if len(t.events) > t.maxEvents {
		t.events = t.events[len(t.events)-t.maxEvents:]
	}
	if w == nil {
		return
	}
	for _, f := range append([]*filter(nil), t.filters[w]...) {
		f.fn(ev)
	}
}

var (
	_ platform.Toolkit    = (*Toolkit)(nil)
	_ platform.Injector   = (*Toolkit)(nil)
	_ platform.SceneQuery = (*Toolkit)(nil)
)
