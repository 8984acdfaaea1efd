// Package lifecycle starts the toolkit and manages the window input is
// directed at.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

var (
	ErrLaunchTimeout = errors.New("toolkit launch timed out")
	ErrSetupTimeout  = errors.New("window setup timed out")
	ErrNotRegistered = errors.New("no window registered")
)

// State is where the controller is in its lifecycle.
type State int

const (
	Unregistered State = iota
	Registered
	ContentAttached
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Registered:
		return "registered"
	case ContentAttached:
		return "content-attached"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// RebindFunc is told when the registered window changes. old is nil on the
// first registration.
type RebindFunc func(old, new *model.Window)

// Controller owns the toolkit's startup and the registered window.
type Controller struct {
	tk     platform.Toolkit
	bridge *async.Bridge
	logger *slog.Logger

	title  string
	bounds platform.Bounds

	mu         sync.Mutex
	state      State
	primary    *model.Window
	registered *model.Window
	rebind     []RebindFunc
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPrimaryWindow sets the title and bounds of the primary window.
func WithPrimaryWindow(title string, bounds platform.Bounds) Option {
	return func(c *Controller) {
		c.title = title
		c.bounds = bounds
	}
}

func New(tk platform.Toolkit, bridge *async.Bridge, opts ...Option) *Controller {
	c := &Controller{
		tk:     tk,
		bridge: bridge,
		logger: bridge.Logger(),
		title:  "primary",
		bounds: platform.Bounds{Width: 800, Height: 600},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Registered returns the window input is currently directed at.
func (c *Controller) Registered() (*model.Window, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.registered == nil {
		return nil, ErrNotRegistered
	}
	return c.registered, nil
}

// OnRebind adds a hook run whenever a different window is registered.
func (c *Controller) OnRebind(fn RebindFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebind = append(c.rebind, fn)
}

// RegisterPrimary starts the toolkit, waits up to LaunchTimeout for it to
// become ready and registers the primary window. Calling it again
// re-registers the same primary window.
func (c *Controller) RegisterPrimary(ctx context.Context) (*model.Window, error) {
	c.tk.SetPanicHandler(c.bridge.Aggregator().Uncaught)
	if err := c.tk.Start(ctx); err != nil {
		return nil, fmt.Errorf("register primary: %w", err)
	}

	timeout := c.bridge.Profile().LaunchTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c.tk.Ready():
	case <-timer.C:
		return nil, fmt.Errorf("toolkit not ready after %s: %w", timeout, ErrLaunchTimeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("register primary: %w", ctx.Err())
	}

	c.mu.Lock()
	primary := c.primary
	c.mu.Unlock()
	if primary == nil {
		w, err := async.CallOnUI(c.bridge, c.bridge.Profile().SetupTimeout, func() (*model.Window, error) {
			return c.tk.NewWindow(c.title, c.bounds), nil
		})
		if err != nil {
			return nil, c.setupErr("create primary window", err)
		}
		c.mu.Lock()
		c.primary = w
		c.mu.Unlock()
		primary = w
		c.logger.Debug("primary window created", "id", w.ID, "title", w.Title)
	}
	c.register(primary)
	return primary, nil
}

// RegisterWindow creates a window with fn on the UI goroutine and registers
// it in place of the current one.
func (c *Controller) RegisterWindow(fn func() (*model.Window, error)) (*model.Window, error) {
	w, err := async.CallOnUI(c.bridge, c.bridge.Profile().SetupTimeout, fn)
	if err != nil {
		return nil, c.setupErr("register window", err)
	}
	if w == nil {
		return nil, fmt.Errorf("register window: %w", ErrNotRegistered)
	}
	c.register(w)
	return w, nil
}

func (c *Controller) register(w *model.Window) {
	c.mu.Lock()
	old := c.registered
	c.registered = w
	c.state = Registered
	hooks := append([]RebindFunc(nil), c.rebind...)
	c.mu.Unlock()

	if old == w {
		return
	}
	c.logger.Debug("window registered", "id", w.ID, "title", w.Title)
	for _, fn := range hooks {
		fn(old, w)
	}
}

// SetupWindow runs fn against the registered window on the UI goroutine.
func (c *Controller) SetupWindow(fn func(w *model.Window) error) error {
	w, err := c.Registered()
	if err != nil {
		return fmt.Errorf("setup window: %w", err)
	}
	err = c.bridge.Exec(c.bridge.Profile().SetupTimeout, func() error {
		return fn(w)
	})
	if err != nil {
		return c.setupErr("setup window", err)
	}
	c.bridge.WaitForEvents()
	return nil
}

// SetupRoot installs the node fn builds as the registered window's root
// and shows the window.
func (c *Controller) SetupRoot(fn func() (*model.Node, error)) error {
	err := c.SetupWindow(func(w *model.Window) error {
		root, err := fn()
		if err != nil {
			return err
		}
		w.SetRoot(root)
		c.tk.Show(w)
		return nil
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.state = ContentAttached
	c.mu.Unlock()
	return nil
}

// ShowWindow shows w and gives it focus.
func (c *Controller) ShowWindow(w *model.Window) error {
	return c.onUI("show window", func() { c.tk.Show(w) })
}

// HideWindow hides w.
func (c *Controller) HideWindow(w *model.Window) error {
	return c.onUI("hide window", func() { c.tk.Hide(w) })
}

// Cleanup hides every showing window.
func (c *Controller) Cleanup() error {
	return c.onUI("cleanup", func() {
		for _, w := range c.tk.Windows() {
			if w.Showing {
				c.tk.Hide(w)
			}
		}
	})
}

// Stop shuts the toolkit down.
func (c *Controller) Stop() {
	c.tk.Stop()
	c.mu.Lock()
	c.state = Unregistered
	c.registered = nil
	c.mu.Unlock()
}

func (c *Controller) onUI(op string, fn func()) error {
	err := c.bridge.Exec(c.bridge.Profile().SetupTimeout, func() error {
		fn()
		return nil
	})
	if err != nil {
		return c.setupErr(op, err)
	}
	c.bridge.WaitForEvents()
	return nil
}

func (c *Controller) setupErr(op string, err error) error {
	if errors.Is(err, async.ErrTimeout) {
		return fmt.Errorf("%s: %w: %w", op, ErrSetupTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
