package platform

import (
	"context"
	"errors"
	"image"

	"github.com/mj1618/desktop-harness/internal/model"
)

var (
	// ErrNotOnLoop is returned by toolkit operations invoked off the UI goroutine.
	ErrNotOnLoop = errors.New("not on the ui goroutine")

	// ErrRenderCollector is raised when a pulse listener fires for a window
	// that was hidden before the pulse arrived. It is harmless.
	ErrRenderCollector = errors.New("render collector: pulse for hidden window")
)

// SceneQuery exposes the live scene graph. Windows and the nodes under
// them must only be read on the UI goroutine.
type SceneQuery interface {
	Windows() []*model.Window
}

// Injector delivers synthetic input. Every method must be called on the
// UI goroutine.
type Injector interface {
	MouseMove(p Point) error
	MousePress(b MouseButton) error
	MouseRelease(b MouseButton) error
	MouseWheel(amount int, horizontal bool) error
	KeyPress(k Key) error
	KeyRelease(k Key) error

	// TypeChar delivers a typed character to the focus owner of w.
	TypeChar(w *model.Window, ch rune) error

	PointerPosition() Point

	// Capture renders the screen region rect.
	Capture(rect Bounds) (image.Image, error)
}

// Toolkit is a UI toolkit with a single event-loop goroutine.
type Toolkit interface {
	SceneQuery

	// Start launches the toolkit. Ready is closed once its loop runs.
	Start(ctx context.Context) error
	Ready() <-chan struct{}

	// Post, IsLoopThread and Done describe the UI loop.
	Post(fn func()) bool
	IsLoopThread() bool
	Done() <-chan struct{}
	Stop()

	// Window management; UI goroutine only.
	NewWindow(title string, bounds Bounds) *model.Window
	Show(w *model.Window)
	Hide(w *model.Window)

	// AddEventFilter observes every input event delivered to w.
	AddEventFilter(w *model.Window, fn func(model.InputEvent)) (remove func())

	// AddPulseListener runs fn once, at the next paint pulse of w.
	AddPulseListener(w *model.Window, fn func())

	// SetPanicHandler receives panics recovered on the UI goroutine outside
	// of any task.
	SetPanicHandler(fn func(v any, stack []byte))
}
