package async

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/desktop-harness/internal/model"
)

// fakePulses keeps listeners until pulse is called; only touched on the loop.
type fakePulses struct {
	windows   []*model.Window
	listeners map[*model.Window][]func()
}

func (f *fakePulses) Windows() []*model.Window { return f.windows }

func (f *fakePulses) AddPulseListener(w *model.Window, fn func()) {
	f.listeners[w] = append(f.listeners[w], fn)
}

func (f *fakePulses) pulse() {
	pending := f.listeners
	f.listeners = map[*model.Window][]func(){}
	for _, fns := range pending {
		for _, fn := range fns {
			fn()
		}
	}
}

func TestRenderWaiterCountsPulses(t *testing.T) {
	loop := newTestLoop(t)
	b := NewBridge(loop, fastProfile())
	main := &model.Window{ID: 1, Showing: true}
	src := &fakePulses{windows: []*model.Window{main}, listeners: map[*model.Window][]func(){}}

	waiter, err := CallOnUI(b, time.Second, func() (*RenderWaiter, error) {
		return NewRenderWaiter(loop, src, 2), nil
	})
	require.NoError(t, err)

	done := func() bool {
		ok, err := CallOnUI(b, time.Second, waiter.Done)
		require.NoError(t, err)
		return ok
	}
	pulse := func() {
		require.NoError(t, b.Exec(time.Second, func() error { src.pulse(); return nil }))
	}

	assert.False(t, done())
	pulse()
	assert.False(t, done())

	popup := &model.Window{ID: 2, Showing: true}
	require.NoError(t, b.Exec(time.Second, func() error {
		src.windows = append(src.windows, popup)
		return nil
	}))
	pulse()
	assert.False(t, done(), "popup was only picked up after the first pulse")
	pulse()
	assert.False(t, done())
	pulse()
	assert.True(t, done())

	require.NoError(t, b.Exec(time.Second, func() error {
		src.windows = append(src.windows, &model.Window{ID: 3})
		return nil
	}))
	assert.True(t, done(), "hidden windows are not tracked")
}

func TestRenderWaiterOffLoop(t *testing.T) {
	loop := newTestLoop(t)
	waiter := NewRenderWaiter(loop, &fakePulses{listeners: map[*model.Window][]func(){}}, 1)
	_, err := waiter.Done()
	require.ErrorIs(t, err, ErrNotOnLoop)
}

func TestWaitForRender(t *testing.T) {
	loop := newTestLoop(t)
	p := fastProfile()
	p.RenderPulses = 1
	b := NewBridge(loop, p)
	win := &model.Window{ID: 1, Showing: true}
	src := &fakePulses{windows: []*model.Window{win}, listeners: map[*model.Window][]func(){}}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(2 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				loop.Post(src.pulse)
			}
		}
	}()

	require.NoError(t, b.WaitForRender(context.Background(), src, time.Second))
}

func TestWaitForRenderWithoutPulses(t *testing.T) {
	loop := newTestLoop(t)
	p := fastProfile()
	p.RenderPulses = 1
	b := NewBridge(loop, p)
	win := &model.Window{ID: 1, Showing: true}
	src := &fakePulses{windows: []*model.Window{win}, listeners: map[*model.Window][]func(){}}

	err := b.WaitForRender(context.Background(), src, 30*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = b.WaitForRender(ctx, src, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}
