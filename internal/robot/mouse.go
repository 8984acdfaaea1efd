package robot

import (
	"time"

	"github.com/mj1618/desktop-harness/internal/platform"
)

// Mouse presses, releases and moves the pointer.
type Mouse struct {
	c       *core
	pressed pressedSet[platform.MouseButton]
}

func defaultButtons(buttons []platform.MouseButton) []platform.MouseButton {
	if len(buttons) == 0 {
		return []platform.MouseButton{platform.MouseLeft}
	}
	return buttons
}

// Press presses buttons in order, the left button if none are given.
func (m *Mouse) Press(buttons ...platform.MouseButton) error {
	for _, b := range defaultButtons(buttons) {
		if err := m.c.exec("mouse press "+b.String(), m.c.bridge.Profile().MouseTimeout, m.pressFn(b)); err != nil {
			return err
		}
	}
	return nil
}

// PressNoWait queues the presses without waiting for them.
func (m *Mouse) PressNoWait(buttons ...platform.MouseButton) error {
	for _, b := range defaultButtons(buttons) {
		if err := m.c.post("mouse press "+b.String(), m.pressFn(b)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mouse) pressFn(b platform.MouseButton) func() error {
	return func() error {
		m.pressed.add(b)
		return m.c.inj.MousePress(b)
	}
}

// Release releases buttons, or every held button (most recent first) when
// none are given. Buttons that are not held are skipped.
func (m *Mouse) Release(buttons ...platform.MouseButton) error {
	return m.release("mouse release", m.c.bridge.Profile().MouseTimeout, buttons)
}

// release submits every release even if the press is still queued; the
// held check happens on the UI goroutine, after any earlier press ran.
func (m *Mouse) release(op string, timeout time.Duration, buttons []platform.MouseButton) error {
	if len(buttons) == 0 {
		return m.c.exec(op+" all", timeout, m.releaseAllFn())
	}
	for _, b := range buttons {
		if err := m.c.exec(op+" "+b.String(), timeout, m.releaseFn(b)); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseNoWait queues the releases without waiting for them.
func (m *Mouse) ReleaseNoWait(buttons ...platform.MouseButton) error {
	if len(buttons) == 0 {
		return m.c.post("mouse release all", m.releaseAllFn())
	}
	for _, b := range buttons {
		if err := m.c.post("mouse release "+b.String(), m.releaseFn(b)); err != nil {
			return err
		}
	}
	return nil
}

// releaseAllFn reads the held buttons when it runs, not when it is queued.
func (m *Mouse) releaseAllFn() func() error {
	return func() error {
		for _, b := range m.pressed.reversed() {
			if err := m.releaseFn(b)(); err != nil {
				return err
			}
		}
		return nil
	}
}

func (m *Mouse) releaseFn(b platform.MouseButton) func() error {
	return func() error {
		if !m.pressed.remove(b) {
			return nil
		}
		return m.c.inj.MouseRelease(b)
	}
}

// Move moves the pointer to p and waits for the UI to settle.
func (m *Mouse) Move(p platform.Point) error {
	return m.c.exec("mouse move", m.c.bridge.Profile().MouseTimeout, func() error {
		return m.c.inj.MouseMove(p)
	})
}

// MoveNoWait queues a pointer move.
func (m *Mouse) MoveNoWait(p platform.Point) error {
	return m.c.post("mouse move", func() error {
		return m.c.inj.MouseMove(p)
	})
}

// Scroll delivers one wheel notch of amount units.
func (m *Mouse) Scroll(amount int, horizontal bool) error {
	return m.c.exec("mouse wheel", m.c.bridge.Profile().MouseTimeout, func() error {
		return m.c.inj.MouseWheel(amount, horizontal)
	})
}

// Position reads the pointer position on the UI goroutine.
func (m *Mouse) Position() (platform.Point, error) {
	var p platform.Point
	err := m.c.bridge.Exec(m.c.bridge.Profile().MouseTimeout, func() error {
		p = m.c.inj.PointerPosition()
		return nil
	})
	return p, err
}

// Pressed returns the held buttons in press order.
func (m *Mouse) Pressed() []platform.MouseButton {
	return m.pressed.snapshot()
}
