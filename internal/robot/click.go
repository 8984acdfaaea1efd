package robot

import (
	"context"
	"fmt"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/query"
)

// Clicker clicks and double-clicks.
type Clicker struct {
	c     *core
	mouse *Mouse
	mover *Mover
}

// Click presses and releases buttons (left if none) where the pointer is.
func (c *Clicker) Click(buttons ...platform.MouseButton) error {
	c.c.metrics.GestureObserved("click")
	return c.click(buttons)
}

// click queues the presses and waits on the releases, bounded by
// ClickTimeout.
func (c *Clicker) click(buttons []platform.MouseButton) error {
	buttons = defaultButtons(buttons)
	if err := c.mouse.PressNoWait(buttons...); err != nil {
		return err
	}
	return c.mouse.release("click release", c.c.bridge.Profile().ClickTimeout, buttons)
}

// ClickOn moves to pq with motion and clicks.
func (c *Clicker) ClickOn(pq query.PointQuery, motion platform.Motion, buttons ...platform.MouseButton) error {
	if err := c.mover.MoveTo(pq, motion); err != nil {
		return err
	}
	return c.Click(buttons...)
}

// DoubleClick clicks twice with DoubleClickSleep in between. The whole
// sequence is bounded by DoubleClickTimeout; steps left when it expires
// are abandoned.
func (c *Clicker) DoubleClick(buttons ...platform.MouseButton) error {
	c.c.metrics.GestureObserved("double_click")
	p := c.c.bridge.Profile()
	ctx, cancel := context.WithTimeout(context.Background(), p.DoubleClickTimeout)
	defer cancel()

	steps := []func() error{
		func() error { return c.click(buttons) },
		func() error { c.c.profileSleep(p.DoubleClickSleep); return nil },
		func() error { return c.click(buttons) },
	}
	for i, step := range steps {
		if ctx.Err() != nil {
			err := fmt.Errorf("double click abandoned at step %d/%d: %w", i+1, len(steps), async.ErrTimeout)
			return c.c.primitiveErr("double click", p.DoubleClickTimeout, err)
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// DoubleClickOn moves to pq with motion and double-clicks.
func (c *Clicker) DoubleClickOn(pq query.PointQuery, motion platform.Motion, buttons ...platform.MouseButton) error {
	if err := c.mover.MoveTo(pq, motion); err != nil {
		return err
	}
	return c.DoubleClick(buttons...)
}
