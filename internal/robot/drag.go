package robot

import (
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/query"
)

// Dragger presses at one point and releases at another.
type Dragger struct {
	c     *core
	mouse *Mouse
	mover *Mover
}

// Drag moves to pq and presses buttons (left if none).
func (d *Dragger) Drag(pq query.PointQuery, buttons ...platform.MouseButton) error {
	d.c.metrics.GestureObserved("drag")
	if err := d.mover.MoveTo(pq, platform.Direct); err != nil {
		return err
	}
	return d.mouse.Press(buttons...)
}

// DropTo moves to pq and releases every held button.
func (d *Dragger) DropTo(pq query.PointQuery) error {
	if err := d.mover.MoveTo(pq, platform.Direct); err != nil {
		return err
	}
	return d.Drop()
}

// DropBy moves by dx, dy and releases every held button.
func (d *Dragger) DropBy(dx, dy float64) error {
	if err := d.mover.MoveBy(dx, dy, platform.Direct); err != nil {
		return err
	}
	return d.Drop()
}

// Drop releases every held button where the pointer is.
func (d *Dragger) Drop() error {
	return d.mouse.Release()
}
