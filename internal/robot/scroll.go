package robot

import "github.com/mj1618/desktop-harness/internal/platform"

// Scroller turns the wheel one unit at a time.
type Scroller struct {
	c     *core
	mouse *Mouse
}

// Scroll delivers amount single-unit wheel notches in direction d.
func (s *Scroller) Scroll(amount int, d platform.Direction) error {
	s.c.metrics.GestureObserved("scroll")
	unit, horizontal := d.Unit()
	for i := 0; i < amount; i++ {
		if err := s.mouse.Scroll(unit, horizontal); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scroller) ScrollUp(amount int) error   { return s.Scroll(amount, platform.ScrollUp) }
func (s *Scroller) ScrollDown(amount int) error { return s.Scroll(amount, platform.ScrollDown) }
