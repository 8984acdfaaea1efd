package robot

import (
	"fmt"
	"math"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/query"
)

// Mover moves the pointer along a path in small steps.
type Mover struct {
	c     *core
	mouse *Mouse
}

// MoveTo moves the pointer to the point pq resolves to. Intermediate steps
// are queued without waiting; the final step is waited on. The target is
// then re-queried and a waited move to it is always issued once more.
func (m *Mover) MoveTo(pq query.PointQuery, motion platform.Motion) error {
	m.c.metrics.GestureObserved("move")
	source, err := m.mouse.Position()
	if err != nil {
		return fmt.Errorf("move to %s: %w", pq, err)
	}
	target, err := m.resolve(pq)
	if err != nil {
		return fmt.Errorf("move to %s: %w", pq, err)
	}

	if source != target {
		for _, leg := range legs(source, target, motion) {
			if err := m.moveDirectly(leg[0], leg[1]); err != nil {
				return err
			}
		}
	}

	final, err := m.resolve(pq)
	if err != nil {
		return fmt.Errorf("move to %s: %w", pq, err)
	}
	return m.mouse.Move(final)
}

// MoveBy moves the pointer by dx, dy from where it is now.
func (m *Mover) MoveBy(dx, dy float64, motion platform.Motion) error {
	source, err := m.mouse.Position()
	if err != nil {
		return fmt.Errorf("move by %g,%g: %w", dx, dy, err)
	}
	return m.MoveTo(query.At(source.Add(dx, dy)), motion)
}

func (m *Mover) resolve(pq query.PointQuery) (platform.Point, error) {
	return async.CallOnUI(m.c.bridge, m.c.bridge.Profile().MouseTimeout, pq.Query)
}

func (m *Mover) moveDirectly(source, target platform.Point) error {
	p := m.c.bridge.Profile()
	points := Interpolate(source, target, StepCount(source.Distance(target), p.MinMoveSteps, p.MaxMoveSteps))
	for _, pt := range points[:len(points)-1] {
		if err := m.mouse.MoveNoWait(pt); err != nil {
			return err
		}
		m.c.profileSleep(p.MoveStepSleep)
	}
	return m.mouse.Move(target)
}

// legs splits a move into the straight segments motion calls for.
func legs(source, target platform.Point, motion platform.Motion) [][2]platform.Point {
	switch motion {
	case platform.HorizontalFirst:
		corner := platform.Point{X: target.X, Y: source.Y}
		return [][2]platform.Point{{source, corner}, {corner, target}}
	case platform.VerticalFirst:
		corner := platform.Point{X: source.X, Y: target.Y}
		return [][2]platform.Point{{source, corner}, {corner, target}}
	default:
		return [][2]platform.Point{{source, target}}
	}
}

// StepCount clamps distance into [lo, hi].
func StepCount(distance float64, lo, hi int) int {
	n := int(math.Round(distance))
	if n < lo {
		n = lo
	}
	if n > hi {
		n = hi
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Interpolate returns steps evenly spaced points from source (exclusive)
// to target (inclusive). The last point is exactly target.
func Interpolate(source, target platform.Point, steps int) []platform.Point {
	if steps < 1 {
		steps = 1
	}
	out := make([]platform.Point, steps)
	dx := (target.X - source.X) / float64(steps)
	dy := (target.Y - source.Y) / float64(steps)
	for i := 1; i < steps; i++ {
		out[i-1] = platform.Point{X: source.X + dx*float64(i), Y: source.Y + dy*float64(i)}
	}
	out[steps-1] = target
	return out
}
