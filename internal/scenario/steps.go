package scenario

import (
	"context"
	"fmt"

	"github.com/mj1618/desktop-harness/internal/assert"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/query"
	"github.com/mj1618/desktop-harness/internal/robot"
)

func (s *Session) exec(ctx context.Context, step Step) error {
	r := s.Robot
	switch step.Kind {
	case KindClick, KindDoubleClick:
		buttons, err := parseButtons(step.Button)
		if err != nil {
			return err
		}
		if step.Target != "" {
			if err := s.moveTo(step); err != nil {
				return err
			}
		}
		if step.Kind == KindDoubleClick {
			return r.Clicker.DoubleClick(buttons...)
		}
		return r.Clicker.Click(buttons...)

	case KindMove:
		return s.moveTo(step)

	case KindDrag:
		buttons, err := parseButtons(step.Button)
		if err != nil {
			return err
		}
		from, err := s.point(step.Target, step.Pos, nil)
		if err != nil {
			return err
		}
		if err := r.Dragger.Drag(from, buttons...); err != nil {
			return err
		}
		if step.To == "" {
			return r.Dragger.DropBy(step.Offset[0], step.Offset[1])
		}
		to, err := s.point(step.To, "", nil)
		if err != nil {
			return err
		}
		return r.Dragger.DropTo(to)

	case KindType:
		keys, err := parseKeys(step.Keys)
		if err != nil {
			return err
		}
		return r.Typer.TypeTimes(max(step.Times, 1), keys...)

	case KindPush:
		if step.Combo != "" {
			kc, err := robot.ParseKeyCombination(step.Combo)
			if err != nil {
				return err
			}
			return r.Typer.PushCombination(kc)
		}
		keys, err := parseKeys(step.Keys)
		if err != nil {
			return err
		}
		return r.Typer.Push(keys...)

	case KindWrite:
		if step.Target != "" {
			return r.WriteInto(step.Target, step.Text)
		}
		return r.Writer.Write(step.Text)

	case KindScroll:
		d, err := platform.ParseDirection(step.Direction)
		if err != nil {
			return err
		}
		if step.Target != "" {
			if err := s.moveTo(step); err != nil {
				return err
			}
		}
		return r.Scroller.Scroll(max(step.Amount, 1), d)

	case KindSleep:
		return r.Sleeper.SleepContext(ctx, step.Duration)

	case KindWait:
		return assert.ThatEventually(ctx, s.Bridge, r.Scene(), step.Target, matcher(step.Expectation), step.Timeout)

	case KindExpect:
		return assert.ThatSelector(s.Bridge, r.Scene(), step.Target, matcher(step.Expectation))
	}
	return fmt.Errorf("%w: %q", ErrUnknownStep, step.Kind)
}

// moveTo moves to the step's target, or by its offset when it has none.
func (s *Session) moveTo(step Step) error {
	motion, err := parseMotion(step.Motion)
	if err != nil {
		return err
	}
	if step.Target == "" {
		return s.Robot.Mover.MoveBy(step.Offset[0], step.Offset[1], motion)
	}
	pq, err := s.point(step.Target, step.Pos, step.Offset)
	if err != nil {
		return err
	}
	return s.Robot.Mover.MoveTo(pq, motion)
}

func (s *Session) point(selector, pos string, offset []float64) (query.PointQuery, error) {
	p, err := query.ParsePos(pos)
	if err != nil {
		return query.PointQuery{}, err
	}
	pq := s.Robot.PointOf(selector, p)
	if len(offset) == 2 {
		pq = pq.WithOffset(offset[0], offset[1])
	}
	return pq, nil
}

// matcher combines the expectation's set fields; with none set the node
// only has to be visible.
func matcher(e Expectation) assert.Matcher {
	var ms []assert.Matcher
	if e.HasText != nil {
		ms = append(ms, assert.HasText(*e.HasText))
	}
	if e.Contains != nil {
		ms = append(ms, assert.HasTextContaining(*e.Contains))
	}
	if e.Visible != nil {
		ms = append(ms, boolMatcher(*e.Visible, assert.IsVisible(), assert.IsInvisible()))
	}
	if e.Enabled != nil {
		ms = append(ms, boolMatcher(*e.Enabled, assert.IsEnabled(), assert.IsDisabled()))
	}
	if e.Focused != nil {
		ms = append(ms, boolMatcher(*e.Focused, assert.IsFocused(), assert.Not(assert.IsFocused())))
	}
	if e.Children != nil {
		ms = append(ms, assert.HasChildren(*e.Children))
	}
	if e.Role != "" {
		ms = append(ms, assert.HasRole(e.Role))
	}
	if e.Class != "" {
		ms = append(ms, assert.HasClass(e.Class))
	}
	switch len(ms) {
	case 0:
		return assert.IsVisible()
	case 1:
		return ms[0]
	}
	return assert.All(ms...)
}

func boolMatcher(want bool, yes, no assert.Matcher) assert.Matcher {
	if want {
		return yes
	}
	return no
}

func parseButtons(s string) ([]platform.MouseButton, error) {
	if s == "" {
		return nil, nil
	}
	b, err := platform.ParseMouseButton(s)
	if err != nil {
		return nil, err
	}
	return []platform.MouseButton{b}, nil
}

func parseMotion(s string) (platform.Motion, error) {
	if s == "" {
		return platform.Direct, nil
	}
	return platform.ParseMotion(s)
}

func parseKeys(names []string) ([]platform.Key, error) {
	keys := make([]platform.Key, 0, len(names))
	for _, name := range names {
		k, err := platform.ParseKey(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
