package sim

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

type inputState struct {
	pos     platform.Point
	buttons map[platform.MouseButton]*model.Node // pressed button -> node under the pointer at press time
	keys    map[platform.Key]bool
}

func newInputState() inputState {
	return inputState{
		buttons: map[platform.MouseButton]*model.Node{},
		keys:    map[platform.Key]bool{},
	}
}

func (t *Toolkit) checkLoop(op string) error {
	if !t.loop.isLoopThread() {
		return fmt.Errorf("%s: %w", op, platform.ErrNotOnLoop)
	}
	return nil
}

// PointerPosition returns the last position the pointer was moved to.
func (t *Toolkit) PointerPosition() platform.Point {
	return t.input.pos
}

// MouseMove moves the pointer to p.
func (t *Toolkit) MouseMove(p platform.Point) error {
	if err := t.checkLoop("mouse move"); err != nil {
		return err
	}
	t.input.pos = p
	target, w := t.hit(p)
	t.dispatch(model.InputEvent{Kind: model.EventMouseMoved, X: p.X, Y: p.Y, Target: nodeID(target)}, w)
	return nil
}

// MousePress presses b over whatever is under the pointer. A left press on
// an enabled focusable node focuses it.
func (t *Toolkit) MousePress(b platform.MouseButton) error {
	if err := t.checkLoop("mouse press"); err != nil {
		return err
	}
	p := t.input.pos
	target, w := t.hit(p)
	t.input.buttons[b] = target
	if b == platform.MouseLeft && target != nil && !target.Disabled && model.IsFocusable(target.Role) {
		if tw := target.Window(); tw != nil {
			tw.SetFocus(target)
		}
	}
	t.dispatch(model.InputEvent{Kind: model.EventMousePressed, Button: b.String(), X: p.X, Y: p.Y, Target: nodeID(target)}, w)
	return nil
}

// MouseRelease releases b. Releasing the left button over the enabled
// button it was pressed on fires that button's actions.
func (t *Toolkit) MouseRelease(b platform.MouseButton) error {
	if err := t.checkLoop("mouse release"); err != nil {
		return err
	}
	pressedOn, ok := t.input.buttons[b]
	if !ok {
		return nil
	}
	delete(t.input.buttons, b)

	p := t.input.pos
	target, w := t.hit(p)
	t.dispatch(model.InputEvent{Kind: model.EventMouseReleased, Button: b.String(), X: p.X, Y: p.Y, Target: nodeID(target)}, w)
	if b == platform.MouseLeft && target != nil && target == pressedOn {
		t.fire(target)
	}
	return nil
}

// MouseWheel scrolls the innermost scroll area under the pointer.
func (t *Toolkit) MouseWheel(amount int, horizontal bool) error {
	if err := t.checkLoop("mouse wheel"); err != nil {
		return err
	}
	p := t.input.pos
	target, w := t.hit(p)
	t.dispatch(model.InputEvent{Kind: model.EventScroll, X: p.X, Y: p.Y, Delta: amount, Target: nodeID(target)}, w)

	area := scrollAncestor(target)
	if area == nil || area.Disabled {
		return nil
	}
	off, ok := t.offsets[area]
	if !ok {
		off = &ScrollOffset{}
		t.offsets[area] = off
	}
	dx, dy := 0, amount
	if horizontal {
		dx, dy = amount, 0
	}
	off.X += dx
	off.Y += dy
	for _, fn := range t.scrolls[area] {
		fn(dx, dy)
	}
	return nil
}

// KeyPress presses k. Printable keys type into a focused text input, with
// shift upper-casing letters; backspace deletes; enter and space fire a
// focused button.
func (t *Toolkit) KeyPress(k platform.Key) error {
	if err := t.checkLoop("key press"); err != nil {
		return err
	}
	t.input.keys[k] = true
	w := t.focusedWindow()
	owner := focusOwner(w)
	t.dispatch(model.InputEvent{Kind: model.EventKeyPressed, Key: string(k), Target: nodeID(owner)}, w)
	if owner == nil || owner.Disabled || k.IsModifier() {
		return nil
	}

	switch {
	case owner.Role == model.RoleButton && (k == platform.KeyEnter || k == platform.KeySpace):
		t.fire(owner)
	case owner.Role == model.RoleInput && k == platform.KeyBackspace:
		deleteLastRune(owner)
	case owner.Role == model.RoleInput && !t.chordHeld():
		if ch, ok := k.Char(); ok {
			if t.input.keys[platform.KeyShift] {
				ch = unicode.ToUpper(ch)
			}
			t.typeInto(owner, w, ch)
		}
	}
	return nil
}

// KeyRelease releases k. Releasing a key that is not down does nothing.
func (t *Toolkit) KeyRelease(k platform.Key) error {
	if err := t.checkLoop("key release"); err != nil {
		return err
	}
	if !t.input.keys[k] {
		return nil
	}
	delete(t.input.keys, k)
	w := t.focusedWindow()
	t.dispatch(model.InputEvent{Kind: model.EventKeyReleased, Key: string(k), Target: nodeID(focusOwner(w))}, w)
	return nil
}

// TypeChar types ch into the focus owner of w.
func (t *Toolkit) TypeChar(w *model.Window, ch rune) error {
	if err := t.checkLoop("type char"); err != nil {
		return err
	}
	if w == nil {
		w = t.focusedWindow()
	}
	if w == nil {
		return fmt.Errorf("type %q: no focused window", ch)
	}
	owner := focusOwner(w)
	if owner == nil || owner.Disabled || owner.Role != model.RoleInput {
		t.dispatch(model.InputEvent{Kind: model.EventKeyTyped, Char: string(ch), Target: nodeID(owner)}, w)
		return nil
	}
	t.typeInto(owner, w, ch)
	return nil
}

func (t *Toolkit) typeInto(n *model.Node, w *model.Window, ch rune) {
	n.Text += string(ch)
	t.dispatch(model.InputEvent{Kind: model.EventKeyTyped, Char: string(ch), Target: nodeID(n)}, w)
}

// chordHeld reports whether a non-shift modifier is down, in which case
// keys are shortcuts rather than text.
func (t *Toolkit) chordHeld() bool {
	return t.input.keys[platform.KeyControl] || t.input.keys[platform.KeyAlt] || t.input.keys[platform.KeyMeta]
}

func (t *Toolkit) fire(n *model.Node) {
	if n.Role != model.RoleButton || n.Disabled {
		return
	}
	for _, fn := range append([]func(){}, t.actions[n]...) {
		fn()
	}
}

// hit finds the deepest visible node under p in the topmost showing
// window that contains p.
func (t *Toolkit) hit(p platform.Point) (*model.Node, *model.Window) {
	windows := t.Windows()
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		if !w.Showing || !platform.BoundsOf(w.Bounds).Contains(p) {
			continue
		}
		if w.Root == nil {
			return nil, w
		}
		return deepest(w.Root, p), w
	}
	return nil, nil
}

func deepest(n *model.Node, p platform.Point) *model.Node {
	if n.Hidden || !n.Contains(p.X, p.Y) {
		return nil
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if found := deepest(n.Children[i], p); found != nil {
			return found
		}
	}
	return n
}

func (t *Toolkit) focusedWindow() *model.Window {
	windows := t.Windows()
	for i := len(windows) - 1; i >= 0; i-- {
		if windows[i].Showing && windows[i].Focused {
			return windows[i]
		}
	}
	return nil
}

func focusOwner(w *model.Window) *model.Node {
	if w == nil {
		return nil
	}
	return w.FocusOwner()
}

func scrollAncestor(n *model.Node) *model.Node {
	for ; n != nil; n = n.Parent() {
		if n.Role == model.RoleScroll {
			return n
		}
	}
	return nil
}

func deleteLastRune(n *model.Node) {
	if n.Text == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(n.Text)
	n.Text = n.Text[:len(n.Text)-size]
}

func nodeID(n *model.Node) string {
	if n == nil {
		return ""
	}
	return n.ID
}
