package robot

import (
	"fmt"
	"image"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/query"
)

// Robot bundles the individual robots behind one value. All of them share
// the same bridge, injector and held-input state.
type Robot struct {
	c *core

	Mouse    *Mouse
	Keyboard *Keyboard
	Typer    *Typer
	Writer   *Writer
	Mover    *Mover
	Dragger  *Dragger
	Clicker  *Clicker
	Scroller *Scroller
	Sleeper  Sleeper
}

// New builds a Robot that injects through inj and reads the scene from scene.
func New(b *async.Bridge, inj platform.Injector, scene platform.SceneQuery, opts ...Option) *Robot {
	c := newCore(b, inj, scene, opts)
	r := &Robot{c: c}
	r.Mouse = &Mouse{c: c}
	r.Keyboard = &Keyboard{c: c}
	r.Typer = &Typer{c: c, keyboard: r.Keyboard}
	r.Writer = &Writer{c: c, typer: r.Typer}
	r.Mover = &Mover{c: c, mouse: r.Mouse}
	r.Dragger = &Dragger{c: c, mouse: r.Mouse, mover: r.Mover}
	r.Clicker = &Clicker{c: c, mouse: r.Mouse, mover: r.Mover}
	r.Scroller = &Scroller{c: c, mouse: r.Mouse}
	return r
}

func (r *Robot) Bridge() *async.Bridge       { return r.c.bridge }
func (r *Robot) Scene() platform.SceneQuery  { return r.c.scene }
func (r *Robot) Injector() platform.Injector { return r.c.inj }
func (r *Robot) PressedKeys() []platform.Key { return r.Keyboard.Pressed() }
func (r *Robot) PressedButtons() []platform.MouseButton {
	return r.Mouse.Pressed()
}

// Lookup resolves selector against the scene on the UI goroutine. The
// returned node is live; read or mutate it only on the UI goroutine.
func (r *Robot) Lookup(selector string) (*model.Node, error) {
	return async.CallOnUI(r.c.bridge, r.c.bridge.Profile().MouseTimeout, func() (*model.Node, error) {
		return query.FromScene(r.c.scene).Lookup(selector).Query()
	})
}

// LookupAll returns every node matching selector.
func (r *Robot) LookupAll(selector string) ([]*model.Node, error) {
	return async.CallOnUI(r.c.bridge, r.c.bridge.Profile().MouseTimeout, func() ([]*model.Node, error) {
		q := query.FromScene(r.c.scene).Lookup(selector)
		return q.QueryAll(), q.Err()
	})
}

// PointOf returns a lazy point at pos of the first node matching selector.
func (r *Robot) PointOf(selector string, pos query.Pos) query.PointQuery {
	return query.OfSelector(r.c.scene, selector, pos)
}

// ClickOnSelector moves straight to the centre of selector and clicks.
func (r *Robot) ClickOnSelector(selector string, buttons ...platform.MouseButton) error {
	return r.Clicker.ClickOn(r.PointOf(selector, query.Center), platform.Direct, buttons...)
}

// WriteInto clicks selector to focus it and writes text.
func (r *Robot) WriteInto(selector, text string) error {
	if err := r.ClickOnSelector(selector); err != nil {
		return fmt.Errorf("write into %s: %w", selector, err)
	}
	return r.Writer.Write(text)
}

// Click, Move and friends forward to the individual robots.

func (r *Robot) Click(buttons ...platform.MouseButton) error { return r.Clicker.Click(buttons...) }
func (r *Robot) Write(text string) error                     { return r.Writer.Write(text) }
func (r *Robot) Type(keys ...platform.Key) error             { return r.Typer.Type(keys...) }
func (r *Robot) Push(keys ...platform.Key) error             { return r.Typer.Push(keys...) }

func (r *Robot) MoveTo(pq query.PointQuery, motion platform.Motion) error {
	return r.Mover.MoveTo(pq, motion)
}

func (r *Robot) Scroll(amount int, d platform.Direction) error {
	return r.Scroller.Scroll(amount, d)
}

// Capture grabs the pixels inside rect.
func (r *Robot) Capture(rect platform.Bounds) (image.Image, error) {
	return async.CallOnUI(r.c.bridge, r.c.bridge.Profile().MouseTimeout, func() (image.Image, error) {
		return r.c.inj.Capture(rect)
	})
}

// ReleaseAll releases every held key and button, keys first.
func (r *Robot) ReleaseAll() error {
	if err := r.Keyboard.Release(); err != nil {
		return err
	}
	return r.Mouse.Release()
}

// WaitForEvents lets the UI goroutine settle.
func (r *Robot) WaitForEvents() { r.c.bridge.WaitForEvents() }
