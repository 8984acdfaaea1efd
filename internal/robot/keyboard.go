package robot

import (
	"github.com/mj1618/desktop-harness/internal/platform"
)

// Keyboard presses and releases keys.
type Keyboard struct {
	c       *core
	pressed pressedSet[platform.Key]
}

// Press presses keys in order and waits for the UI to settle after each.
func (k *Keyboard) Press(keys ...platform.Key) error {
	for _, key := range keys {
		if err := k.c.exec("key press "+string(key), k.c.bridge.Profile().KeyboardTimeout, k.pressFn(key)); err != nil {
			return err
		}
	}
	return nil
}

// PressNoWait queues the presses.
func (k *Keyboard) PressNoWait(keys ...platform.Key) error {
	for _, key := range keys {
		if err := k.c.post("key press "+string(key), k.pressFn(key)); err != nil {
			return err
		}
	}
	return nil
}

func (k *Keyboard) pressFn(key platform.Key) func() error {
	return func() error {
		k.pressed.add(key)
		return k.c.inj.KeyPress(key)
	}
}

// Release releases keys, or every held key (most recent first) when none
// are given. Keys that are not held are skipped on the UI goroutine, so a
// release right after PressNoWait still pairs with it.
func (k *Keyboard) Release(keys ...platform.Key) error {
	timeout := k.c.bridge.Profile().KeyboardTimeout
	if len(keys) == 0 {
		return k.c.exec("key release all", timeout, k.releaseAllFn())
	}
	for _, key := range keys {
		if err := k.c.exec("key release "+string(key), timeout, k.releaseFn(key)); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseNoWait queues the releases.
func (k *Keyboard) ReleaseNoWait(keys ...platform.Key) error {
	if len(keys) == 0 {
		return k.c.post("key release all", k.releaseAllFn())
	}
	for _, key := range keys {
		if err := k.c.post("key release "+string(key), k.releaseFn(key)); err != nil {
			return err
		}
	}
	return nil
}

func (k *Keyboard) releaseAllFn() func() error {
	return func() error {
		for _, key := range k.pressed.reversed() {
			if err := k.releaseFn(key)(); err != nil {
				return err
			}
		}
		return nil
	}
}

func (k *Keyboard) releaseFn(key platform.Key) func() error {
	return func() error {
		if !k.pressed.remove(key) {
			return nil
		}
		return k.c.inj.KeyRelease(key)
	}
}

// Pressed returns the held keys in press order.
func (k *Keyboard) Pressed() []platform.Key {
	return k.pressed.snapshot()
}
