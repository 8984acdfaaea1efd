package robot

import (
	"fmt"
	"strings"

	"github.com/mj1618/desktop-harness/internal/platform"
)

// KeyCombination is a main key with modifiers, such as ctrl+shift+s.
type KeyCombination struct {
	Modifiers []platform.Key
	Key       platform.Key
}

// ParseKeyCombination parses "shift+b", "ctrl+alt+delete" or a single key.
// Every part but the last must be a modifier.
func ParseKeyCombination(s string) (KeyCombination, error) {
	parts := strings.Split(s, "+")
	var kc KeyCombination
	for i, part := range parts {
		k, err := platform.ParseKey(part)
		if err != nil {
			return KeyCombination{}, fmt.Errorf("key combination %q: %w", s, err)
		}
		if i < len(parts)-1 {
			if !k.IsModifier() {
				return KeyCombination{}, fmt.Errorf("key combination %q: %q is not a modifier", s, part)
			}
			kc.Modifiers = append(kc.Modifiers, k)
			continue
		}
		kc.Key = k
	}
	return kc, nil
}

// Keys returns the modifiers followed by the main key.
func (kc KeyCombination) Keys() []platform.Key {
	return append(append([]platform.Key{}, kc.Modifiers...), kc.Key)
}

func (kc KeyCombination) String() string {
	names := make([]string, 0, len(kc.Modifiers)+1)
	for _, k := range kc.Keys() {
		names = append(names, string(k))
	}
	return strings.Join(names, "+")
}

// Typer types keys and chords through a Keyboard.
type Typer struct {
	c        *core
	keyboard *Keyboard
}

// Type presses and releases each key in turn.
func (t *Typer) Type(keys ...platform.Key) error {
	return t.TypeTimes(1, keys...)
}

// TypeTimes types the key sequence times times.
func (t *Typer) TypeTimes(times int, keys ...platform.Key) error {
	t.c.metrics.GestureObserved("type")
	for i := 0; i < times; i++ {
		for _, k := range keys {
			if err := t.keyboard.Press(k); err != nil {
				return err
			}
			if err := t.keyboard.Release(k); err != nil {
				return err
			}
		}
	}
	return nil
}

// Push presses keys in order, then releases them in reverse order.
func (t *Typer) Push(keys ...platform.Key) error {
	t.c.metrics.GestureObserved("push")
	if err := t.keyboard.Press(keys...); err != nil {
		return err
	}
	reversed := make([]platform.Key, len(keys))
	for i, k := range keys {
		reversed[len(keys)-1-i] = k
	}
	return t.keyboard.Release(reversed...)
}

// PushCombination pushes the modifiers and then the main key.
func (t *Typer) PushCombination(kc KeyCombination) error {
	return t.Push(kc.Keys()...)
}
