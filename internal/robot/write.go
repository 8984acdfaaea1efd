package robot

import (
	"fmt"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// Writer enters text one character at a time into the focused window.
type Writer struct {
	c     *core
	typer *Typer
}

// Write types text. Tabs and newlines become tab and enter key strokes;
// every other character is delivered to the focus owner of the focused
// window, with the profile's WriteSleep after each.
func (w *Writer) Write(text string) error {
	w.c.metrics.GestureObserved("write")
	for _, r := range text {
		if err := w.writeRune(r); err != nil {
			return err
		}
	}
	w.c.bridge.WaitForEvents()
	return nil
}

// WriteRune types a single character.
func (w *Writer) WriteRune(r rune) error {
	if err := w.writeRune(r); err != nil {
		return err
	}
	w.c.bridge.WaitForEvents()
	return nil
}

func (w *Writer) writeRune(r rune) error {
	switch r {
	case '\t':
		return w.typer.Type(platform.KeyTab)
	case '\n':
		return w.typer.Type(platform.KeyEnter)
	}

	p := w.c.bridge.Profile()
	err := w.c.bridge.Exec(p.WriteTimeout, func() error {
		return w.c.inj.TypeChar(targetWindow(w.c.scene), r)
	})
	if err != nil {
		if err := w.c.primitiveErr(fmt.Sprintf("write %q", r), p.WriteTimeout, err); err != nil {
			return err
		}
	}
	w.c.profileSleep(p.WriteSleep)
	return nil
}

// targetWindow is the focused showing window, else the topmost showing one.
func targetWindow(scene platform.SceneQuery) *model.Window {
	windows := scene.Windows()
	var top *model.Window
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		if !w.Showing {
			continue
		}
		if w.Focused {
			return w
		}
		if top == nil {
			top = w
		}
	}
	return top
}
