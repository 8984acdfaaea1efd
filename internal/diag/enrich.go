// Package diag collects context for failed steps: held inputs, recent
// events, a screenshot and a dump of the scene.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/robot"
)

// Fragment renders one section of diagnostic context.
type Fragment struct {
	Name   string
	Render func() (string, error)
}

// Section is a rendered fragment.
type Section struct {
	Name string `yaml:"name" json:"name"`
	Body string `yaml:"body" json:"body"`
}

// EnrichedError is an error with diagnostic sections attached.
type EnrichedError struct {
	Err      error
	Sections []Section
}

func (e *EnrichedError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	for _, s := range e.Sections {
		fmt.Fprintf(&sb, "\n\n--- %s ---\n%s", s.Name, strings.TrimRight(s.Body, "\n"))
	}
	return sb.String()
}

func (e *EnrichedError) Unwrap() error { return e.Err }

// Enricher attaches its fragments to errors.
type Enricher struct {
	fragments []Fragment
}

func NewEnricher(fragments ...Fragment) *Enricher {
	return &Enricher{fragments: fragments}
}

// Enrich returns err with every fragment rendered and attached. A fragment
// that fails to render reports its error in place of its body. Errors that
// are already enriched are returned as they are.
func (e *Enricher) Enrich(err error) error {
	if err == nil {
		return nil
	}
	var enriched *EnrichedError
	if errors.As(err, &enriched) {
		return err
	}
	out := &EnrichedError{Err: err}
	for _, f := range e.fragments {
		body, ferr := f.Render()
		if ferr != nil {
			body = "unavailable: " + ferr.Error()
		}
		out.Sections = append(out.Sections, Section{Name: f.Name, Body: body})
	}
	return out
}

// HeldInputs lists the keys and buttons r still holds.
func HeldInputs(r *robot.Robot) Fragment {
	return Fragment{Name: "held inputs", Render: func() (string, error) {
		keys := r.PressedKeys()
		buttons := r.PressedButtons()
		if len(keys) == 0 && len(buttons) == 0 {
			return "none", nil
		}
		names := make([]string, 0, len(buttons))
		for _, b := range buttons {
			names = append(names, b.String())
		}
		return fmt.Sprintf("keys: %v\nbuttons: %v", keys, names), nil
	}}
}

// RecordedEvents lists the last n events rec saw.
func RecordedEvents(rec *Recorder, n int) Fragment {
	return Fragment{Name: "recent events", Render: func() (string, error) {
		events := rec.Events(n)
		if len(events) == 0 {
			return "none", nil
		}
		lines := make([]string, 0, len(events))
		for _, ev := range events {
			lines = append(lines, formatEvent(ev))
		}
		return strings.Join(lines, "\n"), nil
	}}
}

func formatEvent(ev model.InputEvent) string {
	var sb strings.Builder
	sb.WriteString(string(ev.Kind))
	switch {
	case ev.Button != "":
		sb.WriteString(" " + ev.Button)
	case ev.Key != "":
		sb.WriteString(" " + ev.Key)
	case ev.Char != "":
		fmt.Fprintf(&sb, " %q", ev.Char)
	case ev.Delta != 0:
		fmt.Fprintf(&sb, " %+d", ev.Delta)
	}
	if ev.Kind != model.EventKeyPressed && ev.Kind != model.EventKeyReleased && ev.Kind != model.EventKeyTyped {
		fmt.Fprintf(&sb, " at (%g,%g)", ev.X, ev.Y)
	}
	if ev.Target != "" {
		sb.WriteString(" -> #" + ev.Target)
	}
	return sb.String()
}

// Screenshot saves an annotated screenshot into dir and reports its path.
func Screenshot(r *robot.Robot, dir string) Fragment {
	return Fragment{Name: "screenshot", Render: func() (string, error) {
		return SaveScreenshot(r.Bridge(), r.Injector(), r.Scene(), dir, "failure", LabelIDs)
	}}
}

// SceneDump renders the showing windows as YAML.
func SceneDump(b *async.Bridge, scene platform.SceneQuery) Fragment {
	return Fragment{Name: "scene", Render: func() (string, error) {
		return async.CallOnUI(b, b.Profile().SetupTimeout, func() (string, error) {
			var showing []*model.Window
			for _, w := range scene.Windows() {
				if w.Showing {
					showing = append(showing, w)
				}
			}
			data, err := yaml.Marshal(showing)
			if err != nil {
				return "", fmt.Errorf("scene dump: %w", err)
			}
			return string(data), nil
		})
	}}
}
