package diag

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/lifecycle"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/platform/sim"
	"github.com/mj1618/desktop-harness/internal/robot"
	"github.com/mj1618/desktop-harness/internal/timing"
)

func TestAnnotateDrawsBoxes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	elements := []model.FlatElement{
		{ID: "ok", Role: "btn", Bounds: [4]int{60, 60, 30, 20}},
		{ID: "gone", Role: "txt", Bounds: [4]int{10, 10, 5, 5}, Hidden: true},
	}
	out := Annotate(img, elements, platform.Bounds{X: 50, Y: 50, Width: 100, Height: 100}, LabelIDs)

	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 100}, out.RGBAAt(10, 10), "box corner is window relative")
	assert.Equal(t, color.RGBA{}, out.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(10, 10), "source image is untouched")
}

func TestLabel(t *testing.T) {
	el := model.FlatElement{ID: "ok", Role: "btn", Bounds: [4]int{10, 20, 30, 40}}
	assert.Equal(t, "#ok", label(el, LabelIDs))
	assert.Equal(t, "(25,40)", label(el, LabelCoords))
	el.ID = ""
	assert.Equal(t, "btn", label(el, LabelIDs))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "screenshot", sanitize(""))
	assert.Equal(t, "step_3__click", sanitize("step 3: click"))
}

func TestEnrich(t *testing.T) {
	base := errors.New("expected button")
	e := NewEnricher(
		Fragment{Name: "one", Render: func() (string, error) { return "body\n", nil }},
		Fragment{Name: "two", Render: func() (string, error) { return "", errors.New("no display") }},
	)
	assert.NoError(t, e.Enrich(nil))

	err := e.Enrich(base)
	require.ErrorIs(t, err, base)
	var enriched *EnrichedError
	require.ErrorAs(t, err, &enriched)
	assert.Equal(t, []Section{{Name: "one", Body: "body\n"}, {Name: "two", Body: "unavailable: no display"}}, enriched.Sections)
	assert.Equal(t, "expected button\n\n--- one ---\nbody\n\n--- two ---\nunavailable: no display", err.Error())

	assert.Same(t, err, e.Enrich(err))
}

func TestFormatEvent(t *testing.T) {
	assert.Equal(t, "mouse-pressed left at (5,6) -> #ok",
		formatEvent(model.InputEvent{Kind: model.EventMousePressed, Button: "left", X: 5, Y: 6, Target: "ok"}))
	assert.Equal(t, "key-typed \"B\" -> #name",
		formatEvent(model.InputEvent{Kind: model.EventKeyTyped, Char: "B", Target: "name"}))
	assert.Equal(t, "scroll -1 at (1,2)",
		formatEvent(model.InputEvent{Kind: model.EventScroll, Delta: -1, X: 1, Y: 2}))
}

type harness struct {
	tk    *sim.Toolkit
	ctrl  *lifecycle.Controller
	robot *robot.Robot
	rec   *Recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tk := sim.New(sim.WithPulseInterval(2 * time.Millisecond))
	t.Cleanup(tk.Stop)
	p := timing.Aggressive()
	p.DrainSleep = time.Millisecond
	b := async.NewBridge(tk, p, async.WithPrintErrors(false))

	h := &harness{tk: tk, ctrl: lifecycle.New(tk, b, lifecycle.WithPrimaryWindow("main", platform.Bounds{Width: 200, Height: 120}))}
	h.rec = NewRecorder(b, tk, 16)
	h.rec.Attach(h.ctrl)
	h.robot = robot.New(b, tk, tk)

	_, err := h.ctrl.RegisterPrimary(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.ctrl.SetupRoot(func() (*model.Node, error) {
		return sim.Pane("content", platform.Bounds{Width: 200, Height: 120},
			sim.Button("ok", "OK", platform.Bounds{X: 10, Y: 10, Width: 60, Height: 24})), nil
	}))
	return h
}

func TestRecorderFollowsRegisteredWindow(t *testing.T) {
	h := newHarness(t)
	primary, err := h.ctrl.Registered()
	require.NoError(t, err)
	assert.Same(t, primary, h.rec.Bound())

	require.NoError(t, h.robot.ClickOnSelector("#ok"))
	events := h.rec.Events(0)
	require.NotEmpty(t, events)
	assert.Equal(t, model.EventMouseReleased, events[len(events)-1].Kind)
	assert.LessOrEqual(t, len(events), 16)
	assert.Len(t, h.rec.Events(2), 2)

	dialog, err := h.ctrl.RegisterWindow(func() (*model.Window, error) {
		w := h.tk.NewWindow("dialog", platform.Bounds{X: 300, Y: 300, Width: 50, Height: 50})
		h.tk.Show(w)
		return w, nil
	})
	require.NoError(t, err)
	assert.Same(t, dialog, h.rec.Bound())

	h.rec.Clear()
	require.NoError(t, h.robot.ClickOnSelector("#ok"))
	assert.Empty(t, h.rec.Events(0), "events for the old window are no longer recorded")

	require.NoError(t, h.rec.Close())
	assert.Nil(t, h.rec.Bound())
}

func TestFragmentsAgainstLiveScene(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	require.NoError(t, h.robot.Keyboard.Press(platform.KeyShift))

	e := NewEnricher(
		HeldInputs(h.robot),
		RecordedEvents(h.rec, 5),
		Screenshot(h.robot, dir),
		SceneDump(h.robot.Bridge(), h.robot.Scene()),
	)
	err := e.Enrich(errors.New("boom"))
	var enriched *EnrichedError
	require.ErrorAs(t, err, &enriched)
	require.Len(t, enriched.Sections, 4)

	assert.Contains(t, enriched.Sections[0].Body, "shift")
	assert.Contains(t, enriched.Sections[1].Body, "key-pressed shift")

	path := enriched.Sections[2].Body
	assert.True(t, strings.HasPrefix(path, dir), path)
	f, ferr := os.Open(path)
	require.NoError(t, ferr)
	defer f.Close()
	img, derr := png.Decode(f)
	require.NoError(t, derr)
	assert.Equal(t, image.Rect(0, 0, 200, 120), img.Bounds())
	assert.Equal(t, ".png", filepath.Ext(path))

	assert.Contains(t, enriched.Sections[3].Body, "title: main")
	assert.Contains(t, enriched.Sections[3].Body, "id: ok")
}
