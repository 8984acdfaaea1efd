package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

type fakeScene struct {
	windows []*model.Window
}

func (s fakeScene) Windows() []*model.Window { return s.windows }

func node(role, id string, bounds [4]int, classes ...string) *model.Node {
	n := model.NewNode(role, id)
	n.Bounds = bounds
	n.Classes = classes
	return n
}

// demo builds:
//
//	window "main" (0,0,400,300)
//	  group#root
//	    group#form.card
//	      input#name
//	      btn#ok.primary "OK"
//	      btn#cancel "Cancel"
//	    group#footer
//	      txt#status "ready"
//	      btn#hidden (hidden)
//	      btn#offscreen (outside the window)
func demo() (fakeScene, map[string]*model.Node) {
	nodes := map[string]*model.Node{
		"root":      node("group", "root", [4]int{0, 0, 400, 300}),
		"form":      node("group", "form", [4]int{0, 0, 400, 200}, "card"),
		"name":      node("input", "name", [4]int{10, 10, 200, 30}),
		"ok":        node("btn", "ok", [4]int{10, 50, 80, 30}, "primary"),
		"cancel":    node("btn", "cancel", [4]int{100, 50, 80, 30}),
		"footer":    node("group", "footer", [4]int{0, 200, 400, 100}),
		"status":    node("txt", "status", [4]int{10, 210, 100, 20}),
		"hidden":    node("btn", "hidden", [4]int{10, 240, 80, 30}),
		"offscreen": node("btn", "offscreen", [4]int{900, 900, 80, 30}),
	}
	nodes["ok"].Text = "OK"
	nodes["cancel"].Text = "Cancel"
	nodes["status"].Text = "ready"
	nodes["hidden"].Hidden = true

	nodes["form"].Add(nodes["name"], nodes["ok"], nodes["cancel"])
	nodes["footer"].Add(nodes["status"], nodes["hidden"], nodes["offscreen"])
	nodes["root"].Add(nodes["form"], nodes["footer"])

	w := &model.Window{ID: 1, Title: "main", Bounds: [4]int{0, 0, 400, 300}, Showing: true}
	w.SetRoot(nodes["root"])
	return fakeScene{windows: []*model.Window{w}}, nodes
}

func ids(nodes []*model.Node) []string {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestLookupSelectors(t *testing.T) {
	scene, _ := demo()
	tests := []struct {
		selector string
		want     []string
	}{
		{"#ok", []string{"ok"}},
		{"btn", []string{"ok", "cancel", "hidden", "offscreen"}},
		{"Button", []string{"ok", "cancel", "hidden", "offscreen"}},
		{".primary", []string{"ok"}},
		{"btn.primary", []string{"ok"}},
		{"btn#cancel", []string{"cancel"}},
		{"group.card btn", []string{"ok", "cancel"}},
		{"#root #footer txt", []string{"status"}},
		{"#form txt", nil},
		{"#status, #ok", []string{"ok", "status"}},
		{"*", []string{"root", "form", "name", "ok", "cancel", "footer", "status", "hidden", "offscreen"}},
		{"interactive", []string{"name", "ok", "cancel", "hidden", "offscreen"}},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got := FromScene(scene).Lookup(tt.selector).QueryAll()
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for _, s := range []string{"", "  ", "#", "btn.", "a,,b", "btn#a#b", "btn>txt", "*btn"} {
		_, err := ParseSelector(s)
		assert.Error(t, err, s)
	}
	assert.Panics(t, func() { MustParseSelector("#") })
	assert.Equal(t, "btn#ok", MustParseSelector(" btn#ok ").String())
}

func TestQueryErrors(t *testing.T) {
	scene, _ := demo()

	_, err := FromScene(scene).Lookup("#missing").Query()
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, qe.Error(), `lookup("#missing")`)

	_, err = FromScene(scene).Lookup("#").Nth(0).Query()
	require.Error(t, err)
	assert.False(t, errors.As(err, &qe), "parse errors are reported as such")

	n, ok := FromScene(scene).Lookup("#ok").TryQuery()
	assert.True(t, ok)
	assert.Equal(t, "ok", n.ID)
	_, ok = FromScene(scene).Lookup("#nope").TryQuery()
	assert.False(t, ok)
}

func TestChaining(t *testing.T) {
	scene, nodes := demo()
	buttons := FromScene(scene).Lookup("btn")

	assert.Equal(t, []string{"cancel"}, ids(buttons.Nth(1).QueryAll()))
	assert.Empty(t, buttons.Nth(10).QueryAll())

	withText := buttons.Match(func(n *model.Node) bool { return n.Text != "" })
	assert.Equal(t, []string{"ok", "cancel"}, ids(withText.QueryAll()))

	union := From(nodes["status"]).Union(buttons.Nth(0))
	assert.Equal(t, []string{"status", "ok"}, ids(union.QueryAll()))

	inter := buttons.Intersect(FromScene(scene).Lookup(".primary"))
	assert.Equal(t, []string{"ok"}, ids(inter.QueryAll()))

	assert.Equal(t, []string{"ok", "cancel"}, ids(buttons.Visible().QueryAll()))
	assert.Equal(t, []string{"ok"}, ids(buttons.MatchSelector(".primary").QueryAll()))
	assert.Equal(t, 4, buttons.Len())
	assert.Contains(t, buttons.Nth(1).String(), `lookup("btn").nth(1)`)
}

func TestLookupFuncTreatsPanicAsNoMatch(t *testing.T) {
	scene, _ := demo()
	got := FromScene(scene).LookupFunc(func(n *model.Node) bool {
		if n.Role != "btn" {
			panic("wrong kind of node")
		}
		return n.Text == "OK"
	}).QueryAll()
	assert.Equal(t, []string{"ok"}, ids(got))

	assert.False(t, TryMatch(func(*model.Node) bool { panic(errors.New("cast")) }, &model.Node{}))
}

func TestVisible(t *testing.T) {
	scene, nodes := demo()
	assert.True(t, Visible(nodes["ok"]))
	assert.False(t, Visible(nodes["hidden"]))
	assert.False(t, Visible(nodes["offscreen"]))
	assert.False(t, Visible(nil))
	assert.False(t, Visible(model.NewNode("btn", "detached")))

	nodes["footer"].Hidden = true
	assert.False(t, Visible(nodes["status"]), "hidden ancestors hide descendants")
	nodes["footer"].Hidden = false

	scene.windows[0].Showing = false
	assert.False(t, Visible(nodes["ok"]))
}

func TestVisibleNode(t *testing.T) {
	scene, _ := demo()
	roots := Roots(scene)

	n, err := VisibleNode(roots, "btn")
	require.NoError(t, err)
	assert.Equal(t, "ok", n.ID)

	_, err = VisibleNode(roots, "#hidden, #offscreen")
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 2, qe.Invisible)
	assert.Contains(t, err.Error(), "2 matching node(s) not visible")
}

func TestRootsSkipsHiddenWindows(t *testing.T) {
	scene, _ := demo()
	back := &model.Window{ID: 2, Showing: true}
	back.SetRoot(node("group", "back", [4]int{0, 0, 10, 10}))
	hidden := &model.Window{ID: 3}
	hidden.SetRoot(node("group", "gone", [4]int{0, 0, 10, 10}))
	scene.windows = append([]*model.Window{back}, append(scene.windows, hidden)...)

	assert.Equal(t, []string{"root", "back"}, ids(Roots(scene)))
}

func TestPointOf(t *testing.T) {
	b := platform.Bounds{X: 10, Y: 20, Width: 100, Height: 50}
	tests := []struct {
		pos  Pos
		want platform.Point
	}{
		{TopLeft, platform.Point{X: 10, Y: 20}},
		{TopCenter, platform.Point{X: 60, Y: 20}},
		{TopRight, platform.Point{X: 110, Y: 20}},
		{Center, platform.Point{X: 60, Y: 45}},
		{CenterRight, platform.Point{X: 110, Y: 45}},
		{BottomLeft, platform.Point{X: 10, Y: 70}},
		{BottomRight, platform.Point{X: 110, Y: 70}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PointOf(b, tt.pos), tt.pos.String())
	}
}

func TestParsePos(t *testing.T) {
	p, err := ParsePos("")
	require.NoError(t, err)
	assert.Equal(t, Center, p)
	p, err = ParsePos("BOTTOM_RIGHT")
	require.NoError(t, err)
	assert.Equal(t, BottomRight, p)
	_, err = ParsePos("middle-ish")
	assert.Error(t, err)
}

func TestPointQueryFollowsNode(t *testing.T) {
	scene, nodes := demo()

	pq := OfSelector(scene, "#ok", Center).WithOffset(1, -1)
	p, err := pq.Query()
	require.NoError(t, err)
	assert.Equal(t, platform.Point{X: 51, Y: 64}, p)

	nodes["ok"].Bounds = [4]int{200, 100, 20, 20}
	p, err = pq.Query()
	require.NoError(t, err)
	assert.Equal(t, platform.Point{X: 211, Y: 109}, p)

	p, err = OfNode(nodes["ok"], TopLeft).Query()
	require.NoError(t, err)
	assert.Equal(t, platform.Point{X: 200, Y: 100}, p)

	_, err = OfSelector(scene, "#hidden", Center).Query()
	assert.Error(t, err)

	p, err = At(platform.Point{X: 3, Y: 4}).WithOffset(1, 1).Query()
	require.NoError(t, err)
	assert.Equal(t, platform.Point{X: 4, Y: 5}, p)

	_, err = PointQuery{}.Query()
	assert.Error(t, err)
	assert.Equal(t, `"#ok"@center+1-1`, pq.String())
}
