package sim

import (
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// Widget constructors. Bounds are screen-absolute.

// Button returns a clickable button labelled text.
func Button(id, text string, b platform.Bounds) *model.Node {
	n := model.NewNode(model.RoleButton, id)
	n.Text = text
	n.Bounds = b.Array()
	return n
}

// TextInput returns an empty single-line text input.
func TextInput(id string, b platform.Bounds) *model.Node {
	n := model.NewNode(model.RoleInput, id)
	n.Bounds = b.Array()
	return n
}

// Label returns static text.
func Label(id, text string, b platform.Bounds) *model.Node {
	n := model.NewNode(model.RoleText, id)
	n.Text = text
	n.Bounds = b.Array()
	return n
}

// Pane returns a container for children.
func Pane(id string, b platform.Bounds, children ...*model.Node) *model.Node {
	n := model.NewNode(model.RoleGroup, id)
	n.Bounds = b.Array()
	n.Add(children...)
	return n
}

// ScrollArea returns a container that counts wheel units.
func ScrollArea(id string, b platform.Bounds, children ...*model.Node) *model.Node {
	n := model.NewNode(model.RoleScroll, id)
	n.Bounds = b.Array()
	n.Add(children...)
	return n
}

// Column lays out nodes top to bottom inside b, each rowHeight tall with
// gap pixels between rows, and returns them for chaining.
func Column(b platform.Bounds, rowHeight, gap int, nodes ...*model.Node) []*model.Node {
	y := b.Y
	for _, n := range nodes {
		n.Bounds = [4]int{b.X, y, b.Width, rowHeight}
		y += rowHeight + gap
	}
	return nodes
}
