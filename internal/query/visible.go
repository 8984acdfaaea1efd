package query

import "github.com/mj1618/desktop-harness/internal/model"

// Visible reports whether n can be seen: neither n nor any ancestor is
// hidden, it belongs to a showing window, and its bounds overlap the
// window's.
func Visible(n *model.Node) bool {
	if n == nil {
		return false
	}
	for c := n; c != nil; c = c.Parent() {
		if c.Hidden {
			return false
		}
	}
	w := n.Window()
	if w == nil || !w.Showing {
		return false
	}
	return model.BoundsIntersect(n.Bounds, w.Bounds)
}
