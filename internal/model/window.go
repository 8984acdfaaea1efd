package model

// Window is a top-level container showing one scene.
type Window struct {
	ID      int    `yaml:"id"                json:"id"`
	Title   string `yaml:"title"             json:"title"`
	Bounds  [4]int `yaml:"bounds"            json:"bounds"`
	Showing bool   `yaml:"showing,omitempty" json:"showing,omitempty"`
	Focused bool   `yaml:"focused,omitempty" json:"focused,omitempty"`
	Root    *Node  `yaml:"root,omitempty"    json:"root,omitempty"`
}

// SetRoot replaces the window's scene root. The previous root, if any, is
// detached.
func (w *Window) SetRoot(root *Node) {
	if w.Root != nil {
		w.Root.window = nil
	}
	w.Root = root
	if root != nil {
		root.parent = nil
		root.window = w
	}
}

// FocusOwner returns the focused node within the window's scene.
func (w *Window) FocusOwner() *Node {
	if w.Root == nil {
		return nil
	}
	var found *Node
	w.Root.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.Focused {
			found = n
			return false
		}
		return true
	})
	return found
}

// SetFocus moves focus to n, clearing it from every other node in the
// window. A nil n clears focus.
func (w *Window) SetFocus(n *Node) {
	if w.Root == nil {
		return
	}
	w.Root.Walk(func(c *Node) bool {
		c.Focused = c == n
		return true
	})
}
