package model

// Node is an element of a window's scene graph.
//
// Nodes are owned by the UI goroutine: fields may only be read or written
// from work running on it (see async.RunOnUI).
type Node struct {
	ID       string   `yaml:"id,omitempty"      json:"id,omitempty"`      // Matched by "#id" selectors
	Role     string   `yaml:"r"                 json:"r"`                 // Compact role code, see RoleMap
	Classes  []string `yaml:"classes,omitempty" json:"classes,omitempty"` // Matched by ".class" selectors
	Text     string   `yaml:"t,omitempty"       json:"t,omitempty"`       // Label or current value
	Bounds   [4]int   `yaml:"b"                 json:"b"`                 // [x, y, width, height], screen-absolute
	Hidden   bool     `yaml:"hidden,omitempty"  json:"hidden,omitempty"`
	Disabled bool     `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Focused  bool     `yaml:"f,omitempty"       json:"f,omitempty"`
	Children []*Node  `yaml:"c,omitempty"       json:"c,omitempty"`

	parent *Node
	window *Window
}

// NewNode creates a node with the given role and id.
func NewNode(role, id string) *Node {
	return &Node{Role: role, ID: id}
}

// Add appends children and returns n so trees can be built inline.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Remove detaches child from n. It reports whether child was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.parent = nil
			return true
		}
	}
	return false
}

// Parent returns the enclosing node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Window returns the window whose scene contains n, or nil if n is not
// attached to one.
func (n *Node) Window() *Window {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root.window
}

// HasClass reports whether n carries the style class c.
func (n *Node) HasClass(c string) bool {
	for _, have := range n.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first in document order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Ancestors returns the chain of parents from the immediate parent up to
// the root.
func (n *Node) Ancestors() []*Node {
	var out []*Node
	for p := n.parent; p != nil; p = p.parent {
		out = append(out, p)
	}
	return out
}

// Contains reports whether the point (x, y) lies inside n's bounds.
func (n *Node) Contains(x, y float64) bool {
	b := n.Bounds
	return x >= float64(b[0]) && x < float64(b[0]+b[2]) &&
		y >= float64(b[1]) && y < float64(b[1]+b[3])
}
