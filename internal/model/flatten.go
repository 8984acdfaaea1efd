package model

// FlatElement is a node with a path breadcrumb instead of children.
type FlatElement struct {
	ID       string `yaml:"id,omitempty"       json:"id,omitempty"`
	Role     string `yaml:"r"                  json:"r"`
	Text     string `yaml:"t,omitempty"        json:"t,omitempty"`
	Bounds   [4]int `yaml:"b"                  json:"b"`
	Focused  bool   `yaml:"f,omitempty"        json:"f,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Hidden   bool   `yaml:"hidden,omitempty"   json:"hidden,omitempty"`
	Path     string `yaml:"p,omitempty"        json:"p,omitempty"`
}

// FlattenNodes converts trees of nodes into a flat list in document order.
// Each element gets a path string showing its location in the tree
// using role codes joined with " > ".
func FlattenNodes(roots []*Node) []FlatElement {
	var result []FlatElement
	for _, n := range roots {
		if n != nil {
			flattenRecursive(n, "", &result)
		}
	}
	return result
}

func flattenRecursive(n *Node, parentPath string, result *[]FlatElement) {
	currentPath := n.Role
	if parentPath != "" {
		currentPath = parentPath + " > " + n.Role
	}

	*result = append(*result, FlatElement{
		ID:       n.ID,
		Role:     n.Role,
		Text:     n.Text,
		Bounds:   n.Bounds,
		Focused:  n.Focused,
		Disabled: n.Disabled,
		Hidden:   n.Hidden,
		Path:     currentPath,
	})

	for _, child := range n.Children {
		flattenRecursive(child, currentPath, result)
	}
}
