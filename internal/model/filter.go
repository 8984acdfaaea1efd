package model

import "strings"

// FindByText returns the deepest nodes whose text matches (case-insensitive
// substring, or case-insensitive equality when exact is set), optionally
// restricted to the given roles. A node is skipped in favor of any matching
// descendant so that a label inside a button resolves to the label only
// when the button itself carries no matching text.
func FindByText(roots []*Node, text string, roles []string, exact bool) []*Node {
	textLower := strings.ToLower(text)
	roleSet := make(map[string]bool)
	for _, r := range ExpandRoles(roles) {
		roleSet[r] = true
	}
	var results []*Node
	for _, n := range roots {
		if n != nil {
			results = append(results, collectLeafMatches(n, textLower, roleSet, exact)...)
		}
	}
	return results
}

func collectLeafMatches(n *Node, textLower string, roles map[string]bool, exact bool) []*Node {
	var childMatches []*Node
	for _, c := range n.Children {
		childMatches = append(childMatches, collectLeafMatches(c, textLower, roles, exact)...)
	}
	selfMatch := textMatches(n.Text, textLower, exact) && (len(roles) == 0 || roles[n.Role])
	if selfMatch && len(childMatches) == 0 {
		return []*Node{n}
	}
	return childMatches
}

func textMatches(field, textLower string, exact bool) bool {
	if exact {
		return strings.EqualFold(field, textLower)
	}
	return strings.Contains(strings.ToLower(field), textLower)
}

// FilterByRoles returns every node in the trees whose role is in roles
// (meta-roles expanded), in document order.
func FilterByRoles(roots []*Node, roles []string) []*Node {
	roleSet := make(map[string]bool)
	for _, r := range ExpandRoles(roles) {
		roleSet[r] = true
	}
	var result []*Node
	for _, root := range roots {
		if root == nil {
			continue
		}
		root.Walk(func(n *Node) bool {
			if len(roleSet) == 0 || roleSet[n.Role] {
				result = append(result, n)
			}
			return true
		})
	}
	return result
}

// BoundsIntersect checks if two [x, y, width, height] rectangles overlap.
func BoundsIntersect(a, b [4]int) bool {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}
