package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mj1618/desktop-harness/internal/model"
)

// Selector is a parsed CSS-like selector. Supported forms:
//
//	btn            role (compact code, widget type name such as Button, or a
//	               meta role such as interactive)
//	#ok            id
//	.primary       class
//	btn#ok.primary compound
//	*              any node
//	group btn      descendant
//	#a, #b         group (union)
type Selector struct {
	src    string
	groups [][]compound
}

type compound struct {
	roles   []string // empty matches any role
	id      string
	classes []string
}

// ParseSelector parses s.
func ParseSelector(s string) (*Selector, error) {
	sel := &Selector{src: strings.TrimSpace(s)}
	if sel.src == "" {
		return nil, fmt.Errorf("empty selector")
	}
	for _, group := range strings.Split(sel.src, ",") {
		fields := strings.Fields(group)
		if len(fields) == 0 {
			return nil, fmt.Errorf("selector %q: empty group", s)
		}
		chain := make([]compound, 0, len(fields))
		for _, f := range fields {
			c, err := parseCompound(f)
			if err != nil {
				return nil, fmt.Errorf("selector %q: %w", s, err)
			}
			chain = append(chain, c)
		}
		sel.groups = append(sel.groups, chain)
	}
	return sel, nil
}

// MustParseSelector is ParseSelector for selectors known at compile time.
func MustParseSelector(s string) *Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func (s *Selector) String() string { return s.src }

func parseCompound(tok string) (compound, error) {
	var c compound
	i := 0
	role, n := readIdent(tok[i:])
	switch {
	case strings.HasPrefix(tok, "*"):
		i = 1
	case n > 0:
		c.roles = resolveRole(role)
		i = n
	}
	for i < len(tok) {
		marker := tok[i]
		name, n := readIdent(tok[i+1:])
		if n == 0 {
			return c, fmt.Errorf("expected a name after %q in %q", marker, tok)
		}
		switch marker {
		case '#':
			if c.id != "" {
				return c, fmt.Errorf("two ids in %q", tok)
			}
			c.id = name
		case '.':
			c.classes = append(c.classes, name)
		default:
			return c, fmt.Errorf("unexpected %q in %q", marker, tok)
		}
		i += 1 + n
	}
	return c, nil
}

func readIdent(s string) (string, int) {
	n := 0
	for n < len(s) {
		ch := s[n]
		if ch == '-' || ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' {
			n++
			continue
		}
		break
	}
	return s[:n], n
}

func resolveRole(name string) []string {
	if roles, ok := model.MetaRoles[name]; ok {
		return roles
	}
	if code, ok := model.RoleMap[name]; ok {
		return []string{code}
	}
	return []string{name}
}

func (c compound) match(n *model.Node) bool {
	if len(c.roles) > 0 && !slices.Contains(c.roles, n.Role) {
		return false
	}
	if c.id != "" && c.id != n.ID {
		return false
	}
	for _, cls := range c.classes {
		if !n.HasClass(cls) {
			return false
		}
	}
	return true
}

// Match reports whether n matches any group of the selector. Descendant
// steps are matched against n's ancestors.
func (s *Selector) Match(n *model.Node) bool {
	for _, chain := range s.groups {
		if matchChain(chain, n) {
			return true
		}
	}
	return false
}

func matchChain(chain []compound, n *model.Node) bool {
	last := len(chain) - 1
	if !chain[last].match(n) {
		return false
	}
	i := last - 1
	for anc := n.Parent(); anc != nil && i >= 0; anc = anc.Parent() {
		if chain[i].match(anc) {
			i--
		}
	}
	return i < 0
}
