package query

import (
	"fmt"
	"strings"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// QueryError reports a query that produced no usable node.
type QueryError struct {
	Query     string
	Matches   int // nodes matched before visibility was considered
	Invisible int // matches rejected as not visible
}

func (e *QueryError) Error() string {
	if e.Invisible > 0 {
		return fmt.Sprintf("query %s: no visible node (%d matching node(s) not visible)", e.Query, e.Invisible)
	}
	return fmt.Sprintf("query %s: no node found", e.Query)
}

// NodeQuery is an immutable, chainable set of nodes. Every method returns
// a new query; the zero result is an empty set, never nil.
//
// NodeQuery reads the scene graph and must be used on the UI goroutine.
type NodeQuery struct {
	nodes []*model.Node
	desc  string
	err   error
}

// From starts a query at the given nodes.
func From(nodes ...*model.Node) *NodeQuery {
	out := make([]*model.Node, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return &NodeQuery{nodes: dedupe(out), desc: "from(" + describeNodes(out) + ")"}
}

// FromScene starts a query at the roots of the showing windows, topmost
// window first.
func FromScene(scene platform.SceneQuery) *NodeQuery {
	q := From(Roots(scene)...)
	q.desc = "scene"
	return q
}

// Roots returns the scene roots of the showing windows, topmost first.
func Roots(scene platform.SceneQuery) []*model.Node {
	windows := scene.Windows()
	var roots []*model.Node
	for i := len(windows) - 1; i >= 0; i-- {
		if w := windows[i]; w.Showing && w.Root != nil {
			roots = append(roots, w.Root)
		}
	}
	return roots
}

func (q *NodeQuery) derive(nodes []*model.Node, step string) *NodeQuery {
	return &NodeQuery{nodes: nodes, desc: q.desc + "." + step, err: q.err}
}

// Lookup replaces the set with every node at or below it matching selector.
func (q *NodeQuery) Lookup(selector string) *NodeQuery {
	step := fmt.Sprintf("lookup(%q)", selector)
	sel, err := ParseSelector(selector)
	if err != nil {
		out := q.derive(nil, step)
		if out.err == nil {
			out.err = err
		}
		return out
	}
	return q.derive(q.collect(sel.Match), step)
}

// LookupFunc replaces the set with every node at or below it for which pred
// holds. A panicking predicate counts as no match.
func (q *NodeQuery) LookupFunc(pred func(*model.Node) bool) *NodeQuery {
	return q.derive(q.collect(func(n *model.Node) bool { return TryMatch(pred, n) }), "lookup(func)")
}

func (q *NodeQuery) collect(pred func(*model.Node) bool) []*model.Node {
	var out []*model.Node
	for _, root := range q.nodes {
		root.Walk(func(n *model.Node) bool {
			if pred(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return dedupe(out)
}

// Match keeps the nodes of the set for which pred holds.
func (q *NodeQuery) Match(pred func(*model.Node) bool) *NodeQuery {
	var out []*model.Node
	for _, n := range q.nodes {
		if TryMatch(pred, n) {
			out = append(out, n)
		}
	}
	return q.derive(out, "match(func)")
}

// MatchSelector keeps the nodes that themselves match selector.
func (q *NodeQuery) MatchSelector(selector string) *NodeQuery {
	step := fmt.Sprintf("match(%q)", selector)
	sel, err := ParseSelector(selector)
	if err != nil {
		out := q.derive(nil, step)
		if out.err == nil {
			out.err = err
		}
		return out
	}
	var out []*model.Node
	for _, n := range q.nodes {
		if sel.Match(n) {
			out = append(out, n)
		}
	}
	return q.derive(out, step)
}

// Nth keeps only the i-th node (zero based).
func (q *NodeQuery) Nth(i int) *NodeQuery {
	var out []*model.Node
	if i >= 0 && i < len(q.nodes) {
		out = []*model.Node{q.nodes[i]}
	}
	return q.derive(out, fmt.Sprintf("nth(%d)", i))
}

// Union adds the nodes of other not already in the set.
func (q *NodeQuery) Union(other *NodeQuery) *NodeQuery {
	out := append(append([]*model.Node{}, q.nodes...), other.nodes...)
	res := q.derive(dedupe(out), "union("+other.desc+")")
	if res.err == nil {
		res.err = other.err
	}
	return res
}

// Intersect keeps the nodes also present in other.
func (q *NodeQuery) Intersect(other *NodeQuery) *NodeQuery {
	in := make(map[*model.Node]bool, len(other.nodes))
	for _, n := range other.nodes {
		in[n] = true
	}
	var out []*model.Node
	for _, n := range q.nodes {
		if in[n] {
			out = append(out, n)
		}
	}
	res := q.derive(out, "intersect("+other.desc+")")
	if res.err == nil {
		res.err = other.err
	}
	return res
}

// Visible keeps the nodes Visible reports true for.
func (q *NodeQuery) Visible() *NodeQuery {
	var out []*model.Node
	for _, n := range q.nodes {
		if Visible(n) {
			out = append(out, n)
		}
	}
	return q.derive(out, "visible()")
}

// Query returns the first node, or a *QueryError naming the query.
func (q *NodeQuery) Query() (*model.Node, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(q.nodes) == 0 {
		return nil, &QueryError{Query: q.desc}
	}
	return q.nodes[0], nil
}

// TryQuery is Query without the error.
func (q *NodeQuery) TryQuery() (*model.Node, bool) {
	n, err := q.Query()
	return n, err == nil
}

// QueryAll returns the whole set in document order.
func (q *NodeQuery) QueryAll() []*model.Node {
	return append([]*model.Node(nil), q.nodes...)
}

// Len is the size of the set.
func (q *NodeQuery) Len() int { return len(q.nodes) }

// Err is the first selector parse error met along the chain.
func (q *NodeQuery) Err() error { return q.err }

func (q *NodeQuery) String() string { return q.desc }

// TryMatch evaluates pred, treating a panic as "does not match".
func TryMatch(pred func(*model.Node) bool, n *model.Node) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return pred(n)
}

// VisibleNode returns the first visible node matching selector under roots.
// When none is visible the *QueryError counts the invisible matches.
func VisibleNode(roots []*model.Node, selector string) (*model.Node, error) {
	q := From(roots...).Lookup(selector)
	if q.err != nil {
		return nil, q.err
	}
	for _, n := range q.nodes {
		if Visible(n) {
			return n, nil
		}
	}
	return nil, &QueryError{Query: q.desc, Matches: len(q.nodes), Invisible: len(q.nodes)}
}

func dedupe(nodes []*model.Node) []*model.Node {
	seen := make(map[*model.Node]bool, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func describeNodes(nodes []*model.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n.ID != "" {
			parts = append(parts, n.Role+"#"+n.ID)
		} else {
			parts = append(parts, n.Role)
		}
	}
	return strings.Join(parts, ", ")
}
