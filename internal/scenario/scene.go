package scenario

import (
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/query"
)

// ActionBinder registers button callbacks. The simulated toolkit
// implements it.
type ActionBinder interface {
	OnAction(n *model.Node, fn func())
}

var roleAliases = map[string]string{
	"button":   model.RoleButton,
	"input":    model.RoleInput,
	"field":    model.RoleInput,
	"label":    model.RoleText,
	"text":     model.RoleText,
	"pane":     model.RoleGroup,
	"group":    model.RoleGroup,
	"scroll":   model.RoleScroll,
	"checkbox": model.RoleCheck,
	"link":     model.RoleLink,
}

func roleCode(name string) (string, error) {
	if code, ok := roleAliases[strings.ToLower(name)]; ok {
		return code, nil
	}
	if code := model.MapRole(name); code != model.RoleOther || name == model.RoleOther {
		return code, nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}

func toBounds(b []int) (platform.Bounds, error) {
	switch len(b) {
	case 0:
		return platform.Bounds{}, nil
	case 4:
		return platform.BoundsOf([4]int{b[0], b[1], b[2], b[3]}), nil
	}
	return platform.Bounds{}, fmt.Errorf("bounds must be [x, y, width, height], got %v", b)
}

// buildNodes turns specs into nodes. Children without bounds inherit
// their parent's.
func buildNodes(specs []NodeSpec, parent platform.Bounds) ([]*model.Node, error) {
	nodes := make([]*model.Node, 0, len(specs))
	for _, spec := range specs {
		n, err := buildNode(spec, parent)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func buildNode(spec NodeSpec, parent platform.Bounds) (*model.Node, error) {
	role, err := roleCode(spec.Role)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", spec.ID, err)
	}
	b, err := toBounds(spec.Bounds)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", spec.ID, err)
	}
	if b.Empty() {
		b = parent
	}
	n := model.NewNode(role, spec.ID)
	n.Text = spec.Text
	n.Classes = spec.Classes
	n.Bounds = b.Array()
	n.Hidden = spec.Hidden
	n.Disabled = spec.Disabled
	children, err := buildNodes(spec.Children, b)
	if err != nil {
		return nil, err
	}
	n.Add(children...)
	return n, nil
}

// bindActions wires every on_click in specs. It runs on the UI goroutine;
// delayed actions are posted back to it through post.
func bindActions(binder ActionBinder, root *model.Node, specs []NodeSpec, post func(func()) bool) error {
	var err error
	var walk func(specs []NodeSpec)
	walk = func(specs []NodeSpec) {
		for _, spec := range specs {
			walk(spec.Children)
			if spec.OnClick == nil || err != nil {
				continue
			}
			if spec.ID == "" {
				err = fmt.Errorf("on_click needs a node id")
				return
			}
			source, qerr := query.From(root).Lookup("#" + spec.ID).Query()
			if qerr != nil {
				err = qerr
				return
			}
			action := *spec.OnClick
			binder.OnAction(source, func() {
				apply := func() { applyAction(root, action) }
				if action.Delay <= 0 {
					apply()
					return
				}
				time.AfterFunc(action.Delay, func() { post(apply) })
			})
		}
	}
	walk(specs)
	return err
}

func applyAction(root *model.Node, a Action) {
	for _, n := range query.From(root).Lookup(a.Target).QueryAll() {
		if a.SetText != nil {
			n.Text = *a.SetText
		}
		if a.Hide {
			n.Hidden = true
		}
		if a.Show {
			n.Hidden = false
		}
	}
}
