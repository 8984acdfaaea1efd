// Package assert checks scene nodes against matchers. Matchers read live
// nodes and must run on the UI goroutine; That and ThatEventually take
// care of that when given a bridge.
package assert

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/query"
)

// A Matcher reports whether a node satisfies a condition.
// The string return is a human-readable description for error messages.
type Matcher func(n *model.Node) (ok bool, description string)

// HasText matches if the node's text equals s.
func HasText(s string) Matcher {
	return func(n *model.Node) (bool, string) {
		desc := fmt.Sprintf("text to equal %q", s)
		if n.Text == s {
			return true, desc
		}
		return false, desc + fmt.Sprintf(" (actual: %q)", n.Text)
	}
}

// HasTextContaining matches if the node's text contains substr.
func HasTextContaining(substr string) Matcher {
	return func(n *model.Node) (bool, string) {
		desc := fmt.Sprintf("text to contain %q", substr)
		if strings.Contains(n.Text, substr) {
			return true, desc
		}
		return false, desc + fmt.Sprintf(" (actual: %q)", n.Text)
	}
}

// HasTextMatching matches the node's text against a regular expression.
// An invalid pattern causes a panic.
func HasTextMatching(pattern string) Matcher {
	re := regexp.MustCompile(pattern)
	return func(n *model.Node) (bool, string) {
		return re.MatchString(n.Text), fmt.Sprintf("text to match regexp %q", pattern)
	}
}

// HasChildren matches if the node has exactly count children.
func HasChildren(count int) Matcher {
	return func(n *model.Node) (bool, string) {
		desc := fmt.Sprintf("%d children", count)
		if len(n.Children) == count {
			return true, desc
		}
		return false, desc + fmt.Sprintf(" (actual: %d)", len(n.Children))
	}
}

func IsVisible() Matcher {
	return func(n *model.Node) (bool, string) {
		return query.Visible(n), "to be visible"
	}
}

func IsInvisible() Matcher {
	return func(n *model.Node) (bool, string) {
		return !query.Visible(n), "to be invisible"
	}
}

func IsEnabled() Matcher {
	return func(n *model.Node) (bool, string) {
		return !n.Disabled, "to be enabled"
	}
}

func IsDisabled() Matcher {
	return func(n *model.Node) (bool, string) {
		return n.Disabled, "to be disabled"
	}
}

func IsFocused() Matcher {
	return func(n *model.Node) (bool, string) {
		return n.Focused, "to have focus"
	}
}

// HasRole accepts compact codes ("btn") and full names ("button").
func HasRole(role string) Matcher {
	want := role
	if code, ok := model.RoleMap[role]; ok {
		want = code
	}
	return func(n *model.Node) (bool, string) {
		desc := fmt.Sprintf("role %q", role)
		if n.Role == want {
			return true, desc
		}
		return false, desc + fmt.Sprintf(" (actual: %q)", n.Role)
	}
}

func HasClass(class string) Matcher {
	return func(n *model.Node) (bool, string) {
		return n.HasClass(class), fmt.Sprintf("class %q", class)
	}
}

// Not inverts a matcher.
func Not(m Matcher) Matcher {
	return func(n *model.Node) (bool, string) {
		ok, desc := m(n)
		return !ok, "NOT(" + desc + ")"
	}
}

// All matches when every provided matcher matches.
func All(matchers ...Matcher) Matcher {
	return func(n *model.Node) (bool, string) {
		descs := make([]string, 0, len(matchers))
		for _, m := range matchers {
			ok, desc := m(n)
			descs = append(descs, desc)
			if !ok {
				return false, "all of: " + strings.Join(descs, ", ")
			}
		}
		return true, "all of: " + strings.Join(descs, ", ")
	}
}

// Any matches when at least one provided matcher matches.
func Any(matchers ...Matcher) Matcher {
	return func(n *model.Node) (bool, string) {
		descs := make([]string, 0, len(matchers))
		for _, m := range matchers {
			ok, desc := m(n)
			descs = append(descs, desc)
			if ok {
				return true, "any of: " + strings.Join(descs, ", ")
			}
		}
		return false, "any of: " + strings.Join(descs, ", ")
	}
}
