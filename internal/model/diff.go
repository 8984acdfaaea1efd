package model

import "fmt"

// FieldChange holds the before and after value of one node field.
type FieldChange [2]string

// NodeChange is a node present in both scenes whose fields differ.
type NodeChange struct {
	Key    string                 `yaml:"key"    json:"key"`
	Role   string                 `yaml:"r"      json:"r"`
	Fields map[string]FieldChange `yaml:"fields" json:"fields"`
}

// SceneDiff is the result of comparing two flattened scenes.
type SceneDiff struct {
	Added          []FlatElement `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []FlatElement `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []NodeChange  `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int           `yaml:"unchanged_count"   json:"unchanged_count"`
}

// Empty reports whether the scenes were identical.
func (d SceneDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// ElementKeys returns a stable identity for each element: "#id" for nodes
// with an id, otherwise the path plus its occurrence index, so unnamed
// siblings with the same path stay distinct.
func ElementKeys(elements []FlatElement) []string {
	keys := make([]string, len(elements))
	seen := make(map[string]int)
	for i, el := range elements {
		if el.ID != "" {
			keys[i] = "#" + el.ID
			continue
		}
		n := seen[el.Path]
		seen[el.Path] = n + 1
		keys[i] = fmt.Sprintf("%s[%d]", el.Path, n)
	}
	return keys
}

// DiffScene compares two flattened scenes. Elements are matched by
// ElementKeys, so reordering alone is not a change.
func DiffScene(prev, curr []FlatElement) SceneDiff {
	prevKeys := ElementKeys(prev)
	prevByKey := make(map[string]FlatElement, len(prev))
	for i, el := range prev {
		prevByKey[prevKeys[i]] = el
	}
	currKeys := ElementKeys(curr)
	currByKey := make(map[string]bool, len(curr))

	var diff SceneDiff
	for i, el := range curr {
		key := currKeys[i]
		currByKey[key] = true
		prevEl, existed := prevByKey[key]
		if !existed {
			diff.Added = append(diff.Added, el)
			continue
		}
		if fields := diffFields(prevEl, el); fields != nil {
			diff.Changed = append(diff.Changed, NodeChange{Key: key, Role: el.Role, Fields: fields})
		} else {
			diff.UnchangedCount++
		}
	}
	for i, el := range prev {
		if !currByKey[prevKeys[i]] {
			diff.Removed = append(diff.Removed, el)
		}
	}
	return diff
}

// diffFields compares the mutable fields of two matched elements.
func diffFields(prev, curr FlatElement) map[string]FieldChange {
	diffs := make(map[string]FieldChange)

	if prev.Text != curr.Text {
		diffs["t"] = FieldChange{prev.Text, curr.Text}
	}
	if prev.Role != curr.Role {
		diffs["r"] = FieldChange{prev.Role, curr.Role}
	}
	if prev.Bounds != curr.Bounds {
		diffs["b"] = FieldChange{
			fmt.Sprintf("%v", prev.Bounds),
			fmt.Sprintf("%v", curr.Bounds),
		}
	}
	if prev.Focused != curr.Focused {
		diffs["f"] = boolChange(prev.Focused, curr.Focused)
	}
	if prev.Disabled != curr.Disabled {
		diffs["disabled"] = boolChange(prev.Disabled, curr.Disabled)
	}
	if prev.Hidden != curr.Hidden {
		diffs["hidden"] = boolChange(prev.Hidden, curr.Hidden)
	}

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

func boolChange(a, b bool) FieldChange {
	return FieldChange{fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)}
}
