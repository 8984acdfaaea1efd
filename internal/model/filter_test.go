package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByText_Substring(t *testing.T) {
	root := NewNode("group", "root").Add(
		&Node{ID: "a", Role: "btn", Text: "Button 1"},
		&Node{ID: "b", Role: "btn", Text: "Button 10"},
		&Node{ID: "c", Role: "txt", Text: "caption"},
	)
	matches := FindByText([]*Node{root}, "button 1", nil, false)
	assert.Len(t, matches, 2)
}

func TestFindByText_Exact(t *testing.T) {
	root := NewNode("group", "root").Add(
		&Node{ID: "a", Role: "btn", Text: "Button 1"},
		&Node{ID: "b", Role: "btn", Text: "Button 10"},
	)
	matches := FindByText([]*Node{root}, "BUTTON 1", nil, true)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].ID)
}

func TestFindByText_PrefersDeepest(t *testing.T) {
	inner := &Node{ID: "inner", Role: "txt", Text: "Save"}
	outer := (&Node{ID: "outer", Role: "btn", Text: "Save"}).Add(inner)
	matches := FindByText([]*Node{outer}, "save", nil, false)
	require.Len(t, matches, 1)
	assert.Equal(t, "inner", matches[0].ID)
}

func TestFindByText_RoleFilter(t *testing.T) {
	root := NewNode("group", "root").Add(
		&Node{ID: "lbl", Role: "txt", Text: "Name"},
		&Node{ID: "fld", Role: "input", Text: "Name"},
	)
	matches := FindByText([]*Node{root}, "name", []string{"interactive"}, false)
	require.Len(t, matches, 1)
	assert.Equal(t, "fld", matches[0].ID)
}

func TestFilterByRoles(t *testing.T) {
	got := FilterByRoles([]*Node{buildDemoScene()}, []string{"btn", "input"})
	require.Len(t, got, 2)
	assert.Equal(t, "name", got[0].ID)
	assert.Equal(t, "ok", got[1].ID)
}

func TestBoundsIntersect(t *testing.T) {
	tests := []struct {
		a, b [4]int
		want bool
	}{
		{[4]int{0, 0, 10, 10}, [4]int{5, 5, 10, 10}, true},
		{[4]int{0, 0, 10, 10}, [4]int{10, 0, 10, 10}, false},
		{[4]int{0, 0, 10, 10}, [4]int{20, 20, 5, 5}, false},
		{[4]int{0, 0, 100, 100}, [4]int{90, 90, 50, 30}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BoundsIntersect(tt.a, tt.b), "%v vs %v", tt.a, tt.b)
	}
}
