package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBBox_Valid(t *testing.T) {
	for _, in := range []string{"10,20,300,400", "10, 20, 300, 400"} {
		b, err := ParseBBox(in)
		require.NoError(t, err, in)
		assert.Equal(t, Bounds{X: 10, Y: 20, Width: 300, Height: 400}, *b, in)
	}
}

func TestParseBBox_Invalid(t *testing.T) {
	tests := []string{
		"",
		"10,20,300",
		"10,20,300,400,500",
		"a,b,c,d",
		"10,20,abc,400",
	}
	for _, s := range tests {
		_, err := ParseBBox(s)
		assert.Error(t, err, "ParseBBox(%q)", s)
	}
}

func TestParseMouseButton_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  MouseButton
	}{
		{"left", MouseLeft},
		{"Left", MouseLeft},
		{"LEFT", MouseLeft},
		{"right", MouseRight},
		{"Right", MouseRight},
		{"middle", MouseMiddle},
		{"Middle", MouseMiddle},
	}
	for _, tt := range tests {
		got, err := ParseMouseButton(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestParseMouseButton_Invalid(t *testing.T) {
	_, err := ParseMouseButton("invalid")
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		input string
		want  Key
	}{
		{"shift", KeyShift},
		{"SHIFT", KeyShift},
		{"Control", KeyControl},
		{"cmd", KeyMeta},
		{"Return", KeyEnter},
		{" esc ", KeyEscape},
		{"b", "b"},
		{"B", "b"},
		{"7", "7"},
		{"/", "/"},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.input)
		if assert.NoError(t, err, tt.input) {
			assert.Equal(t, tt.want, got, tt.input)
		}
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, s := range []string{"", "hyper", "ab", "\x01"} {
		_, err := ParseKey(s)
		assert.ErrorIs(t, err, ErrUnknownKey, "ParseKey(%q)", s)
	}
}

func TestKeyForChar(t *testing.T) {
	tests := []struct {
		in    rune
		key   Key
		shift bool
	}{
		{'a', "a", false},
		{'B', "b", true},
		{'\t', KeyTab, false},
		{'\n', KeyEnter, false},
		{' ', KeySpace, false},
	}
	for _, tt := range tests {
		k, shift := KeyForChar(tt.in)
		assert.Equal(t, tt.key, k, "%q", tt.in)
		assert.Equal(t, tt.shift, shift, "%q", tt.in)
	}
}

func TestKeyChar(t *testing.T) {
	r, ok := Key("q").Char()
	assert.True(t, ok)
	assert.Equal(t, 'q', r)
	r, ok = KeySpace.Char()
	assert.True(t, ok)
	assert.Equal(t, ' ', r)
	_, ok = KeyShift.Char()
	assert.False(t, ok, "modifiers type nothing")
	assert.True(t, KeyShift.IsModifier())
	assert.False(t, Key("a").IsModifier())
}

func TestParseMotion(t *testing.T) {
	tests := map[string]Motion{
		"":                 Direct,
		"direct":           Direct,
		"horizontal-first": HorizontalFirst,
		"HORIZONTAL_FIRST": HorizontalFirst,
		"vertical":         VerticalFirst,
	}
	for in, want := range tests {
		got, err := ParseMotion(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMotion("diagonal")
	assert.Error(t, err)
}

func TestDirectionUnit(t *testing.T) {
	tests := []struct {
		d          Direction
		amount     int
		horizontal bool
	}{
		{ScrollUp, -1, false},
		{ScrollDown, 1, false},
		{ScrollLeft, -1, true},
		{ScrollRight, 1, true},
	}
	for _, tt := range tests {
		amount, horizontal := tt.d.Unit()
		assert.Equal(t, tt.amount, amount, "%v", tt.d)
		assert.Equal(t, tt.horizontal, horizontal, "%v", tt.d)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}

func TestPointDistance(t *testing.T) {
	assert.Equal(t, 5.0, (Point{0, 0}).Distance(Point{3, 4}))
	assert.Equal(t, Point{3, 0}, (Point{1, 1}).Add(2, -1))
	b := BoundsOf([4]int{1, 2, 3, 4})
	assert.Equal(t, [4]int{1, 2, 3, 4}, b.Array())
	assert.False(t, b.Empty())
}
