package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/desktop-harness/internal/platform"
)

func TestStepCount(t *testing.T) {
	tests := []struct {
		distance float64
		lo, hi   int
		want     int
	}{
		{0, 1, 200, 1},
		{0.4, 0, 200, 1},
		{57.6, 1, 200, 58},
		{1000, 1, 200, 200},
		{3, 5, 200, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StepCount(tt.distance, tt.lo, tt.hi), "distance %g", tt.distance)
	}
}

func TestInterpolate(t *testing.T) {
	src := platform.Point{X: 0, Y: 0}
	dst := platform.Point{X: 10, Y: -5}
	pts := Interpolate(src, dst, 5)
	require.Len(t, pts, 5)
	assert.Equal(t, platform.Point{X: 2, Y: -1}, pts[0])
	assert.Equal(t, dst, pts[4])

	assert.Equal(t, []platform.Point{dst}, Interpolate(src, dst, 0))
}

func TestLegs(t *testing.T) {
	a := platform.Point{X: 1, Y: 2}
	b := platform.Point{X: 5, Y: 9}
	assert.Equal(t, [][2]platform.Point{{a, b}}, legs(a, b, platform.Direct))
	assert.Equal(t, [][2]platform.Point{{a, {X: 5, Y: 2}}, {{X: 5, Y: 2}, b}}, legs(a, b, platform.HorizontalFirst))
	assert.Equal(t, [][2]platform.Point{{a, {X: 1, Y: 9}}, {{X: 1, Y: 9}, b}}, legs(a, b, platform.VerticalFirst))
}

func TestParseKeyCombination(t *testing.T) {
	kc, err := ParseKeyCombination("ctrl+shift+S")
	require.NoError(t, err)
	assert.Equal(t, []platform.Key{platform.KeyControl, platform.KeyShift}, kc.Modifiers)
	assert.Equal(t, platform.Key("s"), kc.Key)
	assert.Equal(t, "ctrl+shift+s", kc.String())

	kc, err = ParseKeyCombination("enter")
	require.NoError(t, err)
	assert.Empty(t, kc.Modifiers)
	assert.Equal(t, []platform.Key{platform.KeyEnter}, kc.Keys())

	_, err = ParseKeyCombination("a+b")
	assert.Error(t, err)
	_, err = ParseKeyCombination("ctrl+bogus")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestPressedSet(t *testing.T) {
	var s pressedSet[platform.Key]
	s.add(platform.KeyShift)
	s.add(platform.KeyControl)
	s.add(platform.KeyShift)
	assert.Equal(t, []platform.Key{platform.KeyShift, platform.KeyControl}, s.snapshot())
	assert.Equal(t, []platform.Key{platform.KeyControl, platform.KeyShift}, s.reversed())
	assert.True(t, s.remove(platform.KeyShift))
	assert.False(t, s.remove(platform.KeyShift))
	assert.Equal(t, []platform.Key{platform.KeyControl}, s.snapshot())
}
