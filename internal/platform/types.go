package platform

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left", "primary":
		return MouseLeft, nil
	case "right", "secondary":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// Key names a keyboard key. Printable keys are their lower-case character
// ("a", "7", "/"); the rest use the constants below.
type Key string

const (
	KeyShift     Key = "shift"
	KeyControl   Key = "ctrl"
	KeyAlt       Key = "alt"
	KeyMeta      Key = "meta"
	KeyEnter     Key = "enter"
	KeyTab       Key = "tab"
	KeySpace     Key = "space"
	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
	KeyEscape    Key = "escape"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyHome      Key = "home"
	KeyEnd       Key = "end"
)

// ErrUnknownKey is returned by ParseKey for names it does not recognise.
var ErrUnknownKey = errors.New("unknown key")

var keyAliases = map[string]Key{
	"shift":     KeyShift,
	"ctrl":      KeyControl,
	"control":   KeyControl,
	"alt":       KeyAlt,
	"option":    KeyAlt,
	"meta":      KeyMeta,
	"cmd":       KeyMeta,
	"command":   KeyMeta,
	"super":     KeyMeta,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"tab":       KeyTab,
	"space":     KeySpace,
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"del":       KeyDelete,
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"home":      KeyHome,
	"end":       KeyEnd,
}

// ParseKey resolves a key name or a single printable character.
func ParseKey(s string) (Key, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if k, ok := keyAliases[name]; ok {
		return k, nil
	}
	r := []rune(name)
	if len(r) == 1 && unicode.IsPrint(r[0]) && !unicode.IsSpace(r[0]) {
		return Key(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, s)
}

// IsModifier reports whether k is shift, ctrl, alt or meta.
func (k Key) IsModifier() bool {
	switch k {
	case KeyShift, KeyControl, KeyAlt, KeyMeta:
		return true
	}
	return false
}

// Char returns the character k types with no modifiers held, if any.
func (k Key) Char() (rune, bool) {
	if k == KeySpace {
		return ' ', true
	}
	r := []rune(string(k))
	if len(r) == 1 {
		return r[0], true
	}
	return 0, false
}

// KeyForChar maps a character to the key that produces it. Upper-case
// letters map to their lower-case key and report that shift is needed.
func KeyForChar(r rune) (k Key, shift bool) {
	switch r {
	case '\t':
		return KeyTab, false
	case '\n', '\r':
		return KeyEnter, false
	case ' ':
		return KeySpace, false
	}
	if unicode.IsUpper(r) {
		return Key(string(unicode.ToLower(r))), true
	}
	return Key(string(r)), false
}

// Point is a screen coordinate.
type Point struct {
	X, Y float64
}

func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// Distance is the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Bounds represents a screen rectangle.
type Bounds struct {
	X, Y, Width, Height int
}

// BoundsOf converts the [x, y, w, h] form used by the scene model.
func BoundsOf(b [4]int) Bounds {
	return Bounds{X: b[0], Y: b[1], Width: b[2], Height: b[3]}
}

func (b Bounds) Array() [4]int { return [4]int{b.X, b.Y, b.Width, b.Height} }

func (b Bounds) Empty() bool { return b.Width <= 0 || b.Height <= 0 }

// Contains reports whether p lies inside b; the right and bottom edges are
// outside.
func (b Bounds) Contains(p Point) bool {
	return p.X >= float64(b.X) && p.X < float64(b.X+b.Width) &&
		p.Y >= float64(b.Y) && p.Y < float64(b.Y+b.Height)
}

// Center is the midpoint of b.
func (b Bounds) Center() Point {
	return Point{X: float64(b.X) + float64(b.Width)/2, Y: float64(b.Y) + float64(b.Height)/2}
}

// ParseBBox parses a "x,y,w,h" string into a Bounds.
func ParseBBox(s string) (*Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: expected x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		vals[i] = v
	}
	return &Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// Motion is the path shape of a pointer move.
type Motion int

const (
	// Direct moves along the straight line to the target.
	Direct Motion = iota
	// HorizontalFirst moves along x, then along y.
	HorizontalFirst
	// VerticalFirst moves along y, then along x.
	VerticalFirst
)

func (m Motion) String() string {
	switch m {
	case Direct:
		return "direct"
	case HorizontalFirst:
		return "horizontal-first"
	case VerticalFirst:
		return "vertical-first"
	default:
		return fmt.Sprintf("motion(%d)", int(m))
	}
}

// ParseMotion accepts "direct", "horizontal-first" and "vertical-first".
// The empty string is Direct.
func ParseMotion(s string) (Motion, error) {
	switch strings.ReplaceAll(strings.ToLower(s), "_", "-") {
	case "", "direct", "default":
		return Direct, nil
	case "horizontal-first", "horizontal":
		return HorizontalFirst, nil
	case "vertical-first", "vertical":
		return VerticalFirst, nil
	default:
		return Direct, fmt.Errorf("unknown motion: %q (expected direct, horizontal-first, or vertical-first)", s)
	}
}

// Direction is a scroll direction.
type Direction int

const (
	ScrollUp Direction = iota
	ScrollDown
	ScrollLeft
	ScrollRight
)

// ParseDirection accepts up, down, left and right.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "up":
		return ScrollUp, nil
	case "down", "":
		return ScrollDown, nil
	case "left":
		return ScrollLeft, nil
	case "right":
		return ScrollRight, nil
	default:
		return ScrollDown, fmt.Errorf("unknown scroll direction: %q (expected up, down, left, or right)", s)
	}
}

func (d Direction) String() string {
	switch d {
	case ScrollUp:
		return "up"
	case ScrollDown:
		return "down"
	case ScrollLeft:
		return "left"
	case ScrollRight:
		return "right"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Unit is the signed wheel unit for d: up and left are negative.
func (d Direction) Unit() (amount int, horizontal bool) {
	switch d {
	case ScrollUp:
		return -1, false
	case ScrollLeft:
		return -1, true
	case ScrollRight:
		return 1, true
	default:
		return 1, false
	}
}
