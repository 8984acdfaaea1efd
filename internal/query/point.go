package query

import (
	"fmt"
	"strings"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// Pos is an anchor within a rectangle.
type Pos int

const (
	TopLeft Pos = iota
	TopCenter
	TopRight
	CenterLeft
	Center
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
)

var posNames = []string{
	"top-left", "top-center", "top-right",
	"center-left", "center", "center-right",
	"bottom-left", "bottom-center", "bottom-right",
}

func (p Pos) String() string {
	if p < 0 || int(p) >= len(posNames) {
		return fmt.Sprintf("pos(%d)", int(p))
	}
	return posNames[p]
}

// ParsePos accepts the names above; the empty string is Center.
func ParsePos(s string) (Pos, error) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if s == "" {
		return Center, nil
	}
	for i, name := range posNames {
		if name == s {
			return Pos(i), nil
		}
	}
	return Center, fmt.Errorf("unknown position: %q", s)
}

// PointOf returns the point of b at pos.
func PointOf(b platform.Bounds, pos Pos) platform.Point {
	x := float64(b.X)
	y := float64(b.Y)
	w := float64(b.Width)
	h := float64(b.Height)
	switch pos % 3 {
	case 1:
		x += w / 2
	case 2:
		x += w
	}
	switch pos / 3 {
	case 1:
		y += h / 2
	case 2:
		y += h
	}
	return platform.Point{X: x, Y: y}
}

// PointQuery is a lazily evaluated screen point. Each Query re-reads its
// source, so a query against a node follows the node if it moves.
type PointQuery struct {
	point  func() (platform.Point, error)
	dx, dy float64
	desc   string
}

// At is a fixed point.
func At(p platform.Point) PointQuery {
	return PointQuery{
		point: func() (platform.Point, error) { return p, nil },
		desc:  "point" + p.String(),
	}
}

// OfBounds anchors on a fixed rectangle.
func OfBounds(b platform.Bounds, pos Pos) PointQuery {
	return PointQuery{
		point: func() (platform.Point, error) { return PointOf(b, pos), nil },
		desc:  fmt.Sprintf("bounds%v@%s", b.Array(), pos),
	}
}

// OfNode anchors on n's current bounds.
func OfNode(n *model.Node, pos Pos) PointQuery {
	return PointQuery{
		point: func() (platform.Point, error) { return PointOf(platform.BoundsOf(n.Bounds), pos), nil },
		desc:  fmt.Sprintf("node(%s)@%s", describeNodes([]*model.Node{n}), pos),
	}
}

// OfSelector re-runs selector against the scene on every Query and anchors
// on the first visible match.
func OfSelector(scene platform.SceneQuery, selector string, pos Pos) PointQuery {
	return PointQuery{
		point: func() (platform.Point, error) {
			n, err := VisibleNode(Roots(scene), selector)
			if err != nil {
				return platform.Point{}, err
			}
			return PointOf(platform.BoundsOf(n.Bounds), pos), nil
		},
		desc: fmt.Sprintf("%q@%s", selector, pos),
	}
}

// WithOffset shifts the point by dx, dy.
func (q PointQuery) WithOffset(dx, dy float64) PointQuery {
	q.dx += dx
	q.dy += dy
	return q
}

// Query evaluates the point. Queries against the scene must run on the UI
// goroutine.
func (q PointQuery) Query() (platform.Point, error) {
	if q.point == nil {
		return platform.Point{}, fmt.Errorf("empty point query")
	}
	p, err := q.point()
	if err != nil {
		return platform.Point{}, err
	}
	return p.Add(q.dx, q.dy), nil
}

func (q PointQuery) String() string {
	if q.dx != 0 || q.dy != 0 {
		return fmt.Sprintf("%s%+g%+g", q.desc, q.dx, q.dy)
	}
	return q.desc
}
