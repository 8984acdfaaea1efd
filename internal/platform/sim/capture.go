package sim

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

var (
	desktopColor = color.RGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}
	windowColor  = color.RGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff}
	borderColor  = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}
	focusColor   = color.RGBA{R: 0x1e, G: 0x90, B: 0xff, A: 0xff}

	roleColors = map[string]color.RGBA{
		model.RoleButton: {R: 0xd8, G: 0xd8, B: 0xe8, A: 0xff},
		model.RoleInput:  {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		model.RoleText:   {R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff},
		model.RoleScroll: {R: 0xe4, G: 0xe4, B: 0xe4, A: 0xff},
		model.RoleGroup:  {R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff},
	}
)

// Capture renders the screen region rect as flat boxes: showing windows
// bottom to top, nodes as role-coloured rectangles with a border, the
// focused node outlined in blue.
func (t *Toolkit) Capture(rect platform.Bounds) (image.Image, error) {
	if err := t.checkLoop("capture"); err != nil {
		return nil, err
	}
	if rect.Empty() {
		rect = t.screen
	}
	if rect.Empty() {
		return nil, fmt.Errorf("capture: empty region %+v", rect)
	}

	img := image.NewRGBA(image.Rect(0, 0, rect.Width, rect.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(desktopColor), image.Point{}, draw.Src)
	origin := image.Pt(rect.X, rect.Y)

	for _, w := range t.Windows() {
		if !w.Showing {
			continue
		}
		fillBox(img, toRect(w.Bounds).Sub(origin), windowColor, borderColor)
		if w.Root == nil {
			continue
		}
		w.Root.Walk(func(n *model.Node) bool {
			if n.Hidden {
				return false
			}
			fill, ok := roleColors[n.Role]
			if !ok {
				fill = windowColor
			}
			border := borderColor
			if n.Focused {
				border = focusColor
			}
			if n.Parent() != nil {
				fillBox(img, toRect(n.Bounds).Sub(origin), fill, border)
			}
			return true
		})
	}
	return img, nil
}

func toRect(b [4]int) image.Rectangle {
	return image.Rect(b[0], b[1], b[0]+b[2], b[1]+b[3])
}

func fillBox(img *image.RGBA, r image.Rectangle, fill, border color.Color) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(img, r, image.NewUniform(fill), image.Point{}, draw.Src)
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, border)
		img.Set(x, r.Max.Y-1, border)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, border)
		img.Set(r.Max.X-1, y, border)
	}
}
