package diag

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// LabelMode controls what text is drawn on each annotated node.
type LabelMode int

const (
	// LabelCoords draws "(x,y)" screen-absolute center coordinates.
	LabelCoords LabelMode = iota
	// LabelIDs draws "#id", or the role for nodes without an id.
	LabelIDs
)

// Annotate draws a box and a label for every element on a copy of img.
// origin is the screen rectangle img was captured from; element bounds are
// screen-absolute and scaled to image pixels.
func Annotate(img image.Image, elements []model.FlatElement, origin platform.Bounds, mode LabelMode) *image.RGBA {
	rgba := toRGBA(img)

	scaleX, scaleY := 1.0, 1.0
	if origin.Width > 0 {
		scaleX = float64(img.Bounds().Dx()) / float64(origin.Width)
	}
	if origin.Height > 0 {
		scaleY = float64(img.Bounds().Dy()) / float64(origin.Height)
	}

	boxColor := color.RGBA{R: 255, G: 0, B: 0, A: 100}
	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor := color.RGBA{R: 0, G: 0, B: 0, A: 200}

	for _, el := range elements {
		if el.Hidden {
			continue
		}
		b := el.Bounds
		x := int(float64(b[0]-origin.X) * scaleX)
		y := int(float64(b[1]-origin.Y) * scaleY)
		w := int(float64(b[2]) * scaleX)
		h := int(float64(b[3]) * scaleY)
		drawRectangle(rgba, x, y, x+w, y+h, boxColor)
		drawTextWithOutline(rgba, label(el, mode), x+w/2, y+h/2, textColor, outlineColor)
	}
	return rgba
}

func label(el model.FlatElement, mode LabelMode) string {
	if mode == LabelIDs {
		if el.ID != "" {
			return "#" + el.ID
		}
		return el.Role
	}
	return fmt.Sprintf("(%d,%d)", el.Bounds[0]+el.Bounds[2]/2, el.Bounds[1]+el.Bounds[3]/2)
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawTextWithOutline centres text on (x, y) with a one pixel outline.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	// basicfont.Face7x13 glyphs are 7 pixels wide and 13 tall.
	offsetX := x - len(text)*7/2
	offsetY := y + 13/2

	drawAt := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(offsetX+dx, offsetY+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				drawAt(dx, dy, outlineColor)
			}
		}
	}
	drawAt(0, 0, textColor)
}
