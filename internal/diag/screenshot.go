package diag

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// CaptureAnnotated captures the topmost showing window and draws its
// nodes over the image.
func CaptureAnnotated(b *async.Bridge, inj platform.Injector, scene platform.SceneQuery, mode LabelMode) (*image.RGBA, error) {
	type capture struct {
		img      image.Image
		origin   platform.Bounds
		elements []model.FlatElement
	}
	c, err := async.CallOnUI(b, b.Profile().SetupTimeout, func() (capture, error) {
		w := topWindow(scene)
		if w == nil {
			return capture{}, fmt.Errorf("no showing window")
		}
		rect := platform.BoundsOf(w.Bounds)
		img, err := inj.Capture(rect)
		if err != nil {
			return capture{}, err
		}
		return capture{
			img:      img,
			origin:   rect,
			elements: model.FlattenNodes([]*model.Node{w.Root}),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return Annotate(c.img, c.elements, c.origin, mode), nil
}

// SaveScreenshot writes an annotated capture of the topmost showing
// window into dir and returns the file's path.
func SaveScreenshot(b *async.Bridge, inj platform.Injector, scene platform.SceneQuery, dir, name string, mode LabelMode) (string, error) {
	img, err := CaptureAnnotated(b, inj, scene, mode)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", sanitize(name), uuid.NewString()[:8]))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("screenshot: png encode: %w", err)
	}
	return path, nil
}

func topWindow(scene platform.SceneQuery) *model.Window {
	windows := scene.Windows()
	for i := len(windows) - 1; i >= 0; i-- {
		if windows[i].Showing {
			return windows[i]
		}
	}
	return nil
}

func sanitize(name string) string {
	if name == "" {
		return "screenshot"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
