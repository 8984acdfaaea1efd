package server

import (
	"sync"
	"time"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
)

// SceneCache keeps the last flattened scene for a short TTL so bursts of
// read calls do not each hop onto the UI goroutine.
type SceneCache struct {
	mu        sync.Mutex
	elements  []model.FlatElement
	window    string
	timestamp time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewSceneCache creates a new cache. A ttl of 0 disables caching.
func NewSceneCache(ttl time.Duration) *SceneCache {
	return &SceneCache{ttl: ttl, now: time.Now}
}

// Read returns the cached scene if within TTL, otherwise flattens the
// topmost showing window on the UI goroutine.
func (c *SceneCache) Read(b *async.Bridge, scene platform.SceneQuery) (string, []model.FlatElement, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		if !c.timestamp.IsZero() && c.now().Sub(c.timestamp) < c.ttl {
			window, elements := c.window, c.elements
			c.mu.Unlock()
			return window, elements, nil
		}
		c.mu.Unlock()
	}

	type snapshot struct {
		window   string
		elements []model.FlatElement
	}
	snap, err := async.CallOnUI(b, b.Profile().ConditionWait, func() (snapshot, error) {
		windows := scene.Windows()
		for i := len(windows) - 1; i >= 0; i-- {
			if w := windows[i]; w.Showing && w.Root != nil {
				return snapshot{w.Title, model.FlattenNodes([]*model.Node{w.Root})}, nil
			}
		}
		return snapshot{}, nil
	})
	if err != nil {
		return "", nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.window, c.elements, c.timestamp = snap.window, snap.elements, c.now()
		c.mu.Unlock()
	}
	return snap.window, snap.elements, nil
}

// Invalidate drops the cached scene. Every input action calls it.
func (c *SceneCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elements, c.window, c.timestamp = nil, "", time.Time{}
}
