package game

import (
	"sync"

	"github.com/iburimskiy/halo/internal/halo"
)

// windowViewport tracks the window size reported to Layout.
type windowViewport struct {
	mu sync.RWMutex
	vp halo.Viewport
}

func newWindowViewport(width, height int) *windowViewport {
	return &windowViewport{vp: halo.Viewport{
		Width:            float64(width),
		Height:           float64(height),
		DevicePixelRatio: 1,
	}}
}

func (w *windowViewport) Viewport() halo.Viewport {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.vp
}

// set records the logical window size and returns the screen size in device
// pixels.
func (w *windowViewport) set(width, height int, dpr float64) (int, int) {
	if dpr <= 0 {
		dpr = 1
	}
	w.mu.Lock()
	w.vp = halo.Viewport{Width: float64(width), Height: float64(height), DevicePixelRatio: dpr}
	w.mu.Unlock()
	return int(float64(width) * dpr), int(float64(height) * dpr)
}
