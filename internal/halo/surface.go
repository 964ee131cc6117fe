package halo

import (
	"image/color"

	"github.com/iburimskiy/halo/internal/config"
)

// CompositeMode selects how strokes combine with what is already drawn.
type CompositeMode int

const (
	CompositeSourceOver CompositeMode = iota
	// CompositeLighter adds source and destination, producing the glow look.
	CompositeLighter
)

func (m CompositeMode) String() string {
	switch m {
	case CompositeSourceOver:
		return "source-over"
	case CompositeLighter:
		return "lighter"
	default:
		return "unknown"
	}
}

// GradientHandle is a surface-specific gradient returned by CreateAngularGradient.
type GradientHandle any

// StrokeStyle is what a stroke is painted with. Color is always set; Gradient
// is set only when the surface produced one for this frame.
type StrokeStyle struct {
	Color    color.RGBA
	Gradient GradientHandle
}

// Surface is the baseline 2D drawing target every implementation supports.
// Coordinates are logical pixels; scaling for the device pixel ratio is the
// surface's business.
//
// Surfaces that cannot blur ignore the blur arguments.
type Surface interface {
	Clear(width, height float64)
	SetCompositeMode(mode CompositeMode)
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	Stroke(style StrokeStyle, width, alpha, blur float64, blurColor color.RGBA)
}

// AngularGradienter is implemented by surfaces that can shade strokes with a
// conic gradient. ok is false when the gradient cannot be built right now.
type AngularGradienter interface {
	CreateAngularGradient(center Point, rotation float64, stops []config.ColorStop) (h GradientHandle, ok bool)
}

// Resizer is implemented by surfaces that need to know the viewport, for
// example to allocate a backing store at device resolution.
type Resizer interface {
	Resize(vp Viewport)
}

// Viewport is the drawing area in logical pixels plus the device pixel ratio.
type Viewport struct {
	Width, Height    float64
	DevicePixelRatio float64
}

// Center is the middle of the viewport.
func (v Viewport) Center() Point { return Point{X: v.Width / 2, Y: v.Height / 2} }

// ViewportProvider is polled once per tick.
type ViewportProvider interface {
	Viewport() Viewport
}

// FixedViewport never changes size.
type FixedViewport Viewport

func (v FixedViewport) Viewport() Viewport { return Viewport(v) }
