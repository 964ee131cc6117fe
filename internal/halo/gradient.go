package halo

import (
	"image/color"
	"math"

	"github.com/iburimskiy/halo/internal/config"
)

// Gradient is an angular (conic) gradient anchored at Center and turned by
// Rotation radians. Stops are a verbatim copy of the configured table.
type Gradient struct {
	Center   Point
	Rotation float64
	Stops    []config.ColorStop
}

// NewAngularGradient builds the frame gradient at wall time t.
func NewAngularGradient(center Point, t, speed float64, stops []config.ColorStop) Gradient {
	return Gradient{
		Center:   center,
		Rotation: math.Mod(t*speed, 2*math.Pi),
		Stops:    append([]config.ColorStop(nil), stops...),
	}
}

// Fallback is the flat color used where conic gradients are unavailable.
func (g Gradient) Fallback() color.RGBA {
	if len(g.Stops) == 0 {
		return color.RGBA{}
	}
	return g.Stops[0].Color.RGBA()
}

// ColorAt returns the gradient color along the ray at angle (radians, measured
// like math.Atan2 from the center).
func (g Gradient) ColorAt(angle float64) color.RGBA {
	if len(g.Stops) == 0 {
		return color.RGBA{}
	}
	pos := math.Mod(angle-g.Rotation, 2*math.Pi)
	if pos < 0 {
		pos += 2 * math.Pi
	}
	return g.at(pos / (2 * math.Pi))
}

// ColorAtPoint is ColorAt for the direction from the center to p.
func (g Gradient) ColorAtPoint(p Point) color.RGBA {
	return g.ColorAt(math.Atan2(p.Y-g.Center.Y, p.X-g.Center.X))
}

func (g Gradient) at(pos float64) color.RGBA {
	first, last := g.Stops[0], g.Stops[len(g.Stops)-1]
	if pos <= first.Position {
		return first.Color.RGBA()
	}
	if pos >= last.Position {
		return last.Color.RGBA()
	}
	for i := 1; i < len(g.Stops); i++ {
		hi := g.Stops[i]
		if pos > hi.Position {
			continue
		}
		lo := g.Stops[i-1]
		span := hi.Position - lo.Position
		if span <= 0 {
			return hi.Color.RGBA()
		}
		return lerpRGBA(lo.Color.RGBA(), hi.Color.RGBA(), (pos-lo.Position)/span)
	}
	return last.Color.RGBA()
}
