package halo

import (
	"image/color"

	"github.com/iburimskiy/halo/internal/config"
)

// painter yields the stroke style shared by all rings of a frame. It is picked
// once per engine from the surface capabilities.
type painter interface {
	framePaint(center Point, t float64) StrokeStyle
}

func newPainter(s Surface, cfg config.Animation) painter {
	stops := append([]config.ColorStop(nil), cfg.ColorStops...)
	flat := flatPaint{color: stops[0].Color.RGBA()}
	if g, ok := s.(AngularGradienter); ok {
		return conicPaint{surface: g, speed: cfg.GradientAngularSpeed, stops: stops, flat: flat}
	}
	return flat
}

type flatPaint struct {
	color color.RGBA
}

func (p flatPaint) framePaint(Point, float64) StrokeStyle {
	return StrokeStyle{Color: p.color}
}

type conicPaint struct {
	surface AngularGradienter
	speed   float64
	stops   []config.ColorStop
	flat    flatPaint
}

func (p conicPaint) framePaint(center Point, t float64) StrokeStyle {
	g := NewAngularGradient(center, t, p.speed, p.stops)
	h, ok := p.surface.CreateAngularGradient(g.Center, g.Rotation, g.Stops)
	if !ok {
		return p.flat.framePaint(center, t)
	}
	return StrokeStyle{Color: g.Fallback(), Gradient: h}
}
