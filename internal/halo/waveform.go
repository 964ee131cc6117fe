package halo

import (
	"math"

	"github.com/iburimskiy/halo/internal/config"
)

// Point is a position in logical pixels.
type Point struct {
	X, Y float64
}

// Wave holds the contour constants shared by every ring.
type Wave struct {
	Harmonics float64
	Speed     float64 // rad/s
}

func WaveFrom(cfg config.Animation) Wave {
	return Wave{Harmonics: cfg.WaveHarmonicCount, Speed: cfg.WaveAngularSpeed}
}

// Offset is the radial displacement of the contour at angle and wall time t.
func (w Wave) Offset(angle, amplitude, t float64) float64 {
	h, s := w.Harmonics, w.Speed
	return amplitude * (math.Sin(angle*h+t*s) + math.Cos(angle*1.5*h-t*1.2*s))
}

// Contour samples the closed ring outline into dst and returns it. The result
// has n+1 points; the last one is an exact copy of the first.
//
// The curve is a closed-form function of its arguments, so identical inputs
// always give identical points.
func Contour(dst []Point, center Point, radius, amplitude, t float64, w Wave, n int) []Point {
	dst = dst[:0]
	if n < 1 {
		return dst
	}
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		a := float64(i) * step
		r := radius + w.Offset(a, amplitude, t)
		dst = append(dst, Point{
			X: center.X + r*math.Cos(a),
			Y: center.Y + r*math.Sin(a),
		})
	}
	return append(dst, dst[0])
}
