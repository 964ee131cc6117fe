// Package canvas provides the drawing surfaces the halo engine renders to.
package canvas

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/halo/internal/config"
	"github.com/iburimskiy/halo/internal/halo"
)

// Number of entries in a conic gradient lookup table (one per degree).
const conicSteps = 360

var (
	whiteOnce     sync.Once
	whiteSubImage *ebiten.Image
)

// white returns a 1x1 opaque white source image for DrawTriangles.
func white() *ebiten.Image {
	whiteOnce.Do(func() {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteSubImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	})
	return whiteSubImage
}

// Ebiten draws onto an ebiten image. Strokes are tessellated with vector.Path
// and shaded per vertex, which lets the surface honour conic gradients. Blur is
// approximated with wider, fainter strokes drawn underneath.
type Ebiten struct {
	target     *ebiten.Image
	background color.RGBA
	glowPasses int

	scale float32
	blend ebiten.Blend
	path  *vector.Path

	vertices []ebiten.Vertex
	indices  []uint16
}

func NewEbiten(background color.RGBA, glowPasses int) *Ebiten {
	return &Ebiten{
		background: background,
		glowPasses: glowPasses,
		scale:      1,
		blend:      ebiten.BlendSourceOver,
		path:       &vector.Path{},
	}
}

// SetTarget selects the image the next frame is drawn to.
func (s *Ebiten) SetTarget(img *ebiten.Image) { s.target = img }

// Resize adopts the device pixel ratio; logical coordinates are scaled by it.
func (s *Ebiten) Resize(vp halo.Viewport) {
	s.scale = 1
	if vp.DevicePixelRatio > 0 {
		s.scale = float32(vp.DevicePixelRatio)
	}
}

func (s *Ebiten) Clear(_, _ float64) {
	if s.target == nil {
		return
	}
	s.target.Fill(s.background)
}

func (s *Ebiten) SetCompositeMode(m halo.CompositeMode) { s.blend = ebitenBlend(m) }

func ebitenBlend(m halo.CompositeMode) ebiten.Blend {
	if m == halo.CompositeLighter {
		return ebiten.BlendLighter
	}
	return ebiten.BlendSourceOver
}

func (s *Ebiten) BeginPath() { s.path = &vector.Path{} }

func (s *Ebiten) MoveTo(x, y float64) { s.path.MoveTo(float32(x)*s.scale, float32(y)*s.scale) }

func (s *Ebiten) LineTo(x, y float64) { s.path.LineTo(float32(x)*s.scale, float32(y)*s.scale) }

func (s *Ebiten) ClosePath() { s.path.Close() }

func (s *Ebiten) Stroke(style halo.StrokeStyle, width, alpha, blur float64, blurColor color.RGBA) {
	if s.target == nil || alpha <= 0 {
		return
	}
	for _, g := range glowLayers(width, alpha, blur, s.glowPasses) {
		s.drawStroke(halo.StrokeStyle{Color: blurColor}, g.width, g.alpha)
	}
	s.drawStroke(style, width, alpha)
}

func (s *Ebiten) drawStroke(style halo.StrokeStyle, width, alpha float64) {
	op := &vector.StrokeOptions{
		Width:    float32(width) * s.scale,
		LineJoin: vector.LineJoinRound,
	}
	s.vertices, s.indices = s.path.AppendVerticesAndIndicesForStroke(s.vertices[:0], s.indices[:0], op)
	shadeVertices(s.vertices, style, alpha, s.scale)
	s.target.DrawTriangles(s.vertices, s.indices, white(), &ebiten.DrawTrianglesOptions{
		AntiAlias: true,
		Blend:     s.blend,
	})
}

// CreateAngularGradient precomputes a lookup table for the frame gradient.
func (s *Ebiten) CreateAngularGradient(center halo.Point, rotation float64, stops []config.ColorStop) (halo.GradientHandle, bool) {
	if len(stops) == 0 {
		return nil, false
	}
	return newConic(halo.Gradient{Center: center, Rotation: rotation, Stops: stops}), true
}

// conic is the ebiten gradient handle: colors sampled once per degree.
type conic struct {
	center halo.Point
	lut    [conicSteps]color.RGBA
}

func newConic(g halo.Gradient) *conic {
	c := &conic{center: g.Center}
	for i := range c.lut {
		c.lut[i] = g.ColorAt(2 * math.Pi * float64(i) / conicSteps)
	}
	return c
}

// at returns the color in the direction of logical point (x, y).
func (c *conic) at(x, y float64) color.RGBA {
	pos := math.Atan2(y-c.center.Y, x-c.center.X) / (2 * math.Pi)
	if pos < 0 {
		pos++
	}
	i := int(math.Round(pos*conicSteps)) % conicSteps
	return c.lut[i]
}

// shadeVertices colors tessellated vertices; positions are in device pixels.
func shadeVertices(vs []ebiten.Vertex, style halo.StrokeStyle, alpha float64, scale float32) {
	a := float32(clamp01(alpha)) * float32(style.Color.A) / 0xff
	g, conical := style.Gradient.(*conic)
	if !conical {
		r, gr, b := rgbf(style.Color)
		for i := range vs {
			vs[i].SrcX, vs[i].SrcY = 1, 1
			vs[i].ColorR, vs[i].ColorG, vs[i].ColorB, vs[i].ColorA = r, gr, b, a
		}
		return
	}
	for i := range vs {
		c := g.at(float64(vs[i].DstX/scale), float64(vs[i].DstY/scale))
		r, gr, b := rgbf(c)
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR, vs[i].ColorG, vs[i].ColorB = r, gr, b
		vs[i].ColorA = a * float32(c.A) / 0xff
	}
}

func rgbf(c color.RGBA) (float32, float32, float32) {
	return float32(c.R) / 0xff, float32(c.G) / 0xff, float32(c.B) / 0xff
}

// glowLayer is one widened stroke of the blur approximation.
type glowLayer struct {
	width, alpha float64
}

// glowLayers spreads blur over passes strokes, widest and faintest first. The
// summed alpha of all layers stays below the stroke's own alpha.
func glowLayers(width, alpha, blur float64, passes int) []glowLayer {
	if blur <= 0 || passes <= 0 {
		return nil
	}
	layers := make([]glowLayer, 0, passes)
	per := alpha * 0.6 / float64(passes)
	for i := passes; i >= 1; i-- {
		frac := float64(i) / float64(passes)
		layers = append(layers, glowLayer{
			width: width + 2*blur*frac,
			alpha: per * (1 - 0.5*frac),
		})
	}
	return layers
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
