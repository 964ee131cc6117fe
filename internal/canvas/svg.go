package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/iburimskiy/halo/internal/halo"
)

// ErrNoFrame is returned by Frame before anything was drawn.
var ErrNoFrame = errors.New("canvas: no frame drawn")

// SVG renders each frame as a standalone SVG document. SVG has no conic
// gradient, so the engine strokes it with the flat fallback color; blur maps to
// a Gaussian blur filter on a glow copy of the path.
type SVG struct {
	background color.RGBA

	buf     bytes.Buffer
	canvas  *svg.SVG
	open    bool
	vp      halo.Viewport
	mode    halo.CompositeMode
	d       strings.Builder
	filters int
}

func NewSVG(background color.RGBA) *SVG {
	return &SVG{
		background: background,
		vp:         halo.Viewport{DevicePixelRatio: 1},
	}
}

func (s *SVG) Resize(vp halo.Viewport) { s.vp = vp }

// Clear starts a new document, discarding any unfinished one.
func (s *SVG) Clear(width, height float64) {
	s.buf.Reset()
	s.canvas = svg.New(&s.buf)
	s.filters = 0

	dpr := s.vp.DevicePixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	w, h := int(math.Round(width)), int(math.Round(height))
	s.canvas.Startview(int(math.Round(width*dpr)), int(math.Round(height*dpr)), 0, 0, w, h)
	s.canvas.Rect(0, 0, w, h, "fill:"+hexColor(s.background))
	s.open = true
}

func (s *SVG) SetCompositeMode(m halo.CompositeMode) { s.mode = m }

func (s *SVG) BeginPath() { s.d.Reset() }

func (s *SVG) MoveTo(x, y float64) { s.segment('M', x, y) }

func (s *SVG) LineTo(x, y float64) { s.segment('L', x, y) }

func (s *SVG) ClosePath() { s.d.WriteString("Z") }

func (s *SVG) segment(cmd byte, x, y float64) {
	s.d.WriteByte(cmd)
	s.d.WriteString(formatFloat(x))
	s.d.WriteByte(' ')
	s.d.WriteString(formatFloat(y))
}

func (s *SVG) Stroke(style halo.StrokeStyle, width, alpha, blur float64, blurColor color.RGBA) {
	if !s.open || s.d.Len() == 0 {
		return
	}
	d := s.d.String()
	if blur > 0 {
		id := "glow" + strconv.Itoa(s.filters)
		s.filters++
		s.canvas.Def()
		s.canvas.Filter(id)
		// canvas shadowBlur corresponds to a standard deviation of blur/2
		s.canvas.FeGaussianBlur(svg.Filterspec{In: "SourceGraphic"}, blur/2, blur/2)
		s.canvas.Fend()
		s.canvas.DefEnd()
		s.canvas.Path(d, s.strokeCSS(blurColor, width, alpha)+";filter:url(#"+id+")")
	}
	s.canvas.Path(d, s.strokeCSS(style.Color, width, alpha))
}

func (s *SVG) strokeCSS(c color.RGBA, width, alpha float64) string {
	css := fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-opacity:%s;stroke-linejoin:round",
		hexColor(c), formatFloat(width), formatFloat(clamp01(alpha)*float64(c.A)/0xff))
	if s.mode == halo.CompositeLighter {
		css += ";mix-blend-mode:plus-lighter"
	}
	return css
}

// Frame closes the current document and returns it.
func (s *SVG) Frame() ([]byte, error) {
	if s.canvas == nil {
		return nil, ErrNoFrame
	}
	if s.open {
		s.canvas.End()
		s.open = false
	}
	return bytes.Clone(s.buf.Bytes()), nil
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// formatFloat keeps two decimals, plenty at device resolution.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
