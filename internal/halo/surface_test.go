package halo

import (
	"image/color"
	"sync"
	"time"

	"github.com/iburimskiy/halo/internal/config"
)

// recordedStroke is one closed path handed to Stroke.
type recordedStroke struct {
	points []Point
	style  StrokeStyle
	width  float64
	alpha  float64
	blur   float64
}

// recorder is a Surface that remembers every call.
type recorder struct {
	mu      sync.Mutex
	calls   []string
	strokes []recordedStroke
	modes   []CompositeMode
	clears  int
	path    []Point
}

func (r *recorder) Clear(_, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	r.calls = append(r.calls, "clear")
}

func (r *recorder) SetCompositeMode(m CompositeMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, m)
	r.calls = append(r.calls, "composite:"+m.String())
}

func (r *recorder) BeginPath() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = nil
	r.calls = append(r.calls, "begin")
}

func (r *recorder) MoveTo(x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = append(r.path, Point{x, y})
}

func (r *recorder) LineTo(x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = append(r.path, Point{x, y})
}

func (r *recorder) ClosePath() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "close")
}

func (r *recorder) Stroke(style StrokeStyle, width, alpha, blur float64, _ color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strokes = append(r.strokes, recordedStroke{
		points: append([]Point(nil), r.path...),
		style:  style,
		width:  width,
		alpha:  alpha,
		blur:   blur,
	})
	r.calls = append(r.calls, "stroke")
}

func (r *recorder) strokeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.strokes)
}

func (r *recorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// reset forgets everything recorded so far.
func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls, r.strokes, r.modes, r.clears, r.path = nil, nil, nil, 0, nil
}

// conicRecorder additionally supports angular gradients.
type conicRecorder struct {
	recorder
	refuse    bool
	gradients []Gradient
}

func (c *conicRecorder) CreateAngularGradient(center Point, rotation float64, stops []config.ColorStop) (GradientHandle, bool) {
	if c.refuse {
		return nil, false
	}
	g := Gradient{Center: center, Rotation: rotation, Stops: stops}
	c.gradients = append(c.gradients, g)
	return &g, true
}

// resizeRecorder counts Resize notifications.
type resizeRecorder struct {
	recorder
	sizes []Viewport
}

func (r *resizeRecorder) Resize(vp Viewport) { r.sizes = append(r.sizes, vp) }

// mutableViewport lets a test resize the window between ticks.
type mutableViewport struct{ vp Viewport }

func (m *mutableViewport) Viewport() Viewport { return m.vp }

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// flatConfig draws perfect circles so radii can be read off the points.
func flatConfig() config.Animation {
	cfg := config.Default()
	cfg.AmplitudeBase = 0
	cfg.AmplitudeSpread = 0
	return cfg
}
