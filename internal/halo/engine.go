// Package halo renders the ambient halo animation: a field of expanding,
// wave-deformed rings stroked with a slowly rotating conic gradient.
package halo

import (
	"image/color"
	"math"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/halo/internal/config"
)

type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Engine owns one running animation. It draws exclusively to its surface and
// is torn down with Stop; a stopped engine cannot be restarted.
type Engine struct {
	cfg      config.Animation
	wave     Wave
	surface  Surface
	clock    Clock
	sched    Scheduler
	viewport ViewportProvider
	log      *zap.Logger
	onSpawn  func(Ring)

	mu      sync.Mutex
	state   state
	cancel  func()
	life    *Lifecycle
	paint   painter
	t0      time.Time
	lastVP  Viewport
	contour []Point
	frames  uint64
	spawned []Ring
}

// Option customises an Engine.
type Option func(*Engine)

func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

func WithScheduler(s Scheduler) Option { return func(e *Engine) { e.sched = s } }

func WithViewport(v ViewportProvider) Option { return func(e *Engine) { e.viewport = v } }

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// WithSpawnHook is called on the tick goroutine each time a ring spawns, after
// the frame is drawn and the engine lock released.
func WithSpawnHook(fn func(Ring)) Option { return func(e *Engine) { e.onSpawn = fn } }

// New validates cfg and builds an idle engine. A nil surface is accepted; Start
// on such an engine does nothing.
func New(cfg config.Animation, surface Surface, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:     cfg,
		wave:    WaveFrom(cfg),
		surface: surface,
		clock:   SystemClock{},
		log:     zap.NewNop(),
		viewport: FixedViewport{
			Width:            config.WindowWidth,
			Height:           config.WindowHeight,
			DevicePixelRatio: 1,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sched == nil {
		e.sched = NewTimerScheduler(60, e.clock)
	}
	return e, nil
}

// Start seeds the ring set with rings of the given ages and requests the first
// frame. It is a no-op without a surface, when already running, or after Stop.
func (e *Engine) Start(preseed ...time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateIdle {
		return
	}
	if isNilSurface(e.surface) {
		e.log.Warn("halo: no rendering surface, animation disabled")
		return
	}

	e.t0 = e.clock.Now()
	e.life = NewLifecycle(e.cfg.Lifetime, e.cfg.SpawnInterval)
	e.life.OnSpawn(func(r Ring) { e.spawned = append(e.spawned, r) })
	e.life.Seed(e.t0, preseed)
	e.paint = newPainter(e.surface, e.cfg)
	e.contour = make([]Point, 0, e.cfg.SampleCount+1)
	e.state = stateRunning
	e.cancel = e.sched.Schedule(e.tick)

	e.log.Info("halo: started",
		zap.Int("preseeded", e.life.Len()),
		zap.Duration("lifetime", e.cfg.Lifetime),
		zap.Duration("spawn_interval", e.cfg.SpawnInterval),
		zap.Bool("conic_gradient", isConic(e.paint)))
}

// Stop cancels the pending frame and drops the ring set. No draw call is
// issued once Stop returns. Safe to call from any goroutine, more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateStopped {
		return
	}
	wasRunning := e.state == stateRunning
	e.state = stateStopped
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.life != nil {
		e.life.Reset()
		e.life = nil
	}
	e.contour = nil
	e.spawned = nil
	if wasRunning {
		e.log.Info("halo: stopped", zap.Uint64("frames", e.frames))
	}
}

// Running reports whether frames are being produced.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == stateRunning
}

// Frames is the number of frames drawn so far.
func (e *Engine) Frames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frames
}

// ActiveRings is the size of the ring set after the last frame.
func (e *Engine) ActiveRings() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.life == nil {
		return 0
	}
	return e.life.Len()
}

func (e *Engine) tick(now time.Time) {
	spawned := e.frame(now)
	if e.onSpawn == nil {
		return
	}
	for _, r := range spawned {
		e.onSpawn(r)
	}
}

// frame draws one frame under the lock and returns the rings it spawned.
func (e *Engine) frame(now time.Time) []Ring {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateRunning {
		return nil
	}
	e.cancel = nil
	e.drawFrame(now)
	e.frames++
	e.cancel = e.sched.Schedule(e.tick)

	spawned := e.spawned
	e.spawned = nil
	return spawned
}

// drawFrame must be called with e.mu held.
func (e *Engine) drawFrame(now time.Time) {
	vp := e.viewport.Viewport()
	if vp != e.lastVP {
		if r, ok := e.surface.(Resizer); ok {
			r.Resize(vp)
		}
		e.log.Debug("halo: viewport changed",
			zap.Float64("width", vp.Width),
			zap.Float64("height", vp.Height),
			zap.Float64("dpr", vp.DevicePixelRatio))
		e.lastVP = vp
	}

	s := e.surface
	s.Clear(vp.Width, vp.Height)
	s.SetCompositeMode(CompositeLighter)

	// Expiry happens here, before any envelope is evaluated, so no ring is
	// ever drawn at progress 1.
	rings := e.life.Advance(now)

	t := now.Sub(e.t0).Seconds()
	center := vp.Center()
	style := e.paint.framePaint(center, t)
	maxRadius := math.Max(e.cfg.BaseRadius, e.cfg.MaxRadiusFraction*math.Max(vp.Width, vp.Height))
	pulse := BlurPulse(e.cfg, t)
	blurColor := color.RGBA(e.cfg.BlurColor)

	for _, r := range rings {
		env := EnvelopeAt(r.Age(now), e.cfg, maxRadius, pulse)
		e.contour = Contour(e.contour, center, env.Radius, env.Amplitude, t, e.wave, e.cfg.SampleCount)

		s.BeginPath()
		s.MoveTo(e.contour[0].X, e.contour[0].Y)
		for _, p := range e.contour[1:] {
			s.LineTo(p.X, p.Y)
		}
		s.ClosePath()
		s.Stroke(style, env.StrokeWidth, env.Opacity, env.Blur, blurColor)
	}

	s.SetCompositeMode(CompositeSourceOver)
}

// isNilSurface also catches a nil pointer wrapped in the interface.
func isNilSurface(s Surface) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func isConic(p painter) bool {
	_, ok := p.(conicPaint)
	return ok
}
