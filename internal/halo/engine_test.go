package halo

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iburimskiy/halo/internal/config"
)

var testViewport = FixedViewport{Width: 800, Height: 600, DevicePixelRatio: 2}

func newTestEngine(t *testing.T, cfg config.Animation, s Surface, opts ...Option) (*Engine, *StepScheduler, *ManualClock) {
	t.Helper()
	sched := &StepScheduler{}
	clock := NewManualClock(t0)
	opts = append([]Option{WithScheduler(sched), WithClock(clock), WithViewport(testViewport)}, opts...)
	e, err := New(cfg, s, opts...)
	require.NoError(t, err)
	return e, sched, clock
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Lifetime = 0
	_, err := New(cfg, &recorder{})
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestStartWithoutSurfaceIsNoop(t *testing.T) {
	e, sched, _ := newTestEngine(t, config.Default(), nil)
	e.Start()
	assert.False(t, e.Running())
	assert.False(t, sched.Pending())
	e.Stop()
}

func TestFrameDrawSequence(t *testing.T) {
	rec := &recorder{}
	e, sched, _ := newTestEngine(t, config.Default(), rec)
	e.Start()
	require.True(t, sched.Pending())

	require.True(t, sched.Fire(t0))
	assert.Equal(t, []string{"clear", "composite:lighter", "begin", "close", "stroke", "composite:source-over"}, rec.calls)

	require.Len(t, rec.strokes, 1)
	assert.Len(t, rec.strokes[0].points, config.Default().SampleCount+1)
	assert.Equal(t, uint64(1), e.Frames())
	assert.True(t, sched.Pending(), "next frame requested")
}

func TestRingsDrawnOldestFirst(t *testing.T) {
	cfg := flatConfig()
	rec := &recorder{}
	e, sched, _ := newTestEngine(t, cfg, rec)
	e.Start(11*time.Second, 7*time.Second, 3*time.Second)

	sched.Fire(t0.Add(time.Second))
	require.Len(t, rec.strokes, 3)

	center := testViewport.Viewport().Center()
	prev := math.Inf(1)
	for _, s := range rec.strokes {
		r := s.points[0].X - center.X
		assert.Less(t, r, prev)
		prev = r
	}
}

func TestSeededEngineSpawnsAfterInterval(t *testing.T) {
	rec := &recorder{}
	e, sched, _ := newTestEngine(t, config.Default(), rec)
	e.Start(10*time.Second, 6*time.Second, 2*time.Second)

	sched.Fire(t0.Add(1500 * time.Millisecond))
	assert.Equal(t, 3, e.ActiveRings())
	sched.Fire(t0.Add(3400 * time.Millisecond))
	assert.Equal(t, 3, e.ActiveRings())
	sched.Fire(t0.Add(3500 * time.Millisecond))
	assert.Equal(t, 4, e.ActiveRings())
}

func TestExpiredRingIsNeverDrawn(t *testing.T) {
	cfg := flatConfig()
	rec := &recorder{}
	e, sched, _ := newTestEngine(t, cfg, rec)
	e.Start()

	maxRadius := cfg.MaxRadiusFraction * 800
	center := testViewport.Viewport().Center()
	for ms := 0; ms <= 30000; ms += 500 {
		rec.reset()
		sched.Fire(t0.Add(time.Duration(ms) * time.Millisecond))
		for _, s := range rec.strokes {
			r := s.points[0].X - center.X
			assert.Less(t, r, maxRadius, "t=%dms", ms)
		}
	}
}

func TestStopThenNoDraw(t *testing.T) {
	rec := &recorder{}
	e, sched, clock := newTestEngine(t, config.Default(), rec)
	e.Start()
	sched.Fire(clock.Now())
	drawn := rec.callCount()

	e.Stop()
	assert.False(t, e.Running())
	assert.False(t, sched.Pending(), "pending frame cancelled")
	assert.Equal(t, 0, e.ActiveRings())

	clock.Advance(time.Minute)
	assert.False(t, sched.Fire(clock.Now()))
	assert.Equal(t, drawn, rec.callCount())

	e.Stop()
	e.Start()
	assert.False(t, e.Running(), "stopped is terminal")
}

// leakyScheduler ignores cancellation, standing in for a platform that still
// delivers a callback queued before Stop.
type leakyScheduler struct{ fns []FrameFunc }

func (l *leakyScheduler) Schedule(fn FrameFunc) func() {
	l.fns = append(l.fns, fn)
	return func() {}
}

func TestStaleCallbackAfterStopDrawsNothing(t *testing.T) {
	rec := &recorder{}
	leaky := &leakyScheduler{}
	e, err := New(config.Default(), rec, WithScheduler(leaky), WithClock(NewManualClock(t0)))
	require.NoError(t, err)

	e.Start()
	require.Len(t, leaky.fns, 1)
	e.Stop()

	leaky.fns[0](t0.Add(time.Second))
	assert.Zero(t, rec.callCount())
	assert.Zero(t, e.Frames())
}

func TestStartTwiceIsNoop(t *testing.T) {
	leaky := &leakyScheduler{}
	e, err := New(config.Default(), &recorder{}, WithScheduler(leaky))
	require.NoError(t, err)
	e.Start()
	e.Start()
	assert.Len(t, leaky.fns, 1)
	e.Stop()
}

func TestFlatColorWithoutGradientSupport(t *testing.T) {
	rec := &recorder{}
	e, sched, _ := newTestEngine(t, config.Default(), rec)
	e.Start(time.Second)
	sched.Fire(t0.Add(time.Second))

	want := config.Default().ColorStops[0].Color.RGBA()
	require.NotEmpty(t, rec.strokes)
	for _, s := range rec.strokes {
		assert.Equal(t, want, s.style.Color)
		assert.Nil(t, s.style.Gradient)
	}
}

func TestConicGradientSharedPerFrame(t *testing.T) {
	cfg := config.Default()
	rec := &conicRecorder{}
	e, sched, _ := newTestEngine(t, cfg, rec)
	e.Start(9*time.Second, 5*time.Second, time.Second)

	sched.Fire(t0.Add(2 * time.Second))
	require.Len(t, rec.gradients, 1, "one gradient per frame")
	g := rec.gradients[0]
	assert.Equal(t, testViewport.Viewport().Center(), g.Center)
	assert.InDelta(t, 2*cfg.GradientAngularSpeed, g.Rotation, 1e-9)
	assert.Equal(t, cfg.ColorStops, g.Stops)

	require.Len(t, rec.strokes, 3)
	first := rec.strokes[0].style.Gradient
	require.NotNil(t, first)
	for _, s := range rec.strokes {
		assert.Same(t, first, s.style.Gradient)
	}
}

func TestConicGradientRefusedFallsBackToFlat(t *testing.T) {
	rec := &conicRecorder{refuse: true}
	e, sched, _ := newTestEngine(t, config.Default(), rec)
	e.Start()
	sched.Fire(t0)

	require.Len(t, rec.strokes, 1)
	assert.Nil(t, rec.strokes[0].style.Gradient)
	assert.Equal(t, config.Default().ColorStops[0].Color.RGBA(), rec.strokes[0].style.Color)
}

func TestResizeOnlyWhenViewportChanges(t *testing.T) {
	rec := &resizeRecorder{}
	vp := &mutableViewport{vp: Viewport{Width: 640, Height: 480, DevicePixelRatio: 1}}
	e, sched, _ := newTestEngine(t, config.Default(), rec, WithViewport(vp))
	e.Start()

	sched.Fire(t0)
	sched.Fire(t0.Add(16 * time.Millisecond))
	require.Len(t, rec.sizes, 1)

	vp.vp.DevicePixelRatio = 2
	sched.Fire(t0.Add(32 * time.Millisecond))
	require.Len(t, rec.sizes, 2)
	assert.Equal(t, 2.0, rec.sizes[1].DevicePixelRatio)
}

func TestSpawnHook(t *testing.T) {
	var spawned []Ring
	e, sched, _ := newTestEngine(t, config.Default(), &recorder{}, WithSpawnHook(func(r Ring) {
		spawned = append(spawned, r)
	}))
	e.Start()
	sched.Fire(t0)
	sched.Fire(t0.Add(time.Second))
	sched.Fire(t0.Add(3500 * time.Millisecond))
	require.Len(t, spawned, 2)
	assert.Equal(t, t0.Add(3500*time.Millisecond), spawned[1].SpawnTime)
}

func TestSmallViewportRingsDoNotShrink(t *testing.T) {
	cfg := flatConfig()
	rec := &recorder{}
	small := FixedViewport{Width: 60, Height: 60, DevicePixelRatio: 1}
	e, sched, _ := newTestEngine(t, cfg, rec, WithViewport(small))
	e.Start()
	defer e.Stop()

	center := small.Viewport().Center()
	prev := 0.0
	for _, at := range []int{0, 3500, 7000, 10500, 13000} {
		rec.reset()
		require.True(t, sched.Fire(t0.Add(ms(at))))
		require.NotEmpty(t, rec.strokes)
		// the first stroke is the ring spawned at t0
		r := rec.strokes[0].points[0].X - center.X
		assert.InDelta(t, cfg.BaseRadius, r, 1e-9, "at t=%d", at)
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
}

func TestSpawnHookRunsOutsideEngineLock(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	e, sched, _ := newTestEngine(t, config.Default(), &recorder{}, WithSpawnHook(func(Ring) {
		close(entered)
		<-release
	}))
	e.Start()

	fired := make(chan struct{})
	go func() {
		sched.Fire(t0)
		close(fired)
	}()
	<-entered

	stopped := make(chan struct{})
	go func() {
		e.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop waited for the spawn hook")
	}
	assert.Equal(t, uint64(1), e.Frames())
	assert.False(t, sched.Pending())

	close(release)
	<-fired
}

func TestStartWithTypedNilSurfaceIsNoop(t *testing.T) {
	var rec *recorder
	e, sched, _ := newTestEngine(t, config.Default(), rec)
	e.Start()
	assert.False(t, e.Running())
	assert.False(t, sched.Pending())
}

func TestTimerDrivenEngineStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	e, err := New(config.Default(), rec, WithScheduler(NewTimerScheduler(240, nil)))
	require.NoError(t, err)

	e.Start()
	require.Eventually(t, func() bool { return e.Frames() >= 3 }, 2*time.Second, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Stop()
		}()
	}
	wg.Wait()

	frames := e.Frames()
	strokes := rec.strokeCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, frames, e.Frames())
	assert.Equal(t, strokes, rec.strokeCount())
}
