// Package game hosts the halo engine in an ebiten window.
package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"

	"github.com/iburimskiy/halo/internal/audio"
	"github.com/iburimskiy/halo/internal/canvas"
	"github.com/iburimskiy/halo/internal/config"
	"github.com/iburimskiy/halo/internal/halo"
)

const title = "halo - Esc/Q quit, F3 overlay, O or right click soundtrack, Space pause"

// Options configure a windowed run.
type Options struct {
	Config     config.Animation
	Width      int
	Height     int
	Preseed    []time.Duration
	Chime      bool
	Soundtrack string
	Debug      bool
	Log        *zap.Logger
}

type pickResult struct {
	path string
	err  error
}

// Game implements ebiten.Game. The engine is driven by a step scheduler that
// Draw fires once per displayed frame.
type Game struct {
	engine   *halo.Engine
	surface  *canvas.Ebiten
	frames   *halo.StepScheduler
	clock    halo.Clock
	viewport *windowViewport
	keys     *keys
	log      *zap.Logger

	out     *audio.Output
	track   *audio.Soundtrack
	level   float64
	picking bool
	picked  chan pickResult

	started time.Time
	debug   bool
	lastErr error
}

// New builds the game and starts its engine.
func New(opts Options) (*Game, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Width <= 0 {
		opts.Width = config.WindowWidth
	}
	if opts.Height <= 0 {
		opts.Height = config.WindowHeight
	}

	g := &Game{
		surface:  canvas.NewEbiten(opts.Config.Background.RGBA(), config.GlowPasses),
		frames:   &halo.StepScheduler{},
		clock:    halo.SystemClock{},
		viewport: newWindowViewport(opts.Width, opts.Height),
		keys:     newKeys(ebiten.IsKeyPressed),
		log:      log,
		out:      audio.NewOutput(log.Named("audio")),
		picked:   make(chan pickResult, 1),
		debug:    opts.Debug,
	}

	engineOpts := []halo.Option{
		halo.WithClock(g.clock),
		halo.WithScheduler(g.frames),
		halo.WithViewport(g.viewport),
		halo.WithLogger(log.Named("engine")),
	}
	if opts.Chime {
		// open the device here so the first spawn does not wait for it
		if err := g.out.Init(); err != nil {
			g.fail("audio", err)
		}
		engineOpts = append(engineOpts, halo.WithSpawnHook(audio.NewChime(g.out, log.Named("chime")).OnSpawn))
	}
	engine, err := halo.New(opts.Config, g.surface, engineOpts...)
	if err != nil {
		return nil, err
	}
	g.engine = engine

	if opts.Soundtrack != "" {
		g.playSoundtrack(opts.Soundtrack)
	}

	g.started = g.clock.Now()
	g.engine.Start(opts.Preseed...)
	return g, nil
}

// Run opens the window and blocks until it is closed.
func Run(opts Options) error {
	g, err := New(opts)
	if err != nil {
		return err
	}
	defer g.Close()

	vp := g.viewport.Viewport()
	ebiten.SetWindowSize(int(vp.Width), int(vp.Height))
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (g *Game) Update() error {
	actions := g.keys.poll()
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight) {
		actions = append(actions, actionOpenSoundtrack)
	}
	for _, a := range actions {
		if err := g.apply(a); err != nil {
			return err
		}
	}

	select {
	case r := <-g.picked:
		g.picking = false
		g.handlePick(r)
	default:
	}

	if g.track != nil {
		g.level = g.track.Level()
	}
	return nil
}

func (g *Game) apply(a action) error {
	switch a {
	case actionQuit:
		g.engine.Stop()
		return ebiten.Termination
	case actionToggleDebug:
		g.debug = !g.debug
	case actionOpenSoundtrack:
		g.openSoundtrackDialog()
	case actionTogglePause:
		if g.track != nil {
			g.out.Locked(g.track.TogglePause)
		}
	}
	return nil
}

// openSoundtrackDialog shows the native file picker without blocking the
// game loop; the answer arrives on g.picked.
func (g *Game) openSoundtrackDialog() {
	if g.picking {
		return
	}
	g.picking = true
	go func() {
		path, err := zenity.SelectFile(
			zenity.Title("Open Soundtrack"),
			zenity.FileFilters{{
				Name:     "Audio",
				Patterns: audio.Patterns,
			}},
		)
		g.picked <- pickResult{path: path, err: err}
	}()
}

func (g *Game) handlePick(r pickResult) {
	if errors.Is(r.err, zenity.ErrCanceled) {
		return
	}
	if r.err != nil {
		g.fail("file dialog", r.err)
		return
	}
	g.playSoundtrack(r.path)
}

// playSoundtrack replaces the current soundtrack. Failures are shown in the
// overlay and the animation carries on silently.
func (g *Game) playSoundtrack(path string) {
	track, err := audio.OpenSoundtrack(path)
	if err != nil {
		g.fail("opening soundtrack", err)
		return
	}
	g.stopSoundtrack()
	if err := track.Play(g.out, g.log.Named("audio")); err != nil {
		_ = track.Close()
		g.fail("playing soundtrack", err)
		return
	}
	g.track = track
	g.lastErr = nil
}

func (g *Game) stopSoundtrack() {
	if g.track == nil {
		return
	}
	g.out.Silence()
	if err := g.track.Close(); err != nil {
		g.log.Warn("closing soundtrack", zap.Error(err))
	}
	g.track = nil
	g.level = 0
}

func (g *Game) fail(what string, err error) {
	g.lastErr = fmt.Errorf("%s: %w", what, err)
	g.log.Warn(what, zap.Error(err))
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.SetTarget(screen)
	g.frames.Fire(g.clock.Now())
	g.surface.SetTarget(nil)

	if g.debug {
		ebitenutil.DebugPrintAt(screen, g.overlay(ebiten.ActualFPS()), config.OverlayX, config.OverlayY)
	}
}

// Layout reports a device-pixel screen so strokes stay sharp on HiDPI
// displays; the engine keeps drawing in logical pixels.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.viewport.set(outsideWidth, outsideHeight, ebiten.Monitor().DeviceScaleFactor())
}

func (g *Game) overlay(fps float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fps %.1f  frames %d  rings %d  uptime %s\n",
		fps, g.engine.Frames(), g.engine.ActiveRings(), formatClock(g.clock.Now().Sub(g.started)))
	if g.track != nil {
		state := ""
		if g.track.Paused() {
			state = " (paused)"
		}
		fmt.Fprintf(&b, "soundtrack %s %s %s%s\n", g.track.Name, formatClock(g.track.Length), levelBar(g.level, 20), state)
	} else {
		b.WriteString("no soundtrack, press O to open one\n")
	}
	if g.lastErr != nil {
		fmt.Fprintf(&b, "error: %v\n", g.lastErr)
	}
	return b.String()
}

// Close stops the engine and releases audio.
func (g *Game) Close() {
	g.engine.Stop()
	g.stopSoundtrack()
}
