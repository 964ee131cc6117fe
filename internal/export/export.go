// Package export renders halo frames headlessly to SVG files.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/halo/internal/canvas"
	"github.com/iburimskiy/halo/internal/config"
	"github.com/iburimskiy/halo/internal/halo"
)

// DefaultFPS is the rate the animation is stepped at between requested
// offsets, so spawns land on the same frame boundaries as on screen.
const DefaultFPS = 60

// ErrNoOffsets is returned when there is nothing to render.
var ErrNoOffsets = errors.New("export: no frame offsets")

// epoch is the synthetic start time; only offsets from it matter.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type Options struct {
	Config  config.Animation
	Dir     string
	At      []time.Duration
	Preseed []time.Duration
	Width   float64
	Height  float64
	DPR     float64
	FPS     float64
	Log     *zap.Logger
}

// FileName is the name of the frame rendered at offset at.
func FileName(at time.Duration) string {
	return fmt.Sprintf("halo-%08dms.svg", at.Milliseconds())
}

// Render steps an engine on a manual clock from zero to the largest offset and
// writes the frame drawn at each requested offset into opts.Dir. It returns the
// written paths in ascending offset order.
func Render(ctx context.Context, opts Options) ([]string, error) {
	offsets, err := normalise(opts.At)
	if err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	step := time.Duration(float64(time.Second) / fps)
	vp := halo.FixedViewport{Width: opts.Width, Height: opts.Height, DevicePixelRatio: opts.DPR}
	if vp.Width <= 0 || vp.Height <= 0 {
		vp.Width, vp.Height = config.WindowWidth, config.WindowHeight
	}
	if vp.DevicePixelRatio <= 0 {
		vp.DevicePixelRatio = 1
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	surface := canvas.NewSVG(opts.Config.Background.RGBA())
	clock := halo.NewManualClock(epoch)
	frames := &halo.StepScheduler{}
	engine, err := halo.New(opts.Config, surface,
		halo.WithClock(clock),
		halo.WithScheduler(frames),
		halo.WithViewport(vp),
		halo.WithLogger(log.Named("engine")))
	if err != nil {
		return nil, err
	}
	engine.Start(opts.Preseed...)
	defer engine.Stop()

	paths := make([]string, 0, len(offsets))
	elapsed := time.Duration(0)
	for _, at := range offsets {
		for elapsed+step < at {
			if err := ctx.Err(); err != nil {
				return paths, err
			}
			elapsed += step
			frames.Fire(clock.Advance(step))
		}
		elapsed = at
		clock.Set(epoch.Add(at))
		if !frames.Fire(clock.Now()) {
			return paths, fmt.Errorf("export: engine stopped before %v", at)
		}

		doc, err := surface.Frame()
		if err != nil {
			return paths, err
		}
		path := filepath.Join(opts.Dir, FileName(at))
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return paths, fmt.Errorf("writing frame: %w", err)
		}
		log.Debug("frame written",
			zap.String("path", path),
			zap.Duration("at", at),
			zap.Int("rings", engine.ActiveRings()))
		paths = append(paths, path)
	}
	return paths, nil
}

// normalise sorts offsets and drops duplicates.
func normalise(at []time.Duration) ([]time.Duration, error) {
	if len(at) == 0 {
		return nil, ErrNoOffsets
	}
	out := slices.Clone(at)
	slices.Sort(out)
	if out[0] < 0 {
		return nil, fmt.Errorf("export: negative offset %v", out[0])
	}
	return slices.Compact(out), nil
}
