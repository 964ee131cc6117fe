package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration values the engine refuses to run with.
var ErrInvalid = errors.New("invalid animation config")

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value; unknown keys are rejected.
func Load(path string) (Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Animation{}, fmt.Errorf("reading config %q: %w", path, err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Animation{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML from r over the defaults and validates the result.
func Decode(r io.Reader) (Animation, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Animation{}, fmt.Errorf("decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Animation{}, err
	}
	return cfg, nil
}

// Encode writes cfg as YAML.
func Encode(w io.Writer, cfg Animation) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// Validate reports the first out-of-range field, wrapped around ErrInvalid.
func (a Animation) Validate() error {
	switch {
	case a.Lifetime <= 0:
		return fmt.Errorf("%w: lifetime must be positive, got %v", ErrInvalid, a.Lifetime)
	case a.SpawnInterval <= 0:
		return fmt.Errorf("%w: spawn_interval must be positive, got %v", ErrInvalid, a.SpawnInterval)
	case a.SampleCount < 3:
		return fmt.Errorf("%w: sample_count must be at least 3, got %d", ErrInvalid, a.SampleCount)
	case a.WaveHarmonicCount <= 0:
		return fmt.Errorf("%w: wave_harmonic_count must be positive, got %g", ErrInvalid, a.WaveHarmonicCount)
	case a.BaseRadius < 0:
		return fmt.Errorf("%w: base_radius must not be negative, got %g", ErrInvalid, a.BaseRadius)
	case a.MaxRadiusFraction <= 0:
		return fmt.Errorf("%w: max_radius_fraction must be positive, got %g", ErrInvalid, a.MaxRadiusFraction)
	case a.MaxOpacityFactor <= 0 || a.MaxOpacityFactor > 1:
		return fmt.Errorf("%w: max_opacity_factor must be in (0,1], got %g", ErrInvalid, a.MaxOpacityFactor)
	case a.DampingFactor < 0 || a.DampingFactor > 1:
		return fmt.Errorf("%w: damping_factor must be in [0,1], got %g", ErrInvalid, a.DampingFactor)
	case a.AmplitudeBase < 0 || a.AmplitudeSpread < 0:
		return fmt.Errorf("%w: amplitude_base and amplitude_spread must not be negative", ErrInvalid)
	case a.StrokeWidthBase <= 0 || a.StrokeWidthSpread < 0:
		return fmt.Errorf("%w: stroke width base must be positive and spread non-negative", ErrInvalid)
	case a.BlurBase < 0 || a.BlurSpread < 0 || a.BlurPulseAmplitude < 0 || a.BlurPulseFrequency < 0:
		return fmt.Errorf("%w: blur parameters must not be negative", ErrInvalid)
	}
	return validateStops(a.ColorStops)
}

func validateStops(stops []ColorStop) error {
	if len(stops) < 2 {
		return fmt.Errorf("%w: need at least 2 color stops, got %d", ErrInvalid, len(stops))
	}
	prev := 0.0
	for i, s := range stops {
		if s.Position < 0 || s.Position > 1 {
			return fmt.Errorf("%w: color stop %d position %g outside [0,1]", ErrInvalid, i, s.Position)
		}
		if s.Position < prev {
			return fmt.Errorf("%w: color stop %d position %g is before %g", ErrInvalid, i, s.Position, prev)
		}
		prev = s.Position
	}
	if first, last := stops[0].Color, stops[len(stops)-1].Color; first != last {
		return fmt.Errorf("%w: first stop %s and last stop %s differ, the gradient would show a seam", ErrInvalid, first, last)
	}
	return nil
}
