package config

import (
	"image/color"
	"time"
)

const (
	WindowWidth  = 1024
	WindowHeight = 640

	// Soundtrack level meter
	VisualRingSize  = 8192
	SmoothingFactor = 0.6

	// Debug overlay placement
	OverlayX = 12
	OverlayY = 12

	// Glow passes drawn under each stroke by the ebiten surface
	GlowPasses = 4
)

// ColorStop is one entry of the fixed gradient stop table.
type ColorStop struct {
	Position float64 `yaml:"position"`
	Color    Color   `yaml:"color"`
}

// Animation holds every tunable of the halo animation. It is supplied once when
// the engine is constructed and never mutated afterwards.
type Animation struct {
	// Ring lifecycle
	Lifetime      time.Duration `yaml:"lifetime"`
	SpawnInterval time.Duration `yaml:"spawn_interval"`

	// Contour shape
	WaveHarmonicCount float64 `yaml:"wave_harmonic_count"`
	WaveAngularSpeed  float64 `yaml:"wave_angular_speed"` // rad/s
	SampleCount       int     `yaml:"sample_count"`
	AmplitudeBase     float64 `yaml:"amplitude_base"`
	AmplitudeSpread   float64 `yaml:"amplitude_spread"`
	DampingFactor     float64 `yaml:"damping_factor"`

	// Expansion, radius in logical pixels
	BaseRadius        float64 `yaml:"base_radius"`
	MaxRadiusFraction float64 `yaml:"max_radius_fraction"` // of the larger viewport side

	// Envelope
	MaxOpacityFactor   float64 `yaml:"max_opacity_factor"`
	StrokeWidthBase    float64 `yaml:"stroke_width_base"`
	StrokeWidthSpread  float64 `yaml:"stroke_width_spread"`
	BlurBase           float64 `yaml:"blur_base"`
	BlurSpread         float64 `yaml:"blur_spread"`
	BlurPulseAmplitude float64 `yaml:"blur_pulse_amplitude"`
	BlurPulseFrequency float64 `yaml:"blur_pulse_frequency"` // Hz

	// Colors
	GradientAngularSpeed float64     `yaml:"gradient_angular_speed"` // rad/s
	ColorStops           []ColorStop `yaml:"color_stops"`
	BlurColor            Color       `yaml:"blur_color"`
	Background           Color       `yaml:"background"`
}

// Default returns the stock animation tuning.
func Default() Animation {
	return Animation{
		Lifetime:      14 * time.Second,
		SpawnInterval: 3500 * time.Millisecond,

		WaveHarmonicCount: 3,
		WaveAngularSpeed:  0.6,
		SampleCount:       180,
		AmplitudeBase:     6,
		AmplitudeSpread:   18,
		DampingFactor:     0.6,

		BaseRadius:        40,
		MaxRadiusFraction: 0.55,

		MaxOpacityFactor:   0.55,
		StrokeWidthBase:    1.5,
		StrokeWidthSpread:  4,
		BlurBase:           8,
		BlurSpread:         24,
		BlurPulseAmplitude: 4,
		BlurPulseFrequency: 0.25,

		GradientAngularSpeed: 0.15,
		ColorStops:           DefaultColorStops(),
		BlurColor:            Color{R: 0x9d, G: 0x7b, B: 0xff, A: 0xff},
		Background:           Color{R: 0x05, G: 0x06, B: 0x0a, A: 0xff},
	}
}

// DefaultColorStops returns a fresh copy of the stock stop table. First and last
// colors match so the conic gradient has no seam.
func DefaultColorStops() []ColorStop {
	violet := Color(color.RGBA{R: 0x7f, G: 0x5a, B: 0xf0, A: 0xff})
	return []ColorStop{
		{Position: 0, Color: violet},
		{Position: 0.25, Color: Color{R: 0x2c, G: 0xb1, B: 0xff, A: 0xff}},
		{Position: 0.5, Color: Color{R: 0x2c, G: 0xf6, B: 0xb3, A: 0xff}},
		{Position: 0.75, Color: Color{R: 0xff, G: 0x6a, B: 0xc1, A: 0xff}},
		{Position: 1, Color: violet},
	}
}
