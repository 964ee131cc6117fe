package halo

import (
	"math"
	"time"

	"github.com/iburimskiy/halo/internal/config"
)

// Fade breakpoints on the progress axis.
const (
	fadeInEnd    = 0.2
	fadeOutStart = 0.8
)

// Envelope is the visual intensity of a ring at one instant.
type Envelope struct {
	Progress    float64
	Radius      float64
	Amplitude   float64
	Opacity     float64
	StrokeWidth float64
	Blur        float64
}

// Progress is the normalized age in [0,1].
func Progress(age, lifetime time.Duration) float64 {
	if lifetime <= 0 {
		return 1
	}
	return clamp01(float64(age) / float64(lifetime))
}

// Radius expands linearly from base to max over the ring's life. A max below
// base holds the ring at base; it never shrinks.
func Radius(progress, base, maxRadius float64) float64 {
	maxRadius = math.Max(base, maxRadius)
	return base + progress*(maxRadius-base)
}

// Opacity fades in over the first fifth of life, holds, then fades out over
// the last fifth. The result is scaled by maxFactor so overlapping rings do not
// saturate under additive blending.
func Opacity(progress, maxFactor float64) float64 {
	var o float64
	switch {
	case progress < fadeInEnd:
		o = progress / fadeInEnd
	case progress <= fadeOutStart:
		o = 1
	default:
		o = 1 - (progress-fadeOutStart)/(1-fadeOutStart)
	}
	return clamp01(o) * maxFactor
}

// Amplitude grows with progress but is damped towards full expansion so large
// rings stay smooth.
func Amplitude(progress float64, cfg config.Animation) float64 {
	return (cfg.AmplitudeBase + cfg.AmplitudeSpread*progress) * (1 - progress*cfg.DampingFactor)
}

// BlurPulse is the shared per-frame blur oscillation at the given wall time.
func BlurPulse(cfg config.Animation, seconds float64) float64 {
	return cfg.BlurPulseAmplitude * math.Sin(2*math.Pi*cfg.BlurPulseFrequency*seconds)
}

// EnvelopeAt evaluates every envelope channel for a ring of the given age.
// pulse comes from BlurPulse and is identical for all rings of a frame.
func EnvelopeAt(age time.Duration, cfg config.Animation, maxRadius, pulse float64) Envelope {
	p := Progress(age, cfg.Lifetime)
	return Envelope{
		Progress:    p,
		Radius:      Radius(p, cfg.BaseRadius, maxRadius),
		Amplitude:   Amplitude(p, cfg),
		Opacity:     Opacity(p, cfg.MaxOpacityFactor),
		StrokeWidth: cfg.StrokeWidthBase + cfg.StrokeWidthSpread*p,
		Blur:        math.Max(0, cfg.BlurBase+cfg.BlurSpread*p+pulse),
	}
}
