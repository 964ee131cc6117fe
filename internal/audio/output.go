// Package audio plays the optional sounds that accompany the halo: a soft chime
// for every new ring and a looping soundtrack.
package audio

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"go.uber.org/zap"
)

// SampleRate is the rate the speaker runs at; other sources are resampled.
const SampleRate = beep.SampleRate(44100)

// Player accepts streams for playback.
type Player interface {
	Play(s beep.Streamer, rate beep.SampleRate) error
}

// Output is the process-wide speaker, initialised on first use. A failed
// initialisation is remembered and reported on every Play.
type Output struct {
	log *zap.Logger

	once  sync.Once
	err   error
	ready atomic.Bool
}

func NewOutput(log *zap.Logger) *Output {
	if log == nil {
		log = zap.NewNop()
	}
	return &Output{log: log}
}

// Init opens the audio device now instead of on the first Play.
func (o *Output) Init() error { return o.init() }

func (o *Output) init() error {
	o.once.Do(func() {
		if err := speaker.Init(SampleRate, SampleRate.N(time.Second/20)); err != nil {
			o.err = fmt.Errorf("initialising speaker: %w", err)
			o.log.Warn("audio disabled", zap.Error(err))
			return
		}
		o.ready.Store(true)
		o.log.Debug("speaker ready", zap.Int("sample_rate", int(SampleRate)))
	})
	return o.err
}

func (o *Output) Play(s beep.Streamer, rate beep.SampleRate) error {
	if err := o.init(); err != nil {
		return err
	}
	if rate != SampleRate {
		s = beep.Resample(4, rate, SampleRate, s)
	}
	speaker.Play(s)
	return nil
}

// Locked runs fn while the speaker is not pulling samples, for changing the
// state of a playing stream.
func (o *Output) Locked(fn func()) {
	if !o.ready.Load() {
		fn()
		return
	}
	speaker.Lock()
	defer speaker.Unlock()
	fn()
}

// Silence stops everything that is playing. It does not bring up a speaker
// that was never used.
func (o *Output) Silence() {
	if !o.ready.Load() {
		return
	}
	speaker.Lock()
	speaker.Clear()
	speaker.Unlock()
}
