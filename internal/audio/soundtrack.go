package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"

	"github.com/iburimskiy/halo/internal/config"
)

// ErrUnsupported is returned for files none of the decoders understand.
var ErrUnsupported = errors.New("unsupported audio file")

// Patterns lists the file patterns OpenSoundtrack accepts.
var Patterns = []string{"*.wav", "*.mp3", "*.flac"}

// levelWindow is how many recent samples the level is computed over.
const levelWindow = 2048

// Soundtrack is a decoded audio file that loops forever once played. Its
// methods other than the stream itself are meant for a single goroutine.
type Soundtrack struct {
	Name   string
	Length time.Duration

	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	tap      *levelTap
	ctrl     *beep.Ctrl
	level    float64
}

// OpenSoundtrack decodes a wav, mp3 or flac file by extension.
func OpenSoundtrack(path string) (*Soundtrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := decode(f, filepath.Ext(path))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &Soundtrack{
		Name:     filepath.Base(path),
		Length:   format.SampleRate.D(streamer.Len()),
		file:     f,
		streamer: streamer,
		format:   format,
	}, nil
}

func decode(f *os.File, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".wav":
		return wav.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// Play starts looping the soundtrack on out.
func (s *Soundtrack) Play(out Player, log *zap.Logger) error {
	s.tap = newLevelTap(beep.Loop(-1, s.streamer), config.VisualRingSize)
	s.ctrl = &beep.Ctrl{Streamer: s.tap}
	if err := out.Play(s.ctrl, s.format.SampleRate); err != nil {
		return err
	}
	if log != nil {
		log.Info("soundtrack playing",
			zap.String("name", s.Name),
			zap.Duration("length", s.Length),
			zap.Int("sample_rate", int(s.format.SampleRate)))
	}
	return nil
}

// TogglePause flips the pause state. Callers hold the speaker lock via
// Output.Locked.
func (s *Soundtrack) TogglePause() {
	if s.ctrl == nil {
		return
	}
	s.ctrl.Paused = !s.ctrl.Paused
}

func (s *Soundtrack) Paused() bool { return s.ctrl != nil && s.ctrl.Paused }

// Level returns a smoothed, compressed loudness in [0, 1]. Call it once per
// frame; each call folds the latest samples into the running value.
func (s *Soundtrack) Level() float64 {
	if s.tap == nil {
		return 0
	}
	mag := 0.0
	if !s.Paused() {
		mag = math.Min(1, math.Pow(rms(s.tap.snapshot(levelWindow)), 0.3))
	}
	s.level = config.SmoothingFactor*s.level + (1-config.SmoothingFactor)*mag
	return s.level
}

// Close releases the decoder and the file. Stop playback first.
func (s *Soundtrack) Close() error {
	err := s.streamer.Close()
	_ = s.file.Close()
	return err
}
