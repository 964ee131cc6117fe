package audio

import (
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"go.uber.org/zap"

	"github.com/iburimskiy/halo/internal/halo"
)

// Pentatonic steps above the root, in semitones.
var pentatonic = []int{0, 2, 4, 7, 9, 12}

const (
	chimeRoot     = 220.0 // Hz
	chimeDuration = 1800 * time.Millisecond
	chimeVolume   = -2.5 // log2 of the gain
	chimeDecay    = 3.0 // 1/s
	chimeAttack   = 5 * time.Millisecond
)

// Chime plays a short decaying tone whenever a ring spawns, walking up a
// pentatonic scale.
type Chime struct {
	out Player
	log *zap.Logger

	mu     sync.Mutex
	step   int
	failed bool
}

func NewChime(out Player, log *zap.Logger) *Chime {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chime{out: out, log: log}
}

// OnSpawn matches the engine's spawn hook signature.
func (c *Chime) OnSpawn(halo.Ring) {
	c.mu.Lock()
	if c.failed {
		c.mu.Unlock()
		return
	}
	freq := noteFrequency(c.step)
	c.step++
	c.mu.Unlock()

	s := &effects.Volume{
		Streamer: tone(SampleRate, freq, chimeDuration, 1),
		Base:     2,
		Volume:   chimeVolume,
	}
	if err := c.out.Play(s, SampleRate); err != nil {
		c.mu.Lock()
		c.failed = true
		c.mu.Unlock()
		c.log.Warn("chime muted", zap.Error(err))
	}
}

// noteFrequency is the pitch of the step-th chime.
func noteFrequency(step int) float64 {
	semis := pentatonic[step%len(pentatonic)]
	return chimeRoot * math.Pow(2, float64(semis)/12)
}

// tone is a sine at freq with a short linear attack and exponential decay,
// lasting exactly d.
func tone(sr beep.SampleRate, freq float64, d time.Duration, gain float64) beep.Streamer {
	total := sr.N(d)
	attack := float64(sr.N(chimeAttack))
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for n < len(samples) && pos < total {
			t := float64(pos) / float64(sr)
			env := math.Exp(-t * chimeDecay)
			if a := float64(pos) / attack; a < 1 {
				env *= a
			}
			v := gain * env * math.Sin(2*math.Pi*freq*t)
			samples[n] = [2]float64{v, v}
			n++
			pos++
		}
		return n, true
	})
}
