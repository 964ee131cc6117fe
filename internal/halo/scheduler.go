package halo

import (
	"sync"
	"time"
)

// FrameFunc is invoked once per display refresh with the refresh timestamp.
type FrameFunc func(now time.Time)

// Scheduler requests a single call of fn at the next refresh. Callers keep at
// most one request pending. cancel withdraws the request if it has not fired
// yet and may be called any number of times.
type Scheduler interface {
	Schedule(fn FrameFunc) (cancel func())
}

// TimerScheduler paces frames with a timer when no display drives them.
type TimerScheduler struct {
	interval time.Duration
	clock    Clock
}

// NewTimerScheduler fires frames fps times per second using clock for timestamps.
func NewTimerScheduler(fps float64, clock Clock) *TimerScheduler {
	if fps <= 0 {
		fps = 60
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TimerScheduler{
		interval: time.Duration(float64(time.Second) / fps),
		clock:    clock,
	}
}

func (s *TimerScheduler) Schedule(fn FrameFunc) func() {
	t := time.AfterFunc(s.interval, func() { fn(s.clock.Now()) })
	return func() { t.Stop() }
}

// StepScheduler holds the pending request until Fire is called. It backs the
// headless exporter and the display loop, which both decide themselves when a
// refresh happens.
type StepScheduler struct {
	mu      sync.Mutex
	pending FrameFunc
	seq     uint64
}

func (s *StepScheduler) Schedule(fn FrameFunc) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.pending = fn
	seq := s.seq
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.seq == seq {
			s.pending = nil
		}
	}
}

// Pending reports whether a request is waiting.
func (s *StepScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Fire runs the pending request with now. It reports false when nothing was
// scheduled. The request is taken before it runs, so the callback may
// schedule the next one.
func (s *StepScheduler) Fire(now time.Time) bool {
	s.mu.Lock()
	fn := s.pending
	s.pending = nil
	s.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(now)
	return true
}
