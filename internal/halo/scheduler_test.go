package halo

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestStepSchedulerFire(t *testing.T) {
	var s StepScheduler
	assert.False(t, s.Fire(t0), "nothing scheduled")

	var got time.Time
	s.Schedule(func(now time.Time) { got = now })
	require.True(t, s.Pending())
	require.True(t, s.Fire(t0.Add(time.Second)))
	assert.Equal(t, t0.Add(time.Second), got)
	assert.False(t, s.Pending())
}

func TestStepSchedulerCancel(t *testing.T) {
	var s StepScheduler
	cancel := s.Schedule(func(time.Time) { t.Fatal("cancelled request fired") })
	cancel()
	cancel()
	assert.False(t, s.Pending())
	assert.False(t, s.Fire(t0))
}

func TestStepSchedulerStaleCancelKeepsNewerRequest(t *testing.T) {
	var s StepScheduler
	stale := s.Schedule(func(time.Time) {})
	s.Fire(t0)

	fired := false
	s.Schedule(func(time.Time) { fired = true })
	stale()
	require.True(t, s.Pending())
	s.Fire(t0)
	assert.True(t, fired)
}

func TestStepSchedulerCallbackMayReschedule(t *testing.T) {
	var s StepScheduler
	count := 0
	var loop FrameFunc
	loop = func(time.Time) {
		count++
		s.Schedule(loop)
	}
	s.Schedule(loop)
	for i := 0; i < 5; i++ {
		s.Fire(t0)
	}
	assert.Equal(t, 5, count)
	assert.True(t, s.Pending())
}

func TestTimerSchedulerFiresAndCancels(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewTimerScheduler(500, nil)
	var fired atomic.Int32
	s.Schedule(func(time.Time) { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)

	cancel := s.Schedule(func(time.Time) { fired.Add(1) })
	cancel()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestTimerSchedulerUsesClock(t *testing.T) {
	clock := NewManualClock(t0)
	s := NewTimerScheduler(1000, clock)

	got := make(chan time.Time, 1)
	s.Schedule(func(now time.Time) { got <- now })
	select {
	case now := <-got:
		assert.Equal(t, t0, now)
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestManualClock(t *testing.T) {
	c := NewManualClock(t0)
	assert.Equal(t, t0, c.Now())
	assert.Equal(t, t0.Add(time.Minute), c.Advance(time.Minute))
	c.Set(t0)
	assert.Equal(t, t0, c.Now())
}
