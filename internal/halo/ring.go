package halo

import (
	"sort"
	"time"
)

// Ring is one expanding contour, identified solely by its spawn time.
type Ring struct {
	SpawnTime time.Time
}

// Age is derived on demand and never stored.
func (r Ring) Age(now time.Time) time.Duration { return now.Sub(r.SpawnTime) }

// Lifecycle owns the active ring set and the spawn watermark. It is the only
// mutable state of the engine.
type Lifecycle struct {
	lifetime time.Duration
	interval time.Duration

	rings     []Ring
	lastSpawn time.Time
	armed     bool // lastSpawn is meaningful

	onSpawn func(Ring)
}

func NewLifecycle(lifetime, interval time.Duration) *Lifecycle {
	return &Lifecycle{lifetime: lifetime, interval: interval}
}

// OnSpawn registers a hook called once for every ring appended by Advance.
func (l *Lifecycle) OnSpawn(fn func(Ring)) { l.onSpawn = fn }

// Seed installs rings that are already ages old at t0, so the first frame is
// not empty. Ages outside [0, lifetime) are dropped. A non-empty seed moves the
// watermark to t0; an empty one leaves it unset and the first Advance spawns.
func (l *Lifecycle) Seed(t0 time.Time, ages []time.Duration) {
	l.rings = l.rings[:0]
	l.armed = false
	if len(ages) == 0 {
		return
	}
	for _, age := range ages {
		if age < 0 || age >= l.lifetime {
			continue
		}
		l.rings = append(l.rings, Ring{SpawnTime: t0.Add(-age)})
	}
	sort.SliceStable(l.rings, func(i, j int) bool {
		return l.rings[i].SpawnTime.Before(l.rings[j].SpawnTime)
	})
	l.lastSpawn = t0
	l.armed = true
}

// Advance applies the spawn and expiry rules at now and returns the active
// rings, oldest first. The returned slice is a copy.
//
// At most one ring spawns per call: a late tick absorbs the delay instead of
// catching up.
func (l *Lifecycle) Advance(now time.Time) []Ring {
	if !l.armed || now.Sub(l.lastSpawn) >= l.interval {
		r := Ring{SpawnTime: now}
		l.rings = append(l.rings, r)
		l.lastSpawn = now
		l.armed = true
		if l.onSpawn != nil {
			l.onSpawn(r)
		}
	}

	live := l.rings[:0]
	for _, r := range l.rings {
		if r.Age(now) < l.lifetime {
			live = append(live, r)
		}
	}
	// drop references held past the new length
	clear(l.rings[len(live):])
	l.rings = live

	return append([]Ring(nil), l.rings...)
}

// Len reports the number of rings currently held.
func (l *Lifecycle) Len() int { return len(l.rings) }

// Reset discards every ring and the watermark.
func (l *Lifecycle) Reset() {
	l.rings = nil
	l.armed = false
	l.lastSpawn = time.Time{}
}
