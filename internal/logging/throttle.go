package logging

import "time"

// Throttle rate-limits repetitive emissions, optionally letting an initial
// burst through unconditionally. The pipeline uses one instance per job for
// segment log lines (2/s after the first two segments) and another for
// progress updates (10/s).
type Throttle struct {
	minInterval time.Duration
	alwaysFirst int

	count int
	last  time.Time
	now   func() time.Time
}

// NewThrottle builds a throttle allowing one emission per minInterval after
// the first alwaysFirst calls, which always pass.
func NewThrottle(minInterval time.Duration, alwaysFirst int) *Throttle {
	return &Throttle{minInterval: minInterval, alwaysFirst: alwaysFirst, now: time.Now}
}

// Allow reports whether this emission should go through.
func (t *Throttle) Allow() bool {
	if t == nil {
		return true
	}
	t.count++
	if t.count <= t.alwaysFirst {
		t.last = t.now()
		return true
	}
	now := t.now()
	if now.Sub(t.last) >= t.minInterval {
		t.last = now
		return true
	}
	return false
}

// Reset clears state so the next job starts with a fresh burst allowance.
func (t *Throttle) Reset() {
	if t == nil {
		return
	}
	t.count = 0
	t.last = time.Time{}
}
