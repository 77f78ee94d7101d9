package logging

import (
	"testing"
	"time"
)

func TestThrottleInitialBurst(t *testing.T) {
	clock := time.Unix(0, 0)
	th := NewThrottle(500*time.Millisecond, 2)
	th.now = func() time.Time { return clock }

	if !th.Allow() || !th.Allow() {
		t.Fatal("first two emissions must always pass")
	}
	if th.Allow() {
		t.Fatal("third emission within the interval should be suppressed")
	}

	clock = clock.Add(600 * time.Millisecond)
	if !th.Allow() {
		t.Fatal("emission after the interval should pass")
	}
	if th.Allow() {
		t.Fatal("immediate followup should be suppressed again")
	}
}

func TestThrottleReset(t *testing.T) {
	clock := time.Unix(0, 0)
	th := NewThrottle(time.Second, 1)
	th.now = func() time.Time { return clock }

	th.Allow()
	if th.Allow() {
		t.Fatal("second emission suppressed before reset")
	}
	th.Reset()
	if !th.Allow() {
		t.Fatal("burst allowance should be restored after Reset")
	}
}

func TestNilThrottleAlwaysAllows(t *testing.T) {
	var th *Throttle
	if !th.Allow() {
		t.Fatal("nil throttle must not suppress")
	}
}
