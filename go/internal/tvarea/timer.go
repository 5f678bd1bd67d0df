package tvarea

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

// Timer wraps a single one-shot deadline callback and reports how much of
// its duration has elapsed. Elapsed time is derived from the wall-clock
// deadline rather than a counter, so a late-firing callback doesn't skew it.
type Timer struct {
	clock    Clock
	timer    clockwork.Timer
	deadline time.Time
	duration time.Duration
}

// StartTimer arms fn to run once after d
func StartTimer(clock Clock, d time.Duration, fn func()) *Timer {
	if d < 0 {
		d = 0
	}
	return &Timer{
		clock:    clock,
		deadline: clock.Now().Add(d),
		duration: d,
		timer:    clock.AfterFunc(d, fn),
	}
}

// Cancel disarms the timer. It is a no-op if the timer already fired or was cancelled.
func (t *Timer) Cancel() {
	if t == nil || t.timer == nil {
		return
	}
	t.timer.Stop()
}

// Duration returns the total duration the timer was armed with
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Deadline returns the instant the callback is due
func (t *Timer) Deadline() time.Time {
	return t.deadline
}

// Remaining returns the time left until the deadline, never negative
func (t *Timer) Remaining() time.Duration {
	remaining := t.deadline.Sub(t.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ElapsedSeconds returns (duration - remaining) in seconds, never negative
func (t *Timer) ElapsedSeconds() float64 {
	elapsed := t.duration - t.Remaining()
	if elapsed < 0 {
		return 0
	}
	return elapsed.Seconds()
}
