// Package countdown holds the two one-second timers of a code challenge:
// the expiry countdown to a server supplied instant and the fixed resend
// cooldown.
//
// Neither timer calls back synchronously from its constructor. The starting
// value is read with Remaining, callbacks only happen on later ticks. Both
// callbacks run without any timer lock held, so they may call Stop.
package countdown

import (
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/clock"
)

// Tick is the interval both timers run at.
const Tick = time.Second

// DefaultCooldown is the resend cooldown in seconds.
const DefaultCooldown = 60

// Remaining is max(0, floor((expiresAt - now) / 1s)).
func Remaining(expiresAt, now time.Time) int {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// FormatClock renders seconds as M:SS, e.g. 120 -> "2:00".
func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// ticker is the shared machinery: once per Tick it asks next for the new
// value, reports it, and on reaching zero stops itself and reports done once.
type ticker struct {
	mu        sync.Mutex
	remaining int
	done      bool
	stopped   bool
	task      clock.Task

	next   func(prev int) int
	onTick func(int)
	onDone func()
}

func (t *ticker) start(clk clock.Clock, initial int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.remaining = max(initial, 0)
	if t.remaining == 0 {
		t.done = true
		return
	}
	t.task = clk.Every(Tick, t.tick)
}

func (t *ticker) tick() {
	t.mu.Lock()
	if t.stopped || t.done {
		t.mu.Unlock()
		return
	}

	t.remaining = max(t.next(t.remaining), 0)
	rem := t.remaining
	finished := rem == 0
	if finished {
		t.done = true
		t.task.Stop()
	}
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(rem)
	}
	if finished && t.onDone != nil {
		t.onDone()
	}
}

func (t *ticker) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Stop cancels further ticks. It is idempotent and safe to call from a
// callback.
func (t *ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	if t.task != nil {
		t.task.Stop()
	}
}

// Countdown counts down to an absolute expiry instant.
type Countdown struct {
	ticker
	expiresAt time.Time
}

// StartCountdown starts counting down to expiresAt. onTick receives the
// recomputed remaining seconds each tick; onExpire fires exactly once, on the
// tick that observes zero. A countdown started at or after expiresAt is
// Expired immediately and never calls back.
func StartCountdown(clk clock.Clock, expiresAt time.Time, onTick func(int), onExpire func()) *Countdown {
	c := &Countdown{expiresAt: expiresAt}
	c.onTick = onTick
	c.onDone = onExpire
	c.next = func(int) int { return Remaining(expiresAt, clk.Now()) }
	c.start(clk, Remaining(expiresAt, clk.Now()))
	return c
}

// ExpiresAt is the instant being counted down to.
func (c *Countdown) ExpiresAt() time.Time { return c.expiresAt }

// Expired reports whether the countdown has reached zero.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Cooldown is a fixed length countdown decremented once per tick.
type Cooldown struct {
	ticker
}

// StartCooldown starts a cooldown of seconds. onTick receives the new value
// each tick; onDone fires once when it reaches zero. A non-positive length
// is finished immediately and never calls back.
func StartCooldown(clk clock.Clock, seconds int, onTick func(int), onDone func()) *Cooldown {
	c := &Cooldown{}
	c.onTick = onTick
	c.onDone = onDone
	c.next = func(prev int) int { return prev - 1 }
	c.start(clk, seconds)
	return c
}

// Done reports whether the cooldown has elapsed.
func (c *Cooldown) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}
