// Package clock abstracts wall time and repeating tasks so timer-driven code
// can be driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

// Task is a scheduled repeating task. Stop is idempotent and never blocks on
// an in-flight invocation.
type Task interface {
	Stop()
}

// Clock supplies the current time and schedules repeating tasks.
type Clock interface {
	Now() time.Time

	// Every runs fn once per interval until the returned Task is stopped.
	// The first invocation happens one interval after scheduling.
	Every(interval time.Duration, fn func()) Task
}

// Real is the production Clock backed by the time package.
type Real struct{}

// New returns the system clock.
func New() Real { return Real{} }

func (Real) Now() time.Time { return time.Now() }

func (Real) Every(interval time.Duration, fn func()) Task {
	t := &tickerTask{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	go t.run(fn)
	return t
}

type tickerTask struct {
	ticker *time.Ticker
	stopCh chan struct{}
	once   sync.Once
}

func (t *tickerTask) run(fn func()) {
	for {
		select {
		case <-t.ticker.C:
			// Stop may race with a pending tick; prefer the stop signal.
			select {
			case <-t.stopCh:
				return
			default:
			}
			fn()
		case <-t.stopCh:
			return
		}
	}
}

func (t *tickerTask) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.stopCh)
	})
}
