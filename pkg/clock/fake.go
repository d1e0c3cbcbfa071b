package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Tasks scheduled with Every run
// synchronously inside Advance, in due-time order, on the caller's goroutine.
type Fake struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks map[int]*fakeTask
}

type fakeTask struct {
	f        *Fake
	id       int
	interval time.Duration
	next     time.Time
	fn       func()
}

// NewFake returns a Fake clock set to start.
func NewFake(start time.Time) *Fake {
	return &Fake{
		now:   start,
		tasks: make(map[int]*fakeTask),
	}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Every(interval time.Duration, fn func()) Task {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTask{
		f:        f,
		id:       f.seq,
		interval: interval,
		next:     f.now.Add(interval),
		fn:       fn,
	}
	f.tasks[t.id] = t
	return t
}

func (t *fakeTask) Stop() {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	delete(t.f.tasks, t.id)
}

// Active reports how many scheduled tasks have not been stopped.
func (f *Fake) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// Set moves the clock to t without firing any task. Ticks skipped by the
// jump are dropped, the way a time.Ticker drops them for a slow receiver.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = t
	for _, task := range f.tasks {
		for !task.next.After(t) {
			task.next = task.next.Add(task.interval)
		}
	}
}

// Advance moves the clock forward by d, firing every task that falls due.
// Task callbacks run without the clock lock held, so they may stop tasks or
// schedule new ones.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		t := f.nextDue(target)
		if t == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = t.next
		t.next = t.next.Add(t.interval)
		fn := t.fn
		f.mu.Unlock()

		fn()
	}
}

// nextDue returns the earliest task due at or before target. Caller holds mu.
func (f *Fake) nextDue(target time.Time) *fakeTask {
	due := make([]*fakeTask, 0, len(f.tasks))
	for _, t := range f.tasks {
		if !t.next.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].next.Equal(due[j].next) {
			return due[i].id < due[j].id
		}
		return due[i].next.Before(due[j].next)
	})
	return due[0]
}
