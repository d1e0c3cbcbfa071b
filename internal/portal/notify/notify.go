// Package notify carries transient, non-field messages from the portal
// controllers to whatever displays them.
package notify

import (
	"log/slog"
	"sync"
)

type Level int

const (
	Info Level = iota
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "info"
}

// Notifier receives general notifications.
type Notifier interface {
	Notify(level Level, msg string)
}

// Func adapts a function to Notifier.
type Func func(Level, string)

func (f Func) Notify(level Level, msg string) { f(level, msg) }

// Discard drops every notification.
var Discard Notifier = Func(func(Level, string) {})

// Notification is one queued message.
type Notification struct {
	Level   Level
	Message string
}

// Queue buffers notifications until the UI drains them. It also logs each
// one through Logger when set.
type Queue struct {
	Logger *slog.Logger

	mu    sync.Mutex
	items []Notification
}

func (q *Queue) Notify(level Level, msg string) {
	if q.Logger != nil {
		q.Logger.Debug("notification", "level", level.String(), "message", msg)
	}

	q.mu.Lock()
	q.items = append(q.items, Notification{Level: level, Message: msg})
	q.mu.Unlock()
}

// Drain returns and clears the pending notifications, oldest first.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	return out
}
