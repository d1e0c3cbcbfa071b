// Package devotp keeps the most recent plain code per email so local runs
// and tests can complete verification without a mailbox. Only wired when
// dev OTP mode is enabled.
package devotp

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/clock"
)

type entry struct {
	code      string
	expiresAt time.Time
}

// Mailbox is an in-memory code sink.
type Mailbox struct {
	mu    sync.RWMutex
	m     map[string]entry
	clock clock.Clock
}

func NewMailbox(clk clock.Clock) *Mailbox {
	if clk == nil {
		clk = clock.New()
	}
	return &Mailbox{m: make(map[string]entry), clock: clk}
}

// SendCode records code for email until expiresAt, replacing any earlier one.
func (b *Mailbox) SendCode(_ context.Context, email, code string, expiresAt time.Time) error {
	b.mu.Lock()
	b.m[strings.ToLower(email)] = entry{code: code, expiresAt: expiresAt}
	b.mu.Unlock()
	return nil
}

// Code returns the live code for email. ok is false when none was sent or
// it has expired.
func (b *Mailbox) Code(_ context.Context, email string) (code string, expiresAt time.Time, ok bool) {
	key := strings.ToLower(strings.TrimSpace(email))

	b.mu.RLock()
	e, found := b.m[key]
	b.mu.RUnlock()
	if !found {
		return "", time.Time{}, false
	}
	if !e.expiresAt.After(b.clock.Now()) {
		b.mu.Lock()
		delete(b.m, key)
		b.mu.Unlock()
		return "", time.Time{}, false
	}
	return e.code, e.expiresAt, true
}
