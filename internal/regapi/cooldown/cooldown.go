// Package cooldown rate-limits how often a verification code can be sent to
// the same address. The memory gate suits a single process; the redis gate
// shares the window across replicas.
package cooldown

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/clock"
)

// Gate admits at most one send per key per window.
type Gate interface {
	// Acquire claims key for ttl. When the key is already held it returns
	// false and the time left until it frees up.
	Acquire(ctx context.Context, key string, ttl time.Duration) (ok bool, retryAfter time.Duration, err error)

	// Release frees key early, e.g. when the send it guarded failed.
	Release(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// MemoryGate is an in-process Gate.
type MemoryGate struct {
	mu    sync.Mutex
	clock clock.Clock
	until map[string]time.Time
}

func NewMemoryGate(clk clock.Clock) *MemoryGate {
	if clk == nil {
		clk = clock.New()
	}
	return &MemoryGate{clock: clk, until: make(map[string]time.Time)}
}

func (g *MemoryGate) Acquire(_ context.Context, key string, ttl time.Duration) (bool, time.Duration, error) {
	key = normalizeKey(key)
	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if until, held := g.until[key]; held && now.Before(until) {
		return false, until.Sub(now), nil
	}
	g.until[key] = now.Add(ttl)
	return true, 0, nil
}

func (g *MemoryGate) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.until, normalizeKey(key))
	g.mu.Unlock()
	return nil
}

func (g *MemoryGate) Ping(context.Context) error { return nil }

// Sweep drops expired entries and returns how many were removed.
func (g *MemoryGate) Sweep() int {
	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	n := 0
	for k, until := range g.until {
		if !now.Before(until) {
			delete(g.until, k)
			n++
		}
	}
	return n
}
