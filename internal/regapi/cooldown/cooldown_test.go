package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/clock"
	"github.com/stretchr/testify/require"
)

func TestMemoryGate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	g := NewMemoryGate(clk)

	ok, _, err := g.Acquire(ctx, "Ada@Example.com ", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	clk.Advance(20 * time.Second)
	ok, left, err := g.Acquire(ctx, "ada@example.com", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 40*time.Second, left)

	// other keys are independent
	ok, _, err = g.Acquire(ctx, "grace@example.com", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	clk.Advance(40 * time.Second)
	ok, _, err = g.Acquire(ctx, "ada@example.com", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMemoryGateReleaseAndSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := clock.NewFake(time.Unix(0, 0))
	g := NewMemoryGate(clk)

	_, _, _ = g.Acquire(ctx, "a@example.com", time.Minute)
	_, _, _ = g.Acquire(ctx, "b@example.com", 2*time.Minute)

	require.NoError(t, g.Release(ctx, "A@example.com"))
	ok, _, err := g.Acquire(ctx, "a@example.com", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	clk.Advance(90 * time.Second)
	require.Equal(t, 1, g.Sweep())
	require.NoError(t, g.Ping(ctx))
}
