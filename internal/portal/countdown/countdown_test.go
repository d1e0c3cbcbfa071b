package countdown_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/portal/countdown"
	"github.com/aussiebroadwan/hireflow/pkg/clock"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestRemaining(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		d    time.Duration
		want int
	}{
		{"two minutes", 120 * time.Second, 120},
		{"floors fractions", 1999 * time.Millisecond, 1},
		{"under a second", 999 * time.Millisecond, 0},
		{"exactly now", 0, 0},
		{"in the past", -5 * time.Second, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, countdown.Remaining(epoch.Add(tc.d), epoch))
		})
	}
}

func TestFormatClock(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2:00", countdown.FormatClock(120))
	require.Equal(t, "1:59", countdown.FormatClock(119))
	require.Equal(t, "0:09", countdown.FormatClock(9))
	require.Equal(t, "0:00", countdown.FormatClock(0))
	require.Equal(t, "0:00", countdown.FormatClock(-3))
	require.Equal(t, "10:00", countdown.FormatClock(600))
}

func TestCountdownTicksDownAndExpiresOnce(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(epoch)

	var ticks []int
	expired := 0
	c := countdown.StartCountdown(clk, epoch.Add(120*time.Second),
		func(sec int) { ticks = append(ticks, sec) },
		func() { expired++ },
	)

	require.Equal(t, 120, c.Remaining())
	require.Equal(t, "2:00", countdown.FormatClock(c.Remaining()))
	require.Empty(t, ticks, "no callback from the constructor")

	clk.Advance(3 * time.Second)
	require.Equal(t, []int{119, 118, 117}, ticks)

	clk.Advance(117 * time.Second)
	require.Equal(t, 0, c.Remaining())
	require.True(t, c.Expired())
	require.Equal(t, 1, expired)
	require.Equal(t, 0, clk.Active(), "timer unscheduled at zero")

	clk.Advance(10 * time.Second)
	require.Equal(t, 1, expired)
	require.Len(t, ticks, 120)
}

func TestCountdownRecomputesFromWallClock(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(epoch)

	var last int
	c := countdown.StartCountdown(clk, epoch.Add(60*time.Second), func(sec int) { last = sec }, nil)

	// The host slept through 30 ticks; the next one catches up.
	clk.Set(epoch.Add(30500 * time.Millisecond))
	clk.Advance(time.Second)

	require.Equal(t, 29, last)
	require.Equal(t, 29, c.Remaining())
}

func TestCountdownAlreadyExpired(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(epoch)

	called := false
	c := countdown.StartCountdown(clk, epoch.Add(-time.Second),
		func(int) { called = true },
		func() { called = true },
	)

	require.True(t, c.Expired())
	require.Equal(t, 0, c.Remaining())
	require.Equal(t, 0, clk.Active())

	clk.Advance(5 * time.Second)
	require.False(t, called)
}

func TestCountdownStop(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(epoch)

	ticks := 0
	expired := false
	c := countdown.StartCountdown(clk, epoch.Add(10*time.Second),
		func(int) { ticks++ },
		func() { expired = true },
	)

	clk.Advance(2 * time.Second)
	c.Stop()
	c.Stop()

	clk.Advance(20 * time.Second)
	require.Equal(t, 2, ticks)
	require.False(t, expired)
	require.Equal(t, 8, c.Remaining())
	require.Equal(t, 0, clk.Active())
}

func TestCooldown(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(epoch)

	var ticks []int
	done := 0
	c := countdown.StartCooldown(clk, countdown.DefaultCooldown,
		func(sec int) { ticks = append(ticks, sec) },
		func() { done++ },
	)

	require.Equal(t, 60, c.Remaining())
	require.False(t, c.Done())

	clk.Advance(time.Second)
	require.Equal(t, []int{59}, ticks)

	clk.Advance(59 * time.Second)
	require.True(t, c.Done())
	require.Equal(t, 0, c.Remaining())
	require.Equal(t, 1, done)

	clk.Advance(time.Minute)
	require.Equal(t, 1, done)
	require.Len(t, ticks, 60)
}

func TestCooldownStopFromCallback(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(epoch)

	var c *countdown.Cooldown
	ticks := 0
	c = countdown.StartCooldown(clk, 5, func(int) {
		ticks++
		c.Stop()
	}, nil)

	clk.Advance(5 * time.Second)
	require.Equal(t, 1, ticks)
	require.Equal(t, 4, c.Remaining())
}

func TestCooldownZeroLength(t *testing.T) {
	t.Parallel()

	clk := clock.NewFake(epoch)
	c := countdown.StartCooldown(clk, 0, nil, nil)

	require.True(t, c.Done())
	require.Equal(t, 0, clk.Active())
}
