package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hireflow/internal/regapi/cooldown"
	"github.com/aussiebroadwan/hireflow/internal/regapi/metrics"
	"github.com/aussiebroadwan/hireflow/internal/regapi/store"
	"github.com/aussiebroadwan/hireflow/pkg/clock"
)

// sweeper is implemented by in-memory cooldown gates.
type sweeper interface {
	Sweep() int
}

// HousekeepingService periodically removes lapsed challenges, abandoned
// pending registrations and expired cooldown entries.
type HousekeepingService struct {
	Store   store.Store
	Gate    cooldown.Gate
	Logger  *slog.Logger
	Clock   clock.Clock
	Metrics *metrics.Metrics

	Interval time.Duration

	// ChallengeRetention keeps an expired challenge around this long so a
	// resend can continue its counter.
	ChallengeRetention time.Duration

	// PendingRetention is how long an unverified user without a challenge
	// survives before being purged.
	PendingRetention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(
	st store.Store,
	gate cooldown.Gate,
	logger *slog.Logger,
	clk clock.Clock,
	m *metrics.Metrics,
	interval time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if clk == nil {
		clk = clock.New()
	}

	return &HousekeepingService{
		Store:              st,
		Gate:               gate,
		Logger:             logger,
		Clock:              clk,
		Metrics:            m,
		Interval:           interval,
		ChallengeRetention: 24 * time.Hour,
		PendingRetention:   7 * 24 * time.Hour,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent; a failure is logged and
// the remaining steps still run.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.Clock.Now().UTC()
	s.Logger.Debug("starting housekeeping cleanup")

	var successful int

	if n, err := s.Store.Challenges().DeleteExpiredChallenges(ctx, now.Add(-s.ChallengeRetention)); err != nil {
		s.Logger.Error("failed to delete expired challenges", "error", err)
	} else {
		s.Metrics.Purged("challenges", n)
		successful++
	}

	if n, err := s.Store.Users().DeleteStalePending(ctx, now.Add(-s.PendingRetention)); err != nil {
		s.Logger.Error("failed to delete stale pending users", "error", err)
	} else {
		s.Metrics.Purged("pending_users", n)
		successful++
	}

	if sw, ok := s.Gate.(sweeper); ok {
		s.Metrics.Purged("cooldowns", int64(sw.Sweep()))
		successful++
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", successful)
}
