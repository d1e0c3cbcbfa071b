package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/sethvargo/go-retry"
)

// LivenessChecker is satisfied by *regsdk.SDKClient.
type LivenessChecker interface {
	GetLiveness(ctx context.Context) (*regsdk.HealthResponse, error)
}

// WaitForBackend polls /livez with a capped fibonacci backoff until the API
// answers or maxWait has passed. A non-positive maxWait skips the check.
func WaitForBackend(ctx context.Context, c LivenessChecker, maxWait time.Duration, log *slog.Logger) error {
	if maxWait <= 0 {
		return nil
	}

	b := retry.NewFibonacci(200 * time.Millisecond)
	b = retry.WithCappedDuration(2*time.Second, b)
	b = retry.WithMaxDuration(maxWait, b)

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		health, err := c.GetLiveness(ctx)
		if err != nil {
			log.Debug("registration API not reachable yet", "attempt", attempt, "err", err)
			// only transport failures are worth waiting out
			if regsdk.Classify(err) == regsdk.KindNetwork {
				return retry.RetryableError(err)
			}
			return err
		}
		log.Info("registration API is up", "version", health.Version, "attempts", attempt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("registration API unavailable: %w", err)
	}
	return nil
}
