package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/hireflow/pkg/regsdk"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type flakyLiveness struct {
	failures int32
	calls    atomic.Int32
	err      error
}

func (f *flakyLiveness) GetLiveness(context.Context) (*regsdk.HealthResponse, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, f.err
	}
	return &regsdk.HealthResponse{Status: "ok", Version: "test"}, nil
}

func TestWaitForBackend(t *testing.T) {
	t.Parallel()

	t.Run("retries network failures", func(t *testing.T) {
		t.Parallel()
		c := &flakyLiveness{failures: 2, err: &regsdk.NetworkError{Op: "livez", Err: errors.New("refused")}}

		err := WaitForBackend(context.Background(), c, 10*time.Second, slogx.Discard())
		require.NoError(t, err)
		require.Equal(t, int32(3), c.calls.Load())
	})

	t.Run("server errors are final", func(t *testing.T) {
		t.Parallel()
		c := &flakyLiveness{failures: 5, err: &regsdk.ServerError{StatusCode: 500, Message: "boom"}}

		err := WaitForBackend(context.Background(), c, 10*time.Second, slogx.Discard())
		require.Error(t, err)
		require.Equal(t, int32(1), c.calls.Load())
	})

	t.Run("gives up after max wait", func(t *testing.T) {
		t.Parallel()
		c := &flakyLiveness{failures: 1 << 20, err: &regsdk.NetworkError{Op: "livez", Err: errors.New("refused")}}

		err := WaitForBackend(context.Background(), c, 500*time.Millisecond, slogx.Discard())
		var netErr *regsdk.NetworkError
		require.ErrorAs(t, err, &netErr)
	})

	t.Run("zero wait skips the check", func(t *testing.T) {
		t.Parallel()
		c := &flakyLiveness{}

		require.NoError(t, WaitForBackend(context.Background(), c, 0, slogx.Discard()))
		require.Zero(t, c.calls.Load())
	})
}
