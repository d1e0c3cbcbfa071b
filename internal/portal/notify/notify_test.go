package notify_test

import (
	"testing"

	"github.com/aussiebroadwan/hireflow/internal/portal/notify"
	"github.com/aussiebroadwan/hireflow/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestQueueDrain(t *testing.T) {
	t.Parallel()

	q := &notify.Queue{Logger: slogx.Discard()}
	q.Notify(notify.Error, "Network error")
	q.Notify(notify.Info, "A new code has been sent")

	got := q.Drain()
	require.Equal(t, []notify.Notification{
		{Level: notify.Error, Message: "Network error"},
		{Level: notify.Info, Message: "A new code has been sent"},
	}, got)
	require.Empty(t, q.Drain())
}

func TestFunc(t *testing.T) {
	t.Parallel()

	var got string
	notify.Func(func(_ notify.Level, msg string) { got = msg }).Notify(notify.Info, "hi")
	require.Equal(t, "hi", got)

	notify.Discard.Notify(notify.Error, "ignored")
}
