package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// collect subscribes to subject and forwards every message to the returned
// channel.
func collect(t *testing.T, b Broker, subject string) <-chan []byte {
	t.Helper()
	ch := make(chan []byte, 16)
	require.NoError(t, b.Subscribe(subject, func(_ context.Context, data []byte) error {
		ch <- data
		return nil
	}))
	return ch
}

func receive(t *testing.T, ch <-chan []byte, timeout time.Duration) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(timeout):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// roundTrip checks ordered delivery of a few messages on a fresh subject.
func roundTrip(t *testing.T, b Broker, subject string, timeout time.Duration) {
	t.Helper()
	ch := collect(t, b, subject)
	ctx := context.Background()
	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, b.Publish(ctx, subject, []byte(msg)))
	}
	for _, want := range []string{"one", "two", "three"} {
		require.Equal(t, want, string(receive(t, ch, timeout)))
	}
}
