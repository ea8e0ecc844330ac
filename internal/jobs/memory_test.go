package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBroker_Backends(t *testing.T) {
	for _, backend := range []string{"", "memory", "MEMORY"} {
		b, err := NewBroker(Options{Backend: backend})
		require.NoError(t, err, backend)
		assert.IsType(t, &MemoryBroker{}, b)
		require.NoError(t, b.Close())
	}

	_, err := NewBroker(Options{Backend: "rabbitmq"})
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
	assert.Contains(t, err.Error(), "rabbitmq")

	_, err = NewBroker(Options{Backend: BackendKafka})
	assert.Error(t, err, "kafka requires brokers")
}

func TestMemoryBroker_RoundTrip(t *testing.T) {
	b := NewMemoryBroker()
	defer func() { _ = b.Close() }()

	roundTrip(t, b, "forecast.requests", time.Second)
}

func TestMemoryBroker_PublishCopiesData(t *testing.T) {
	b := NewMemoryBroker()
	defer func() { _ = b.Close() }()

	data := []byte("abc")
	require.NoError(t, b.Publish(context.Background(), "s", data))
	data[0] = 'x'

	ch := collect(t, b, "s")
	assert.Equal(t, "abc", string(receive(t, ch, time.Second)))
}

func TestMemoryBroker_BuffersBeforeSubscribe(t *testing.T) {
	b := NewMemoryBroker()
	defer func() { _ = b.Close() }()

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, "s", []byte("1")))
	require.NoError(t, b.Publish(ctx, "s", []byte("2")))
	assert.Equal(t, 2, b.Pending("s"))
	assert.Equal(t, 0, b.Pending("other"))
}

func TestMemoryBroker_BufferFull(t *testing.T) {
	b := NewMemoryBroker()
	defer func() { _ = b.Close() }()

	ctx := context.Background()
	for i := 0; i < memoryBufferSize; i++ {
		require.NoError(t, b.Publish(ctx, "s", []byte{byte(i)}))
	}
	err := b.Publish(ctx, "s", []byte("overflow"))
	assert.ErrorContains(t, err, "buffer full")
}

func TestMemoryBroker_HandlerErrorsDoNotStopDelivery(t *testing.T) {
	b := NewMemoryBroker()
	defer func() { _ = b.Close() }()

	var calls atomic.Int32
	require.NoError(t, b.Subscribe("s", func(_ context.Context, _ []byte) error {
		calls.Add(1)
		return errors.New("handler failed")
	}))

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, "s", []byte("a")))
	require.NoError(t, b.Publish(ctx, "s", []byte("b")))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestMemoryBroker_SubscriptionLifecycle(t *testing.T) {
	b := NewMemoryBroker()

	noop := func(context.Context, []byte) error { return nil }
	require.NoError(t, b.Subscribe("s", noop))
	assert.ErrorIs(t, b.Subscribe("s", noop), ErrAlreadySubscribed)

	require.NoError(t, b.Unsubscribe("s"))
	assert.ErrorIs(t, b.Unsubscribe("s"), ErrNotSubscribed)

	// resubscribing after Unsubscribe is allowed
	require.NoError(t, b.Subscribe("s", noop))
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Unsubscribe("s"), ErrNotSubscribed)
}
