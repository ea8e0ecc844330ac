package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisStreamPrefix = "probacast"

// RedisBroker uses Redis Streams with a consumer group per broker.
type RedisBroker struct {
	client   *redis.Client
	group    string
	consumer string

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func newRedisBroker(opts Options) (*RedisBroker, error) {
	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		ropts = &redis.Options{Addr: opts.URL, Password: opts.Password, DB: opts.DB}
	}
	client := redis.NewClient(ropts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to Redis: %w", err)
	}

	group := opts.Group
	if group == "" {
		group = "probacast-workers"
	}
	consumer := opts.Consumer
	if consumer == "" {
		consumer, _ = os.Hostname()
		if consumer == "" {
			consumer = "worker-1"
		}
	}
	return &RedisBroker{
		client:   client,
		group:    group,
		consumer: consumer,
		cancels:  make(map[string]context.CancelFunc),
	}, nil
}

func (b *RedisBroker) stream(subject string) string {
	return redisStreamPrefix + ":" + subject
}

// Publish appends data to the subject's stream.
func (b *RedisBroker) Publish(ctx context.Context, subject string, data []byte) error {
	err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream(subject),
		Values: map[string]interface{}{"data": data},
	}).Err()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", b.stream(subject), err)
	}
	return nil
}

// Subscribe creates the consumer group if needed and reads in the background.
func (b *RedisBroker) Subscribe(subject string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.cancels[subject]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}

	stream := b.stream(subject)
	ctx, cancel := context.WithCancel(context.Background())
	err := b.client.XGroupCreateMkStream(ctx, stream, b.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		cancel()
		return fmt.Errorf("create consumer group on %s: %w", stream, err)
	}

	b.cancels[subject] = cancel
	go b.read(ctx, stream, handler)
	return nil
}

func (b *RedisBroker) read(ctx context.Context, stream string, handler Handler) {
	for ctx.Err() == nil {
		res, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: b.consumer,
			Streams:  []string{stream, ">"},
			Count:    100,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				time.Sleep(100 * time.Millisecond)
			}
			continue
		}
		for _, s := range res {
			for _, msg := range s.Messages {
				data, ok := msg.Values["data"].(string)
				if ok && handler(ctx, []byte(data)) != nil {
					continue
				}
				b.client.XAck(ctx, stream, b.group, msg.ID)
			}
		}
	}
}

// Unsubscribe stops the reader for subject.
func (b *RedisBroker) Unsubscribe(subject string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cancel, ok := b.cancels[subject]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, subject)
	}
	cancel()
	delete(b.cancels, subject)
	return nil
}

// Close stops all readers and closes the client.
func (b *RedisBroker) Close() error {
	b.mu.Lock()
	for subject, cancel := range b.cancels {
		cancel()
		delete(b.cancels, subject)
	}
	b.mu.Unlock()
	return b.client.Close()
}
