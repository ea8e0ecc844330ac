// Package jobs moves forecast requests and results between processes over
// a message broker. NATS JetStream, Redis Streams, Kafka and an in-process
// backend are supported.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names accepted by NewBroker.
const (
	BackendNATS   = "nats"
	BackendRedis  = "redis"
	BackendKafka  = "kafka"
	BackendMemory = "memory"
)

var (
	// ErrAlreadySubscribed is returned when a subject already has a handler.
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrNotSubscribed is returned by Unsubscribe for unknown subjects.
	ErrNotSubscribed = errors.New("not subscribed")
	// ErrUnsupportedBackend is returned by NewBroker.
	ErrUnsupportedBackend = errors.New("unsupported broker backend")
)

// Handler processes one message. A non-nil error leaves the message
// unacknowledged so the backend may redeliver it.
type Handler func(ctx context.Context, data []byte) error

// Broker publishes and consumes raw messages by subject.
type Broker interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(subject string, handler Handler) error
	Unsubscribe(subject string) error
	Close() error
}

// Options configures NewBroker.
type Options struct {
	Backend string
	URL     string

	// Redis Streams
	Password string
	DB       int
	Group    string
	Consumer string

	// Kafka
	Brokers []string
}

// NewBroker connects to the configured backend. An empty backend selects
// the in-process broker.
func NewBroker(opts Options) (Broker, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendMemory:
		return NewMemoryBroker(), nil
	case BackendNATS:
		return newNATSBroker(opts.URL)
	case BackendRedis:
		return newRedisBroker(opts)
	case BackendKafka:
		return newKafkaBroker(opts)
	default:
		return nil, fmt.Errorf("%w: %s (supported: nats, redis, kafka, memory)", ErrUnsupportedBackend, opts.Backend)
	}
}
