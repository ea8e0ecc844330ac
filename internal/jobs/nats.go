package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBroker uses JetStream durable consumers with manual acks.
type NATSBroker struct {
	conn *nats.Conn
	js   nats.JetStreamContext

	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

func newNATSBroker(url string) (*NATSBroker, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	conn, err := nats.Connect(url, nats.Name("probacast"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	b, err := NewNATSBrokerWithConn(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

// NewNATSBrokerWithConn wraps an existing connection.
func NewNATSBrokerWithConn(conn *nats.Conn) (*NATSBroker, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("JetStream context: %w", err)
	}
	return &NATSBroker{conn: conn, js: js, subs: make(map[string]*nats.Subscription)}, nil
}

// streamName maps a subject to a JetStream stream name.
func streamName(subject string) string {
	return "probacast-" + sanitizeName(subject)
}

func sanitizeName(subject string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, subject)
}

func (b *NATSBroker) ensureStream(subject string) error {
	name := streamName(subject)
	if _, err := b.js.StreamInfo(name); err == nil {
		return nil
	}
	_, err := b.js.AddStream(&nats.StreamConfig{
		Name:     name,
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("create stream for %s: %w", subject, err)
	}
	return nil
}

// Publish waits for the JetStream ack.
func (b *NATSBroker) Publish(ctx context.Context, subject string, data []byte) error {
	if err := b.ensureStream(subject); err != nil {
		return err
	}
	if _, err := b.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Subscribe attaches a durable consumer. Failed messages are nak'ed and
// redelivered up to three times.
func (b *NATSBroker) Subscribe(subject string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[subject]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}
	if err := b.ensureStream(subject); err != nil {
		return err
	}

	sub, err := b.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(context.Background(), msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("consumer-"+sanitizeName(subject)),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	b.subs[subject] = sub
	return nil
}

// Unsubscribe detaches the consumer for subject.
func (b *NATSBroker) Unsubscribe(subject string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub, ok := b.subs[subject]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, subject)
	}
	delete(b.subs, subject)
	return sub.Unsubscribe()
}

// Close drains subscriptions and closes the connection.
func (b *NATSBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for subject, sub := range b.subs {
		_ = sub.Unsubscribe()
		delete(b.subs, subject)
	}
	b.conn.Close()
	return nil
}
