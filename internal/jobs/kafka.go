package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaBroker writes one topic per subject and reads with a consumer group.
type KafkaBroker struct {
	brokers []string
	group   string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers map[string]*kafka.Reader
	cancels map[string]context.CancelFunc
}

func newKafkaBroker(opts Options) (*KafkaBroker, error) {
	if len(opts.Brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	group := opts.Group
	if group == "" {
		group = "probacast-workers"
	}
	return &KafkaBroker{
		brokers: opts.Brokers,
		group:   group,
		writers: make(map[string]*kafka.Writer),
		readers: make(map[string]*kafka.Reader),
		cancels: make(map[string]context.CancelFunc),
	}, nil
}

func (b *KafkaBroker) writer(topic string) *kafka.Writer {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:                   kafka.TCP(b.brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		}
		b.writers[topic] = w
	}
	return w
}

// Publish writes data to the subject's topic.
func (b *KafkaBroker) Publish(ctx context.Context, subject string, data []byte) error {
	err := b.writer(subject).WriteMessages(ctx, kafka.Message{Value: data, Time: time.Now()})
	if err != nil {
		return fmt.Errorf("publish to kafka topic %s: %w", subject, err)
	}
	return nil
}

// Subscribe starts a consumer-group reader. Offsets are committed only
// after the handler succeeds.
func (b *KafkaBroker) Subscribe(subject string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.cancels[subject]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		GroupID:  b.group,
		Topic:    subject,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	ctx, cancel := context.WithCancel(context.Background())
	b.readers[subject] = reader
	b.cancels[subject] = cancel

	go func() {
		for {
			msg, err := reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if handler(ctx, msg.Value) != nil {
				continue
			}
			_ = reader.CommitMessages(ctx, msg)
		}
	}()
	return nil
}

// Unsubscribe stops and closes the reader for subject.
func (b *KafkaBroker) Unsubscribe(subject string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cancel, ok := b.cancels[subject]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, subject)
	}
	cancel()
	err := b.readers[subject].Close()
	delete(b.cancels, subject)
	delete(b.readers, subject)
	return err
}

// Close stops all readers and flushes all writers.
func (b *KafkaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	for subject, cancel := range b.cancels {
		cancel()
		errs = append(errs, b.readers[subject].Close())
		delete(b.cancels, subject)
		delete(b.readers, subject)
	}
	for topic, w := range b.writers {
		errs = append(errs, w.Close())
		delete(b.writers, topic)
	}
	return errors.Join(errs...)
}
