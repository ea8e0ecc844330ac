package jobs

import (
	"context"
	"fmt"
	"sync"
)

const memoryBufferSize = 1024

// MemoryBroker delivers messages through buffered channels within one process.
type MemoryBroker struct {
	mu      sync.Mutex
	subs    map[string]chan []byte
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewMemoryBroker returns an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs:    make(map[string]chan []byte),
		cancels: make(map[string]context.CancelFunc),
	}
}

func (b *MemoryBroker) channel(subject string) chan []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[subject]
	if !ok {
		ch = make(chan []byte, memoryBufferSize)
		b.subs[subject] = ch
	}
	return ch
}

// Publish queues a copy of data. It fails instead of blocking when the
// subject's buffer is full.
func (b *MemoryBroker) Publish(ctx context.Context, subject string, data []byte) error {
	msg := append([]byte(nil), data...)
	select {
	case b.channel(subject) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("memory broker: buffer full for %s", subject)
	}
}

// Subscribe starts a goroutine handing messages to handler in order.
func (b *MemoryBroker) Subscribe(subject string, handler Handler) error {
	ch := b.channel(subject)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.cancels[subject]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySubscribed, subject)
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancels[subject] = cancel

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-ch:
				_ = handler(ctx, msg)
			}
		}
	}()
	return nil
}

// Unsubscribe stops delivery for subject. Queued messages stay buffered.
func (b *MemoryBroker) Unsubscribe(subject string) error {
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

// Close stops all subscriptions and waits for their goroutines.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	for subject, cancel := range b.cancels {
		cancel()
		delete(b.cancels, subject)
	}
	b.mu.Unlock()
	b.wg.Wait()
	return nil
}

// Pending returns the number of queued messages for subject.
func (b *MemoryBroker) Pending(subject string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[subject])
}
