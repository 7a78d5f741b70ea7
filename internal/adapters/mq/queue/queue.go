// Package queue holds coaching messages waiting to be delivered.
//
// The queue is the asynchronous half of the emission path: the throttle
// hands text over without blocking and a worker drains it in order.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/Gagan-341/NeuraSentinel/pkg/metrics"
)

const defaultQueueCapacity = 16

// Message is one pending emission.
type Message struct {
	Text       string
	EnqueuedAt time.Time
	// Done is called exactly once, after delivery or when the message is
	// dropped. It may be nil.
	Done func()
}

// Finish calls Done if set.
func (m Message) Finish() {
	if m.Done != nil {
		m.Done()
	}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a message. It returns ErrFull or ErrClosed without
	// blocking.
	Enqueue(ctx context.Context, m Message) error

	// Dequeue returns the channel messages are read from. It is closed
	// when the queue is closed.
	Dequeue(ctx context.Context) <-chan Message

	// Len returns the number of pending messages.
	Len(ctx context.Context) int

	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel. It also satisfies
// the throttle's emitter contract through Emit and CancelQueued.
type InMemoryQueue struct {
	messages chan Message
	capacity int
	now      func() time.Time

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.messages = make(chan Message, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0, q.capacity)
	return q
}

// Enqueue adds a message to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, m Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if m.EnqueuedAt.IsZero() {
		m.EnqueuedAt = q.now()
	}

	select {
	case q.messages <- m:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.messages), q.capacity)
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Message {
	return q.messages
}

// Len returns the current number of queued messages.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.messages)
	metrics.UpdateQueueSize(size, q.capacity)
	return size
}

// Emit enqueues text. When the message cannot be queued done is called
// immediately so the caller never waits on a lost emission.
func (q *InMemoryQueue) Emit(ctx context.Context, text string, done func()) {
	m := Message{Text: text, Done: done}
	if err := q.Enqueue(ctx, m); err != nil {
		m.Finish()
	}
}

// CancelQueued drops every message not yet picked up by a consumer. Their
// Done callbacks still run.
func (q *InMemoryQueue) CancelQueued() {
	q.Drain()
}

// Drain is CancelQueued returning how many messages were dropped.
func (q *InMemoryQueue) Drain() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return 0
	}

	n := 0
	for {
		select {
		case m := <-q.messages:
			m.Finish()
			n++
		default:
			if n > 0 {
				metrics.RecordQueueCancelled(n)
			}
			metrics.UpdateQueueSize(len(q.messages), q.capacity)
			return n
		}
	}
}

// Close stops accepting messages and closes the dequeue channel. Pending
// messages can still be read.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.messages)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
