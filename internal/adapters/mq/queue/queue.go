// Package queue defines the contract for enqueuing and consuming
// catalog records. The implementation is an in-memory bounded queue;
// enqueue is non-blocking and reports backpressure to the caller.
package queue

import (
	"context"
	"sync"

	"github.com/okian/cartaz/internal/domain/model"
	"github.com/okian/cartaz/pkg/metrics"
)

const defaultCapacity = 10000

// Record is the payload type flowing through the queue.
type Record = model.Record

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a record to the queue.
	// Returns false if the queue is full and the record was not enqueued.
	Enqueue(ctx context.Context, r Record) bool

	// Dequeue returns a channel receiving records as they become
	// available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Record

	// Len returns the current number of queued records.
	Len(ctx context.Context) int

	// Close shuts down the queue. After closing, no new records can be
	// enqueued and the dequeue channel is closed.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	records  chan Record
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.records = make(chan Record, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a record to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Record) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}

	select {
	case q.records <- r:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.records))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel receiving records as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		for r := range q.records {
			select {
			case out <- r:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.records))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued records.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.records)
}

// Close shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.records)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
