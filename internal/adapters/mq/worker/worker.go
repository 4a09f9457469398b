// Package worker applies queued catalog records to the store
// asynchronously, decoupling ingestion acknowledgment from storage.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/cartaz/internal/domain/model"
	"github.com/okian/cartaz/pkg/logger"
	"github.com/okian/cartaz/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2
	workerShutdownTimeout   = 5 * time.Second
)

// Record is what workers read off the queue.
type Record = model.Record

// Applier persists a catalog record. The repository store satisfies it.
type Applier interface {
	UpsertUser(ctx context.Context, u model.UserProfile) error
	UpsertEvent(ctx context.Context, e model.Event) error
	UpsertTicket(ctx context.Context, t model.Ticket) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker consumes records from the queue and writes them to the store.
type Worker struct {
	queue   Queue
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWorker creates a worker reading from queue and writing to applier.
func NewWorker(queue Queue, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		queue:    queue,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop until ctx is canceled, the queue closes,
// or Shutdown is called.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case r, ok := <-records:
			if !ok {
				return
			}
			if err := w.apply(ctx, r); err != nil {
				w.logger.Error(ctx, "error applying record",
					logger.String("recordID", r.ID()),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker, waiting for the in-flight record.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// apply persists a single record.
func (w *Worker) apply(ctx context.Context, r Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	var err error
	switch r.Kind {
	case model.RecordUser:
		err = w.applier.UpsertUser(ctx, r.User)
	case model.RecordEvent:
		err = w.applier.UpsertEvent(ctx, r.Event)
	case model.RecordTicket:
		err = w.applier.UpsertTicket(ctx, r.Ticket)
	default:
		err = fmt.Errorf("unknown record kind %q", r.Kind)
	}
	if err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("applying %s record %s: %w", r.Kind, r.ID(), err)
	}

	metrics.RecordIngestApplied(string(r.Kind))
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*Worker

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers.
func NewPool(workerCount int, queue Queue, applier Applier) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*Worker, workerCount),
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(queue, applier, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop stops all workers, waiting briefly for each.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
		default:
			close(w.shutdown)
		}
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}
