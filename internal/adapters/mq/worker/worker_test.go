package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	worker "github.com/okian/cartaz/internal/adapters/mq/worker"
	model "github.com/okian/cartaz/internal/domain/model"
	logging "github.com/okian/cartaz/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	recordChan chan worker.Record
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		recordChan: make(chan worker.Record, 10),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan worker.Record {
	return mq.recordChan
}

func (mq *mockQueue) addRecord(r worker.Record) {
	mq.recordChan <- r
}

type mockApplier struct {
	mu      sync.RWMutex
	users   map[string]model.UserProfile
	events  map[string]model.Event
	tickets map[string]model.Ticket
	errors  map[string]error
}

func newMockApplier() *mockApplier {
	return &mockApplier{
		users:   make(map[string]model.UserProfile),
		events:  make(map[string]model.Event),
		tickets: make(map[string]model.Ticket),
		errors:  make(map[string]error),
	}
}

func (ma *mockApplier) UpsertUser(ctx context.Context, u model.UserProfile) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	if err, exists := ma.errors[u.ID]; exists {
		return err
	}
	ma.users[u.ID] = u
	return nil
}

func (ma *mockApplier) UpsertEvent(ctx context.Context, e model.Event) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	if err, exists := ma.errors[e.ID]; exists {
		return err
	}
	ma.events[e.ID] = e
	return nil
}

func (ma *mockApplier) UpsertTicket(ctx context.Context, t model.Ticket) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	if err, exists := ma.errors[t.ID]; exists {
		return err
	}
	ma.tickets[t.ID] = t
	return nil
}

func (ma *mockApplier) setError(id string, err error) {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.errors[id] = err
}

func (ma *mockApplier) getUser(id string) (model.UserProfile, bool) {
	ma.mu.RLock()
	defer ma.mu.RUnlock()
	u, exists := ma.users[id]
	return u, exists
}

func (ma *mockApplier) getEvent(id string) (model.Event, bool) {
	ma.mu.RLock()
	defer ma.mu.RUnlock()
	e, exists := ma.events[id]
	return e, exists
}

func (ma *mockApplier) getTicket(id string) (model.Ticket, bool) {
	ma.mu.RLock()
	defer ma.mu.RUnlock()
	t, exists := ma.tickets[id]
	return t, exists
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a new worker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		applier := newMockApplier()

		convey.Convey("When creating a worker with default options", func() {
			w := worker.NewWorker(queue, applier)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with a custom name", func() {
			w := worker.NewWorker(queue, applier, worker.WithName("test-worker"))

			convey.Convey("Then it should be created successfully", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewWorker(queue, applier)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And a user record arrives", func() {
				queue.addRecord(worker.Record{
					Kind: model.RecordUser,
					User: model.UserProfile{ID: "user-1", Name: "Ana"},
				})
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the user is applied to the store", func() {
					u, applied := applier.getUser("user-1")
					convey.So(applied, convey.ShouldBeTrue)
					convey.So(u.Name, convey.ShouldEqual, "Ana")
				})
			})

			convey.Convey("And an event record arrives", func() {
				queue.addRecord(worker.Record{
					Kind:  model.RecordEvent,
					Event: model.Event{ID: "event-1", Title: "Concerto"},
				})
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the event is applied to the store", func() {
					e, applied := applier.getEvent("event-1")
					convey.So(applied, convey.ShouldBeTrue)
					convey.So(e.Title, convey.ShouldEqual, "Concerto")
				})
			})

			convey.Convey("And a ticket record arrives", func() {
				queue.addRecord(worker.Record{
					Kind:   model.RecordTicket,
					Ticket: model.Ticket{ID: "ticket-1", UserID: "user-1", EventID: "event-1"},
				})
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the ticket is applied to the store", func() {
					tk, applied := applier.getTicket("ticket-1")
					convey.So(applied, convey.ShouldBeTrue)
					convey.So(tk.UserID, convey.ShouldEqual, "user-1")
				})
			})

			convey.Convey("And the store rejects a record", func() {
				applier.setError("user-2", errors.New("store unavailable"))
				queue.addRecord(worker.Record{
					Kind: model.RecordUser,
					User: model.UserProfile{ID: "user-2"},
				})
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the record is not applied and the worker keeps running", func() {
					_, applied := applier.getUser("user-2")
					convey.So(applied, convey.ShouldBeFalse)

					queue.addRecord(worker.Record{
						Kind: model.RecordUser,
						User: model.UserProfile{ID: "user-3"},
					})
					time.Sleep(50 * time.Millisecond)

					_, applied = applier.getUser("user-3")
					convey.So(applied, convey.ShouldBeTrue)
				})
			})

			convey.Convey("And a record with an unknown kind arrives", func() {
				queue.addRecord(worker.Record{Kind: "unknown"})
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the worker keeps running", func() {
					queue.addRecord(worker.Record{
						Kind: model.RecordUser,
						User: model.UserProfile{ID: "user-4"},
					})
					time.Sleep(50 * time.Millisecond)

					_, applied := applier.getUser("user-4")
					convey.So(applied, convey.ShouldBeTrue)
				})
			})
		})

		convey.Convey("When shutting down a worker", func() {
			w := worker.NewWorker(queue, applier)
			ctx := context.Background()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
			defer cancel()

			convey.Convey("Then shutdown completes before the deadline", func() {
				err := w.Shutdown(shutdownCtx)
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue channel closes", func() {
			w := worker.NewWorker(queue, applier)
			ctx := context.Background()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)
			close(queue.recordChan)

			convey.Convey("Then the worker stops on its own", func() {
				shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
				defer cancel()
				err := w.Shutdown(shutdownCtx)
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool", t, func() {
		_ = logging.Init()

		queue := newMockQueue()
		applier := newMockApplier()

		convey.Convey("When starting a pool of three workers", func() {
			pool := worker.NewPool(3, queue, applier)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And records arrive", func() {
				for i := 0; i < 5; i++ {
					queue.addRecord(worker.Record{
						Kind: model.RecordUser,
						User: model.UserProfile{ID: "user-" + string(rune('a'+i))},
					})
				}
				time.Sleep(100 * time.Millisecond)

				convey.Convey("Then every record is applied exactly once", func() {
					for i := 0; i < 5; i++ {
						_, applied := applier.getUser("user-" + string(rune('a'+i)))
						convey.So(applied, convey.ShouldBeTrue)
					}
				})
			})

			convey.Convey("And the pool is stopped", func() {
				pool.Stop()

				convey.Convey("Then stopping again later records still works", func() {
					convey.So(func() { pool.Start(ctx) }, convey.ShouldNotPanic)
				})
			})
		})

		convey.Convey("When requesting a non-positive worker count", func() {
			pool := worker.NewPool(0, queue, applier)

			convey.Convey("Then the pool falls back to a CPU-based default", func() {
				convey.So(pool, convey.ShouldNotBeNil)
			})
		})
	})
}
