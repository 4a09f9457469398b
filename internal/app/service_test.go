package app_test

import (
	"context"
	"testing"
	"time"

	app "github.com/okian/cartaz/internal/app"
	"github.com/okian/cartaz/internal/adapters/repository"
	"github.com/okian/cartaz/internal/domain/model"
	"github.com/okian/cartaz/internal/domain/scoring"
	"github.com/okian/cartaz/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var now = time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

// seededService starts a service over a pre-populated in-memory store
// with deterministic jitter and clock.
func seededService(opts ...app.Option) *app.Service {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	_ = store.UpsertUser(ctx, model.UserProfile{
		ID:        "user-1",
		Name:      "Ana",
		Interests: `["musica"]`,
		City:      "Lisboa",
		CreatedAt: now.Add(-30 * 24 * time.Hour),
	})

	events := []model.Event{
		{ID: "event-match", Title: "Festival", Category: "musica", Tags: `["musica","jazz"]`, City: "Lisboa", Featured: true, Status: model.StatusPublished, StartsAt: now.Add(2 * 24 * time.Hour)},
		{ID: "event-city", Title: "Feira", Category: "gastronomia", City: "Lisboa", Status: model.StatusPublished, StartsAt: now.Add(20 * 24 * time.Hour)},
		{ID: "event-none", Title: "Corrida", Category: "desporto", City: "Porto", Status: model.StatusPublished, StartsAt: now.Add(30 * 24 * time.Hour)},
		{ID: "event-draft", Title: "Rascunho", Category: "arte", Status: model.StatusDraft, StartsAt: now.Add(3 * 24 * time.Hour)},
		{ID: "event-past", Title: "Passado", Category: "cinema", Status: model.StatusPublished, StartsAt: now.Add(-24 * time.Hour)},
	}
	for _, e := range events {
		_ = store.UpsertEvent(ctx, e)
	}

	_ = store.UpsertTicket(ctx, model.Ticket{
		ID: "ticket-1", UserID: "user-1", EventID: "event-past", Quantity: 1, BoughtAt: now.Add(-48 * time.Hour),
	})

	base := []app.Option{
		app.WithStore(store),
		app.WithNowFunc(func() time.Time { return now }),
		app.WithRandSource(scoring.NewFixedSource(0)),
		app.WithWorkerCount(1),
	}
	svc := app.New(append(base, opts...)...)
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	return svc
}

func TestService_Recommend(t *testing.T) {
	Convey("Given a started service with a seeded catalog", t, func() {
		svc := seededService(app.WithJitterMax(0))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When recommending for a known user", func() {
			recs, err := svc.Recommend(ctx, "user-1", 10, true)
			So(err, ShouldBeNil)

			Convey("Then only upcoming published events are scored", func() {
				So(recs, ShouldHaveLength, 3)
			})

			Convey("And the strongest match ranks first", func() {
				// event-match: interests 30 + location 25 + featured 15 + soon 10
				So(recs[0].EventID, ShouldEqual, "event-match")
				So(recs[0].Score, ShouldEqual, 80.0)
				So(recs[0].Rank, ShouldEqual, 1)
				So(recs[0].BasedOn, ShouldEqual, model.BasedOnInterests)
			})

			Convey("And the location-only match follows", func() {
				So(recs[1].EventID, ShouldEqual, "event-city")
				So(recs[1].Score, ShouldEqual, 25.0)
				So(recs[1].Rank, ShouldEqual, 2)
				So(recs[1].BasedOn, ShouldEqual, model.BasedOnLocation)
			})

			Convey("And the no-signal event trails as mixed", func() {
				So(recs[2].EventID, ShouldEqual, "event-none")
				So(recs[2].Score, ShouldEqual, 0.0)
				So(recs[2].Rank, ShouldEqual, 3)
				So(recs[2].BasedOn, ShouldEqual, model.BasedOnMixed)
			})

			Convey("And reasons carry the display text", func() {
				So(recs[0].Reasons, ShouldContain, "Corresponde aos teus interesses")
				So(recs[0].Reasons, ShouldContain, "Perto da tua localização")
				So(recs[2].Reasons, ShouldBeEmpty)
			})
		})

		Convey("When recommending without reasons", func() {
			recs, err := svc.Recommend(ctx, "user-1", 10, false)
			So(err, ShouldBeNil)

			Convey("Then reasons are empty but classification stands", func() {
				So(recs[0].Reasons, ShouldBeEmpty)
				So(recs[0].BasedOn, ShouldEqual, model.BasedOnInterests)
			})
		})

		Convey("When recommending for an unknown user", func() {
			recs, err := svc.Recommend(ctx, "user-999", 10, true)

			Convey("Then the result is an empty page, not an error", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When the limit is smaller than the candidate set", func() {
			recs, err := svc.Recommend(ctx, "user-1", 1, true)
			So(err, ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0].EventID, ShouldEqual, "event-match")
		})

		Convey("When no limit is given", func() {
			recs, err := svc.Recommend(ctx, "user-1", 0, true)

			Convey("Then the default limit applies", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 3)
			})
		})

		Convey("When using the AI variant", func() {
			recs, err := svc.RecommendAI(ctx, "user-1", 10)

			Convey("Then reasons are always included", func() {
				So(err, ShouldBeNil)
				So(recs[0].Reasons, ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a service with purchase history driving scores", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		_ = store.UpsertUser(ctx, model.UserProfile{ID: "user-2", City: "Faro"})
		_ = store.UpsertEvent(ctx, model.Event{ID: "event-old", Category: "teatro", Status: model.StatusPublished, StartsAt: now.Add(-24 * time.Hour)})
		_ = store.UpsertEvent(ctx, model.Event{ID: "event-new", Category: "teatro", Status: model.StatusPublished, StartsAt: now.Add(30 * 24 * time.Hour)})
		_ = store.UpsertTicket(ctx, model.Ticket{ID: "ticket-2", UserID: "user-2", EventID: "event-old", Quantity: 1, BoughtAt: now.Add(-48 * time.Hour)})

		svc := app.New(
			app.WithStore(store),
			app.WithNowFunc(func() time.Time { return now }),
			app.WithJitterMax(0),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When recommending", func() {
			recs, err := svc.Recommend(ctx, "user-2", 10, true)
			So(err, ShouldBeNil)

			Convey("Then the history rule fires on the repeated category", func() {
				So(recs, ShouldHaveLength, 1)
				So(recs[0].EventID, ShouldEqual, "event-new")
				So(recs[0].Score, ShouldEqual, 20.0)
				So(recs[0].BasedOn, ShouldEqual, model.BasedOnHistory)
				So(recs[0].Reasons, ShouldContain, "Categoria que já assististe antes")
			})
		})
	})

	Convey("Given a service with an empty catalog", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		_ = store.UpsertUser(ctx, model.UserProfile{ID: "user-3"})

		svc := app.New(app.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When recommending with no upcoming events", func() {
			recs, err := svc.Recommend(ctx, "user-3", 10, true)

			Convey("Then the result is an empty page", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)
			})
		})
	})

	Convey("Given custom rule weights from configuration", t, func() {
		svc := seededService(
			app.WithJitterMax(0),
			app.WithRuleWeights(map[string]float64{"location": 60, "unknown_rule": 99}),
		)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When recommending", func() {
			recs, err := svc.Recommend(ctx, "user-1", 10, false)
			So(err, ShouldBeNil)

			Convey("Then the overridden weight reorders nothing but raises scores", func() {
				// event-match: 30 + 60 + 15 + 10; event-city: 60
				So(recs[0].Score, ShouldEqual, 115.0)
				So(recs[1].EventID, ShouldEqual, "event-city")
				So(recs[1].Score, ShouldEqual, 60.0)
			})
		})
	})
}

func TestService_Ingestion(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := seededService()
		defer svc.Stop()
		ctx := context.Background()

		Convey("When recording a fresh record ID", func() {
			seen := svc.SeenAndRecord(ctx, "user:user-x")

			Convey("Then it is not a duplicate and is tracked", func() {
				So(seen, ShouldBeFalse)
				So(svc.Size(), ShouldEqual, 1)
			})

			Convey("And resubmitting reports a duplicate", func() {
				So(svc.SeenAndRecord(ctx, "user:user-x"), ShouldBeTrue)
			})
		})

		Convey("When rolling back a seen record", func() {
			svc.SeenAndRecord(ctx, "user:user-y")
			svc.Unrecord(ctx, "user:user-y")

			Convey("Then it can be recorded again", func() {
				So(svc.SeenAndRecord(ctx, "user:user-y"), ShouldBeFalse)
			})
		})

		Convey("When enqueuing a record", func() {
			ok := svc.Enqueue(ctx, model.Record{
				Kind: model.RecordUser,
				User: model.UserProfile{ID: "user-new", Name: "Rita"},
			})
			So(ok, ShouldBeTrue)

			Convey("Then the worker eventually applies it", func() {
				deadline := time.Now().Add(2 * time.Second)
				var applied bool
				for time.Now().Before(deadline) {
					if stats := svc.GetStats(); stats["users"] == 2 {
						applied = true
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(applied, ShouldBeTrue)
			})
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := app.New(app.WithStore(repository.NewMemoryStore()))
		ctx := context.Background()

		Convey("When starting twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
		})

		Convey("When stopping before starting", func() {
			So(svc.Stop, ShouldNotPanic)
		})

		Convey("When reading stats before start", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats, ShouldNotContainKey, "queueLength")
		})

		Convey("When reading stats after start", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["queueLength"], ShouldEqual, 0)
			So(stats["users"], ShouldEqual, 0)
		})
	})
}
