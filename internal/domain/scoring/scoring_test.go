package scoring_test

import (
	"testing"
	"time"

	"github.com/okian/cartaz/internal/domain/model"
	scoring "github.com/okian/cartaz/internal/domain/scoring"
	"github.com/okian/cartaz/internal/domain/signal"
	. "github.com/smartystreets/goconvey/convey"
)

func futureEvent(days int) model.Event {
	return model.Event{
		ID:       "event-1",
		Title:    "Festival de Jazz",
		Category: "musica",
		Tags:     `["musica","jazz"]`,
		City:     "Lisboa",
		Status:   model.StatusPublished,
		StartsAt: time.Now().Add(time.Duration(days) * 24 * time.Hour),
	}
}

func TestScorer_Score(t *testing.T) {
	Convey("Given a scorer with zero jitter", t, func() {
		scorer := scoring.New(scoring.WithJitterMax(0))
		now := time.Now()

		Convey("When every rule matches", func() {
			user := signal.ExtractUser(model.UserProfile{
				ID:        "user-1",
				Interests: `["musica"]`,
				City:      "Lisboa",
			}, []string{"musica"})

			ev := futureEvent(3)
			ev.Featured = true
			features := signal.ExtractEvent(ev, now)

			Convey("Then the score is the sum of all weights", func() {
				c := scorer.Score(user, features)
				So(c.Score, ShouldEqual, 100.0) // 30+20+25+15+10
				So(c.Matched, ShouldResemble, []scoring.Kind{
					scoring.KindInterests,
					scoring.KindHistory,
					scoring.KindLocation,
					scoring.KindFeatured,
					scoring.KindRecency,
				})
			})
		})

		Convey("When nothing matches", func() {
			user := signal.ExtractUser(model.UserProfile{
				ID:        "user-2",
				Interests: `["teatro"]`,
				City:      "Porto",
			}, nil)
			features := signal.ExtractEvent(futureEvent(30), now)

			Convey("Then the score is zero with no matched rules", func() {
				c := scorer.Score(user, features)
				So(c.Score, ShouldEqual, 0.0)
				So(c.Matched, ShouldBeEmpty)
			})
		})

		Convey("When only the interest tags overlap", func() {
			user := signal.ExtractUser(model.UserProfile{
				ID:        "user-3",
				Interests: `["jazz","cinema"]`,
			}, nil)
			features := signal.ExtractEvent(futureEvent(30), now)

			Convey("Then only the interest weight is applied", func() {
				c := scorer.Score(user, features)
				So(c.Score, ShouldEqual, 30.0)
				So(c.Matched, ShouldResemble, []scoring.Kind{scoring.KindInterests})
			})
		})

		Convey("When only the purchase history matches the category", func() {
			user := signal.ExtractUser(model.UserProfile{ID: "user-4"}, []string{"musica"})
			features := signal.ExtractEvent(futureEvent(30), now)

			c := scorer.Score(user, features)
			So(c.Score, ShouldEqual, 20.0)
			So(c.Matched, ShouldResemble, []scoring.Kind{scoring.KindHistory})
		})

		Convey("When matching the location rule", func() {
			features := signal.ExtractEvent(futureEvent(30), now)

			Convey("Then city comparison is case-insensitive", func() {
				user := signal.ExtractUser(model.UserProfile{ID: "user-5", City: "lisboa"}, nil)
				c := scorer.Score(user, features)
				So(c.Score, ShouldEqual, 25.0)
			})

			Convey("And a substring of the event city matches", func() {
				ev := futureEvent(30)
				ev.City = "Lisboa - Parque das Nações"
				user := signal.ExtractUser(model.UserProfile{ID: "user-6", City: "Lisboa"}, nil)
				c := scorer.Score(user, signal.ExtractEvent(ev, now))
				So(c.Score, ShouldEqual, 25.0)
			})

			Convey("And an empty user city never matches", func() {
				user := signal.ExtractUser(model.UserProfile{ID: "user-7", City: ""}, nil)
				c := scorer.Score(user, features)
				So(c.Score, ShouldEqual, 0.0)
			})

			Convey("And an empty event city never matches", func() {
				ev := futureEvent(30)
				ev.City = ""
				user := signal.ExtractUser(model.UserProfile{ID: "user-8", City: "Lisboa"}, nil)
				c := scorer.Score(user, signal.ExtractEvent(ev, now))
				So(c.Score, ShouldEqual, 0.0)
			})
		})

		Convey("When the event starts within the soon window", func() {
			user := signal.ExtractUser(model.UserProfile{ID: "user-9"}, nil)

			Convey("Then an event 7 days out matches", func() {
				c := scorer.Score(user, signal.ExtractEvent(futureEvent(7), now))
				So(c.Score, ShouldEqual, 10.0)
				So(c.Matched, ShouldResemble, []scoring.Kind{scoring.KindRecency})
			})

			Convey("And an event 8 days out does not", func() {
				c := scorer.Score(user, signal.ExtractEvent(futureEvent(8), now))
				So(c.Score, ShouldEqual, 0.0)
			})
		})

		Convey("When the event is featured", func() {
			user := signal.ExtractUser(model.UserProfile{ID: "user-10"}, nil)
			ev := futureEvent(30)
			ev.Featured = true

			c := scorer.Score(user, signal.ExtractEvent(ev, now))
			So(c.Score, ShouldEqual, 15.0)
			So(c.Matched, ShouldResemble, []scoring.Kind{scoring.KindFeatured})
		})
	})

	Convey("Given a scorer with a fixed jitter source", t, func() {
		now := time.Now()
		user := signal.ExtractUser(model.UserProfile{ID: "user-11"}, nil)
		features := signal.ExtractEvent(futureEvent(30), now)

		Convey("When the source yields 0.5", func() {
			scorer := scoring.New(scoring.WithSource(scoring.NewFixedSource(0.5)))

			Convey("Then jitter adds exactly half the jitter bound", func() {
				c := scorer.Score(user, features)
				So(c.Score, ShouldEqual, 5.0)
				So(c.Matched, ShouldBeEmpty)
			})
		})

		Convey("When scoring the same pair twice with the same source values", func() {
			a := scoring.New(scoring.WithSource(scoring.NewFixedSource(0.25)))
			b := scoring.New(scoring.WithSource(scoring.NewFixedSource(0.25)))

			Convey("Then scores are identical", func() {
				So(a.Score(user, features).Score, ShouldEqual, b.Score(user, features).Score)
			})
		})
	})

	Convey("Given a scorer with default jitter", t, func() {
		scorer := scoring.New()
		now := time.Now()
		user := signal.ExtractUser(model.UserProfile{ID: "user-12", Interests: `["jazz"]`, City: "Lisboa"}, []string{"musica"})
		ev := futureEvent(3)
		ev.Featured = true
		features := signal.ExtractEvent(ev, now)

		Convey("When scoring repeatedly", func() {
			Convey("Then every score stays inside the rule bounds", func() {
				for i := 0; i < 100; i++ {
					c := scorer.Score(user, features)
					So(c.Score, ShouldBeGreaterThanOrEqualTo, 100.0)
					So(c.Score, ShouldBeLessThan, scorer.MaxScore())
				}
			})
		})
	})
}

func TestScorer_Options(t *testing.T) {
	Convey("Given a scorer with custom weights", t, func() {
		scorer := scoring.New(
			scoring.WithJitterMax(0),
			scoring.WithWeights(map[scoring.Kind]float64{
				scoring.KindInterests: 50,
				scoring.KindFeatured:  -1, // ignored
			}),
		)
		now := time.Now()

		Convey("When the interest rule fires", func() {
			user := signal.ExtractUser(model.UserProfile{ID: "user-13", Interests: `["jazz"]`}, nil)
			c := scorer.Score(user, signal.ExtractEvent(futureEvent(30), now))

			Convey("Then the overridden weight is applied", func() {
				So(c.Score, ShouldEqual, 50.0)
			})
		})

		Convey("When the featured rule fires", func() {
			ev := futureEvent(30)
			ev.Featured = true
			user := signal.ExtractUser(model.UserProfile{ID: "user-14"}, nil)
			c := scorer.Score(user, signal.ExtractEvent(ev, now))

			Convey("Then the non-positive override is ignored", func() {
				So(c.Score, ShouldEqual, 15.0)
			})
		})
	})

	Convey("Given a scorer with a custom soon window", t, func() {
		scorer := scoring.New(scoring.WithJitterMax(0), scoring.WithSoonWindow(14))
		now := time.Now()
		user := signal.ExtractUser(model.UserProfile{ID: "user-15"}, nil)

		Convey("When the event starts in 10 days", func() {
			c := scorer.Score(user, signal.ExtractEvent(futureEvent(10), now))

			Convey("Then the recency rule fires", func() {
				So(c.Score, ShouldEqual, 10.0)
			})
		})
	})

	Convey("Given default options", t, func() {
		Convey("Then MaxScore is the weight sum plus the jitter bound", func() {
			So(scoring.New().MaxScore(), ShouldEqual, 110.0)
		})

		Convey("And disabling jitter lowers the bound accordingly", func() {
			So(scoring.New(scoring.WithJitterMax(0)).MaxScore(), ShouldEqual, 100.0)
		})
	})
}

func TestKind(t *testing.T) {
	Convey("Given the rule kinds", t, func() {
		Convey("When resolving configuration names", func() {
			for _, name := range []string{"interests", "history", "location", "featured", "recency"} {
				k, ok := scoring.ParseKind(name)
				So(ok, ShouldBeTrue)
				So(k.String(), ShouldEqual, name)
			}
		})

		Convey("When resolving an unknown name", func() {
			_, ok := scoring.ParseKind("popularity")
			So(ok, ShouldBeFalse)
		})

		Convey("When reading reason text", func() {
			So(scoring.KindInterests.Reason(), ShouldEqual, "Corresponde aos teus interesses")
			So(scoring.KindHistory.Reason(), ShouldEqual, "Categoria que já assististe antes")
			So(scoring.KindLocation.Reason(), ShouldEqual, "Perto da tua localização")
			So(scoring.KindFeatured.Reason(), ShouldEqual, "Evento em destaque")
			So(scoring.KindRecency.Reason(), ShouldEqual, "Acontece em breve")
		})
	})
}
