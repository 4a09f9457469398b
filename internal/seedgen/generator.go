package seedgen

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/cartaz/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Constants shaping the generated catalog.
const (
	minInterests      = 1
	maxInterests      = 3
	minTags           = 1
	maxTags           = 3
	featuredOneIn     = 5  // roughly 20% of events are featured
	draftOneIn        = 10 // roughly 10% of events stay unpublished
	soonOneIn         = 3  // roughly a third of events start within a week
	soonHorizonHours  = 6 * 24
	farHorizonDays    = 60
	maxTicketQuantity = 4
)

// Category and city pools for the synthetic catalog. Cities and
// categories are reused across users and events so the location and
// interest rules actually fire.
var (
	categories = []string{"musica", "teatro", "desporto", "comedia", "gastronomia", "tecnologia", "cinema", "arte"}

	cities = []string{"Lisboa", "Porto", "Braga", "Coimbra", "Faro", "Aveiro"}

	tagsByCategory = map[string][]string{
		"musica":      {"concerto", "festival", "jazz", "rock", "fado"},
		"teatro":      {"drama", "musical", "palco", "classico"},
		"desporto":    {"futebol", "corrida", "surf", "ciclismo"},
		"comedia":     {"standup", "improviso", "humor"},
		"gastronomia": {"vinho", "degustacao", "mercado", "petiscos"},
		"tecnologia":  {"startup", "programacao", "ia", "workshop"},
		"cinema":      {"estreia", "documentario", "curtas"},
		"arte":        {"exposicao", "fotografia", "pintura", "escultura"},
	}

	firstNames = []string{"Ana", "Bruno", "Carla", "Diogo", "Eva", "Filipe", "Ines", "Joao", "Luisa", "Miguel", "Nuno", "Rita", "Sofia", "Tiago", "Vera"}
)

// randomInt returns a uniform random int in [0, n) using crypto/rand.
func randomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// randomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func pick(pool []string) string {
	return pool[randomInt(len(pool))]
}

// pickSeveral returns between min and max distinct entries from the pool.
func pickSeveral(pool []string, min, max int) []string {
	count := min + randomInt(max-min+1)
	if count > len(pool) {
		count = len(pool)
	}
	chosen := make([]string, 0, count)
	used := make(map[int]struct{}, count)
	for len(chosen) < count {
		idx := randomInt(len(pool))
		if _, ok := used[idx]; ok {
			continue
		}
		used[idx] = struct{}{}
		chosen = append(chosen, pool[idx])
	}
	return chosen
}

// generateCatalog creates users, events and tickets with distributions
// that exercise every scoring rule: shared category tags, shared
// cities, featured events, events starting soon and purchase history.
func generateCatalog(ctx context.Context, config *Config, stats *Stats) (*Catalog, error) {
	logger.Get().Info(ctx, "generating catalog",
		logger.Int("users", config.NumUsers),
		logger.Int("events", config.NumEvents),
		logger.Int("tickets", config.NumTickets))

	now := time.Now().UTC()

	users := make([]userPayload, config.NumUsers)
	for i := range users {
		users[i] = generateUser(i, now)
	}

	events := make([]eventPayload, config.NumEvents)
	for i := range events {
		events[i] = generateEvent(i, now)
	}

	// Tickets link random users to random events. BoughtAt is always in
	// the past so purchase history reads as settled.
	tickets := make([]ticketPayload, 0, config.NumTickets)
	if config.NumUsers > 0 && config.NumEvents > 0 {
		for i := 0; i < config.NumTickets; i++ {
			user := users[randomInt(len(users))]
			event := events[randomInt(len(events))]
			bought := now.Add(-time.Duration(1+randomInt(90*24)) * time.Hour)
			tickets = append(tickets, ticketPayload{
				ID:       uuid.New().String(),
				UserID:   user.ID,
				EventID:  event.ID,
				Quantity: 1 + randomInt(maxTicketQuantity),
				BoughtAt: bought.Format(time.RFC3339),
			})
		}
	}

	stats.UsersGenerated = len(users)
	stats.EventsGenerated = len(events)
	stats.TicketsGenerated = len(tickets)

	logger.Get().Info(ctx, "catalog generated",
		logger.Int("users", len(users)),
		logger.Int("events", len(events)),
		logger.Int("tickets", len(tickets)))

	return &Catalog{Users: users, Events: events, Tickets: tickets}, nil
}

func generateUser(index int, now time.Time) userPayload {
	name := pick(firstNames) + " " + strconv.Itoa(index)
	created := now.Add(-time.Duration(randomInt(365*24)) * time.Hour)
	return userPayload{
		ID:        uuid.New().String(),
		Name:      name,
		Interests: pickSeveral(categories, minInterests, maxInterests),
		City:      pick(cities),
		CreatedAt: created.Format(time.RFC3339),
	}
}

func generateEvent(index int, now time.Time) eventPayload {
	category := pick(categories)

	// Mix of events starting within the week and further out so the
	// recency rule fires on a predictable share of the catalog.
	var startsAt time.Time
	if randomInt(soonOneIn) == 0 {
		startsAt = now.Add(time.Duration(1+randomInt(soonHorizonHours)) * time.Hour)
	} else {
		startsAt = now.Add(time.Duration(8+randomInt(farHorizonDays-8)) * 24 * time.Hour)
	}

	status := "published"
	if randomInt(draftOneIn) == 0 {
		status = "draft"
	}

	return eventPayload{
		ID:       uuid.New().String(),
		Title:    category + " " + strconv.Itoa(index),
		Category: category,
		Tags:     append(pickSeveral(tagsByCategory[category], minTags, maxTags), category),
		City:     pick(cities),
		Featured: randomInt(featuredOneIn) == 0,
		Status:   status,
		StartsAt: startsAt.Format(time.RFC3339),
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
