package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/cartaz/internal/domain/model"
)

// MemoryStore implements Store with in-process maps. It is the default
// backend when no database path is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]model.UserProfile
	events  map[string]model.Event
	tickets map[string]model.Ticket
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]model.UserProfile),
		events:  make(map[string]model.Event),
		tickets: make(map[string]model.Ticket),
	}
}

// UpsertUser inserts or replaces a user profile.
func (s *MemoryStore) UpsertUser(_ context.Context, u model.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

// UpsertEvent inserts or replaces an event.
func (s *MemoryStore) UpsertEvent(_ context.Context, e model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[e.ID] = e
	return nil
}

// UpsertTicket inserts or replaces a ticket.
func (s *MemoryStore) UpsertTicket(_ context.Context, t model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.ID] = t
	return nil
}

// GetUser returns the profile for id, or ErrNotFound.
func (s *MemoryStore) GetUser(_ context.Context, id string) (model.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.UserProfile{}, ErrNotFound
	}
	return u, nil
}

// PurchasedCategories joins the user's tickets to event categories and
// deduplicates. Tickets referencing unknown events are skipped.
func (s *MemoryStore) PurchasedCategories(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var cats []string
	for _, t := range s.tickets {
		if t.UserID != userID {
			continue
		}
		ev, ok := s.events[t.EventID]
		if !ok || ev.Category == "" {
			continue
		}
		if _, dup := seen[ev.Category]; dup {
			continue
		}
		seen[ev.Category] = struct{}{}
		cats = append(cats, ev.Category)
	}
	return cats, nil
}

// UpcomingPublishedEvents returns published future events ordered by
// start date ascending, capped at max.
func (s *MemoryStore) UpcomingPublishedEvents(_ context.Context, now time.Time, max int) ([]model.Event, error) {
	if max < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	var upcoming []model.Event
	for _, e := range s.events {
		if e.Status == model.StatusPublished && !e.StartsAt.Before(now) {
			upcoming = append(upcoming, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].StartsAt.Equal(upcoming[j].StartsAt) {
			return upcoming[i].ID < upcoming[j].ID
		}
		return upcoming[i].StartsAt.Before(upcoming[j].StartsAt)
	})
	if len(upcoming) > max {
		upcoming = upcoming[:max]
	}
	return upcoming, nil
}

// Counts reports catalog sizes.
func (s *MemoryStore) Counts(_ context.Context) (Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		Users:   len(s.users),
		Events:  len(s.events),
		Tickets: len(s.tickets),
	}, nil
}
