// Package repository defines the catalog store interface and its
// implementations. The store is the engine's only collaborator: it
// serves profile lookups, purchase-history categories, and the
// upcoming-published-events candidate query.
package repository

import (
	"context"
	"time"

	"github.com/okian/cartaz/internal/domain/model"
)

// Counts summarizes catalog size for the stats endpoint.
type Counts struct {
	Users   int `json:"users"`
	Events  int `json:"events"`
	Tickets int `json:"tickets"`
}

// Store provides read/write access to the catalog.
type Store interface {
	// UpsertUser inserts or replaces a user profile.
	UpsertUser(ctx context.Context, u model.UserProfile) error
	// UpsertEvent inserts or replaces an event.
	UpsertEvent(ctx context.Context, e model.Event) error
	// UpsertTicket inserts or replaces a ticket.
	UpsertTicket(ctx context.Context, t model.Ticket) error

	// GetUser returns the profile for id.
	// Returns ErrNotFound if the user is unknown.
	GetUser(ctx context.Context, id string) (model.UserProfile, error)

	// PurchasedCategories returns the distinct categories of events the
	// user holds tickets for. A user with no tickets gets an empty slice.
	PurchasedCategories(ctx context.Context, userID string) ([]string, error)

	// UpcomingPublishedEvents returns at most max published events
	// starting at or after now, ordered by start date ascending.
	UpcomingPublishedEvents(ctx context.Context, now time.Time, max int) ([]model.Event, error)

	// Counts reports catalog sizes.
	Counts(ctx context.Context) (Counts, error)
}
