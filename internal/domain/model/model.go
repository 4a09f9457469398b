// Package model contains domain models passed between layers.
package model

import "time"

// Event status values stored in the catalog.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
	StatusCancelled = "cancelled"
)

// UserProfile is a read-only snapshot of a platform user.
// Interests holds the raw tag field as stored (a JSON array of strings);
// parsing is the signal extractor's job and is failure-tolerant.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Interests string    `json:"interests"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a catalog event. Tags holds the raw tag field as stored,
// same format and parsing rules as UserProfile.Interests.
type Event struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Tags     string    `json:"tags"`
	City     string    `json:"city"`
	Featured bool      `json:"featured"`
	Status   string    `json:"status"`
	StartsAt time.Time `json:"starts_at"`
}

// Ticket records a purchase linking a user to an event.
type Ticket struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	EventID  string    `json:"event_id"`
	Quantity int       `json:"quantity"`
	BoughtAt time.Time `json:"bought_at"`
}

// BasedOn labels the dominant reason a recommendation was produced.
type BasedOn string

// BasedOn values, in classification priority order.
const (
	BasedOnInterests BasedOn = "interests"
	BasedOnLocation  BasedOn = "location"
	BasedOnHistory   BasedOn = "history"
	BasedOnFeatured  BasedOn = "featured"
	BasedOnMixed     BasedOn = "mixed"
)

// Recommendation is one entry of the ranked output page.
// Rank is 1-based and dense within a page. Event echoes the full
// catalog record the recommendation refers to.
type Recommendation struct {
	EventID string   `json:"event_id"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
	Rank    int      `json:"rank"`
	BasedOn BasedOn  `json:"based_on"`
	Event   Event    `json:"event"`
}
