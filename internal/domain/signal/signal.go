// Package signal derives the normalized inputs the scorer consumes from
// raw catalog records. Extraction is failure-tolerant: malformed or
// missing fields degrade to empty containers, never to an error, so a
// user with no history or interests still gets recommendations from the
// remaining signals.
package signal

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/okian/cartaz/internal/domain/model"
)

// UserSignals is the per-user signal set. All fields are defaulted
// during construction; the scorer never needs nil checks.
type UserSignals struct {
	Interests      map[string]struct{}
	PastCategories map[string]struct{}
	City           string
}

// EventFeatures is the per-event feature set, carrying the full record
// so it can be echoed into the output untouched.
type EventFeatures struct {
	Event     model.Event
	Tags      map[string]struct{}
	DaysUntil int
}

// ParseTags parses a raw tag field (a JSON array of strings) into a
// set. Any parse failure, or an empty field, yields an empty set.
func ParseTags(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return set
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return set
	}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// ExtractUser builds UserSignals from a profile and the categories of
// the user's past purchases. pastCategories may be nil or contain
// duplicates and empty strings; both are normalized away.
func ExtractUser(u model.UserProfile, pastCategories []string) UserSignals {
	s := UserSignals{
		Interests:      ParseTags(u.Interests),
		PastCategories: make(map[string]struct{}),
		City:           u.City,
	}
	for _, c := range pastCategories {
		if c != "" {
			s.PastCategories[c] = struct{}{}
		}
	}
	return s
}

// ExtractEvent builds EventFeatures for a candidate relative to now.
// Candidates are expected to already be future-dated; DaysUntil is the
// whole number of days until the event starts.
func ExtractEvent(e model.Event, now time.Time) EventFeatures {
	return EventFeatures{
		Event:     e,
		Tags:      ParseTags(e.Tags),
		DaysUntil: int(e.StartsAt.Sub(now).Hours() / 24),
	}
}
