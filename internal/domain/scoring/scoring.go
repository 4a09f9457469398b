// Package scoring applies the fixed recommendation rule set to
// (user, event) pairs. Rules are additive and never subtract, so the
// total before jitter is deterministic for fixed signals; a small
// random jitter diversifies otherwise-equal candidates.
package scoring

import (
	"strings"

	"github.com/okian/cartaz/internal/domain/model"
	"github.com/okian/cartaz/internal/domain/signal"
)

// Default rule weights and windows. Weights are coarse and ordered by
// claimed signal strength; adding a rule does not require renormalizing
// the others.
const (
	defaultInterestsWeight = 30
	defaultHistoryWeight   = 20
	defaultLocationWeight  = 25
	defaultFeaturedWeight  = 15
	defaultRecencyWeight   = 10
	defaultJitterMax       = 10
	defaultSoonWindowDays  = 7
)

// Kind identifies a scoring rule. Classification downstream switches on
// kinds, never on display text, so reason wording can change freely.
type Kind int

// Rule kinds, in evaluation order.
const (
	KindInterests Kind = iota
	KindHistory
	KindLocation
	KindFeatured
	KindRecency
)

// kindNames maps kinds to the names used in configuration.
var kindNames = map[Kind]string{
	KindInterests: "interests",
	KindHistory:   "history",
	KindLocation:  "location",
	KindFeatured:  "featured",
	KindRecency:   "recency",
}

// kindReasons maps kinds to the user-facing reason text.
var kindReasons = map[Kind]string{
	KindInterests: "Corresponde aos teus interesses",
	KindHistory:   "Categoria que já assististe antes",
	KindLocation:  "Perto da tua localização",
	KindFeatured:  "Evento em destaque",
	KindRecency:   "Acontece em breve",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Reason returns the display text attached to the kind.
func (k Kind) Reason() string {
	return kindReasons[k]
}

// ParseKind resolves a configuration name to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Source yields uniform random values in [0, 1). Injecting it keeps the
// jitter testable; production seeds a fresh source per process.
type Source interface {
	Next() float64
}

// Candidate is a scored event awaiting ranking. Matched preserves rule
// evaluation order.
type Candidate struct {
	Event   model.Event
	Score   float64
	Matched []Kind
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides rule weights by kind. Non-positive weights are
// ignored so a partial map only touches the kinds it names.
func WithWeights(weights map[Kind]float64) Option {
	return func(s *Scorer) {
		for k, w := range weights {
			if w > 0 {
				s.weights[k] = w
			}
		}
	}
}

// WithJitterMax sets the exclusive upper bound of the random jitter.
// Zero disables jitter entirely.
func WithJitterMax(max float64) Option {
	return func(s *Scorer) {
		if max >= 0 {
			s.jitterMax = max
		}
	}
}

// WithSoonWindow sets the recency-rule window in days (inclusive).
func WithSoonWindow(days int) Option {
	return func(s *Scorer) {
		if days > 0 {
			s.soonDays = days
		}
	}
}

// WithSource sets the random source used for jitter.
func WithSource(src Source) Option {
	return func(s *Scorer) {
		if src != nil {
			s.rng = src
		}
	}
}

// Scorer evaluates the rule set. It is stateless apart from the random
// source and safe to reuse across requests when the source is.
type Scorer struct {
	weights   map[Kind]float64
	jitterMax float64
	soonDays  int
	rng       Source
}

// New creates a Scorer with default weights and options applied.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		weights: map[Kind]float64{
			KindInterests: defaultInterestsWeight,
			KindHistory:   defaultHistoryWeight,
			KindLocation:  defaultLocationWeight,
			KindFeatured:  defaultFeaturedWeight,
			KindRecency:   defaultRecencyWeight,
		},
		jitterMax: defaultJitterMax,
		soonDays:  defaultSoonWindowDays,
		rng:       NewSeededSource(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates all rules for one (user, event) pair. No rule can
// fail: inputs arrive normalized from the signal extractor, and a pair
// matching nothing still yields a valid jitter-only score.
func (s *Scorer) Score(user signal.UserSignals, ev signal.EventFeatures) Candidate {
	c := Candidate{Event: ev.Event}

	if intersects(ev.Tags, user.Interests) {
		s.match(&c, KindInterests)
	}
	if _, ok := user.PastCategories[ev.Event.Category]; ok {
		s.match(&c, KindHistory)
	}
	if user.City != "" && ev.Event.City != "" &&
		strings.Contains(strings.ToLower(ev.Event.City), strings.ToLower(user.City)) {
		s.match(&c, KindLocation)
	}
	if ev.Event.Featured {
		s.match(&c, KindFeatured)
	}
	if ev.DaysUntil <= s.soonDays {
		s.match(&c, KindRecency)
	}

	if s.jitterMax > 0 {
		c.Score += s.rng.Next() * s.jitterMax
	}
	return c
}

// MaxScore returns the exclusive upper bound of any score this scorer
// can produce.
func (s *Scorer) MaxScore() float64 {
	total := s.jitterMax
	for _, w := range s.weights {
		total += w
	}
	return total
}

func (s *Scorer) match(c *Candidate, k Kind) {
	c.Score += s.weights[k]
	c.Matched = append(c.Matched, k)
}

func intersects(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
