// Package ranking orders scored candidates, cuts them to the requested
// page size, and shapes the output records.
package ranking

import (
	"sort"

	"github.com/okian/cartaz/internal/domain/model"
	"github.com/okian/cartaz/internal/domain/scoring"
)

// DefaultLimit is used when the caller does not request a page size.
const DefaultLimit = 10

// classifyPriority orders rule kinds for the basedOn label. This is a
// product decision separate from the scoring weights and must stay
// stable for output compatibility.
var classifyPriority = []scoring.Kind{
	scoring.KindInterests,
	scoring.KindLocation,
	scoring.KindHistory,
	scoring.KindFeatured,
}

// Rank sorts candidates by score descending, truncates to limit, and
// assigns dense 1-based ranks. The sort is stable on insertion order,
// so exact ties keep the earlier candidate first (candidates arrive
// date-ascending). When includeReasons is false the reasons lists are
// left empty but classification is computed the same way.
func Rank(cands []scoring.Candidate, limit int, includeReasons bool) []model.Recommendation {
	if limit < 1 {
		limit = DefaultLimit
	}

	ordered := make([]scoring.Candidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	recs := make([]model.Recommendation, len(ordered))
	for i, c := range ordered {
		rec := model.Recommendation{
			EventID: c.Event.ID,
			Score:   c.Score,
			Reasons: []string{},
			Rank:    i + 1,
			BasedOn: Classify(c.Matched),
			Event:   c.Event,
		}
		if includeReasons {
			rec.Reasons = reasons(c.Matched)
		}
		recs[i] = rec
	}
	return recs
}

// Classify picks the dominant basedOn label from the matched rule
// kinds. Pairs matching none of the prioritized kinds are "mixed".
func Classify(matched []scoring.Kind) model.BasedOn {
	for _, want := range classifyPriority {
		for _, k := range matched {
			if k == want {
				return basedOnFor(want)
			}
		}
	}
	return model.BasedOnMixed
}

func basedOnFor(k scoring.Kind) model.BasedOn {
	switch k {
	case scoring.KindInterests:
		return model.BasedOnInterests
	case scoring.KindLocation:
		return model.BasedOnLocation
	case scoring.KindHistory:
		return model.BasedOnHistory
	case scoring.KindFeatured:
		return model.BasedOnFeatured
	default:
		return model.BasedOnMixed
	}
}

// reasons renders matched kinds to display text, preserving rule
// evaluation order. Recency carries text too; only jitter is silent.
func reasons(matched []scoring.Kind) []string {
	out := make([]string, 0, len(matched))
	for _, k := range matched {
		out = append(out, k.Reason())
	}
	return out
}
