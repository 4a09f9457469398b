package seedgen

import (
	"context"
	"fmt"

	"github.com/okian/cartaz/internal/domain/scoring"
	"github.com/okian/cartaz/pkg/logger"
)

var knownLabels = map[string]struct{}{
	"interests": {},
	"location":  {},
	"history":   {},
	"featured":  {},
	"mixed":     {},
}

// verifyPages checks every retrieved page against the ranking
// guarantees: scores non-increasing, ranks dense from 1, page size
// within the requested limit and scores inside the rule bounds.
func verifyPages(ctx context.Context, config *Config, pages []page) error {
	logger.Get().Info(ctx, "verifying recommendation pages", logger.Int("pages", len(pages)))

	if len(pages) == 0 {
		return fmt.Errorf("no pages to verify")
	}

	maxScore := scoring.New().MaxScore()
	var violations int

	for _, p := range pages {
		if err := verifySinglePage(p, config.Limit, maxScore); err != nil {
			violations++
			logger.Get().Warn(ctx, "page verification failed",
				logger.String("user_id", p.UserID),
				logger.Error(err))
		}
	}

	if violations > 0 {
		return fmt.Errorf("%d of %d pages violated ranking guarantees", violations, len(pages))
	}

	logger.Get().Info(ctx, "all pages verified", logger.Int("pages", len(pages)))
	return nil
}

func verifySinglePage(p page, limit int, maxScore float64) error {
	if limit > 0 && len(p.Entries) > limit {
		return fmt.Errorf("page has %d entries, limit was %d", len(p.Entries), limit)
	}

	for i, entry := range p.Entries {
		if entry.Rank != i+1 {
			return fmt.Errorf("entry %d has rank %d, expected %d", i, entry.Rank, i+1)
		}
		if entry.Score < 0 || entry.Score >= maxScore {
			return fmt.Errorf("entry %d score %.3f outside [0, %.0f)", i, entry.Score, maxScore)
		}
		if i > 0 && entry.Score > p.Entries[i-1].Score {
			return fmt.Errorf("entry %d score %.3f exceeds previous %.3f", i, entry.Score, p.Entries[i-1].Score)
		}
		if _, ok := knownLabels[entry.BasedOn]; !ok {
			return fmt.Errorf("entry %d has unknown based_on %q", i, entry.BasedOn)
		}
	}
	return nil
}
