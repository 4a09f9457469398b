package seedgen

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/cartaz/pkg/logger"
)

// fetchRecommendations retrieves a recommendations page for a sample of
// the seeded users, concurrently.
func fetchRecommendations(ctx context.Context, config *Config, client *HTTPClient, users []userPayload, stats *Stats) ([]page, error) {
	sample := minInt(config.SampleSize, len(users))
	if sample < 1 {
		return nil, fmt.Errorf("no users to sample")
	}

	logger.Get().Info(ctx, "fetching recommendations",
		logger.Int("sample", sample),
		logger.Int("limit", config.Limit),
		logger.Int("workers", config.Workers))

	pages := make([]page, sample)
	var (
		retrieved int64
		failed    int64
	)

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					userID := users[index].ID
					entries, err := fetchSinglePage(ctx, client, config.BaseURL, userID, config.Limit)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							logger.Get().Warn(ctx, "failed to fetch recommendations",
								logger.String("user_id", userID),
								logger.Error(err))
						}
						continue
					}
					pages[index] = page{UserID: userID, Entries: entries}
					atomic.AddInt64(&retrieved, 1)
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := 0; i < sample; i++ {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Filter out failed fetches.
	valid := make([]page, 0, len(pages))
	for _, p := range pages {
		if p.UserID != "" {
			valid = append(valid, p)
			stats.RecommendationsSum += len(p.Entries)
		}
	}
	stats.PagesRetrieved = len(valid)

	logger.Get().Info(ctx, "recommendation retrieval completed",
		logger.Int("retrieved", len(valid)),
		logger.Int("failed", int(atomic.LoadInt64(&failed))))

	return valid, nil
}

// fetchSinglePage retrieves the recommendations page for one user.
func fetchSinglePage(ctx context.Context, client *HTTPClient, baseURL, userID string, limit int) ([]recommendation, error) {
	url := fmt.Sprintf("%s/recommendations/%s?limit=%d", baseURL, userID, limit)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var page recommendationsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return page.Recommendations, nil
}
