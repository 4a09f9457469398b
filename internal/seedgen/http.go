package seedgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/cartaz/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitRecords submits one record type concurrently using a worker pool.
// Each element of bodies is posted to url as its own request.
func submitRecords(ctx context.Context, config *Config, client *HTTPClient, url, label string, bodies []interface{}, stats *Stats) error {
	logger.Get().Info(ctx, "submitting records",
		logger.String("type", label),
		logger.Int("count", len(bodies)),
		logger.Int("workers", config.Workers))

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	workerCount := minInt(config.Workers, len(bodies))
	if workerCount < 1 {
		workerCount = 1
	}

	bodyChan := make(chan interface{}, workerCount*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for body := range bodyChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleRecord(ctx, client, url, body)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(bodyChan)
		for _, body := range bodies {
			select {
			case <-ctx.Done():
				return
			case bodyChan <- body:
			}
		}
	}()

	wg.Wait()

	stats.RecordsSubmitted += int(atomic.LoadInt64(&submitted))
	stats.RecordsSuccessful += int(atomic.LoadInt64(&successful))
	stats.RecordsDuplicate += int(atomic.LoadInt64(&duplicate))
	stats.RecordsFailed += int(atomic.LoadInt64(&failed))

	logger.Get().Info(ctx, "submission completed",
		logger.String("type", label),
		logger.Int("successful", int(atomic.LoadInt64(&successful))),
		logger.Int("duplicate", int(atomic.LoadInt64(&duplicate))),
		logger.Int("failed", int(atomic.LoadInt64(&failed))))

	if fail := atomic.LoadInt64(&failed); fail > 0 && fail == int64(len(bodies)) {
		return fmt.Errorf("all %s submissions failed", label)
	}
	return nil
}

// submitSingleRecord submits a single record and classifies the outcome.
func submitSingleRecord(ctx context.Context, client *HTTPClient, url string, body interface{}) string {
	resp, err := client.Post(ctx, url, body)
	if err != nil {
		return "failed"
	}

	respBody, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return "success"
	case StatusOK:
		var ack ackResponse
		if err := json.Unmarshal(respBody, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}
