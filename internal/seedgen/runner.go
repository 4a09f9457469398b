package seedgen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/cartaz/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete seed and verification pass.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting catalog seed",
		logger.String("baseURL", config.BaseURL),
		logger.Int("users", config.NumUsers),
		logger.Int("events", config.NumEvents),
		logger.Int("tickets", config.NumTickets),
		logger.Int("sample", config.SampleSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()))

	client := newHTTPClient(config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the catalog
	catalog, err := generateCatalog(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("catalog generation failed: %w", err)
	}

	// Step 3: Submit users, events and tickets. Tickets go last so the
	// referenced rows are already queued.
	if err := submitRecords(ctx, config, client, config.BaseURL+"/catalog/users", "users", asBodies(catalog.Users), stats); err != nil {
		return fmt.Errorf("user submission failed: %w", err)
	}
	if err := submitRecords(ctx, config, client, config.BaseURL+"/catalog/events", "events", asBodies(catalog.Events), stats); err != nil {
		return fmt.Errorf("event submission failed: %w", err)
	}
	if err := submitRecords(ctx, config, client, config.BaseURL+"/catalog/tickets", "tickets", asBodies(catalog.Tickets), stats); err != nil {
		return fmt.Errorf("ticket submission failed: %w", err)
	}

	// Step 4: Wait for the ingestion workers to drain the queue
	logger.Get().Info(ctx, "waiting for records to be applied")
	time.Sleep(IngestSettleDelay)

	// Step 5: Fetch recommendation pages for a sample of users
	pages, err := fetchRecommendations(ctx, config, client, catalog.Users, stats)
	if err != nil {
		return fmt.Errorf("recommendation retrieval failed: %w", err)
	}

	// Step 6: Verify ranking guarantees
	if err := verifyPages(ctx, config, pages); err != nil {
		return fmt.Errorf("page verification failed: %w", err)
	}

	// Step 7: Save the catalog to file
	if err := saveCatalogToFile(ctx, config, catalog); err != nil {
		logger.Get().Warn(ctx, "failed to save catalog to file", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed completed successfully")
	return nil
}

// asBodies erases the payload slice type for the submit worker pool.
func asBodies[T any](items []T) []interface{} {
	bodies := make([]interface{}, len(items))
	for i := range items {
		bodies[i] = items[i]
	}
	return bodies
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveCatalogToFile saves the generated catalog to a JSON file.
func saveCatalogToFile(ctx context.Context, config *Config, catalog *Catalog) error {
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "generated_catalog_" + timestamp + ".json"
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalog); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	logger.Get().Info(ctx, "catalog saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final seed statistics.
func displayFinalStats(stats *Stats) {
	var successRate, recordsPerSecond float64

	if stats.RecordsSubmitted > 0 {
		successRate = float64(stats.RecordsSuccessful) / float64(stats.RecordsSubmitted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		recordsPerSecond = float64(stats.RecordsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("usersGenerated", stats.UsersGenerated),
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("ticketsGenerated", stats.TicketsGenerated),
		logger.Int("recordsSubmitted", stats.RecordsSubmitted),
		logger.Int("recordsSuccessful", stats.RecordsSuccessful),
		logger.Int("recordsDuplicate", stats.RecordsDuplicate),
		logger.Int("recordsFailed", stats.RecordsFailed),
		logger.Int("pagesRetrieved", stats.PagesRetrieved),
		logger.Int("recommendationsSum", stats.RecommendationsSum),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("recordsPerSecond", recordsPerSecond))
}
