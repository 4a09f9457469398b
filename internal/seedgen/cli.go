package seedgen

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/cartaz/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the catalog seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Cartaz Catalog Seed Tool
========================

A concurrent tool for seeding the Cartaz catalog and checking the
recommendation ranking guarantees end to end.

Usage:
  go run cmd/seed/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -users int
        Number of users to generate and submit (default 500)
  -events int
        Number of events to generate and submit (default 2000)
  -tickets int
        Number of tickets to generate and submit (default 1500)
  -sample int
        Number of users to fetch recommendations for (default 50)
  -limit int
        Page size per recommendation fetch (default 10)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -output string
        Output file for the generated catalog (default: generated_catalog_TIMESTAMP.json)
  -log string
        Log file for seed output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed/main.go

  # Seed a larger catalog
  go run cmd/seed/main.go -users 5000 -events 20000 -tickets 15000

  # Verify a bigger sample with verbose output
  go run cmd/seed/main.go -verbose -sample 200
`)
}
