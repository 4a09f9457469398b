package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/cartaz/internal/seedgen"
)

// Default configuration constants.
const (
	defaultNumUsers    = 500
	defaultNumEvents   = 2000
	defaultNumTickets  = 1500
	defaultSampleSize  = 50
	defaultLimit       = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultSeedTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numUsers   = flag.Int("users", defaultNumUsers, "Number of users to generate and submit")
		numEvents  = flag.Int("events", defaultNumEvents, "Number of events to generate and submit")
		numTickets = flag.Int("tickets", defaultNumTickets, "Number of tickets to generate and submit")
		sampleSize = flag.Int("sample", defaultSampleSize, "Number of users to fetch recommendations for")
		limit      = flag.Int("limit", defaultLimit, "Page size per recommendation fetch")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile = flag.String("output", "", "Output file for the generated catalog (default: generated_catalog_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for seed output (default: seed_log_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedgen.ShowHelp()
		return
	}

	if err := seedgen.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	config := &seedgen.Config{
		BaseURL:    *baseURL,
		NumUsers:   *numUsers,
		NumEvents:  *numEvents,
		NumTickets: *numTickets,
		SampleSize: *sampleSize,
		Limit:      *limit,
		Workers:    *workers,
		Timeout:    *timeout,
		OutputFile: *outputFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := seedgen.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed failed: " + err.Error() + "\n")
		return
	}
}
