// Package config defines service configuration structures and loading.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath selects the SQLite catalog store when non-empty; otherwise
	// the in-memory store is used.
	DBPath string `koanf:"db_path"`

	// QueueSize bounds the in-memory ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the ingestion idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// DefaultLimit is the recommendation page size when the caller does
	// not pass one.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit caps the limit query parameter.
	MaxLimit int `koanf:"max_limit"`

	// CandidateCap bounds how many upcoming events are scored per request.
	CandidateCap int `koanf:"candidate_cap"`

	// SoonWindowDays is the inclusive window of the coming-soon rule.
	SoonWindowDays int `koanf:"soon_window_days"`

	// JitterMax is the exclusive upper bound of the random score jitter.
	// Zero disables jitter.
	JitterMax float64 `koanf:"jitter_max"`

	// RuleWeights overrides scoring rule weights by rule name
	// (interests, history, location, featured, recency).
	RuleWeights map[string]float64 `koanf:"rule_weights"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		DBPath:         "",
		QueueSize:      10_000,
		WorkerCount:    4,
		DedupeSize:     50_000,
		DefaultLimit:   10,
		MaxLimit:       50,
		CandidateCap:   100,
		SoonWindowDays: 7,
		JitterMax:      10,
		RuleWeights:    map[string]float64{},
	}
}
