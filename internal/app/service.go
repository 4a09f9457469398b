// Package app provides the core business service that implements
// the dependencies required by the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/cartaz/internal/adapters/mq/queue"
	"github.com/okian/cartaz/internal/adapters/mq/worker"
	"github.com/okian/cartaz/internal/adapters/repository"
	"github.com/okian/cartaz/internal/domain/dedupe"
	"github.com/okian/cartaz/internal/domain/model"
	"github.com/okian/cartaz/internal/domain/ranking"
	"github.com/okian/cartaz/internal/domain/scoring"
	"github.com/okian/cartaz/internal/domain/signal"
	"github.com/okian/cartaz/pkg/logger"
	"github.com/okian/cartaz/pkg/metrics"
)

// Service wires the catalog store, the ingestion pipeline, and the
// recommendation engine behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	records queue.Queue
	scorer  *scoring.Scorer
	pool    *worker.Pool

	// Configuration
	dbPath       string
	workerCount  int
	queueSize    int
	dedupeSize   int
	defaultLimit int
	candidateCap int
	soonDays     int
	jitterMax    float64
	ruleWeights  map[string]float64
	randSource   scoring.Source
	now          func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the catalog store, overriding DBPath selection.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDBPath selects the SQLite store at the given path. Empty keeps
// the in-memory store.
func WithDBPath(path string) Option {
	return func(s *Service) {
		s.dbPath = path
	}
}

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDefaultLimit sets the page size used when the caller passes none.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

// WithCandidateCap bounds how many upcoming events are scored per request.
func WithCandidateCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.candidateCap = n
		}
	}
}

// WithSoonWindow sets the coming-soon rule window in days.
func WithSoonWindow(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.soonDays = days
		}
	}
}

// WithJitterMax sets the exclusive upper bound of the score jitter.
func WithJitterMax(max float64) Option {
	return func(s *Service) {
		if max >= 0 {
			s.jitterMax = max
		}
	}
}

// WithRuleWeights overrides scoring weights by rule name. Unknown names
// are ignored.
func WithRuleWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.ruleWeights = weights
	}
}

// WithRandSource sets the scorer's random source. Tests pass a fixed
// sequence for exact ordering assertions.
func WithRandSource(src scoring.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.randSource = src
		}
	}
}

// WithNowFunc sets the clock used for candidate filtering and recency.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  4,
		queueSize:    10_000,
		dedupeSize:   50_000,
		defaultLimit: ranking.DefaultLimit,
		candidateCap: 100,
		soonDays:     7,
		jitterMax:    10,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommendation service...")

	if s.store == nil {
		if s.dbPath != "" {
			store, err := repository.NewSQLiteStore(s.dbPath)
			if err != nil {
				return fmt.Errorf("opening catalog store: %w", err)
			}
			s.store = store
			s.logger.Info(ctx, "using sqlite catalog store", logger.String("path", s.dbPath))
		} else {
			s.store = repository.NewMemoryStore()
			s.logger.Info(ctx, "using in-memory catalog store")
		}
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.records = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
	)

	scorerOpts := []scoring.Option{
		scoring.WithJitterMax(s.jitterMax),
		scoring.WithSoonWindow(s.soonDays),
	}
	if len(s.ruleWeights) > 0 {
		scorerOpts = append(scorerOpts, scoring.WithWeights(parseWeights(s.ruleWeights)))
	}
	if s.randSource != nil {
		scorerOpts = append(scorerOpts, scoring.WithSource(s.randSource))
	}
	s.scorer = scoring.New(scorerOpts...)

	s.pool = worker.NewPool(s.workerCount, s.records, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("candidateCap", s.candidateCap),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping recommendation service...")

	if q, ok := s.records.(*queue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "recommendation service stopped")
}

// SeenAndRecord atomically checks if a record id was seen and records
// it if not. Returns true if the record was already ingested.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordIngestDuplicate()
	}
	return seen
}

// Unrecord removes a record ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a catalog record for asynchronous ingestion.
// Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, r model.Record) bool {
	ok := s.records.Enqueue(ctx, r)
	if !ok {
		s.logger.Warn(ctx, "ingestion backpressure",
			logger.String("recordID", r.ID()),
			logger.String("kind", string(r.Kind)),
		)
	}
	return ok
}

// Recommend runs the extract/score/rank pipeline for one user.
// An unknown user or an empty candidate list yields an empty slice,
// not an error.
func (s *Service) Recommend(ctx context.Context, userID string, limit int, includeReasons bool) ([]model.Recommendation, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRecommendationLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordRecommendationServed()

	if limit < 1 {
		limit = s.defaultLimit
	}

	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.RecordRecommendationEmpty()
		return []model.Recommendation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	pastCategories, err := s.store.PurchasedCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading purchase history: %w", err)
	}

	now := s.now()
	candidates, err := s.store.UpcomingPublishedEvents(ctx, now, s.candidateCap)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	if len(candidates) == 0 {
		metrics.RecordRecommendationEmpty()
		return []model.Recommendation{}, nil
	}

	sig := signal.ExtractUser(user, pastCategories)
	scored := make([]scoring.Candidate, len(candidates))
	for i, ev := range candidates {
		scored[i] = s.scorer.Score(sig, signal.ExtractEvent(ev, now))
	}
	metrics.RecordCandidatesScored(len(scored))

	recs := ranking.Rank(scored, limit, includeReasons)
	for _, r := range recs {
		metrics.RecordRecommendationLabel(string(r.BasedOn))
	}
	return recs, nil
}

// RecommendAI mirrors the legacy "ai" variant: same pipeline with
// reasons always included.
func (s *Service) RecommendAI(ctx context.Context, userID string, limit int) ([]model.Recommendation, error) {
	return s.Recommend(ctx, userID, limit, true)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"defaultLimit": s.defaultLimit,
		"candidateCap": s.candidateCap,
	}

	if s.started {
		ctx := context.Background()
		stats["queueLength"] = s.records.Len(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		if counts, err := s.store.Counts(ctx); err == nil {
			stats["users"] = counts.Users
			stats["events"] = counts.Events
			stats["tickets"] = counts.Tickets
			metrics.UpdateCatalogCounts(counts.Users, counts.Events, counts.Tickets)
		}
		metrics.UpdateQueueSize(s.records.Len(ctx))
	}
	return stats
}

// parseWeights maps rule names from configuration to scoring kinds.
func parseWeights(byName map[string]float64) map[scoring.Kind]float64 {
	weights := make(map[scoring.Kind]float64, len(byName))
	for name, w := range byName {
		if k, ok := scoring.ParseKind(name); ok {
			weights[k] = w
		}
	}
	return weights
}
