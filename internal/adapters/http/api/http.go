// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/cartaz/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// SeenAndRecord atomically checks and records a record ID for
	// ingestion idempotency; Unrecord rolls back on enqueue failure.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)

	// Enqueue pushes a catalog record for async ingestion. Returns
	// false on backpressure.
	Enqueue(ctx context.Context, r model.Record) bool

	// Recommend runs the recommendation pipeline for one user.
	Recommend(ctx context.Context, userID string, limit int, includeReasons bool) ([]model.Recommendation, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	catalogHandler   *CatalogHandler
	recommendHandler *RecommendHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		catalogHandler:   NewCatalogHandler(deps),
		recommendHandler: NewRecommendHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/catalog/users", MetricsMiddleware(s.catalogHandler.HandlePostUser, "catalog_users"))
	mux.HandleFunc("/catalog/events", MetricsMiddleware(s.catalogHandler.HandlePostEvent, "catalog_events"))
	mux.HandleFunc("/catalog/tickets", MetricsMiddleware(s.catalogHandler.HandlePostTicket, "catalog_tickets"))
	mux.HandleFunc("/recommendations/", MetricsMiddleware(s.recommendHandler.HandleGetRecommendations, "recommendations"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// recommendationsResponse mirrors the legacy API envelope.
type recommendationsResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
