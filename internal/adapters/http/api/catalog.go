// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/cartaz/internal/domain/model"
)

// CatalogHandler handles catalog ingestion requests.
type CatalogHandler struct {
	deps Dependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps Dependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// userRequest mirrors the ingestion schema for POST /catalog/users.
// Interests is a JSON array of tag strings.
type userRequest struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Interests []string `json:"interests"`
	City      string   `json:"city"`
	CreatedAt string   `json:"created_at"`
}

func (u userRequest) validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("missing id")
	}
	if u.CreatedAt != "" {
		if _, err := time.Parse(time.RFC3339, u.CreatedAt); err != nil {
			return errors.New("invalid created_at; must be RFC3339")
		}
	}
	return nil
}

func (u userRequest) toRecord() model.Record {
	createdAt, _ := time.Parse(time.RFC3339, u.CreatedAt)
	return model.Record{
		Kind: model.RecordUser,
		User: model.UserProfile{
			ID:        u.ID,
			Name:      u.Name,
			Interests: encodeTags(u.Interests),
			City:      u.City,
			CreatedAt: createdAt,
		},
	}
}

// eventRequest mirrors the ingestion schema for POST /catalog/events.
type eventRequest struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	City     string   `json:"city"`
	Featured bool     `json:"featured"`
	Status   string   `json:"status"`
	StartsAt string   `json:"starts_at"`
}

func (e eventRequest) validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(e.Status) == "":
		return errors.New("missing status")
	case strings.TrimSpace(e.StartsAt) == "":
		return errors.New("missing starts_at")
	}
	if _, err := time.Parse(time.RFC3339, e.StartsAt); err != nil {
		return errors.New("invalid starts_at; must be RFC3339")
	}
	return nil
}

func (e eventRequest) toRecord() model.Record {
	startsAt, _ := time.Parse(time.RFC3339, e.StartsAt)
	return model.Record{
		Kind: model.RecordEvent,
		Event: model.Event{
			ID:       e.ID,
			Title:    e.Title,
			Category: e.Category,
			Tags:     encodeTags(e.Tags),
			City:     e.City,
			Featured: e.Featured,
			Status:   e.Status,
			StartsAt: startsAt,
		},
	}
}

// ticketRequest mirrors the ingestion schema for POST /catalog/tickets.
type ticketRequest struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	EventID  string `json:"event_id"`
	Quantity int    `json:"quantity"`
	BoughtAt string `json:"bought_at"`
}

func (t ticketRequest) validate() error {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return errors.New("missing id")
	case strings.TrimSpace(t.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(t.EventID) == "":
		return errors.New("missing event_id")
	}
	if t.BoughtAt != "" {
		if _, err := time.Parse(time.RFC3339, t.BoughtAt); err != nil {
			return errors.New("invalid bought_at; must be RFC3339")
		}
	}
	return nil
}

func (t ticketRequest) toRecord() model.Record {
	boughtAt, _ := time.Parse(time.RFC3339, t.BoughtAt)
	quantity := t.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return model.Record{
		Kind: model.RecordTicket,
		Ticket: model.Ticket{
			ID:       t.ID,
			UserID:   t.UserID,
			EventID:  t.EventID,
			Quantity: quantity,
			BoughtAt: boughtAt,
		},
	}
}

// HandlePostUser handles POST /catalog/users requests.
func (h *CatalogHandler) HandlePostUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodePost(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.ingest(w, r, req.toRecord())
}

// HandlePostEvent handles POST /catalog/events requests.
func (h *CatalogHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodePost(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.ingest(w, r, req.toRecord())
}

// HandlePostTicket handles POST /catalog/tickets requests.
func (h *CatalogHandler) HandlePostTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if !decodePost(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.ingest(w, r, req.toRecord())
}

// ingest performs the idempotency check and enqueues the record.
func (h *CatalogHandler) ingest(w http.ResponseWriter, r *http.Request, rec model.Record) {
	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), rec.ID()) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	if ok := h.deps.Enqueue(r.Context(), rec); !ok {
		// Roll back the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), rec.ID())
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

// decodePost enforces the POST method and decodes the JSON body.
// It writes the error response itself and reports success.
func decodePost(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return false
	}
	return true
}

// encodeTags stores tag lists in the catalog's raw JSON-array format.
func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(b)
}
