// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
)

// RecommendHandler handles recommendation requests.
type RecommendHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewRecommendHandler creates a new recommendation handler.
func NewRecommendHandler(deps Dependencies, maxLimit int) *RecommendHandler {
	return &RecommendHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetRecommendations handles
// GET /recommendations/{user_id}?limit=N&reasons=bool and the
// GET /recommendations/{user_id}/ai variant which always includes
// reasons. An unknown user yields an empty list, not an error.
func (h *RecommendHandler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/recommendations/")
	userID, mode, ok := splitUserPath(path)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	limit := 0 // 0 lets the service apply its default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		limit = n
	}

	includeReasons := r.URL.Query().Get("reasons") != "false"
	if mode == "ai" {
		includeReasons = true
	}

	recs, err := h.deps.Recommend(r.Context(), userID, limit, includeReasons)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{Recommendations: recs})
}

// splitUserPath parses "{user_id}" or "{user_id}/ai" path remainders.
func splitUserPath(path string) (userID, mode string, ok bool) {
	if path == "" {
		return "", "", false
	}
	parts := strings.Split(path, "/")
	switch len(parts) {
	case 1:
		return parts[0], "", parts[0] != ""
	case 2:
		if parts[0] == "" || parts[1] != "ai" {
			return "", "", false
		}
		return parts[0], "ai", true
	default:
		return "", "", false
	}
}
