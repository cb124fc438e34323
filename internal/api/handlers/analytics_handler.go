package handlers

import (
	"net/http"
	"strconv"

	"github.com/blendora/shopsense/backend/internal/domain/repositories"
)

const (
	defaultConfidenceThreshold = 0.6
	defaultAnalyticsLimit      = 50
	maxAnalyticsLimit          = 500
)

// AnalyticsHandler exposes the interpretation analytics log for offline
// review. A nil repository means analytics storage is not configured.
type AnalyticsHandler struct {
	repo repositories.InterpretationAnalyticsRepository
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(repo repositories.InterpretationAnalyticsRepository) *AnalyticsHandler {
	return &AnalyticsHandler{repo: repo}
}

// GetLowConfidenceEvents handles GET /api/analytics/low-confidence
func (h *AnalyticsHandler) GetLowConfidenceEvents(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		respondWithError(w, http.StatusServiceUnavailable, "analytics storage is not configured")
		return
	}

	threshold := defaultConfidenceThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			respondWithError(w, http.StatusBadRequest, "threshold must be in (0, 1]")
			return
		}
		threshold = parsed
	}

	limit := defaultAnalyticsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > maxAnalyticsLimit {
			parsed = maxAnalyticsLimit
		}
		limit = parsed
	}

	events, err := h.repo.GetLowConfidenceEvents(r.Context(), threshold, limit)
	if err != nil {
		respondWithAppError(w, err, "failed to fetch interpretation events")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"threshold": threshold,
		"events":    events,
		"count":     len(events),
	})
}
