package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/blendora/shopsense/backend/internal/application/services"
	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
	"github.com/blendora/shopsense/backend/internal/infrastructure/observability"
)

// Interpreter defines the interpretation operation used by the handler.
type Interpreter interface {
	Interpret(ctx context.Context, req *services.InterpretRequest) *entities.IntentProfile
}

// SessionStore is the per-session state surface used by handlers.
type SessionStore interface {
	SessionID() string
	Get(ctx context.Context) *entities.SessionContext
	AddQuery(ctx context.Context, entry entities.QueryHistoryEntry) error
	Clear(ctx context.Context) error
	BuildRetrievalContext(ctx context.Context) *entities.RetrievalContext
	ResearchGaps(ctx context.Context, stage entities.JourneyStage) []entities.ResearchGap
}

// SessionStoreFactory yields a store handle for one session. An empty id
// starts a fresh session.
type SessionStoreFactory func(sessionID string) SessionStore

// InterpretHandler turns raw interaction events into an intent profile and
// records the outcome in the session history.
type InterpretHandler struct {
	interpreter Interpreter
	compactor   *services.EventCompactor
	sessions    SessionStoreFactory
}

// NewInterpretHandler creates a new interpret handler.
func NewInterpretHandler(interpreter Interpreter, compactor *services.EventCompactor, sessions SessionStoreFactory) *InterpretHandler {
	return &InterpretHandler{
		interpreter: interpreter,
		compactor:   compactor,
		sessions:    sessions,
	}
}

type interpretRequest struct {
	SessionID    string                      `json:"session_id"`
	Events       []entities.InteractionEvent `json:"events"`
	Query        string                      `json:"query"`
	ProfileHints map[string]string           `json:"profile_hints"`
	Tier         string                      `json:"tier"`
}

// Interpret handles POST /api/interpret
func (h *InterpretHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	var payload interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if payload.SessionID == "" {
		payload.SessionID = sessionIDFromRequest(r)
	}

	payload.Query = strings.TrimSpace(payload.Query)
	if len(payload.Events) == 0 && payload.Query == "" {
		respondWithError(w, http.StatusBadRequest, "events or query is required")
		return
	}

	tier := providers.TierFast
	if payload.Tier != "" {
		tier = providers.ModelTier(payload.Tier)
		if tier != providers.TierFast && tier != providers.TierQuality {
			respondWithError(w, http.StatusBadRequest, "unknown model tier")
			return
		}
	}

	events := services.CapRecent(payload.Events, services.DefaultEventCap)
	summary := h.compactor.Compact(events)

	store := h.sessions(payload.SessionID)
	retrieval := store.BuildRetrievalContext(r.Context())

	profile := h.interpreter.Interpret(r.Context(), &services.InterpretRequest{
		SessionID:       store.SessionID(),
		Summary:         summary,
		CurrentQuery:    payload.Query,
		PreviousQueries: retrieval.Queries,
		ProfileHints:    payload.ProfileHints,
		Tier:            tier,
	})

	h.recordQuery(r.Context(), store, payload.Query, summary, profile)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": store.SessionID(),
		"profile":    profile,
	})
}

// recordQuery appends the interpreted query to the session history. Failing
// to persist never fails the interpretation itself.
func (h *InterpretHandler) recordQuery(ctx context.Context, store SessionStore, query string, summary entities.CompactedSummary, profile *entities.IntentProfile) {
	q := query
	if q == "" && len(summary.Searches) > 0 {
		q = summary.Searches[len(summary.Searches)-1]
	}
	if q == "" {
		return
	}

	entry := entities.QueryHistoryEntry{
		Query:     q,
		Timestamp: time.Now(),
		Intent:    string(profile.Classification.IntentType),
		Products:  profile.Classification.Entities.Products,
		Goals:     profile.Classification.Entities.UseCases,
		Enrichment: &entities.QueryEnrichment{
			RecommendedProducts: profile.Classification.Entities.Products,
			BlockTypes:          profile.ContentRecommendation.PrioritizeBlocks,
			JourneyStage:        profile.Classification.JourneyStage,
			Confidence:          profile.Classification.Confidence,
		},
	}
	if err := store.AddQuery(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("session_id", store.SessionID()).
			Msg("failed to record query in session history")
	}
}
