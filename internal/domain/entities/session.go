package entities

import (
	"time"
)

// QueryEnrichment carries the outcome of one generated page for a query.
// When a duplicate query is merged, the later enrichment wins.
type QueryEnrichment struct {
	RecommendedProducts []string     `json:"recommended_products,omitempty"`
	RecommendedRecipes  []string     `json:"recommended_recipes,omitempty"`
	BlockTypes          []string     `json:"block_types,omitempty"`
	JourneyStage        JourneyStage `json:"journey_stage,omitempty"`
	Confidence          float64      `json:"confidence,omitempty"`
	SuggestedNext       string       `json:"suggested_next,omitempty"`
}

// QueryHistoryEntry is one normalized entry in the session's query history.
type QueryHistoryEntry struct {
	Query       string           `json:"query"`
	Timestamp   time.Time        `json:"timestamp"`
	Intent      string           `json:"intent,omitempty"`
	Products    []string         `json:"products,omitempty"`
	Ingredients []string         `json:"ingredients,omitempty"`
	Goals       []string         `json:"goals,omitempty"`
	PagePath    string           `json:"page_path,omitempty"`
	Enrichment  *QueryEnrichment `json:"enrichment,omitempty"`
}

// SessionContext is the per-browser-tab state. The query list never exceeds
// the configured cap; oldest entries are evicted first.
type SessionContext struct {
	ID        string              `json:"id"`
	Queries   []QueryHistoryEntry `json:"queries"`
	StartedAt time.Time           `json:"started_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// LastStage returns the most recent enriched journey stage, or exploring.
func (s *SessionContext) LastStage() JourneyStage {
	for i := len(s.Queries) - 1; i >= 0; i-- {
		if e := s.Queries[i].Enrichment; e != nil && e.JourneyStage.Valid() {
			return e.JourneyStage
		}
	}
	return StageExploring
}

// RetrievalContext is the projection of stored entries handed to the intent
// interpreter as "previous queries" context.
type RetrievalContext struct {
	Queries     []string     `json:"queries,omitempty"`
	Products    []string     `json:"products,omitempty"`
	Ingredients []string     `json:"ingredients,omitempty"`
	LastStage   JourneyStage `json:"last_stage,omitempty"`
}
