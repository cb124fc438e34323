package entities

import (
	"time"
)

// InterpretationEvent records one intent interpretation for analytics.
type InterpretationEvent struct {
	ID           string    `json:"id" db:"id"`
	SessionID    string    `json:"session_id,omitempty" db:"session_id"`
	Query        string    `json:"query" db:"query"`
	IntentType   string    `json:"intent_type" db:"intent_type"`
	Confidence   float64   `json:"confidence" db:"confidence"`
	JourneyStage string    `json:"journey_stage" db:"journey_stage"`
	Source       string    `json:"source" db:"source"`
	LatencyMs    int       `json:"latency_ms" db:"latency_ms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ProfileEvent is published on the event bus when a session's intent
// profile is refreshed, so live page generation can react.
type ProfileEvent struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	Profile   IntentProfile `json:"profile"`
	Timestamp time.Time     `json:"timestamp"`
}
