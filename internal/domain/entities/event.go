package entities

import (
	"time"
)

// EventKind discriminates the type of an interaction event.
type EventKind string

const (
	EventSearch        EventKind = "search"
	EventPageView      EventKind = "page_view"
	EventClick         EventKind = "click"
	EventScroll        EventKind = "scroll"
	EventReferrer      EventKind = "referrer"
	EventTimeOnPage    EventKind = "time_on_page"
	EventVideoStart    EventKind = "video_start"
	EventVideoComplete EventKind = "video_complete"
)

// Weight thresholds for the coarse importance label.
const (
	WeightHigh   = 0.8
	WeightMedium = 0.5
)

// InteractionEvent is one observed visitor action. Events are created by the
// collector, immutable, and retained only long enough to build one summary.
type InteractionEvent struct {
	Kind      EventKind              `json:"kind"`
	Timestamp time.Time              `json:"timestamp"`
	Category  string                 `json:"category,omitempty"`
	Weight    float64                `json:"weight"`
	ProductID string                 `json:"product_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// WeightLabel returns the coarse importance label derived from the weight.
func (e *InteractionEvent) WeightLabel() string {
	switch {
	case e.Weight >= WeightHigh:
		return "high"
	case e.Weight >= WeightMedium:
		return "medium"
	default:
		return "low"
	}
}

// StringField returns a string payload field, or "" when absent.
func (e *InteractionEvent) StringField(key string) string {
	if e.Data == nil {
		return ""
	}
	if v, ok := e.Data[key].(string); ok {
		return v
	}
	return ""
}

// NumberField returns a numeric payload field, or 0 when absent.
// JSON decoding produces float64 for all numbers.
func (e *InteractionEvent) NumberField(key string) float64 {
	if e.Data == nil {
		return 0
	}
	switch v := e.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
