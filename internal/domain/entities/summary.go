package entities

// JourneyEntry is one abbreviated action in the compacted journey timeline.
// T is seconds since the earliest retained event. Category is only present
// for high-weight events whose category differs from the action itself.
type JourneyEntry struct {
	T        int    `json:"t"`
	Action   string `json:"action"`
	Detail   string `json:"detail,omitempty"`
	Product  string `json:"product,omitempty"`
	Category string `json:"category,omitempty"`
}

// PageEngagement aggregates the maxima observed for one page.
type PageEngagement struct {
	MaxScrollDepth   int `json:"max_scroll_depth,omitempty"`
	MaxSecondsOnPage int `json:"max_seconds_on_page,omitempty"`
}

// CompactedSummary is a token-bounded projection of a list of interaction
// events. Empty fields are omitted entirely to minimize payload size.
// Size is O(distinct pages + distinct searches), not O(events).
type CompactedSummary struct {
	Searches   []string                  `json:"searches,omitempty"`
	Referrer   string                    `json:"referrer,omitempty"`
	Journey    []JourneyEntry            `json:"journey,omitempty"`
	Products   []string                  `json:"products,omitempty"`
	Engagement map[string]PageEngagement `json:"engagement,omitempty"`

	// Merged-in context for interpretation; only set when present.
	CurrentQuery    string            `json:"current_query,omitempty"`
	PreviousQueries []string          `json:"previous_queries,omitempty"`
	ProfileHints    map[string]string `json:"profile_hints,omitempty"`
}

// IsEmpty reports whether the summary carries no signal at all.
func (s *CompactedSummary) IsEmpty() bool {
	return len(s.Searches) == 0 && s.Referrer == "" && len(s.Journey) == 0 &&
		len(s.Products) == 0 && len(s.Engagement) == 0 && s.CurrentQuery == ""
}
