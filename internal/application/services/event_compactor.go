package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

const (
	// DefaultEventCap is the recommended recency cap for raw event lists.
	DefaultEventCap = 50

	// journeyCategoryThreshold is the weight above which an event's
	// category is included in its journey entry.
	journeyCategoryThreshold = 0.7
)

// EventCompactor normalizes raw interaction events into a compact,
// token-efficient summary. Compact is a pure function of its input; no
// network or state access.
type EventCompactor struct{}

// NewEventCompactor creates a new event compactor.
func NewEventCompactor() *EventCompactor {
	return &EventCompactor{}
}

// CapRecent sorts events by recency and keeps the newest n, discarding the
// oldest first. Callers should apply this before Compact for unbounded lists.
func CapRecent(events []entities.InteractionEvent, n int) []entities.InteractionEvent {
	if n <= 0 {
		n = DefaultEventCap
	}
	if len(events) <= n {
		return events
	}
	sorted := make([]entities.InteractionEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted[len(sorted)-n:]
}

// Compact reduces an event list to O(distinct pages + distinct searches)
// size. Empty output fields are omitted entirely.
func (c *EventCompactor) Compact(events []entities.InteractionEvent) entities.CompactedSummary {
	summary := entities.CompactedSummary{}
	if len(events) == 0 {
		return summary
	}

	sorted := make([]entities.InteractionEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	origin := sorted[0].Timestamp
	seenProducts := make(map[string]struct{})
	var engagement map[string]entities.PageEngagement

	for _, event := range sorted {
		essence := eventEssence(&event)

		switch event.Kind {
		case entities.EventSearch:
			if essence != "" {
				summary.Searches = append(summary.Searches, essence)
			}
		case entities.EventReferrer:
			// First referrer wins; "direct" visits are never emitted.
			if summary.Referrer == "" && essence != "" {
				summary.Referrer = essence
			}
		case entities.EventScroll, entities.EventTimeOnPage:
			page := event.StringField("path")
			if page == "" {
				page = event.StringField("page")
			}
			if page != "" {
				if engagement == nil {
					engagement = make(map[string]entities.PageEngagement)
				}
				agg := engagement[page]
				if event.Kind == entities.EventScroll {
					if depth := int(event.NumberField("depth")); depth > agg.MaxScrollDepth {
						agg.MaxScrollDepth = depth
					}
				} else {
					if secs := int(event.NumberField("seconds")); secs > agg.MaxSecondsOnPage {
						agg.MaxSecondsOnPage = secs
					}
				}
				engagement[page] = agg
			}
		}

		entry := entities.JourneyEntry{
			T:      int(event.Timestamp.Sub(origin).Seconds()),
			Action: journeyAction(event.Kind),
			Detail: essence,
		}

		if product := productEssence(&event); product != "" {
			entry.Product = product
			if _, seen := seenProducts[product]; !seen {
				seenProducts[product] = struct{}{}
				summary.Products = append(summary.Products, product)
			}
		}

		// Category only survives for high-weight events where it adds
		// information beyond the action itself.
		if event.Weight > journeyCategoryThreshold && event.Category != "" && event.Category != string(event.Kind) {
			entry.Category = event.Category
		}

		summary.Journey = append(summary.Journey, entry)
	}

	if len(engagement) > 0 {
		summary.Engagement = engagement
	}

	return summary
}

// eventEssence extracts the kind-specific minimum needed for intent
// inference. Verbose payload fields never survive compaction.
func eventEssence(event *entities.InteractionEvent) string {
	switch event.Kind {
	case entities.EventSearch:
		return strings.TrimSpace(event.StringField("query"))
	case entities.EventPageView:
		essence := event.StringField("heading")
		if essence == "" {
			essence = event.StringField("path")
		}
		if price := event.NumberField("price"); price > 0 && essence != "" {
			essence = fmt.Sprintf("%s ($%.2f)", essence, price)
		}
		return essence
	case entities.EventClick:
		if text := event.StringField("text"); text != "" {
			return text
		}
		if alt := event.StringField("alt"); alt != "" {
			return alt
		}
		return event.Category
	case entities.EventScroll:
		if depth := event.NumberField("depth"); depth > 0 {
			return fmt.Sprintf("%d%%", int(depth))
		}
		return ""
	case entities.EventReferrer:
		domain := event.StringField("domain")
		if domain == "" {
			return ""
		}
		if query := event.StringField("query"); query != "" {
			return fmt.Sprintf("%s:%q", domain, query)
		}
		return domain
	case entities.EventTimeOnPage:
		if secs := event.NumberField("seconds"); secs > 0 {
			return fmt.Sprintf("%ds", int(secs))
		}
		return ""
	case entities.EventVideoStart, entities.EventVideoComplete:
		return event.StringField("title")
	}
	return ""
}

func journeyAction(kind entities.EventKind) string {
	switch kind {
	case entities.EventSearch:
		return "search"
	case entities.EventPageView:
		return "view"
	case entities.EventClick:
		return "click"
	case entities.EventScroll:
		return "scroll"
	case entities.EventReferrer:
		return "arrive"
	case entities.EventTimeOnPage:
		return "dwell"
	case entities.EventVideoStart:
		return "video"
	case entities.EventVideoComplete:
		return "video_done"
	}
	return string(kind)
}

// productEssence resolves the product a given event refers to, either by
// direct association or from a product page view.
func productEssence(event *entities.InteractionEvent) string {
	if event.ProductID != "" {
		return normalizeProductName(event.ProductID)
	}
	if event.Kind == entities.EventPageView && event.Category == "product" {
		name := event.StringField("heading")
		if name == "" {
			name = event.StringField("path")
		}
		return normalizeProductName(name)
	}
	return ""
}

var productSeparators = []string{" - ", " – ", " — ", " | "}

// normalizeProductName strips trademark symbols and keeps the first segment
// before any title separator.
func normalizeProductName(name string) string {
	for _, sym := range []string{"™", "®", "©"} {
		name = strings.ReplaceAll(name, sym, "")
	}
	for _, sep := range productSeparators {
		if idx := strings.Index(name, sep); idx >= 0 {
			name = name[:idx]
		}
	}
	return strings.TrimSpace(name)
}
