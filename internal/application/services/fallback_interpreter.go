package services

import (
	"strings"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

// fallbackRule maps a keyword family found in search text to a fixed intent
// branch. Rules are evaluated in order; the first match wins.
type fallbackRule struct {
	keywords         []string
	intentType       entities.IntentType
	primaryIntent    string
	specificNeeds    []string
	emotionalContext string
	useCases         []string
	heroTone         string
	prioritizeBlocks []string
}

var fallbackRules = []fallbackRule{
	{
		keywords:         []string{"kid", "child", "family", "picky"},
		intentType:       entities.IntentUseCase,
		primaryIntent:    "find a blender the whole family will actually use",
		specificNeeds:    []string{"easy cleanup", "hidden-veggie recipes", "kid-safe operation"},
		emotionalContext: "parent looking for solutions",
		useCases:         []string{"family_meals", "picky_eaters"},
		heroTone:         "warm and reassuring",
		prioritizeBlocks: []string{"recipes", "use-cases", "reviews"},
	},
	{
		keywords:         []string{"baby", "puree", "infant"},
		intentType:       entities.IntentUseCase,
		primaryIntent:    "prepare homemade baby food",
		specificNeeds:    []string{"smooth purees", "small batches", "easy sterilizing"},
		emotionalContext: "parent looking for solutions",
		useCases:         []string{"baby_food"},
		heroTone:         "gentle and trustworthy",
		prioritizeBlocks: []string{"recipes", "specs", "reviews"},
	},
	{
		keywords:         []string{"smoothie"},
		intentType:       entities.IntentUseCase,
		primaryIntent:    "make great smoothies",
		specificNeeds:    []string{"crushes ice and frozen fruit", "single-serve options"},
		useCases:         []string{"smoothies"},
		heroTone:         "energetic",
		prioritizeBlocks: []string{"recipes", "comparisons"},
	},
	{
		keywords:         []string{"soup"},
		intentType:       entities.IntentUseCase,
		primaryIntent:    "make soups from scratch",
		specificNeeds:    []string{"handles hot liquids", "large capacity"},
		useCases:         []string{"soups"},
		heroTone:         "comforting",
		prioritizeBlocks: []string{"recipes", "specs"},
	},
	{
		keywords:         []string{"gift", "wedding"},
		intentType:       entities.IntentGift,
		primaryIntent:    "find a blender as a gift",
		specificNeeds:    []string{"gift wrapping", "broad appeal", "warranty transfer"},
		useCases:         []string{"gifting"},
		heroTone:         "celebratory",
		prioritizeBlocks: []string{"comparisons", "reviews", "warranty"},
	},
}

// FallbackInterpreter produces a deterministic intent profile without any
// network call. Confidence is fixed at 0.5 so downstream consumers treat
// the result as tentative.
type FallbackInterpreter struct {
	rules []fallbackRule
}

// NewFallbackInterpreter creates a new fallback interpreter with the
// built-in rule table.
func NewFallbackInterpreter() *FallbackInterpreter {
	return &FallbackInterpreter{rules: fallbackRules}
}

// Interpret scans the summary's search text for keyword families and derives
// the journey stage from observed products and event categories.
func (f *FallbackInterpreter) Interpret(summary *entities.CompactedSummary) *entities.IntentProfile {
	searchText := strings.ToLower(strings.Join(summary.Searches, " "))
	if summary.CurrentQuery != "" {
		searchText += " " + strings.ToLower(summary.CurrentQuery)
	}

	stage := deriveJourneyStage(summary)

	for _, rule := range f.rules {
		if !matchesAny(searchText, rule.keywords) {
			continue
		}
		return f.buildProfile(&rule, summary, stage)
	}

	return f.buildProfile(&fallbackRule{
		intentType:       entities.IntentDiscovery,
		primaryIntent:    "find the right product",
		heroTone:         "helpful and clear",
		prioritizeBlocks: []string{"products", "comparisons"},
	}, summary, stage)
}

func (f *FallbackInterpreter) buildProfile(rule *fallbackRule, summary *entities.CompactedSummary, stage entities.JourneyStage) *entities.IntentProfile {
	return &entities.IntentProfile{
		Interpretation: entities.Interpretation{
			PrimaryIntent:    rule.primaryIntent,
			SpecificNeeds:    rule.specificNeeds,
			EmotionalContext: rule.emotionalContext,
			JourneyStage:     stage,
		},
		Classification: entities.Classification{
			IntentType: rule.intentType,
			Confidence: entities.FallbackConfidence,
			Entities: entities.IntentEntities{
				Products: summary.Products,
				UseCases: rule.useCases,
			},
			JourneyStage: stage,
		},
		ContentRecommendation: entities.ContentRecommendation{
			HeroTone:         rule.heroTone,
			PrioritizeBlocks: rule.prioritizeBlocks,
		},
		Source: entities.ProfileSourceFallback,
	}
}

// deriveJourneyStage promotes exploring to comparing when at least two
// distinct products were observed or a comparison event exists, and to
// deciding when a cart or shipping event exists.
func deriveJourneyStage(summary *entities.CompactedSummary) entities.JourneyStage {
	stage := entities.StageExploring

	if len(summary.Products) >= 2 {
		stage = entities.StageComparing
	}
	for _, entry := range summary.Journey {
		switch entry.Category {
		case "comparison":
			if stage == entities.StageExploring {
				stage = entities.StageComparing
			}
		case "cart", "shipping":
			stage = entities.StageDeciding
		}
	}

	return stage
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
