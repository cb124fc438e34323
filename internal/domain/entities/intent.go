package entities

import (
	"fmt"
)

// JourneyStage is the visitor's position in the decision funnel.
type JourneyStage string

const (
	StageExploring JourneyStage = "exploring"
	StageComparing JourneyStage = "comparing"
	StageDeciding  JourneyStage = "deciding"
)

// Valid reports whether the stage is one of the three enumerated values.
func (s JourneyStage) Valid() bool {
	switch s {
	case StageExploring, StageComparing, StageDeciding:
		return true
	}
	return false
}

// IntentType is the closed classification of a visitor's intent.
type IntentType string

const (
	IntentDiscovery      IntentType = "discovery"
	IntentComparison     IntentType = "comparison"
	IntentProductDetail  IntentType = "product_detail"
	IntentUseCase        IntentType = "use_case"
	IntentSpecs          IntentType = "specs"
	IntentReviews        IntentType = "reviews"
	IntentPrice          IntentType = "price"
	IntentRecommendation IntentType = "recommendation"
	IntentSupport        IntentType = "support"
	IntentGift           IntentType = "gift"
	IntentMedical        IntentType = "medical"
	IntentAccessibility  IntentType = "accessibility"
	IntentPartnership    IntentType = "partnership"
)

var knownIntentTypes = map[IntentType]struct{}{
	IntentDiscovery: {}, IntentComparison: {}, IntentProductDetail: {},
	IntentUseCase: {}, IntentSpecs: {}, IntentReviews: {}, IntentPrice: {},
	IntentRecommendation: {}, IntentSupport: {}, IntentGift: {},
	IntentMedical: {}, IntentAccessibility: {}, IntentPartnership: {},
}

// Valid reports whether the intent type is part of the closed enum.
func (t IntentType) Valid() bool {
	_, ok := knownIntentTypes[t]
	return ok
}

// Interpretation is the free-text half of an intent profile.
type Interpretation struct {
	PrimaryIntent    string       `json:"primary_intent"`
	SpecificNeeds    []string     `json:"specific_needs,omitempty"`
	EmotionalContext string       `json:"emotional_context,omitempty"`
	JourneyStage     JourneyStage `json:"journey_stage"`
	KeyInsights      []string     `json:"key_insights,omitempty"`
}

// PriceRange bounds the price the visitor appears to be shopping in.
type PriceRange struct {
	Min float64 `json:"min,omitempty"`
	Max float64 `json:"max,omitempty"`
}

// IntentEntities are the entity sets extracted from the visitor's behavior.
type IntentEntities struct {
	Products   []string    `json:"products,omitempty"`
	UseCases   []string    `json:"use_cases,omitempty"`
	Features   []string    `json:"features,omitempty"`
	PriceRange *PriceRange `json:"price_range,omitempty"`
}

// Classification is the structured half of an intent profile.
//
// JourneyStage is intentionally duplicated with Interpretation.JourneyStage.
// The two are independently settable and are not guaranteed to agree; the
// deterministic fallback always sets them identically.
type Classification struct {
	IntentType   IntentType     `json:"intent_type"`
	Confidence   float64        `json:"confidence"`
	Entities     IntentEntities `json:"entities"`
	JourneyStage JourneyStage   `json:"journey_stage"`
}

// ContentRecommendation guides the downstream page-generation logic.
type ContentRecommendation struct {
	HeroTone         string   `json:"hero_tone,omitempty"`
	PrioritizeBlocks []string `json:"prioritize_blocks,omitempty"`
	AvoidBlocks      []string `json:"avoid_blocks,omitempty"`
	SpecialGuidance  string   `json:"special_guidance,omitempty"`
}

// Profile sources.
const (
	ProfileSourceModel    = "model"
	ProfileSourceFallback = "fallback"
)

// FallbackConfidence is the fixed confidence of deterministic profiles,
// signaling a lower-trust result to downstream consumers.
const FallbackConfidence = 0.5

// IntentProfile is the fully interpreted shopper intent.
type IntentProfile struct {
	Interpretation        Interpretation        `json:"interpretation"`
	Classification        Classification        `json:"classification"`
	ContentRecommendation ContentRecommendation `json:"content_recommendation"`
	Source                string                `json:"source,omitempty"`
}

// Validate rejects structurally invalid profiles so malformed reasoning
// output is caught before it reaches downstream consumers.
func (p *IntentProfile) Validate() error {
	if p.Interpretation.PrimaryIntent == "" {
		return fmt.Errorf("primary intent is required")
	}
	if !p.Interpretation.JourneyStage.Valid() {
		return fmt.Errorf("invalid interpretation journey stage %q", p.Interpretation.JourneyStage)
	}
	if !p.Classification.JourneyStage.Valid() {
		return fmt.Errorf("invalid classification journey stage %q", p.Classification.JourneyStage)
	}
	if !p.Classification.IntentType.Valid() {
		return fmt.Errorf("unknown intent type %q", p.Classification.IntentType)
	}
	if p.Classification.Confidence < 0 || p.Classification.Confidence > 1 {
		return fmt.Errorf("confidence %f out of range", p.Classification.Confidence)
	}
	return nil
}
