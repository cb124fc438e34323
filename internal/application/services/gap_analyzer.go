package services

import (
	"strings"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

// gapDefinition is one entry in the fixed gap catalog. Stage tags control
// which journey stages the gap is relevant at; they are never exposed.
type gapDefinition struct {
	gapType     entities.GapType
	stages      []entities.JourneyStage
	blockTypes  []string
	keywords    []string
	query       string
	label       string
	explanation string
}

var gapCatalog = []gapDefinition{
	{
		gapType:     entities.GapProducts,
		stages:      []entities.JourneyStage{entities.StageExploring},
		blockTypes:  []string{"products", "product-grid", "product-detail"},
		keywords:    []string{"blender", "model", "which"},
		query:       "which blender is right for me",
		label:       "Browse the lineup",
		explanation: "You haven't looked at the product range yet.",
	},
	{
		gapType:     entities.GapRecipes,
		stages:      []entities.JourneyStage{entities.StageExploring, entities.StageComparing},
		blockTypes:  []string{"recipes", "recipe-grid"},
		keywords:    []string{"recipe", "make", "cook"},
		query:       "what can I make with it",
		label:       "See what you can make",
		explanation: "Recipes show what the appliance handles day to day.",
	},
	{
		gapType:     entities.GapReviews,
		stages:      []entities.JourneyStage{entities.StageComparing, entities.StageDeciding},
		blockTypes:  []string{"reviews", "testimonials"},
		keywords:    []string{"review", "rating", "owners say"},
		query:       "what do owners say",
		label:       "Read owner reviews",
		explanation: "You haven't checked what long-term owners think.",
	},
	{
		gapType:     entities.GapWarranty,
		stages:      []entities.JourneyStage{entities.StageDeciding},
		blockTypes:  []string{"warranty", "guarantee"},
		keywords:    []string{"warranty", "guarantee", "return"},
		query:       "what does the warranty cover",
		label:       "Check the warranty",
		explanation: "Worth knowing the coverage before you commit.",
	},
	{
		gapType:     entities.GapSpecs,
		stages:      []entities.JourneyStage{entities.StageComparing, entities.StageDeciding},
		blockTypes:  []string{"specs", "tech-specs"},
		keywords:    []string{"spec", "watt", "capacity", "dimension"},
		query:       "full technical specifications",
		label:       "Compare the specs",
		explanation: "You haven't dug into the technical details yet.",
	},
	{
		gapType:     entities.GapComparisons,
		stages:      []entities.JourneyStage{entities.StageComparing},
		blockTypes:  []string{"comparisons", "comparison-table"},
		keywords:    []string{"vs", "versus", "compare", "difference"},
		query:       "how do the models compare",
		label:       "Compare models side by side",
		explanation: "A side-by-side view makes the trade-offs clear.",
	},
	{
		gapType:     entities.GapAccessories,
		stages:      []entities.JourneyStage{entities.StageComparing, entities.StageDeciding},
		blockTypes:  []string{"accessories"},
		keywords:    []string{"accessory", "container", "attachment", "cup", "jar"},
		query:       "which accessories are included",
		label:       "Check accessories",
		explanation: "Containers and attachments change what each model can do.",
	},
}

// GapAnalyzer derives which categories of supporting content a session has
// not yet covered. Pure function of session history; no network calls.
type GapAnalyzer struct {
	catalog []gapDefinition
}

// NewGapAnalyzer creates a gap analyzer with the built-in catalog.
func NewGapAnalyzer() *GapAnalyzer {
	return &GapAnalyzer{catalog: gapCatalog}
}

// Coverage scans all entries for block-type membership or keyword matches
// in the query text.
func (g *GapAnalyzer) Coverage(entries []entities.QueryHistoryEntry) entities.ResearchCoverage {
	coverage := entities.ResearchCoverage{}
	for _, def := range g.catalog {
		if g.covered(&def, entries) {
			setCoverage(&coverage, def.gapType)
		}
	}
	return coverage
}

// Gaps returns the uncovered categories relevant at the current stage, in
// catalog order.
func (g *GapAnalyzer) Gaps(entries []entities.QueryHistoryEntry, stage entities.JourneyStage) []entities.ResearchGap {
	if !stage.Valid() {
		stage = entities.StageExploring
	}

	var gaps []entities.ResearchGap
	for _, def := range g.catalog {
		if !stageRelevant(&def, stage) {
			continue
		}
		if g.covered(&def, entries) {
			continue
		}
		gaps = append(gaps, entities.ResearchGap{
			Type:        def.gapType,
			Query:       def.query,
			Label:       def.label,
			Explanation: def.explanation,
		})
	}
	return gaps
}

func (g *GapAnalyzer) covered(def *gapDefinition, entries []entities.QueryHistoryEntry) bool {
	for i := range entries {
		entry := &entries[i]
		if entry.Enrichment != nil {
			for _, block := range entry.Enrichment.BlockTypes {
				for _, want := range def.blockTypes {
					if strings.EqualFold(block, want) {
						return true
					}
				}
			}
		}
		query := strings.ToLower(entry.Query)
		for _, kw := range def.keywords {
			if strings.Contains(query, kw) {
				return true
			}
		}
	}
	return false
}

func stageRelevant(def *gapDefinition, stage entities.JourneyStage) bool {
	for _, s := range def.stages {
		if s == stage {
			return true
		}
	}
	return false
}

func setCoverage(c *entities.ResearchCoverage, t entities.GapType) {
	switch t {
	case entities.GapProducts:
		c.Products = true
	case entities.GapRecipes:
		c.Recipes = true
	case entities.GapReviews:
		c.Reviews = true
	case entities.GapWarranty:
		c.Warranty = true
	case entities.GapSpecs:
		c.Specs = true
	case entities.GapComparisons:
		c.Comparisons = true
	case entities.GapAccessories:
		c.Accessories = true
	}
}
