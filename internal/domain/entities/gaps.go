package entities

// GapType identifies one category of supporting research content.
type GapType string

const (
	GapProducts    GapType = "products"
	GapRecipes     GapType = "recipes"
	GapReviews     GapType = "reviews"
	GapWarranty    GapType = "warranty"
	GapSpecs       GapType = "specs"
	GapComparisons GapType = "comparisons"
	GapAccessories GapType = "accessories"
)

// ResearchCoverage is a derived view of which content categories the
// session's history has already touched. Recomputed on demand, never stored.
type ResearchCoverage struct {
	Products    bool `json:"products"`
	Recipes     bool `json:"recipes"`
	Reviews     bool `json:"reviews"`
	Warranty    bool `json:"warranty"`
	Specs       bool `json:"specs"`
	Comparisons bool `json:"comparisons"`
	Accessories bool `json:"accessories"`
}

// ResearchGap is one uncovered category relevant at the current journey
// stage, with a canonical follow-up query the UI can offer.
type ResearchGap struct {
	Type        GapType `json:"type"`
	Query       string  `json:"query"`
	Label       string  `json:"label"`
	Explanation string  `json:"explanation"`
}
