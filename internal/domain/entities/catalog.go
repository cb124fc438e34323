package entities

import (
	"time"
)

// Indexed content types.
const (
	ContentTypeRecipe    = "recipe"
	ContentTypeHeroImage = "hero-image"
	ContentTypeImage     = "image"
)

// CatalogItem is one content item eligible for semantic indexing.
type CatalogItem struct {
	SourceID    string            `json:"source_id"`
	ContentType string            `json:"content_type"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Category    string            `json:"category,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Mood        string            `json:"mood,omitempty"`
	Colors      []string          `json:"colors,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// VectorMetadata is the bounded metadata stored alongside an embedding.
// SearchText is truncated to the configured metadata size limit.
type VectorMetadata struct {
	ContentType string    `json:"content_type"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	SearchText  string    `json:"search_text,omitempty"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// CatalogItemVector is one indexed content item. Embedding and metadata are
// always replaced together; a vector is never partially updated.
type CatalogItemVector struct {
	ID       string         `json:"id"`
	Vector   []float32      `json:"vector"`
	Metadata VectorMetadata `json:"metadata"`
}

// VectorMatch is one ranked nearest-neighbor result.
type VectorMatch struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata VectorMetadata `json:"metadata"`
}

// BatchResult reports the outcome of a bulk embedding run. Success is false
// only when every batch failed.
type BatchResult struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Success   bool     `json:"success"`
	Errors    []string `json:"errors,omitempty"`
}

// IndexStatus describes the state of the vector index backend.
type IndexStatus struct {
	Provider   string `json:"provider"`
	Collection string `json:"collection"`
	Documents  int    `json:"documents"`
	Ready      bool   `json:"ready"`
}
