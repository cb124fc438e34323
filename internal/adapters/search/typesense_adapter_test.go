package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorQueryString(t *testing.T) {
	query := vectorQueryString([]float32{0.25, -1, 0.5}, 5)

	assert.Equal(t, "embedding:([0.25,-1,0.5], k:5)", query)
}

func TestMetadataFromDocument(t *testing.T) {
	doc := map[string]interface{}{
		"content_type": "recipe",
		"category":     "smoothies",
		"tags":         []interface{}{"breakfast", "healthy"},
		"search_text":  "Green Power Smoothie",
		"indexed_at":   float64(1700000000),
	}

	metadata := metadataFromDocument(doc)

	assert.Equal(t, "recipe", metadata.ContentType)
	assert.Equal(t, "smoothies", metadata.Category)
	assert.Equal(t, []string{"breakfast", "healthy"}, metadata.Tags)
	assert.Equal(t, "Green Power Smoothie", metadata.SearchText)
	assert.Equal(t, int64(1700000000), metadata.IndexedAt.Unix())
}

func TestMetadataFromDocument_MissingFields(t *testing.T) {
	metadata := metadataFromDocument(map[string]interface{}{})

	assert.Empty(t, metadata.ContentType)
	assert.Empty(t, metadata.Tags)
	assert.True(t, metadata.IndexedAt.IsZero())
}
