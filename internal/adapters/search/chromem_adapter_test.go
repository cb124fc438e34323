package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

func recipeVector(id string, embedding []float32) entities.CatalogItemVector {
	return entities.CatalogItemVector{
		ID:       id,
		Vector:   embedding,
		Metadata: entities.VectorMetadata{
			ContentType: entities.ContentTypeRecipe,
			Category:    "smoothies",
			Tags:        []string{"breakfast", "healthy"},
			SearchText:  "Green Power Smoothie",
			IndexedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestChromemAdapter_QueryReturnsStoredMetadata(t *testing.T) {
	adapter, err := NewChromemAdapter("test_items")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, adapter.Upsert(ctx, []entities.CatalogItemVector{
		recipeVector("recipe-a", []float32{1, 0, 0}),
		recipeVector("recipe-b", []float32{0, 1, 0}),
	}))

	matches, err := adapter.Query(ctx, []float32{1, 0, 0}, 1, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "recipe-a", matches[0].ID)
	assert.Equal(t, entities.ContentTypeRecipe, matches[0].Metadata.ContentType)
	assert.Equal(t, []string{"breakfast", "healthy"}, matches[0].Metadata.Tags)
	assert.Equal(t, "Green Power Smoothie", matches[0].Metadata.SearchText)
	assert.False(t, matches[0].Metadata.IndexedAt.IsZero())
}

func TestChromemAdapter_UpsertOverwritesSameID(t *testing.T) {
	adapter, err := NewChromemAdapter("test_items")
	require.NoError(t, err)

	ctx := context.Background()
	vec := recipeVector("recipe-a", []float32{1, 0, 0})
	require.NoError(t, adapter.Upsert(ctx, []entities.CatalogItemVector{vec}))
	require.NoError(t, adapter.Upsert(ctx, []entities.CatalogItemVector{vec}))

	status, err := adapter.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Documents)
}

func TestChromemAdapter_ContentTypeFilter(t *testing.T) {
	adapter, err := NewChromemAdapter("test_items")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, adapter.Upsert(ctx, []entities.CatalogItemVector{
		recipeVector("recipe-a", []float32{1, 0, 0}),
	}))

	matches, err := adapter.Query(ctx, []float32{1, 0, 0}, 5, entities.ContentTypeHeroImage)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChromemAdapter_QueryEmptyCollection(t *testing.T) {
	adapter, err := NewChromemAdapter("test_items")
	require.NoError(t, err)

	matches, err := adapter.Query(context.Background(), []float32{1, 0, 0}, 5, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestChromemAdapter_Describe(t *testing.T) {
	adapter, err := NewChromemAdapter("")
	require.NoError(t, err)

	status, err := adapter.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "chromem", status.Provider)
	assert.Equal(t, "catalog_items", status.Collection)
	assert.True(t, status.Ready)
}
