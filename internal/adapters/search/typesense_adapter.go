package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
	tsclient "github.com/blendora/shopsense/backend/internal/infrastructure/clients/typesense"
)

// TypesenseAdapter implements the vector index on a Typesense collection
// with an embedding field.
type TypesenseAdapter struct {
	client     *tsclient.Client
	collection string
	dimensions int
}

// Ensure TypesenseAdapter implements VectorIndexProvider
var _ providers.VectorIndexProvider = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense vector index adapter
func NewTypesenseAdapter(client *tsclient.Client, collection string, dimensions int) *TypesenseAdapter {
	if collection == "" {
		collection = "catalog_items"
	}
	return &TypesenseAdapter{client: client, collection: collection, dimensions: dimensions}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	// Check if collection exists
	_, err := a.client.Client().Collection(a.collection).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: a.collection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "content_type", Type: "string", Facet: pointer.True()},
			{Name: "category", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "tags", Type: "string[]", Optional: pointer.True()},
			{Name: "search_text", Type: "string", Optional: pointer.True()},
			{Name: "indexed_at", Type: "int64"},
			{Name: "embedding", Type: "float[]", NumDim: pointer.Int(a.dimensions)},
		},
		DefaultSortingField: pointer.String("indexed_at"),
	}

	_, err = a.client.Client().Collections().Create(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// Reset drops the collection so a reindex starts clean
func (a *TypesenseAdapter) Reset(ctx context.Context) error {
	if _, err := a.client.Client().Collection(a.collection).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete typesense collection: %w", err)
	}
	return nil
}

// Upsert overwrites or creates one document per vector. Embedding and
// metadata travel together; a document is never partially updated.
func (a *TypesenseAdapter) Upsert(ctx context.Context, vectors []entities.CatalogItemVector) error {
	for i := range vectors {
		v := &vectors[i]
		document := map[string]interface{}{
			"id":           v.ID,
			"content_type": v.Metadata.ContentType,
			"category":     v.Metadata.Category,
			"tags":         v.Metadata.Tags,
			"search_text":  v.Metadata.SearchText,
			"indexed_at":   v.Metadata.IndexedAt.Unix(),
			"embedding":    v.Vector,
		}
		if _, err := a.client.Client().Collection(a.collection).Documents().Upsert(ctx, document); err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", v.ID, err)
		}
	}
	return nil
}

// Query runs a nearest-neighbor search with an optional content-type filter
func (a *TypesenseAdapter) Query(ctx context.Context, vector []float32, topK int, contentType string) ([]entities.VectorMatch, error) {
	searchParams := &api.SearchCollectionParams{
		Q:           pointer.String("*"),
		VectorQuery: pointer.String(vectorQueryString(vector, topK)),
		PerPage:     pointer.Int(topK),
	}
	if contentType != "" {
		searchParams.FilterBy = pointer.String(fmt.Sprintf("content_type:=%s", contentType))
	}

	result, err := a.client.Client().Collection(a.collection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	matches := []entities.VectorMatch{}
	if result.Hits == nil {
		return matches, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		match := entities.VectorMatch{
			Metadata: metadataFromDocument(doc),
		}
		if id, ok := doc["id"].(string); ok {
			match.ID = id
		}
		// Typesense reports cosine distance; score is its complement.
		if hit.VectorDistance != nil {
			match.Score = 1 - *hit.VectorDistance
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// Describe reports collection size and status
func (a *TypesenseAdapter) Describe(ctx context.Context) (*entities.IndexStatus, error) {
	collection, err := a.client.Client().Collection(a.collection).Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve collection: %w", err)
	}

	status := &entities.IndexStatus{
		Provider:   "typesense",
		Collection: a.collection,
		Ready:      true,
	}
	if collection.NumDocuments != nil {
		status.Documents = int(*collection.NumDocuments)
	}
	return status, nil
}

func vectorQueryString(vector []float32, topK int) string {
	parts := make([]string, len(vector))
	for i, v := range vector {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprintf("embedding:([%s], k:%d)", strings.Join(parts, ","), topK)
}

func metadataFromDocument(doc map[string]interface{}) entities.VectorMetadata {
	metadata := entities.VectorMetadata{}
	if v, ok := doc["content_type"].(string); ok {
		metadata.ContentType = v
	}
	if v, ok := doc["category"].(string); ok {
		metadata.Category = v
	}
	if raw, ok := doc["tags"].([]interface{}); ok {
		for _, t := range raw {
			if tag, ok := t.(string); ok {
				metadata.Tags = append(metadata.Tags, tag)
			}
		}
	}
	if v, ok := doc["search_text"].(string); ok {
		metadata.SearchText = v
	}
	if v, ok := doc["indexed_at"].(float64); ok {
		metadata.IndexedAt = time.Unix(int64(v), 0)
	}
	return metadata
}
