package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
)

// ChromemAdapter implements the vector index on an embedded chromem-go
// database. It needs no external service, which makes it the default
// backend for local development and tests.
type ChromemAdapter struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
}

// Ensure ChromemAdapter implements VectorIndexProvider
var _ providers.VectorIndexProvider = (*ChromemAdapter)(nil)

// NewChromemAdapter creates an in-memory vector index
func NewChromemAdapter(collection string) (*ChromemAdapter, error) {
	db := chromem.NewDB()
	return newChromemAdapter(db, collection)
}

// NewPersistentChromemAdapter creates a vector index persisted under dir
func NewPersistentChromemAdapter(dir, collection string) (*ChromemAdapter, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open chromem database: %w", err)
	}
	return newChromemAdapter(db, collection)
}

func newChromemAdapter(db *chromem.DB, collection string) (*ChromemAdapter, error) {
	if collection == "" {
		collection = "catalog_items"
	}
	// Embeddings are always supplied by the caller, so the embedding
	// function is never invoked.
	col, err := db.GetOrCreateCollection(collection, nil, func(ctx context.Context, text string) ([]float32, error) {
		return nil, fmt.Errorf("embedding function not configured")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chromem collection: %w", err)
	}
	return &ChromemAdapter{db: db, collection: col, name: collection}, nil
}

// Upsert replaces each document wholesale. chromem overwrites documents
// that share an ID, so re-adding is an overwrite.
func (a *ChromemAdapter) Upsert(ctx context.Context, vectors []entities.CatalogItemVector) error {
	for i := range vectors {
		v := &vectors[i]
		doc := chromem.Document{
			ID:        v.ID,
			Embedding: v.Vector,
			Content:   v.Metadata.SearchText,
			Metadata: map[string]string{
				"content_type": v.Metadata.ContentType,
				"category":     v.Metadata.Category,
				"tags":         strings.Join(v.Metadata.Tags, ","),
				"indexed_at":   v.Metadata.IndexedAt.Format(time.RFC3339),
			},
		}
		if err := a.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to upsert vector %s: %w", v.ID, err)
		}
	}
	return nil
}

// Query runs a nearest-neighbor search with an optional content-type filter
func (a *ChromemAdapter) Query(ctx context.Context, vector []float32, topK int, contentType string) ([]entities.VectorMatch, error) {
	count := a.collection.Count()
	if count == 0 {
		return []entities.VectorMatch{}, nil
	}
	if topK > count {
		topK = count
	}

	var where map[string]string
	if contentType != "" {
		where = map[string]string{"content_type": contentType}
	}

	results, err := a.collection.QueryEmbedding(ctx, vector, topK, where, nil)
	if err != nil {
		// chromem returns an error when the filter leaves nothing to
		// search; treat that as an empty result set.
		if strings.Contains(err.Error(), "nResults") {
			return []entities.VectorMatch{}, nil
		}
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	matches := make([]entities.VectorMatch, 0, len(results))
	for _, r := range results {
		indexedAt, _ := time.Parse(time.RFC3339, r.Metadata["indexed_at"])
		metadata := entities.VectorMetadata{
			ContentType: r.Metadata["content_type"],
			Category:    r.Metadata["category"],
			SearchText:  r.Content,
			IndexedAt:   indexedAt,
		}
		if tags := r.Metadata["tags"]; tags != "" {
			metadata.Tags = strings.Split(tags, ",")
		}
		matches = append(matches, entities.VectorMatch{
			ID:       r.ID,
			Score:    r.Similarity,
			Metadata: metadata,
		})
	}

	return matches, nil
}

// Describe reports collection size and status
func (a *ChromemAdapter) Describe(ctx context.Context) (*entities.IndexStatus, error) {
	return &entities.IndexStatus{
		Provider:   "chromem",
		Collection: a.name,
		Documents:  a.collection.Count(),
		Ready:      true,
	}, nil
}
