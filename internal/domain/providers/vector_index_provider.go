package providers

import (
	"context"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

// VectorIndexProvider defines the interface for vector index operations.
// Upserts of different items are independent; queries never block upserts,
// and eventual visibility of new vectors is acceptable.
type VectorIndexProvider interface {
	// Upsert overwrites or creates the given vectors atomically per item.
	Upsert(ctx context.Context, vectors []entities.CatalogItemVector) error

	// Query runs a nearest-neighbor search. contentType, when non-empty,
	// is applied as an equality filter on the stored metadata.
	Query(ctx context.Context, vector []float32, topK int, contentType string) ([]entities.VectorMatch, error)

	// Describe reports index size and status.
	Describe(ctx context.Context) (*entities.IndexStatus, error)
}
