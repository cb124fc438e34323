package providers

import (
	"context"
)

// EmbeddingProvider defines the interface to the embedding service.
type EmbeddingProvider interface {
	// EmbedBatch returns one dense vector per input string, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
