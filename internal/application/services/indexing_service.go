package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
	"github.com/blendora/shopsense/backend/internal/infrastructure/observability"
	"github.com/blendora/shopsense/backend/pkg/config"
	apperrors "github.com/blendora/shopsense/backend/pkg/errors"
)

// IndexingService builds searchable text for catalog items, requests
// embeddings in batches, and answers nearest-neighbor queries.
type IndexingService struct {
	embedder  providers.EmbeddingProvider
	index     providers.VectorIndexProvider
	batchSize int
	textLimit int
}

// NewIndexingService creates a new indexing service.
func NewIndexingService(embedder providers.EmbeddingProvider, index providers.VectorIndexProvider, cfg *config.VectorConfig) *IndexingService {
	batchSize := 100
	textLimit := 2000
	if cfg != nil {
		if cfg.BatchSize > 0 {
			batchSize = cfg.BatchSize
		}
		if cfg.MetadataTextLimit > 0 {
			textLimit = cfg.MetadataTextLimit
		}
	}
	return &IndexingService{
		embedder:  embedder,
		index:     index,
		batchSize: batchSize,
		textLimit: textLimit,
	}
}

// BuildSearchText deterministically concatenates an item's descriptive
// fields into the string used as the embedding input.
func (s *IndexingService) BuildSearchText(item *entities.CatalogItem) string {
	var parts []string

	add := func(v string) {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}

	add(item.Name)
	add(item.Description)
	add(item.Category)
	add(strings.Join(item.Tags, " "))
	add(item.Mood)
	add(strings.Join(item.Colors, " "))

	if len(item.Attributes) > 0 {
		keys := make([]string, 0, len(item.Attributes))
		for k := range item.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			add(k + ": " + item.Attributes[k])
		}
	}

	return strings.Join(parts, ". ")
}

// VectorID derives a stable identifier from the item's canonical source id,
// so re-embedding the same item overwrites rather than duplicates.
func (s *IndexingService) VectorID(item *entities.CatalogItem) string {
	sum := sha256.Sum256([]byte(item.SourceID))
	return item.ContentType + "-" + hex.EncodeToString(sum[:])[:12]
}

// EmbedBatch embeds and upserts the items in batches. Batch failures are
// isolated: a failed batch is recorded and processing continues. Success is
// false only when every batch failed.
func (s *IndexingService) EmbedBatch(ctx context.Context, items []entities.CatalogItem) *entities.BatchResult {
	result := &entities.BatchResult{}
	if len(items) == 0 {
		result.Success = true
		return result
	}

	logger := observability.LoggerFromContext(ctx)
	batches := 0
	failedBatches := 0

	for start := 0; start < len(items); start += s.batchSize {
		end := start + s.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[start:end]
		batches++

		if err := s.embedOneBatch(ctx, batch); err != nil {
			failedBatches++
			result.Failed += len(batch)
			result.Errors = append(result.Errors, fmt.Sprintf("batch %d: %v", batches, err))
			logger.Warn().Err(err).Int("batch", batches).Int("items", len(batch)).Msg("embedding batch failed")
			continue
		}
		result.Processed += len(batch)
	}

	result.Success = failedBatches < batches
	return result
}

func (s *IndexingService) embedOneBatch(ctx context.Context, batch []entities.CatalogItem) error {
	if s.embedder == nil {
		return apperrors.NewUnavailableError("embedding service is not configured")
	}

	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = s.BuildSearchText(&batch[i])
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding count mismatch: got %d for %d items", len(vectors), len(batch))
	}

	now := time.Now()
	upserts := make([]entities.CatalogItemVector, len(batch))
	for i := range batch {
		upserts[i] = entities.CatalogItemVector{
			ID:     s.VectorID(&batch[i]),
			Vector: vectors[i],
			Metadata: entities.VectorMetadata{
				ContentType: batch[i].ContentType,
				Category:    batch[i].Category,
				Tags:        batch[i].Tags,
				SearchText:  truncate(texts[i], s.textLimit),
				IndexedAt:   now,
			},
		}
	}

	return s.index.Upsert(ctx, upserts)
}

// Query embeds the query text and runs a nearest-neighbor search with an
// optional equality filter on content type.
func (s *IndexingService) Query(ctx context.Context, text string, topK int, contentType string) ([]entities.VectorMatch, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("query text is required")
	}
	if topK <= 0 {
		topK = 5
	}
	if s.embedder == nil {
		return nil, apperrors.NewUnavailableError("embedding service is not configured")
	}

	vectors, err := s.embedder.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, apperrors.NewExternalError("failed to embed query", err)
	}
	if len(vectors) != 1 {
		return nil, apperrors.NewExternalError("embedding service returned unexpected vector count", nil)
	}

	matches, err := s.index.Query(ctx, vectors[0], topK, contentType)
	if err != nil {
		return nil, apperrors.NewExternalError("vector query failed", err)
	}
	return matches, nil
}

// Status reports the vector index state.
func (s *IndexingService) Status(ctx context.Context) (*entities.IndexStatus, error) {
	return s.index.Describe(ctx)
}

// truncate cuts text to at most limit bytes without splitting a rune.
func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	for limit > 0 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return text[:limit]
}
