package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/pkg/config"
	apperrors "github.com/blendora/shopsense/backend/pkg/errors"
)

// fakeEmbedder returns a deterministic unit vector per text, failing on
// texts that contain the configured marker.
type fakeEmbedder struct {
	failOn string
	calls  int
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if f.failOn != "" && strings.Contains(text, f.failOn) {
			return nil, errors.New("embedding service error")
		}
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, nil
}

// fakeIndex records upserts keyed by vector id.
type fakeIndex struct {
	vectors map[string]entities.CatalogItemVector
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{vectors: make(map[string]entities.CatalogItemVector)}
}

func (f *fakeIndex) Upsert(ctx context.Context, vectors []entities.CatalogItemVector) error {
	for _, v := range vectors {
		f.vectors[v.ID] = v
	}
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int, contentType string) ([]entities.VectorMatch, error) {
	var matches []entities.VectorMatch
	for id, v := range f.vectors {
		if contentType != "" && v.Metadata.ContentType != contentType {
			continue
		}
		matches = append(matches, entities.VectorMatch{ID: id, Score: 1, Metadata: v.Metadata})
		if len(matches) == topK {
			break
		}
	}
	return matches, nil
}

func (f *fakeIndex) Describe(ctx context.Context) (*entities.IndexStatus, error) {
	return &entities.IndexStatus{Provider: "fake", Documents: len(f.vectors), Ready: true}, nil
}

func catalogItems(n int, prefix string) []entities.CatalogItem {
	items := make([]entities.CatalogItem, n)
	for i := range items {
		items[i] = entities.CatalogItem{
			SourceID:    fmt.Sprintf("https://example.com/%s/%d", prefix, i),
			ContentType: entities.ContentTypeRecipe,
			Name:        fmt.Sprintf("%s %d", prefix, i),
		}
	}
	return items
}

func smallBatchConfig(batchSize int) *config.VectorConfig {
	return &config.VectorConfig{BatchSize: batchSize, MetadataTextLimit: 2000}
}

func TestEmbedBatch_AllSucceed(t *testing.T) {
	index := newFakeIndex()
	service := NewIndexingService(&fakeEmbedder{}, index, smallBatchConfig(2))

	result := service.EmbedBatch(context.Background(), catalogItems(5, "recipe"))

	if !result.Success {
		t.Error("Success = false")
	}
	if result.Processed != 5 || result.Failed != 0 {
		t.Errorf("Processed = %d, Failed = %d", result.Processed, result.Failed)
	}
	if len(index.vectors) != 5 {
		t.Errorf("index holds %d vectors, want 5", len(index.vectors))
	}
}

func TestEmbedBatch_FailedBatchIsIsolated(t *testing.T) {
	index := newFakeIndex()
	embedder := &fakeEmbedder{failOn: "recipe 2"}
	service := NewIndexingService(embedder, index, smallBatchConfig(2))

	// Batches: [0,1] [2,3] [4]; the middle batch fails.
	result := service.EmbedBatch(context.Background(), catalogItems(5, "recipe"))

	if !result.Success {
		t.Error("Success = false, want true when some batches succeed")
	}
	if result.Processed != 3 {
		t.Errorf("Processed = %d, want 3", result.Processed)
	}
	if result.Failed != 2 {
		t.Errorf("Failed = %d, want 2", result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want one per-batch error", result.Errors)
	}
	if embedder.calls != 3 {
		t.Errorf("embedder called %d times, want 3 (continue past failure)", embedder.calls)
	}
}

func TestEmbedBatch_SuccessFalseOnlyWhenAllFail(t *testing.T) {
	service := NewIndexingService(&fakeEmbedder{failOn: "recipe"}, newFakeIndex(), smallBatchConfig(2))

	result := service.EmbedBatch(context.Background(), catalogItems(4, "recipe"))

	if result.Success {
		t.Error("Success = true with every batch failed")
	}
	if result.Failed != 4 {
		t.Errorf("Failed = %d, want 4", result.Failed)
	}
}

func TestEmbedBatch_EmptyInputSucceeds(t *testing.T) {
	service := NewIndexingService(&fakeEmbedder{}, newFakeIndex(), nil)

	result := service.EmbedBatch(context.Background(), nil)

	if !result.Success {
		t.Error("Success = false for empty input")
	}
}

func TestEmbedBatch_Idempotent(t *testing.T) {
	index := newFakeIndex()
	service := NewIndexingService(&fakeEmbedder{}, index, nil)
	items := catalogItems(3, "recipe")

	service.EmbedBatch(context.Background(), items)
	first := len(index.vectors)
	service.EmbedBatch(context.Background(), items)

	if len(index.vectors) != first {
		t.Errorf("re-embedding grew the index from %d to %d vectors", first, len(index.vectors))
	}
}

func TestVectorID_Deterministic(t *testing.T) {
	service := NewIndexingService(nil, nil, nil)
	item := &entities.CatalogItem{
		SourceID:    "https://example.com/recipes/green-smoothie",
		ContentType: entities.ContentTypeRecipe,
	}

	id1 := service.VectorID(item)
	id2 := service.VectorID(item)

	if id1 != id2 {
		t.Errorf("ids differ: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, "recipe-") {
		t.Errorf("id %q lacks content-type prefix", id1)
	}
	if len(id1) != len("recipe-")+12 {
		t.Errorf("id %q hash fragment length is wrong", id1)
	}
}

func TestBuildSearchText(t *testing.T) {
	service := NewIndexingService(nil, nil, nil)

	item := &entities.CatalogItem{
		Name:        "Green Power Smoothie",
		Description: "Spinach and mango blend",
		Category:    "smoothies",
		Tags:        []string{"breakfast", "healthy"},
		Mood:        "fresh",
		Attributes:  map[string]string{"prep_time": "5 min", "difficulty": "easy"},
	}

	text := service.BuildSearchText(item)

	for _, want := range []string{"Green Power Smoothie", "smoothies", "breakfast healthy", "difficulty: easy", "prep_time: 5 min"} {
		if !strings.Contains(text, want) {
			t.Errorf("search text %q missing %q", text, want)
		}
	}

	// Attributes are emitted in sorted key order for determinism.
	if strings.Index(text, "difficulty") > strings.Index(text, "prep_time") {
		t.Error("attributes are not sorted by key")
	}
}

func TestTruncate_KeepsRuneBoundary(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
	}{
		{"ascii within limit", "berry smoothie", 20},
		{"ascii cut", "berry smoothie", 5},
		{"multi-byte cut mid-rune", "crème brûlée à la vanille", 6},
		{"emoji cut mid-rune", "blend 🫐🫐🫐", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.text, tt.limit)
			if len(got) > tt.limit {
				t.Errorf("len = %d, want <= %d", len(got), tt.limit)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate produced invalid UTF-8: %q", got)
			}
			if !strings.HasPrefix(tt.text, got) {
				t.Errorf("%q is not a prefix of %q", got, tt.text)
			}
		})
	}
}

func TestQuery_RequiresText(t *testing.T) {
	service := NewIndexingService(&fakeEmbedder{}, newFakeIndex(), nil)

	_, err := service.Query(context.Background(), "   ", 5, "")

	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("err = %v, want a validation error", err)
	}
}

func TestQuery_FiltersByContentType(t *testing.T) {
	index := newFakeIndex()
	service := NewIndexingService(&fakeEmbedder{}, index, nil)

	service.EmbedBatch(context.Background(), catalogItems(3, "recipe"))

	matches, err := service.Query(context.Background(), "smoothie", 5, entities.ContentTypeHeroImage)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches for an absent content type, want 0", len(matches))
	}
}

func TestQuery_NilEmbedderIsUnavailable(t *testing.T) {
	service := NewIndexingService(nil, newFakeIndex(), nil)

	_, err := service.Query(context.Background(), "smoothie", 5, "")

	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Type != apperrors.ErrorTypeUnavailable {
		t.Errorf("err = %v, want an unavailable error", err)
	}
}
