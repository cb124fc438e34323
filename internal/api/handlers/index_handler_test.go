package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
	apperrors "github.com/blendora/shopsense/backend/pkg/errors"
)

type stubIndexingService struct {
	embedded []entities.CatalogItem
	matches  []entities.VectorMatch
	queryErr error
	status   *entities.IndexStatus
}

func (s *stubIndexingService) EmbedBatch(ctx context.Context, items []entities.CatalogItem) *entities.BatchResult {
	s.embedded = items
	return &entities.BatchResult{Processed: len(items), Success: true}
}

func (s *stubIndexingService) Query(ctx context.Context, text string, topK int, contentType string) ([]entities.VectorMatch, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.matches, nil
}

func (s *stubIndexingService) Status(ctx context.Context) (*entities.IndexStatus, error) {
	return s.status, nil
}

func TestEmbedCatalog_DefaultsContentType(t *testing.T) {
	service := &stubIndexingService{}
	handler := NewIndexHandler(service)

	body, _ := json.Marshal(map[string]interface{}{
		"items": []entities.CatalogItem{
			{SourceID: "https://example.com/recipes/green-smoothie", Name: "Green Smoothie"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/embed", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.EmbedCatalog(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, service.embedded, 1)
	assert.Equal(t, entities.ContentTypeRecipe, service.embedded[0].ContentType)

	var result entities.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Processed)
	assert.True(t, result.Success)
}

func TestEmbedImages_DefaultsContentType(t *testing.T) {
	service := &stubIndexingService{}
	handler := NewIndexHandler(service)

	body, _ := json.Marshal(map[string]interface{}{
		"items": []entities.CatalogItem{
			{SourceID: "https://example.com/images/hero-1", Name: "Hero shot"},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/embed-images", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.EmbedImages(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, service.embedded, 1)
	assert.Equal(t, entities.ContentTypeImage, service.embedded[0].ContentType)
}

func TestEmbedCatalog_RejectsEmptyItems(t *testing.T) {
	handler := NewIndexHandler(&stubIndexingService{})

	req := httptest.NewRequest(http.MethodPost, "/embed", bytes.NewReader([]byte(`{"items":[]}`)))
	rec := httptest.NewRecorder()

	handler.EmbedCatalog(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestEmbedCatalog_RejectsMissingSourceID(t *testing.T) {
	handler := NewIndexHandler(&stubIndexingService{})

	body := []byte(`{"items":[{"name":"No ID"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/embed", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.EmbedCatalog(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuery_ReturnsMatches(t *testing.T) {
	service := &stubIndexingService{
		matches: []entities.VectorMatch{
			{ID: "recipe-abc123def456", Score: 0.91, Metadata: entities.VectorMetadata{ContentType: "recipe"}},
		},
	}
	handler := NewIndexHandler(service)

	body := []byte(`{"text":"smoothie recipes","top_k":5}`)
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Matches []entities.VectorMatch `json:"matches"`
		Count   int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)
	assert.Equal(t, "recipe-abc123def456", response.Matches[0].ID)
}

func TestQuery_ValidationErrorMapsTo400(t *testing.T) {
	service := &stubIndexingService{
		queryErr: apperrors.NewValidationError("query text is required"),
	}
	handler := NewIndexHandler(service)

	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewReader([]byte(`{"text":""}`)))
	rec := httptest.NewRecorder()

	handler.Query(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatus_ReturnsIndexStatus(t *testing.T) {
	service := &stubIndexingService{
		status: &entities.IndexStatus{Provider: "chromem", Collection: "catalog_items", Documents: 42, Ready: true},
	}
	handler := NewIndexHandler(service)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()

	handler.Status(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status entities.IndexStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 42, status.Documents)
	assert.True(t, status.Ready)
}
