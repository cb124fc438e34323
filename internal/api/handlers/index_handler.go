package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
	apperrors "github.com/blendora/shopsense/backend/pkg/errors"
)

const maxEmbedItems = 1000

// IndexingService defines the indexing operations used by the handler.
type IndexingService interface {
	EmbedBatch(ctx context.Context, items []entities.CatalogItem) *entities.BatchResult
	Query(ctx context.Context, text string, topK int, contentType string) ([]entities.VectorMatch, error)
	Status(ctx context.Context) (*entities.IndexStatus, error)
}

// IndexHandler handles catalog embedding and retrieval requests.
type IndexHandler struct {
	service IndexingService
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(service IndexingService) *IndexHandler {
	return &IndexHandler{service: service}
}

type embedRequest struct {
	Items []entities.CatalogItem `json:"items"`
}

// EmbedCatalog handles POST /embed
func (h *IndexHandler) EmbedCatalog(w http.ResponseWriter, r *http.Request) {
	h.embed(w, r, entities.ContentTypeRecipe)
}

// EmbedImages handles POST /embed-images
func (h *IndexHandler) EmbedImages(w http.ResponseWriter, r *http.Request) {
	h.embed(w, r, entities.ContentTypeImage)
}

func (h *IndexHandler) embed(w http.ResponseWriter, r *http.Request, defaultType string) {
	var payload embedRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(payload.Items) == 0 {
		respondWithError(w, http.StatusBadRequest, "items is required")
		return
	}
	if len(payload.Items) > maxEmbedItems {
		respondWithError(w, http.StatusBadRequest, "too many items")
		return
	}

	for i := range payload.Items {
		item := &payload.Items[i]
		if strings.TrimSpace(item.SourceID) == "" {
			respondWithError(w, http.StatusBadRequest, "every item needs a source_id")
			return
		}
		if item.ContentType == "" {
			item.ContentType = defaultType
		}
	}

	result := h.service.EmbedBatch(r.Context(), payload.Items)
	respondWithJSON(w, http.StatusOK, result)
}

type queryRequest struct {
	Text        string `json:"text"`
	TopK        int    `json:"top_k"`
	ContentType string `json:"content_type"`
}

// Query handles POST /query
func (h *IndexHandler) Query(w http.ResponseWriter, r *http.Request) {
	var payload queryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	matches, err := h.service.Query(r.Context(), payload.Text, payload.TopK, payload.ContentType)
	if err != nil {
		respondWithAppError(w, err, "failed to query index")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// Status handles GET /status
func (h *IndexHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		respondWithAppError(w, err, "failed to describe index")
		return
	}
	respondWithJSON(w, http.StatusOK, status)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

func respondWithAppError(w http.ResponseWriter, err error, fallbackMessage string) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusBadGateway, appErr.Message)
		case apperrors.ErrorTypeUnavailable:
			respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, fallbackMessage)
}
