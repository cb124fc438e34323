package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

// stubSessionStore is an in-memory SessionStore for handler tests.
type stubSessionStore struct {
	id          string
	session     *entities.SessionContext
	gaps        []entities.ResearchGap
	cleared     bool
	addQueryErr error
}

func newStubSessionStore(id string) *stubSessionStore {
	now := time.Now()
	return &stubSessionStore{
		id: id,
		session: &entities.SessionContext{
			ID:        id,
			StartedAt: now,
			UpdatedAt: now,
		},
	}
}

func (s *stubSessionStore) SessionID() string { return s.id }

func (s *stubSessionStore) Get(ctx context.Context) *entities.SessionContext { return s.session }

func (s *stubSessionStore) AddQuery(ctx context.Context, entry entities.QueryHistoryEntry) error {
	if s.addQueryErr != nil {
		return s.addQueryErr
	}
	s.session.Queries = append(s.session.Queries, entry)
	return nil
}

func (s *stubSessionStore) Clear(ctx context.Context) error {
	s.cleared = true
	s.session.Queries = nil
	return nil
}

func (s *stubSessionStore) BuildRetrievalContext(ctx context.Context) *entities.RetrievalContext {
	rc := &entities.RetrievalContext{LastStage: s.session.LastStage()}
	for _, q := range s.session.Queries {
		rc.Queries = append(rc.Queries, q.Query)
	}
	return rc
}

func (s *stubSessionStore) ResearchGaps(ctx context.Context, stage entities.JourneyStage) []entities.ResearchGap {
	return s.gaps
}

func stubFactory(store *stubSessionStore) SessionStoreFactory {
	return func(sessionID string) SessionStore { return store }
}

func TestGetSession_ReturnsSession(t *testing.T) {
	store := newStubSessionStore("sess-1")
	handler := NewSessionHandler(stubFactory(store))

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("X-Session-ID", "sess-1")
	rec := httptest.NewRecorder()

	handler.GetSession(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var session entities.SessionContext
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "sess-1", session.ID)
}

func TestClearSession_RequiresSessionID(t *testing.T) {
	handler := NewSessionHandler(stubFactory(newStubSessionStore("")))

	req := httptest.NewRequest(http.MethodDelete, "/api/session", nil)
	rec := httptest.NewRecorder()

	handler.ClearSession(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearSession_Clears(t *testing.T) {
	store := newStubSessionStore("sess-1")
	handler := NewSessionHandler(stubFactory(store))

	req := httptest.NewRequest(http.MethodDelete, "/api/session?session_id=sess-1", nil)
	rec := httptest.NewRecorder()

	handler.ClearSession(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.cleared)
}

func TestGetResearchGaps_UsesExplicitStage(t *testing.T) {
	store := newStubSessionStore("sess-1")
	store.gaps = []entities.ResearchGap{
		{Type: entities.GapReviews, Query: "blender reviews", Label: "Reviews"},
	}
	handler := NewSessionHandler(stubFactory(store))

	req := httptest.NewRequest(http.MethodGet, "/api/session/gaps?session_id=sess-1&stage=comparing", nil)
	rec := httptest.NewRecorder()

	handler.GetResearchGaps(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Stage entities.JourneyStage  `json:"stage"`
		Gaps  []entities.ResearchGap `json:"gaps"`
		Count int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, entities.StageComparing, response.Stage)
	assert.Equal(t, 1, response.Count)
}

func TestGetResearchGaps_RejectsUnknownStage(t *testing.T) {
	handler := NewSessionHandler(stubFactory(newStubSessionStore("sess-1")))

	req := httptest.NewRequest(http.MethodGet, "/api/session/gaps?session_id=sess-1&stage=wandering", nil)
	rec := httptest.NewRecorder()

	handler.GetResearchGaps(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
