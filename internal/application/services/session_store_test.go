package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

// memoryCache is an in-process CacheProvider for tests.
type memoryCache struct {
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("cache miss: %s", key)
	}
	return v, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.data[key] = value
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func newTestStore(cache *memoryCache) *SessionStore {
	return NewSessionStore(cache, NewGapAnalyzer(), "test-session", nil)
}

func TestSessionStore_GetCreatesFreshSession(t *testing.T) {
	store := newTestStore(newMemoryCache())

	session := store.Get(context.Background())

	if session.ID != "test-session" {
		t.Errorf("ID = %q", session.ID)
	}
	if len(session.Queries) != 0 {
		t.Errorf("fresh session has %d queries", len(session.Queries))
	}
}

func TestSessionStore_GeneratesIDWhenEmpty(t *testing.T) {
	store := NewSessionStore(newMemoryCache(), nil, "", nil)

	id := store.SessionID()
	if id == "" {
		t.Fatal("SessionID() returned empty")
	}
	if store.SessionID() != id {
		t.Error("SessionID() is not stable")
	}
}

func TestSessionStore_CapKeepsTenMostRecent(t *testing.T) {
	store := newTestStore(newMemoryCache())
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		err := store.AddQuery(ctx, entities.QueryHistoryEntry{
			Query:     fmt.Sprintf("query %d", i),
			Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("AddQuery() error = %v", err)
		}
	}

	session := store.Get(ctx)
	if len(session.Queries) != 10 {
		t.Fatalf("got %d queries, want 10", len(session.Queries))
	}
	if session.Queries[0].Query != "query 5" {
		t.Errorf("oldest retained = %q, want \"query 5\"", session.Queries[0].Query)
	}
	if session.Queries[9].Query != "query 14" {
		t.Errorf("newest retained = %q, want \"query 14\"", session.Queries[9].Query)
	}
}

func TestSessionStore_DedupReplacesLastEntry(t *testing.T) {
	store := newTestStore(newMemoryCache())
	ctx := context.Background()

	first := entities.QueryHistoryEntry{
		Query:      "quiet blender",
		Enrichment: &entities.QueryEnrichment{Confidence: 0.5},
	}
	second := entities.QueryHistoryEntry{
		Query:      "Quiet Blender",
		Enrichment: &entities.QueryEnrichment{Confidence: 0.9, JourneyStage: entities.StageComparing},
	}

	if err := store.AddQuery(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := store.AddQuery(ctx, second); err != nil {
		t.Fatal(err)
	}

	session := store.Get(ctx)
	if len(session.Queries) != 1 {
		t.Fatalf("got %d entries, want 1", len(session.Queries))
	}
	if session.Queries[0].Enrichment.Confidence != 0.9 {
		t.Errorf("later enrichment did not win: %+v", session.Queries[0].Enrichment)
	}
}

func TestSessionStore_DedupOnlyAppliesToLastEntry(t *testing.T) {
	store := newTestStore(newMemoryCache())
	ctx := context.Background()

	for _, q := range []string{"blender", "smoothie maker", "blender"} {
		if err := store.AddQuery(ctx, entities.QueryHistoryEntry{Query: q}); err != nil {
			t.Fatal(err)
		}
	}

	session := store.Get(ctx)
	if len(session.Queries) != 3 {
		t.Errorf("got %d entries, want 3 (non-adjacent repeat appends)", len(session.Queries))
	}
}

func TestSessionStore_EmptyQueryIsNoOp(t *testing.T) {
	store := newTestStore(newMemoryCache())
	ctx := context.Background()

	if err := store.AddQuery(ctx, entities.QueryHistoryEntry{Query: "   "}); err != nil {
		t.Fatal(err)
	}
	if store.HasContext(ctx) {
		t.Error("blank query created history")
	}
}

func TestSessionStore_CorruptedStateIsDiscarded(t *testing.T) {
	cache := newMemoryCache()
	cache.data["shopper_session:test-session"] = []byte("{not json")

	store := newTestStore(cache)
	session := store.Get(context.Background())

	if session.ID != "test-session" {
		t.Errorf("ID = %q", session.ID)
	}
	if len(session.Queries) != 0 {
		t.Error("corrupted state was not discarded")
	}
}

func TestSessionStore_PersistsAcrossHandles(t *testing.T) {
	cache := newMemoryCache()
	ctx := context.Background()

	first := newTestStore(cache)
	if err := first.AddQuery(ctx, entities.QueryHistoryEntry{Query: "soup blender"}); err != nil {
		t.Fatal(err)
	}

	second := newTestStore(cache)
	if !second.HasContext(ctx) {
		t.Fatal("second handle does not see the write")
	}
	if second.Get(ctx).Queries[0].Query != "soup blender" {
		t.Error("persisted entry mismatch")
	}
}

func TestSessionStore_AllProductsIncludesEnrichment(t *testing.T) {
	store := newTestStore(newMemoryCache())
	ctx := context.Background()

	err := store.AddQuery(ctx, entities.QueryHistoryEntry{
		Query:    "smoothie blender",
		Products: []string{"Pro 750"},
		Enrichment: &entities.QueryEnrichment{
			RecommendedProducts: []string{"Classic 500", "Pro 750"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	products := store.AllProducts(ctx)
	if len(products) != 2 {
		t.Errorf("AllProducts() = %v, want deduped pair", products)
	}
}

func TestSessionStore_Clear(t *testing.T) {
	store := newTestStore(newMemoryCache())
	ctx := context.Background()

	if err := store.AddQuery(ctx, entities.QueryHistoryEntry{Query: "blender"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if store.HasContext(ctx) {
		t.Error("history survived Clear()")
	}
}
