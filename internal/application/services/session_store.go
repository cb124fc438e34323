package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
	"github.com/blendora/shopsense/backend/internal/infrastructure/observability"
	"github.com/blendora/shopsense/backend/pkg/config"
)

const sessionKeyPrefix = "shopper_session:"

// SessionStore holds the bounded, deduplicated query history for one
// browsing session. State is written back synchronously after every
// mutation, so a concurrent reader never observes a stale snapshot.
type SessionStore struct {
	cache      providers.CacheProvider
	gaps       *GapAnalyzer
	sessionID  string
	maxQueries int
	ttlSeconds int
	mu         sync.Mutex
}

// NewSessionStore creates a store handle for one session. An empty
// sessionID gets a fresh identifier on first Get.
func NewSessionStore(cache providers.CacheProvider, gaps *GapAnalyzer, sessionID string, cfg *config.SessionConfig) *SessionStore {
	maxQueries := 10
	ttl := 1800
	if cfg != nil {
		if cfg.MaxQueries > 0 {
			maxQueries = cfg.MaxQueries
		}
		if cfg.TTLSeconds > 0 {
			ttl = cfg.TTLSeconds
		}
	}
	return &SessionStore{
		cache:      cache,
		gaps:       gaps,
		sessionID:  sessionID,
		maxQueries: maxQueries,
		ttlSeconds: ttl,
	}
}

// SessionID returns the stable identifier for this store's session.
func (s *SessionStore) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID == "" {
		s.sessionID = uuid.New().String()
	}
	return s.sessionID
}

// Get returns the current session, creating a fresh one if none exists.
// Corrupted persisted state is discarded, never propagated.
func (s *SessionStore) Get(ctx context.Context) *entities.SessionContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *SessionStore) load(ctx context.Context) *entities.SessionContext {
	if s.sessionID == "" {
		s.sessionID = uuid.New().String()
	}

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, sessionKeyPrefix+s.sessionID); err == nil {
			var session entities.SessionContext
			if err := json.Unmarshal(data, &session); err == nil && session.ID != "" {
				return &session
			}
			observability.LoggerFromContext(ctx).Warn().
				Str("session_id", s.sessionID).
				Msg("discarding corrupted session state")
		}
	}

	now := time.Now()
	return &entities.SessionContext{
		ID:        s.sessionID,
		StartedAt: now,
		UpdatedAt: now,
	}
}

func (s *SessionStore) save(ctx context.Context, session *entities.SessionContext) error {
	if s.cache == nil {
		return nil
	}
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttlSeconds)
}

// AddQuery normalizes and appends-or-merges an entry. A repeat of the most
// recent query (a reload-triggered duplicate) replaces that entry instead
// of appending, with the later enrichment winning. The history never
// exceeds the cap; oldest entries are evicted first. The whole mutation is
// atomic at the granularity of one call.
func (s *SessionStore) AddQuery(ctx context.Context, entry entities.QueryHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Query = strings.TrimSpace(entry.Query)
	if entry.Query == "" {
		return nil
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	session := s.load(ctx)

	if n := len(session.Queries); n > 0 && sameQuery(session.Queries[n-1].Query, entry.Query) {
		session.Queries[n-1] = entry
	} else {
		session.Queries = append(session.Queries, entry)
		if len(session.Queries) > s.maxQueries {
			session.Queries = session.Queries[len(session.Queries)-s.maxQueries:]
		}
	}
	session.UpdatedAt = time.Now()

	return s.save(ctx, session)
}

// HasContext reports whether the session has any stored history.
func (s *SessionStore) HasContext(ctx context.Context) bool {
	return len(s.Get(ctx).Queries) > 0
}

// AllProducts returns every product mentioned across the session, deduped
// in first-seen order.
func (s *SessionStore) AllProducts(ctx context.Context) []string {
	return collectStrings(s.Get(ctx).Queries, func(e *entities.QueryHistoryEntry) []string {
		products := e.Products
		if e.Enrichment != nil {
			products = append(products, e.Enrichment.RecommendedProducts...)
		}
		return products
	})
}

// AllIngredients returns every ingredient mentioned across the session.
func (s *SessionStore) AllIngredients(ctx context.Context) []string {
	return collectStrings(s.Get(ctx).Queries, func(e *entities.QueryHistoryEntry) []string {
		return e.Ingredients
	})
}

// BuildRetrievalContext projects stored entries into the subset of fields
// the intent interpreter needs as prior-session context.
func (s *SessionStore) BuildRetrievalContext(ctx context.Context) *entities.RetrievalContext {
	session := s.Get(ctx)
	rc := &entities.RetrievalContext{LastStage: session.LastStage()}
	for _, entry := range session.Queries {
		rc.Queries = append(rc.Queries, entry.Query)
	}
	rc.Products = collectStrings(session.Queries, func(e *entities.QueryHistoryEntry) []string {
		return e.Products
	})
	rc.Ingredients = collectStrings(session.Queries, func(e *entities.QueryHistoryEntry) []string {
		return e.Ingredients
	})
	return rc
}

// ResearchGaps returns the uncovered content categories relevant at the
// given journey stage.
func (s *SessionStore) ResearchGaps(ctx context.Context, stage entities.JourneyStage) []entities.ResearchGap {
	if s.gaps == nil {
		return nil
	}
	return s.gaps.Gaps(s.Get(ctx).Queries, stage)
}

// Clear resets the session state.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil || s.sessionID == "" {
		return nil
	}
	return s.cache.Delete(ctx, sessionKeyPrefix+s.sessionID)
}

func sameQuery(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func collectStrings(entries []entities.QueryHistoryEntry, pick func(*entities.QueryHistoryEntry) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range entries {
		for _, v := range pick(&entries[i]) {
			key := strings.ToLower(strings.TrimSpace(v))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
