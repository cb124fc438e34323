package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
	"github.com/blendora/shopsense/backend/internal/domain/repositories"
	"github.com/blendora/shopsense/backend/internal/infrastructure/observability"
	"github.com/blendora/shopsense/backend/pkg/retry"
)

// InterpretRequest carries everything needed for one interpretation.
type InterpretRequest struct {
	SessionID       string
	Summary         entities.CompactedSummary
	CurrentQuery    string
	PreviousQueries []string
	ProfileHints    map[string]string
	Tier            providers.ModelTier
}

// IntentInterpreter converts a compacted summary into an intent profile by
// calling the reasoning service, falling back to deterministic rules on any
// failure. Interpret never returns an error; quality degrades instead.
type IntentInterpreter struct {
	reasoning providers.ReasoningProvider
	fallback  *FallbackInterpreter
	analytics repositories.InterpretationAnalyticsRepository
	bus       providers.EventBus
	flags     *FeatureFlags
	metrics   *observability.Metrics
}

// NewIntentInterpreter creates a new intent interpreter. The reasoning
// provider, analytics repository, event bus, and metrics may each be nil;
// the interpreter degrades to fallback-only operation without them.
func NewIntentInterpreter(
	reasoning providers.ReasoningProvider,
	fallback *FallbackInterpreter,
	analytics repositories.InterpretationAnalyticsRepository,
	bus providers.EventBus,
	flags *FeatureFlags,
	metrics *observability.Metrics,
) *IntentInterpreter {
	return &IntentInterpreter{
		reasoning: reasoning,
		fallback:  fallback,
		analytics: analytics,
		bus:       bus,
		flags:     flags,
		metrics:   metrics,
	}
}

// Interpret produces a fully populated intent profile for the request.
func (i *IntentInterpreter) Interpret(ctx context.Context, req *InterpretRequest) *entities.IntentProfile {
	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	merged := i.mergeContext(req)

	profile := i.interpretLive(ctx, &merged, req.Tier)
	if profile == nil {
		profile = i.fallback.Interpret(&merged)
	} else if i.flags != nil && i.flags.FallbackShadowEnabled() {
		shadow := i.fallback.Interpret(&merged)
		logger.Debug().
			Str("model_intent", string(profile.Classification.IntentType)).
			Str("shadow_intent", string(shadow.Classification.IntentType)).
			Bool("agree", profile.Classification.IntentType == shadow.Classification.IntentType).
			Msg("fallback shadow comparison")
	}

	observability.RecordInterpretation(ctx, i.metrics, profile.Source, profile.Classification.Confidence)
	i.logAnalytics(ctx, req, profile, time.Since(start))
	i.publishProfile(ctx, req.SessionID, profile)

	return profile
}

// interpretLive returns nil whenever the live path cannot produce a valid
// profile, deferring to the fallback interpreter.
func (i *IntentInterpreter) interpretLive(ctx context.Context, merged *entities.CompactedSummary, tier providers.ModelTier) *entities.IntentProfile {
	if i.reasoning == nil {
		return nil
	}
	if i.flags != nil && !i.flags.LiveInterpreterEnabled() {
		return nil
	}

	logger := observability.LoggerFromContext(ctx)

	payload, err := json.Marshal(merged)
	if err != nil {
		logger.Error().Err(err).Msg("failed to marshal compacted summary")
		return nil
	}

	if tier == "" {
		tier = providers.TierFast
	}

	// At most one retry; the page-generation loop cannot wait longer.
	var raw string
	err = retry.Do(ctx, retry.SingleRetryConfig(), func() error {
		var callErr error
		raw, callErr = i.reasoning.Complete(ctx, intentSystemPrompt, string(payload), tier)
		return callErr
	})
	if err != nil {
		logger.Warn().Err(err).Msg("reasoning service unavailable, using fallback interpreter")
		return nil
	}

	profile, err := parseIntentProfile(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("unparsable reasoning response, using fallback interpreter")
		return nil
	}

	// The model may omit entities that are evident from behavior.
	if len(profile.Classification.Entities.Products) == 0 && len(merged.Products) > 0 {
		profile.Classification.Entities.Products = merged.Products
	}

	profile.Source = entities.ProfileSourceModel
	return profile
}

// mergeContext copies the summary and folds in the explicit query, prior
// queries, and low-confidence hints, only when present.
func (i *IntentInterpreter) mergeContext(req *InterpretRequest) entities.CompactedSummary {
	merged := req.Summary
	if req.CurrentQuery != "" {
		merged.CurrentQuery = req.CurrentQuery
	}
	if len(req.PreviousQueries) > 0 {
		merged.PreviousQueries = req.PreviousQueries
	}
	if len(req.ProfileHints) > 0 {
		merged.ProfileHints = req.ProfileHints
	}
	return merged
}

func (i *IntentInterpreter) logAnalytics(ctx context.Context, req *InterpretRequest, profile *entities.IntentProfile, elapsed time.Duration) {
	if i.analytics == nil {
		return
	}
	event := &entities.InterpretationEvent{
		ID:           uuid.New().String(),
		SessionID:    req.SessionID,
		Query:        req.CurrentQuery,
		IntentType:   string(profile.Classification.IntentType),
		Confidence:   profile.Classification.Confidence,
		JourneyStage: string(profile.Classification.JourneyStage),
		Source:       profile.Source,
		LatencyMs:    int(elapsed.Milliseconds()),
		CreatedAt:    time.Now(),
	}
	if err := i.analytics.LogEvent(ctx, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to log interpretation event")
	}
}

func (i *IntentInterpreter) publishProfile(ctx context.Context, sessionID string, profile *entities.IntentProfile) {
	if i.bus == nil || sessionID == "" {
		return
	}
	event := &entities.ProfileEvent{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Profile:   *profile,
		Timestamp: time.Now(),
	}
	if err := i.bus.Publish(ctx, providers.GetSessionChannel(sessionID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to publish profile event")
	}
}

// parseIntentProfile locates the first balanced JSON object in the
// reasoning service's free-text response and decodes it strictly.
func parseIntentProfile(raw string) (*entities.IntentProfile, error) {
	obj, ok := extractJSONObject(raw)
	if !ok {
		return nil, errors.New("no JSON object found in response")
	}

	var profile entities.IntentProfile
	if err := json.Unmarshal([]byte(obj), &profile); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// extractJSONObject returns the first balanced {...} substring. Brace
// matching is string-aware, so nested objects and braces inside string
// values do not truncate the result.
func extractJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for idx, r := range text {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '{':
			if start < 0 {
				start = idx
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : idx+1], true
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	return "", false
}
