package providers

import (
	"context"
)

// ModelTier selects the reasoning model preset for a request.
type ModelTier string

const (
	TierFast    ModelTier = "fast"
	TierQuality ModelTier = "quality"
)

// ReasoningProvider defines the interface to the hosted reasoning service.
// The response is free-form text expected to contain one JSON object; the
// caller owns extraction and validation.
type ReasoningProvider interface {
	Complete(ctx context.Context, systemPrompt, userPayload string, tier ModelTier) (string, error)
}
