package services

import (
	"os"
	"strconv"
)

// FeatureFlags holds runtime toggles read from the environment.
type FeatureFlags struct {
	liveInterpreterEnabled bool
	fallbackShadowEnabled  bool
}

// NewFeatureFlags reads the flags from the environment. The live
// interpreter is on by default; the deterministic fallback still covers
// every failure of the live path.
func NewFeatureFlags() *FeatureFlags {
	return &FeatureFlags{
		liveInterpreterEnabled: envFlag("FEATURE_LIVE_INTERPRETER", true),
		fallbackShadowEnabled:  envFlag("FEATURE_FALLBACK_SHADOW", false),
	}
}

// LiveInterpreterEnabled reports whether reasoning-service calls are
// allowed. Off forces fallback-only interpretation.
func (f *FeatureFlags) LiveInterpreterEnabled() bool {
	return f.liveInterpreterEnabled
}

// FallbackShadowEnabled reports whether fallback results are computed
// alongside live ones for comparison logging.
func (f *FeatureFlags) FallbackShadowEnabled() bool {
	return f.fallbackShadowEnabled
}

func envFlag(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
