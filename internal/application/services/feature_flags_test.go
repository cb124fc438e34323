package services

import "testing"

func TestFeatureFlags_Defaults(t *testing.T) {
	t.Setenv("FEATURE_LIVE_INTERPRETER", "")
	t.Setenv("FEATURE_FALLBACK_SHADOW", "")

	flags := NewFeatureFlags()

	if !flags.LiveInterpreterEnabled() {
		t.Error("LiveInterpreterEnabled() = false, want true by default")
	}
	if flags.FallbackShadowEnabled() {
		t.Error("FallbackShadowEnabled() = true, want false by default")
	}
}

func TestFeatureFlags_EnvOverrides(t *testing.T) {
	t.Setenv("FEATURE_LIVE_INTERPRETER", "false")
	t.Setenv("FEATURE_FALLBACK_SHADOW", "true")

	flags := NewFeatureFlags()

	if flags.LiveInterpreterEnabled() {
		t.Error("LiveInterpreterEnabled() = true, want false")
	}
	if !flags.FallbackShadowEnabled() {
		t.Error("FallbackShadowEnabled() = false, want true")
	}
}

func TestEnvFlag_InvalidValueKeepsDefault(t *testing.T) {
	t.Setenv("FEATURE_LIVE_INTERPRETER", "yes please")

	if !envFlag("FEATURE_LIVE_INTERPRETER", true) {
		t.Error("envFlag() = false for unparseable value, want default")
	}
}
