package services

import (
	"testing"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

func TestFallbackInterpret_KeywordFamilies(t *testing.T) {
	interpreter := NewFallbackInterpreter()

	tests := []struct {
		name          string
		searches      []string
		wantIntent    entities.IntentType
		wantUseCase   string
		wantEmotional string
	}{
		{
			name:          "family keywords",
			searches:      []string{"blender for picky kids"},
			wantIntent:    entities.IntentUseCase,
			wantUseCase:   "family_meals",
			wantEmotional: "parent looking for solutions",
		},
		{
			name:        "baby food keywords",
			searches:    []string{"baby puree maker"},
			wantIntent:  entities.IntentUseCase,
			wantUseCase: "baby_food",
		},
		{
			name:        "smoothie keyword",
			searches:    []string{"smoothie blender"},
			wantIntent:  entities.IntentUseCase,
			wantUseCase: "smoothies",
		},
		{
			name:        "gift keyword",
			searches:    []string{"wedding present ideas"},
			wantIntent:  entities.IntentGift,
			wantUseCase: "gifting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := interpreter.Interpret(&entities.CompactedSummary{Searches: tt.searches})

			if profile.Classification.IntentType != tt.wantIntent {
				t.Errorf("IntentType = %q, want %q", profile.Classification.IntentType, tt.wantIntent)
			}
			if !containsString(profile.Classification.Entities.UseCases, tt.wantUseCase) {
				t.Errorf("UseCases = %v, want to contain %q", profile.Classification.Entities.UseCases, tt.wantUseCase)
			}
			if tt.wantEmotional != "" && profile.Interpretation.EmotionalContext != tt.wantEmotional {
				t.Errorf("EmotionalContext = %q, want %q", profile.Interpretation.EmotionalContext, tt.wantEmotional)
			}
			if profile.Classification.Confidence != entities.FallbackConfidence {
				t.Errorf("Confidence = %f, want %f", profile.Classification.Confidence, entities.FallbackConfidence)
			}
			if profile.Source != entities.ProfileSourceFallback {
				t.Errorf("Source = %q", profile.Source)
			}
		})
	}
}

func TestFallbackInterpret_GenericDefault(t *testing.T) {
	interpreter := NewFallbackInterpreter()

	profile := interpreter.Interpret(&entities.CompactedSummary{
		Searches: []string{"something entirely unrelated"},
	})

	if profile.Classification.IntentType != entities.IntentDiscovery {
		t.Errorf("IntentType = %q, want discovery", profile.Classification.IntentType)
	}
	if profile.Interpretation.PrimaryIntent != "find the right product" {
		t.Errorf("PrimaryIntent = %q", profile.Interpretation.PrimaryIntent)
	}
}

func TestFallbackInterpret_CurrentQueryCounts(t *testing.T) {
	interpreter := NewFallbackInterpreter()

	profile := interpreter.Interpret(&entities.CompactedSummary{
		CurrentQuery: "Baby Puree",
	})

	if !containsString(profile.Classification.Entities.UseCases, "baby_food") {
		t.Errorf("UseCases = %v, want baby_food", profile.Classification.Entities.UseCases)
	}
	if profile.Interpretation.JourneyStage != entities.StageExploring {
		t.Errorf("JourneyStage = %q, want exploring", profile.Interpretation.JourneyStage)
	}
}

func TestDeriveJourneyStage(t *testing.T) {
	tests := []struct {
		name    string
		summary entities.CompactedSummary
		want    entities.JourneyStage
	}{
		{
			name:    "no signals",
			summary: entities.CompactedSummary{},
			want:    entities.StageExploring,
		},
		{
			name: "two products promote to comparing",
			summary: entities.CompactedSummary{
				Products: []string{"Pro 750", "Classic 500"},
			},
			want: entities.StageComparing,
		},
		{
			name: "comparison category promotes to comparing",
			summary: entities.CompactedSummary{
				Journey: []entities.JourneyEntry{{Action: "click", Category: "comparison"}},
			},
			want: entities.StageComparing,
		},
		{
			name: "cart event promotes to deciding",
			summary: entities.CompactedSummary{
				Journey: []entities.JourneyEntry{{Action: "view", Category: "cart"}},
			},
			want: entities.StageDeciding,
		},
		{
			name: "shipping beats comparison",
			summary: entities.CompactedSummary{
				Products: []string{"Pro 750", "Classic 500"},
				Journey:  []entities.JourneyEntry{{Action: "view", Category: "shipping"}},
			},
			want: entities.StageDeciding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveJourneyStage(&tt.summary); got != tt.want {
				t.Errorf("deriveJourneyStage() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Both stage fields always agree for deterministic profiles.
func TestFallbackInterpret_StagesMatch(t *testing.T) {
	interpreter := NewFallbackInterpreter()

	profile := interpreter.Interpret(&entities.CompactedSummary{
		Products: []string{"Pro 750", "Classic 500"},
	})

	if profile.Interpretation.JourneyStage != profile.Classification.JourneyStage {
		t.Errorf("stages differ: %q vs %q", profile.Interpretation.JourneyStage, profile.Classification.JourneyStage)
	}
	if profile.Classification.JourneyStage != entities.StageComparing {
		t.Errorf("JourneyStage = %q, want comparing", profile.Classification.JourneyStage)
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
