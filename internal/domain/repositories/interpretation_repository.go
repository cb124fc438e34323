package repositories

import (
	"context"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

// InterpretationAnalyticsRepository persists interpretation events for
// offline analysis (prompt tuning, fallback rule coverage).
type InterpretationAnalyticsRepository interface {
	// LogEvent records one interpretation.
	LogEvent(ctx context.Context, event *entities.InterpretationEvent) error

	// GetLowConfidenceEvents returns recent events below the given
	// confidence, newest first. These highlight queries the live
	// interpreter handles poorly.
	GetLowConfidenceEvents(ctx context.Context, threshold float64, limit int) ([]*entities.InterpretationEvent, error)
}
