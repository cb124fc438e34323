package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/repositories"
	"github.com/blendora/shopsense/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/blendora/shopsense/backend/pkg/errors"
)

// InterpretationAdapter implements InterpretationAnalyticsRepository
type InterpretationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewInterpretationAdapter creates a new interpretation analytics adapter
func NewInterpretationAdapter(client *postgres.Client) repositories.InterpretationAnalyticsRepository {
	return &InterpretationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LogEvent records one interpretation outcome
func (a *InterpretationAdapter) LogEvent(ctx context.Context, event *entities.InterpretationEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	record := goqu.Record{
		"id":            event.ID,
		"session_id":    event.SessionID,
		"query":         event.Query,
		"intent_type":   event.IntentType,
		"confidence":    event.Confidence,
		"journey_stage": event.JourneyStage,
		"source":        event.Source,
		"latency_ms":    event.LatencyMs,
		"created_at":    event.CreatedAt,
	}

	query, args, err := a.db.Insert("interpretation_analytics").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to log interpretation event", err)
	}

	return nil
}

// GetLowConfidenceEvents returns the most recent interpretations below the
// given confidence, newest first. These feed prompt tuning.
func (a *InterpretationAdapter) GetLowConfidenceEvents(ctx context.Context, threshold float64, limit int) ([]*entities.InterpretationEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := a.db.
		Select("id", "session_id", "query", "intent_type", "confidence", "journey_stage", "source", "latency_ms", "created_at").
		From("interpretation_analytics").
		Where(goqu.C("confidence").Lt(threshold)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build select query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get low confidence events", err)
	}
	defer rows.Close()

	var events []*entities.InterpretationEvent
	for rows.Next() {
		e := &entities.InterpretationEvent{}
		err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.Query,
			&e.IntentType,
			&e.Confidence,
			&e.JourneyStage,
			&e.Source,
			&e.LatencyMs,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan interpretation event", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate interpretation events", err)
	}

	return events, nil
}
