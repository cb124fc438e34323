package providers

import (
	"context"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// intent-profile events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ProfileEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ProfileEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event types
const (
	// EventChannelProfileUpdates is the channel for all profile updates
	EventChannelProfileUpdates = "profile:updates"

	// EventChannelSessionPrefix is the prefix for session-specific channels
	EventChannelSessionPrefix = "profile:session:"
)

// GetSessionChannel returns the channel name for a specific session
func GetSessionChannel(sessionID string) string {
	return EventChannelSessionPrefix + sessionID
}
