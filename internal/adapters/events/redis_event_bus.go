package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/blendora/shopsense/backend/internal/domain/entities"
	"github.com/blendora/shopsense/backend/internal/domain/providers"
	redisclient "github.com/blendora/shopsense/backend/internal/infrastructure/clients/redis"
)

// subscriberBuffer bounds each subscriber channel. A slow consumer drops
// events rather than stalling the fan-out loop.
const subscriberBuffer = 100

// RedisEventBus distributes profile events over Redis Pub/Sub. One Redis
// subscription is held per channel regardless of how many local
// subscribers are attached to it.
type RedisEventBus struct {
	client  *redisclient.Client
	pubsubs map[string]*redis.PubSub
	fanouts map[string]map[chan *entities.ProfileEvent]struct{}
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRedisEventBus creates an event bus on top of an established Redis
// connection.
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:  client,
		pubsubs: make(map[string]*redis.PubSub),
		fanouts: make(map[string]map[chan *entities.ProfileEvent]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Publish sends an event to every subscriber of the channel, across all
// API instances sharing the Redis.
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.ProfileEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Client().Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Msg("published profile event")
	return nil
}

// Subscribe attaches a new subscriber to the channel. The returned channel
// is closed when ctx is cancelled or the bus shuts down.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ProfileEvent, error) {
	b.mu.Lock()
	if _, open := b.pubsubs[channel]; !open {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.pubsubs[channel] = pubsub
		go b.fanOut(channel, pubsub)
	}
	if b.fanouts[channel] == nil {
		b.fanouts[channel] = make(map[chan *entities.ProfileEvent]struct{})
	}

	events := make(chan *entities.ProfileEvent, subscriberBuffer)
	b.fanouts[channel][events] = struct{}{}
	count := len(b.fanouts[channel])
	b.mu.Unlock()

	log.Debug().Str("channel", channel).Int("subscribers", count).Msg("subscribed to channel")

	go func() {
		<-ctx.Done()
		b.detach(channel, events)
	}()

	return events, nil
}

// fanOut forwards messages from the Redis subscription to every attached
// subscriber until the bus context is cancelled or Redis closes the feed.
func (b *RedisEventBus) fanOut(channel string, pubsub *redis.PubSub) {
	defer func() {
		if err := b.closeChannel(channel); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to close channel")
		}
	}()

	feed := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-feed:
			if !ok {
				return
			}

			var event entities.ProfileEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("failed to unmarshal profile event")
				continue
			}

			b.mu.RLock()
			for subscriber := range b.fanouts[channel] {
				select {
				case subscriber <- &event:
				default:
					log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber buffer full, dropping event")
				}
			}
			b.mu.RUnlock()
		}
	}
}

// detach removes one subscriber; the last one out closes the Redis
// subscription for the channel.
func (b *RedisEventBus) detach(channel string, events chan *entities.ProfileEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers, open := b.fanouts[channel]
	if !open {
		return
	}
	if _, ok := subscribers[events]; !ok {
		return
	}

	delete(subscribers, events)
	close(events)

	if len(subscribers) == 0 {
		delete(b.fanouts, channel)
		if pubsub, ok := b.pubsubs[channel]; ok {
			_ = pubsub.Close()
			delete(b.pubsubs, channel)
			log.Debug().Str("channel", channel).Msg("closed channel subscription")
		}
	}
}

func (b *RedisEventBus) closeChannel(channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, open := b.fanouts[channel]; open {
		for subscriber := range subscribers {
			close(subscriber)
		}
		delete(b.fanouts, channel)
	}

	if pubsub, ok := b.pubsubs[channel]; ok {
		if err := pubsub.Close(); err != nil {
			return fmt.Errorf("failed to close subscription %s: %w", channel, err)
		}
		delete(b.pubsubs, channel)
		log.Debug().Str("channel", channel).Msg("closed channel subscription")
	}

	return nil
}

// Unsubscribe drops every subscriber of the channel at once.
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return b.closeChannel(channel)
}

// Close shuts down every subscription. Called during graceful shutdown
// before the HTTP server drains.
func (b *RedisEventBus) Close() error {
	b.cancel()

	b.mu.RLock()
	channels := make([]string, 0, len(b.pubsubs))
	for channel := range b.pubsubs {
		channels = append(channels, channel)
	}
	b.mu.RUnlock()

	var errs []error
	for _, channel := range channels {
		if err := b.closeChannel(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %v", errs)
	}

	log.Debug().Msg("event bus closed")
	return nil
}
