package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/quillstore/quill/internal/shared/goroutine"
	"github.com/quillstore/quill/internal/shared/logger"
)

const entitlementEventChannel = "quill:entitlement:events"

// EntitlementEventType represents the type of entitlement event.
type EntitlementEventType string

const (
	EntitlementEventGranted  EntitlementEventType = "granted"
	EntitlementEventRefunded EntitlementEventType = "refunded"
	EntitlementEventRestored EntitlementEventType = "restored"
)

// EntitlementEvent is a per-account entitlement change relayed across
// instances so every instance can notify its own connected clients.
type EntitlementEvent struct {
	Type           EntitlementEventType `json:"type"`
	AccountSID     string               `json:"account_sid"`
	EntitlementSID string               `json:"entitlement_sid"`
	ProductSID     string               `json:"product_sid"`
	OrderRef       string               `json:"order_ref,omitempty"`
	Timestamp      int64                `json:"timestamp"`
	InstanceID     string               `json:"instance_id,omitempty"` // Source instance ID to avoid self-delivery
}

// EntitlementEventPublisher defines the interface for publishing entitlement events.
type EntitlementEventPublisher interface {
	PublishEntitlementEvent(ctx context.Context, event EntitlementEvent) error
}

// EntitlementEventSubscriber defines the interface for subscribing to entitlement events.
type EntitlementEventSubscriber interface {
	SubscribeEntitlementEvents(ctx context.Context, handler func(event EntitlementEvent)) error
}

// EntitlementEventBus combines publisher and subscriber interfaces.
type EntitlementEventBus interface {
	EntitlementEventPublisher
	EntitlementEventSubscriber
}

// RedisEntitlementEventBus implements EntitlementEventBus using Redis Pub/Sub.
type RedisEntitlementEventBus struct {
	client     *redis.Client
	logger     logger.Interface
	instanceID string // Unique ID for this instance to avoid self-delivery
}

// NewRedisEntitlementEventBus creates a new Redis-based entitlement event bus.
func NewRedisEntitlementEventBus(client *redis.Client, logger logger.Interface) *RedisEntitlementEventBus {
	return &RedisEntitlementEventBus{
		client:     client,
		logger:     logger,
		instanceID: uuid.NewString(),
	}
}

// PublishEntitlementEvent publishes an entitlement event to Redis for
// cross-instance delivery. The instance ID is set automatically so the
// publishing instance can skip its own relayed copy.
func (b *RedisEntitlementEventBus) PublishEntitlementEvent(ctx context.Context, event EntitlementEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UTC().Unix()
	}
	event.InstanceID = b.instanceID

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal entitlement event: %w", err)
	}

	if err := b.client.Publish(ctx, entitlementEventChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish entitlement event",
			"event_type", event.Type,
			"account_sid", event.AccountSID,
			"error", err,
		)
		return fmt.Errorf("failed to publish entitlement event: %w", err)
	}

	b.logger.Debugw("entitlement event published to Redis",
		"event_type", event.Type,
		"account_sid", event.AccountSID,
		"entitlement_sid", event.EntitlementSID,
	)
	return nil
}

// SubscribeEntitlementEvents subscribes to entitlement events from Redis.
// Events published by this instance are filtered out.
func (b *RedisEntitlementEventBus) SubscribeEntitlementEvents(ctx context.Context, handler func(event EntitlementEvent)) error {
	return b.subscribeWithReconnect(ctx, entitlementEventChannel, func(payload string) {
		var event EntitlementEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			b.logger.Warnw("failed to unmarshal entitlement event",
				"payload", payload,
				"error", err,
			)
			return
		}

		if event.InstanceID == b.instanceID {
			return
		}

		handler(event)
	})
}

// subscribeWithReconnect wraps subscribe with automatic reconnection and exponential backoff.
func (b *RedisEntitlementEventBus) subscribeWithReconnect(ctx context.Context, channel string, handler func(payload string)) error {
	backoff := time.Second
	maxBackoff := 30 * time.Second

	for {
		err := b.subscribe(ctx, channel, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.logger.Warnw("entitlement subscription disconnected, reconnecting",
			"channel", channel,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, maxBackoff)
	}
}

func (b *RedisEntitlementEventBus) subscribe(ctx context.Context, channel string, handler func(payload string)) error {
	pubsub := b.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	_, err := pubsub.Receive(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to channel %s: %w", channel, err)
	}

	b.logger.Infow("subscribed to entitlement event channel",
		"channel", channel,
	)

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("entitlement event subscriber stopped",
				"channel", channel,
				"reason", ctx.Err(),
			)
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("entitlement event channel closed",
					"channel", channel,
				)
				return nil
			}

			goroutine.SafeGo(b.logger, "entitlement-event-handler", func() {
				handler(msg.Payload)
			})
		}
	}
}
