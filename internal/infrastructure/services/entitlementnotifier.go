package services

import (
	"context"

	"github.com/quillstore/quill/internal/infrastructure/pubsub"
	"github.com/quillstore/quill/internal/shared/goroutine"
	"github.com/quillstore/quill/internal/shared/logger"
)

// EntitlementNotifier fans entitlement changes out to buyers: directly
// into the local LibraryHub, and over the Redis bus so other instances
// deliver to their own connections. The bus suppresses self-delivery,
// so the local push never doubles up.
//
// All delivery is best-effort. A failed publish is logged and dropped;
// fulfillment results never depend on it.
type EntitlementNotifier struct {
	hub    *LibraryHub
	bus    pubsub.EntitlementEventPublisher // Optional, nil in single-instance deployments
	logger logger.Interface
}

func NewEntitlementNotifier(hub *LibraryHub, bus pubsub.EntitlementEventPublisher, logger logger.Interface) *EntitlementNotifier {
	return &EntitlementNotifier{
		hub:    hub,
		bus:    bus,
		logger: logger,
	}
}

func (n *EntitlementNotifier) NotifyGranted(ctx context.Context, accountSID, entitlementSID, productSID, orderRef string) {
	n.hub.NotifyGranted(accountSID, entitlementSID, productSID, orderRef)
	n.relay(pubsub.EntitlementEvent{
		Type:           pubsub.EntitlementEventGranted,
		AccountSID:     accountSID,
		EntitlementSID: entitlementSID,
		ProductSID:     productSID,
		OrderRef:       orderRef,
	})
}

func (n *EntitlementNotifier) NotifyRefunded(ctx context.Context, accountSID, entitlementSID, productSID string) {
	n.hub.NotifyRefunded(accountSID, entitlementSID, productSID)
	n.relay(pubsub.EntitlementEvent{
		Type:           pubsub.EntitlementEventRefunded,
		AccountSID:     accountSID,
		EntitlementSID: entitlementSID,
		ProductSID:     productSID,
	})
}

func (n *EntitlementNotifier) NotifyRestored(ctx context.Context, accountSID, entitlementSID, productSID string) {
	n.hub.NotifyRestored(accountSID, entitlementSID, productSID)
	n.relay(pubsub.EntitlementEvent{
		Type:           pubsub.EntitlementEventRestored,
		AccountSID:     accountSID,
		EntitlementSID: entitlementSID,
		ProductSID:     productSID,
	})
}

// relay publishes asynchronously so webhook handling never waits on
// redis. The request context is deliberately not used: the publish
// should survive the webhook response being written.
func (n *EntitlementNotifier) relay(event pubsub.EntitlementEvent) {
	if n.bus == nil {
		return
	}
	goroutine.SafeGo(n.logger, "entitlement-event-publish", func() {
		if err := n.bus.PublishEntitlementEvent(context.Background(), event); err != nil {
			n.logger.Warnw("failed to publish entitlement event",
				"type", event.Type,
				"account_sid", event.AccountSID,
				"error", err,
			)
		}
	})
}

// StartEntitlementEventRelay subscribes the hub to the bus so grants
// made by other instances reach accounts connected here.
func StartEntitlementEventRelay(ctx context.Context, bus pubsub.EntitlementEventSubscriber, hub *LibraryHub, log logger.Interface) error {
	return bus.SubscribeEntitlementEvents(ctx, func(event pubsub.EntitlementEvent) {
		switch event.Type {
		case pubsub.EntitlementEventGranted:
			hub.NotifyGranted(event.AccountSID, event.EntitlementSID, event.ProductSID, event.OrderRef)
		case pubsub.EntitlementEventRefunded:
			hub.NotifyRefunded(event.AccountSID, event.EntitlementSID, event.ProductSID)
		case pubsub.EntitlementEventRestored:
			hub.NotifyRestored(event.AccountSID, event.EntitlementSID, event.ProductSID)
		default:
			log.Debugw("ignoring unknown entitlement event type", "type", event.Type)
		}
	})
}
