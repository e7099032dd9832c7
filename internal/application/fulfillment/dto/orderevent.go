// Package dto defines the wire shapes of payment provider webhook events.
package dto

import "strings"

// Provider event names we act on. Anything else is acknowledged and ignored.
const (
	EventOrderCreated  = "order_created"
	EventOrderRefunded = "order_refunded"
)

// OrderEvent is the provider's webhook envelope. Only the fields the
// fulfillment pipeline reads are mapped; the rest of the payload is
// ignored. Parsing happens strictly after signature verification.
type OrderEvent struct {
	Meta EventMeta `json:"meta"`
	Data EventData `json:"data"`
}

type EventMeta struct {
	EventName  string     `json:"event_name"`
	CustomData CustomData `json:"custom_data"`
}

// CustomData carries checkout metadata we attached when creating the
// checkout session. UserID is the buyer's account SID; ProductIDs is a
// comma-separated list of product SIDs.
type CustomData struct {
	UserID     string `json:"user_id"`
	ProductIDs string `json:"product_ids"`
}

type EventData struct {
	ID         string          `json:"id"`
	Attributes EventAttributes `json:"attributes"`
}

type EventAttributes struct {
	UserEmail      string      `json:"user_email"`
	Status         string      `json:"status"`
	FirstOrderItem *OrderItem  `json:"first_order_item"`
	OrderItems     []OrderItem `json:"order_items"`
}

type OrderItem struct {
	VariantID int64 `json:"variant_id"`
}

// ProductSIDs splits the comma-separated custom product list, dropping
// empty segments.
func (c CustomData) ProductSIDs() []string {
	if c.ProductIDs == "" {
		return nil
	}

	parts := strings.Split(c.ProductIDs, ",")
	sids := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			sids = append(sids, s)
		}
	}
	return sids
}

// VariantIDs collects the distinct variant IDs across all order items,
// falling back to first_order_item when the items array is absent.
func (e EventAttributes) VariantIDs() []int64 {
	seen := make(map[int64]bool)
	var ids []int64

	add := func(id int64) {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, item := range e.OrderItems {
		add(item.VariantID)
	}
	if len(ids) == 0 && e.FirstOrderItem != nil {
		add(e.FirstOrderItem.VariantID)
	}

	return ids
}
