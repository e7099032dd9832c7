package dto

import "time"

// LibraryProductDTO is the catalog slice of a library entry.
type LibraryProductDTO struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	World      string `json:"world,omitempty"`
	PriceCents uint64 `json:"price_cents"`
	Currency   string `json:"currency"`
}

// LibraryItemDTO is one owned product in a buyer's library.
type LibraryItemDTO struct {
	EntitlementID string             `json:"entitlement_id"`
	Status        string             `json:"status"`
	Source        string             `json:"source"`
	OrderRef      string             `json:"order_ref,omitempty"`
	GrantedAt     time.Time          `json:"granted_at"`
	Product       *LibraryProductDTO `json:"product,omitempty"`
}
