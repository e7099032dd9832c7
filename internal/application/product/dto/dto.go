package dto

import "time"

// ProductDTO is the admin view of a product, including the payment
// provider linkage that never leaves the admin surface.
type ProductDTO struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	World             string    `json:"world,omitempty"`
	Description       string    `json:"description"`
	PriceCents        uint64    `json:"price_cents"`
	Currency          string    `json:"currency"`
	ProviderProductID string    `json:"provider_product_id,omitempty"`
	ProviderVariantID string    `json:"provider_variant_id,omitempty"`
	Published         bool      `json:"published"`
	Position          int       `json:"position"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PublicProductDTO is the storefront view of a published product. The
// description is pre-rendered, sanitized HTML.
type PublicProductDTO struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	World           string `json:"world,omitempty"`
	DescriptionHTML string `json:"description_html,omitempty"`
	PriceCents      uint64 `json:"price_cents"`
	Currency        string `json:"currency"`
	Position        int    `json:"position"`
}
