// Package product provides the catalog domain model. Products are
// read-mostly reference data: the storefront lists them, and the
// fulfillment pipeline uses them as a lookup table from payment-provider
// variant identifiers to internal products.
package product

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/quillstore/quill/internal/shared/id"
)

var (
	// ErrNotFound is returned when a product is not found
	ErrNotFound = errors.New("product not found")

	// ErrTitleRequired is returned when the title is empty
	ErrTitleRequired = errors.New("product title is required")

	// ErrInvalidSlug is returned when the slug is empty or malformed
	ErrInvalidSlug = errors.New("product slug must be lowercase letters, digits and hyphens")

	// ErrDuplicateSlug is returned when the slug is already taken
	ErrDuplicateSlug = errors.New("product slug already exists")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Product is the catalog aggregate root.
type Product struct {
	dbID              uint
	sid               string
	title             string
	slug              string
	world             string // category grouping shown in the storefront
	description       string // markdown source
	priceCents        uint64
	currency          string
	providerProductID string // the product's ID in the payment provider
	providerVariantID string // checkout variant ID, the fulfillment lookup key
	published         bool
	position          int
	createdAt         time.Time
	updatedAt         time.Time
}

// NewProduct creates an unpublished product.
func NewProduct(title, slug, world, description string, priceCents uint64, currency string) (*Product, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}
	if currency == "" {
		currency = "USD"
	}

	sid, err := id.NewProductSID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Product{
		sid:         sid,
		title:       title,
		slug:        slug,
		world:       world,
		description: description,
		priceCents:  priceCents,
		currency:    strings.ToUpper(currency),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a product from persistence.
func Reconstruct(
	dbID uint,
	sid, title, slug, world, description string,
	priceCents uint64,
	currency string,
	providerProductID, providerVariantID string,
	published bool,
	position int,
	createdAt, updatedAt time.Time,
) (*Product, error) {
	if title == "" {
		return nil, ErrTitleRequired
	}

	return &Product{
		dbID:              dbID,
		sid:               sid,
		title:             title,
		slug:              slug,
		world:             world,
		description:       description,
		priceCents:        priceCents,
		currency:          currency,
		providerProductID: providerProductID,
		providerVariantID: providerVariantID,
		published:         published,
		position:          position,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}, nil
}

func (p *Product) ID() uint                  { return p.dbID }
func (p *Product) SID() string               { return p.sid }
func (p *Product) Title() string             { return p.title }
func (p *Product) Slug() string              { return p.slug }
func (p *Product) World() string             { return p.world }
func (p *Product) Description() string       { return p.description }
func (p *Product) PriceCents() uint64        { return p.priceCents }
func (p *Product) Currency() string          { return p.currency }
func (p *Product) ProviderProductID() string { return p.providerProductID }
func (p *Product) ProviderVariantID() string { return p.providerVariantID }
func (p *Product) Published() bool           { return p.published }
func (p *Product) Position() int             { return p.position }
func (p *Product) CreatedAt() time.Time      { return p.createdAt }
func (p *Product) UpdatedAt() time.Time      { return p.updatedAt }

// SetID sets the database ID (only for persistence layer use)
func (p *Product) SetID(dbID uint) error {
	if p.dbID != 0 {
		return errors.New("product ID is already set")
	}
	p.dbID = dbID
	return nil
}

// UpdateDetails replaces the product's editable fields.
func (p *Product) UpdateDetails(title, world, description string, priceCents uint64, currency string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	p.title = title
	p.world = world
	p.description = description
	p.priceCents = priceCents
	if currency != "" {
		p.currency = strings.ToUpper(currency)
	}
	p.updatedAt = time.Now().UTC()
	return nil
}

// LinkProvider records the payment provider's identifiers for this
// product. The variant ID is what fulfillment events reference.
func (p *Product) LinkProvider(providerProductID, providerVariantID string) {
	p.providerProductID = providerProductID
	p.providerVariantID = providerVariantID
	p.updatedAt = time.Now().UTC()
}

// SetPosition updates the catalog ordering hint.
func (p *Product) SetPosition(position int) {
	p.position = position
	p.updatedAt = time.Now().UTC()
}

// Publish makes the product visible in the public catalog.
func (p *Product) Publish() {
	if p.published {
		return
	}
	p.published = true
	p.updatedAt = time.Now().UTC()
}

// Unpublish hides the product from the public catalog. Existing
// entitlements are unaffected.
func (p *Product) Unpublish() {
	if !p.published {
		return
	}
	p.published = false
	p.updatedAt = time.Now().UTC()
}
