package product

import "context"

// Repository defines the interface for product persistence operations
type Repository interface {
	// Create creates a new product
	Create(ctx context.Context, p *Product) error

	// Update updates an existing product
	Update(ctx context.Context, p *Product) error

	// Delete removes a product by database ID
	Delete(ctx context.Context, dbID uint) error

	// GetByID retrieves a product by database ID
	GetByID(ctx context.Context, dbID uint) (*Product, error)

	// GetBySID retrieves a product by its public identifier
	GetBySID(ctx context.Context, sid string) (*Product, error)

	// GetBySlug retrieves a product by its URL slug
	GetBySlug(ctx context.Context, slug string) (*Product, error)

	// GetByProviderVariantID resolves a payment-provider checkout
	// variant to an internal product, the fulfillment lookup path
	GetByProviderVariantID(ctx context.Context, variantID string) (*Product, error)

	// List retrieves products ordered by position; publishedOnly
	// restricts to the public catalog view
	List(ctx context.Context, publishedOnly bool, offset, limit int) ([]*Product, int64, error)

	// GetByIDs retrieves products for a set of database IDs
	GetByIDs(ctx context.Context, dbIDs []uint) ([]*Product, error)
}
