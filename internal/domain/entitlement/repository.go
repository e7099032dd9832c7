package entitlement

import "context"

// Repository defines the interface for entitlement persistence operations
type Repository interface {
	// Upsert inserts the grant unless one already exists for its
	// (account, product) pair, in which case nothing is written. It
	// reports whether a new row was created. This atomic
	// insert-or-do-nothing is the serialization point that makes
	// concurrent webhook redeliveries safe.
	Upsert(ctx context.Context, e *Entitlement) (created bool, err error)

	// Update persists status and metadata changes to an existing grant
	Update(ctx context.Context, e *Entitlement) error

	// GetBySID retrieves a grant by its public identifier
	GetBySID(ctx context.Context, sid string) (*Entitlement, error)

	// GetByAccountAndProduct retrieves the grant for a specific pair,
	// or ErrNotFound
	GetByAccountAndProduct(ctx context.Context, accountID, productID uint) (*Entitlement, error)

	// ListByAccount retrieves all grants for an account, newest first
	ListByAccount(ctx context.Context, accountID uint) ([]*Entitlement, error)

	// ListActiveByAccount retrieves the account's active grants,
	// newest first
	ListActiveByAccount(ctx context.Context, accountID uint) ([]*Entitlement, error)

	// ListByOrderRef retrieves all grants produced by one provider
	// order, used when a refund event arrives
	ListByOrderRef(ctx context.Context, orderRef string) ([]*Entitlement, error)
}
