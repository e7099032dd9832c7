package account

import "context"

// Repository defines the interface for account persistence operations
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, a *Account) error

	// GetByID retrieves an account by database ID
	GetByID(ctx context.Context, dbID uint) (*Account, error)

	// GetBySID retrieves an account by its public identifier, the
	// reference carried in webhook custom metadata and session tokens
	GetBySID(ctx context.Context, sid string) (*Account, error)

	// GetByEmail retrieves an account by email address, the fulfillment
	// fallback when no explicit reference was supplied at checkout
	GetByEmail(ctx context.Context, email string) (*Account, error)
}
