package entitlement

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an entitlement grant is not found
	ErrNotFound = errors.New("entitlement not found")

	// ErrInvalidStatus is returned when an invalid grant status is provided
	ErrInvalidStatus = errors.New("invalid entitlement status")

	// ErrInvalidSource is returned when an invalid grant source is provided
	ErrInvalidSource = errors.New("invalid entitlement source")

	// ErrAccountRequired is returned when the account reference is missing
	ErrAccountRequired = errors.New("account ID is required")

	// ErrProductRequired is returned when the product reference is missing
	ErrProductRequired = errors.New("product ID is required")

	// ErrDuplicateGrant is returned when a grant already exists for the
	// account-product pair
	ErrDuplicateGrant = errors.New("entitlement already exists")
)

// ErrInvalidStatusTransition returns an error for invalid status transitions
func ErrInvalidStatusTransition(from, to Status) error {
	return fmt.Errorf("invalid status transition from %s to %s", from, to)
}
