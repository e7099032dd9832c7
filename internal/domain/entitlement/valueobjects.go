// Package entitlement provides domain models and business logic for
// entitlement grants: durable records asserting that an account owns a
// product forever.
package entitlement

// Status represents the lifecycle status of an entitlement grant
type Status string

const (
	// StatusPending indicates the grant was recorded but the order has
	// not finished settling with the payment provider
	StatusPending Status = "pending"
	// StatusActive indicates the account currently owns the product
	StatusActive Status = "active"
	// StatusRefunded indicates the originating order was refunded
	StatusRefunded Status = "refunded"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusRefunded:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// Source represents the channel that produced the grant
type Source string

const (
	// SourceLemonSqueezy indicates the grant came from a verified
	// payment-provider webhook
	SourceLemonSqueezy Source = "lemonsqueezy"
	// SourceAdmin indicates a manual grant by a store administrator,
	// used for reconciliation and comps
	SourceAdmin Source = "admin"
)

// IsValid checks if the source is valid
func (s Source) IsValid() bool {
	switch s {
	case SourceLemonSqueezy, SourceAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation of the source
func (s Source) String() string {
	return string(s)
}
