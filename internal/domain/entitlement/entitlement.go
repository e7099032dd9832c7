package entitlement

import (
	"time"

	"github.com/quillstore/quill/internal/shared/id"
)

// Entitlement is the aggregate root for an entitlement grant. A grant
// asserts that one account owns one product; the (account, product)
// pair is unique and the grant is only ever written by the fulfillment
// pipeline or an administrator, never by the buyer's own session.
type Entitlement struct {
	dbID      uint
	sid       string
	accountID uint
	productID uint
	orderRef  string // payment-provider order identifier, for audit
	source    Source
	status    Status
	grantedAt time.Time
	metadata  map[string]any
	createdAt time.Time
	updatedAt time.Time
}

// NewGrant creates a new active entitlement grant.
func NewGrant(accountID, productID uint, orderRef string, source Source) (*Entitlement, error) {
	if accountID == 0 {
		return nil, ErrAccountRequired
	}
	if productID == 0 {
		return nil, ErrProductRequired
	}
	if !source.IsValid() {
		return nil, ErrInvalidSource
	}

	sid, err := id.NewEntitlementSID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Entitlement{
		sid:       sid,
		accountID: accountID,
		productID: productID,
		orderRef:  orderRef,
		source:    source,
		status:    StatusActive,
		grantedAt: now,
		metadata:  make(map[string]any),
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds an entitlement from persistence.
func Reconstruct(
	dbID uint,
	sid string,
	accountID uint,
	productID uint,
	orderRef string,
	source Source,
	status Status,
	grantedAt time.Time,
	metadata map[string]any,
	createdAt, updatedAt time.Time,
) (*Entitlement, error) {
	if accountID == 0 {
		return nil, ErrAccountRequired
	}
	if productID == 0 {
		return nil, ErrProductRequired
	}
	if !source.IsValid() {
		return nil, ErrInvalidSource
	}
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Entitlement{
		dbID:      dbID,
		sid:       sid,
		accountID: accountID,
		productID: productID,
		orderRef:  orderRef,
		source:    source,
		status:    status,
		grantedAt: grantedAt,
		metadata:  metadata,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}, nil
}

func (e *Entitlement) ID() uint             { return e.dbID }
func (e *Entitlement) SID() string          { return e.sid }
func (e *Entitlement) AccountID() uint      { return e.accountID }
func (e *Entitlement) ProductID() uint      { return e.productID }
func (e *Entitlement) OrderRef() string     { return e.orderRef }
func (e *Entitlement) Source() Source       { return e.source }
func (e *Entitlement) Status() Status       { return e.status }
func (e *Entitlement) GrantedAt() time.Time { return e.grantedAt }
func (e *Entitlement) CreatedAt() time.Time { return e.createdAt }
func (e *Entitlement) UpdatedAt() time.Time { return e.updatedAt }

// Metadata returns the grant metadata
func (e *Entitlement) Metadata() map[string]any { return e.metadata }

// SetID sets the database ID (only for persistence layer use)
func (e *Entitlement) SetID(dbID uint) error {
	if e.dbID != 0 {
		return ErrDuplicateGrant
	}
	if dbID == 0 {
		return ErrNotFound
	}
	e.dbID = dbID
	return nil
}

// SetMetadata records a metadata value on the grant.
func (e *Entitlement) SetMetadata(key string, value any) {
	if e.metadata == nil {
		e.metadata = make(map[string]any)
	}
	e.metadata[key] = value
	e.updatedAt = time.Now().UTC()
}

// Refund marks the grant refunded. Idempotent: refunding an already
// refunded grant is a no-op.
func (e *Entitlement) Refund() error {
	if e.status == StatusRefunded {
		return nil
	}
	e.status = StatusRefunded
	e.updatedAt = time.Now().UTC()
	return nil
}

// Reinstate restores a refunded grant to active, used when the payment
// provider cancels a refund.
func (e *Entitlement) Reinstate() error {
	if e.status == StatusActive {
		return nil
	}
	if e.status != StatusRefunded {
		return ErrInvalidStatusTransition(e.status, StatusActive)
	}
	e.status = StatusActive
	e.updatedAt = time.Now().UTC()
	return nil
}

// Activate promotes a pending grant to active once the order settles.
func (e *Entitlement) Activate() error {
	if e.status == StatusActive {
		return nil
	}
	if e.status != StatusPending {
		return ErrInvalidStatusTransition(e.status, StatusActive)
	}
	e.status = StatusActive
	e.grantedAt = time.Now().UTC()
	e.updatedAt = e.grantedAt
	return nil
}

// IsActive checks if the account currently owns the product.
func (e *Entitlement) IsActive() bool {
	return e.status == StatusActive
}
