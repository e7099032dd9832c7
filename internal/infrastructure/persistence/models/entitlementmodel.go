package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/quillstore/quill/internal/shared/constants"
)

// EntitlementModel represents the database persistence model for entitlements
// This is the anti-corruption layer between domain and database
// The composite unique index on (account_id, product_id) is what makes
// redelivered order events idempotent at the storage level.
type EntitlementModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"column:sid;not null;size:20;uniqueIndex:idx_entitlement_sid"` // Stripe-style prefixed ID (ent_xxx)
	AccountID uint   `gorm:"not null;uniqueIndex:idx_unique_grant,priority:1;index:idx_entitlement_account"`
	ProductID uint   `gorm:"not null;uniqueIndex:idx_unique_grant,priority:2"`
	OrderRef  string `gorm:"size:64;index:idx_entitlement_order_ref"`
	Source    string `gorm:"not null;size:20"`
	Status    string `gorm:"not null;size:20;default:active;index:idx_entitlement_status"`
	GrantedAt time.Time
	Metadata  datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (EntitlementModel) TableName() string {
	return constants.TableEntitlements
}
