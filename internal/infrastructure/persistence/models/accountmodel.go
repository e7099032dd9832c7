package models

import (
	"time"

	"github.com/quillstore/quill/internal/shared/constants"
)

// AccountModel represents the database persistence model for accounts
// This is the anti-corruption layer between domain and database
type AccountModel struct {
	ID          uint   `gorm:"primarykey"`
	SID         string `gorm:"column:sid;not null;size:20;uniqueIndex:idx_account_sid"` // Stripe-style prefixed ID (acct_xxx)
	Email       string `gorm:"uniqueIndex;not null;size:255"`
	DisplayName string `gorm:"not null;size:100"`
	Role        string `gorm:"not null;default:user;size:20"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (AccountModel) TableName() string {
	return constants.TableAccounts
}
