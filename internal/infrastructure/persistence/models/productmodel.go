package models

import (
	"time"

	"github.com/quillstore/quill/internal/shared/constants"
)

// ProductModel represents the database persistence model for products
type ProductModel struct {
	ID                uint   `gorm:"primarykey"`
	SID               string `gorm:"column:sid;not null;size:20;uniqueIndex:idx_product_sid"` // Stripe-style prefixed ID (prod_xxx)
	Title             string `gorm:"not null;size:200"`
	Slug              string `gorm:"uniqueIndex;not null;size:120"`
	World             string `gorm:"size:120;index:idx_product_world"`
	Description       string `gorm:"type:text"`
	PriceCents        uint64 `gorm:"not null;default:0"`
	Currency          string `gorm:"not null;size:3;default:USD"`
	ProviderProductID string `gorm:"size:64"`
	ProviderVariantID string `gorm:"size:64;index:idx_product_provider_variant"`
	Published         bool   `gorm:"not null;default:false;index:idx_product_published"`
	Position          int    `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the table name for GORM
func (ProductModel) TableName() string {
	return constants.TableProducts
}
