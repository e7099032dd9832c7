package dto

import (
	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/domain/product"
)

// ToLibraryItemDTO converts a grant plus its product into a library
// entry. The product may be nil when the catalog row has been removed
// after the grant was made.
func ToLibraryItemDTO(e *entitlement.Entitlement, p *product.Product) *LibraryItemDTO {
	item := &LibraryItemDTO{
		EntitlementID: e.SID(),
		Status:        string(e.Status()),
		Source:        string(e.Source()),
		OrderRef:      e.OrderRef(),
		GrantedAt:     e.GrantedAt(),
	}

	if p != nil {
		item.Product = &LibraryProductDTO{
			ID:         p.SID(),
			Title:      p.Title(),
			Slug:       p.Slug(),
			World:      p.World(),
			PriceCents: p.PriceCents(),
			Currency:   p.Currency(),
		}
	}

	return item
}
