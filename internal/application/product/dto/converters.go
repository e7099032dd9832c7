package dto

import "github.com/quillstore/quill/internal/domain/product"

func ToProductDTO(p *product.Product) *ProductDTO {
	return &ProductDTO{
		ID:                p.SID(),
		Title:             p.Title(),
		Slug:              p.Slug(),
		World:             p.World(),
		Description:       p.Description(),
		PriceCents:        p.PriceCents(),
		Currency:          p.Currency(),
		ProviderProductID: p.ProviderProductID(),
		ProviderVariantID: p.ProviderVariantID(),
		Published:         p.Published(),
		Position:          p.Position(),
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
	}
}

// ToPublicProductDTO converts a product for the storefront.
// descriptionHTML must already be sanitized.
func ToPublicProductDTO(p *product.Product, descriptionHTML string) *PublicProductDTO {
	return &PublicProductDTO{
		ID:              p.SID(),
		Title:           p.Title(),
		Slug:            p.Slug(),
		World:           p.World(),
		DescriptionHTML: descriptionHTML,
		PriceCents:      p.PriceCents(),
		Currency:        p.Currency(),
		Position:        p.Position(),
	}
}
