package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/quillstore/quill/internal/application/product/dto"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/services/markdown"
)

type ListCatalogQuery struct {
	Page     int
	PageSize int
}

type ListCatalogResult struct {
	Products []*dto.PublicProductDTO `json:"products"`
	Total    int64                   `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// ListCatalogUseCase lists published products for the storefront.
// Descriptions are omitted in the listing; the detail view renders them.
type ListCatalogUseCase struct {
	productRepo product.Repository
	logger      logger.Interface
}

func NewListCatalogUseCase(productRepo product.Repository, logger logger.Interface) *ListCatalogUseCase {
	return &ListCatalogUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *ListCatalogUseCase) Execute(ctx context.Context, query ListCatalogQuery) (*ListCatalogResult, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 50
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	offset := (query.Page - 1) * query.PageSize
	products, total, err := uc.productRepo.List(ctx, true, offset, query.PageSize)
	if err != nil {
		uc.logger.Errorw("failed to list catalog", "error", err)
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	dtos := make([]*dto.PublicProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, dto.ToPublicProductDTO(p, ""))
	}

	return &ListCatalogResult{
		Products: dtos,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

type GetCatalogProductQuery struct {
	Slug string
}

// GetCatalogProductUseCase fetches one published product by slug with
// its description rendered to sanitized HTML.
type GetCatalogProductUseCase struct {
	productRepo product.Repository
	markdownSvc markdown.Service
	logger      logger.Interface
}

func NewGetCatalogProductUseCase(
	productRepo product.Repository,
	markdownSvc markdown.Service,
	logger logger.Interface,
) *GetCatalogProductUseCase {
	return &GetCatalogProductUseCase{
		productRepo: productRepo,
		markdownSvc: markdownSvc,
		logger:      logger,
	}
}

func (uc *GetCatalogProductUseCase) Execute(ctx context.Context, query GetCatalogProductQuery) (*dto.PublicProductDTO, error) {
	p, err := uc.productRepo.GetBySlug(ctx, query.Slug)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		uc.logger.Errorw("failed to get product", "error", err, "slug", query.Slug)
		return nil, apperrors.NewInternalError("failed to get product")
	}
	// Unpublished products are invisible to the storefront, same as
	// missing ones.
	if !p.Published() {
		return nil, apperrors.NewNotFoundError("product not found")
	}

	descriptionHTML := ""
	if p.Description() != "" {
		descriptionHTML, err = uc.markdownSvc.ToHTMLSanitized(p.Description())
		if err != nil {
			uc.logger.Warnw("failed to render product description", "error", err, "slug", query.Slug)
			descriptionHTML = ""
		}
	}

	return dto.ToPublicProductDTO(p, descriptionHTML), nil
}
