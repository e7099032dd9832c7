package usecases

import (
	"context"
	"fmt"

	"github.com/quillstore/quill/internal/application/product/dto"
	"github.com/quillstore/quill/internal/domain/product"
	"github.com/quillstore/quill/internal/shared/logger"
)

type ListProductsQuery struct {
	Page     int
	PageSize int
}

type ListProductsResult struct {
	Products []*dto.ProductDTO `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ListProductsUseCase lists the full catalog for the admin surface,
// published or not.
type ListProductsUseCase struct {
	productRepo product.Repository
	logger      logger.Interface
}

func NewListProductsUseCase(productRepo product.Repository, logger logger.Interface) *ListProductsUseCase {
	return &ListProductsUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *ListProductsUseCase) Execute(ctx context.Context, query ListProductsQuery) (*ListProductsResult, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	offset := (query.Page - 1) * query.PageSize
	products, total, err := uc.productRepo.List(ctx, false, offset, query.PageSize)
	if err != nil {
		uc.logger.Errorw("failed to list products", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	dtos := make([]*dto.ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, dto.ToProductDTO(p))
	}

	return &ListProductsResult{
		Products: dtos,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}
