package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/application/product/dto"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type GetProductQuery struct {
	SID string
}

// GetProductUseCase fetches one product for the admin surface.
type GetProductUseCase struct {
	productRepo product.Repository
	logger      logger.Interface
}

func NewGetProductUseCase(productRepo product.Repository, logger logger.Interface) *GetProductUseCase {
	return &GetProductUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *GetProductUseCase) Execute(ctx context.Context, query GetProductQuery) (*dto.ProductDTO, error) {
	p, err := uc.productRepo.GetBySID(ctx, query.SID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		uc.logger.Errorw("failed to get product", "error", err, "product_sid", query.SID)
		return nil, apperrors.NewInternalError("failed to get product")
	}

	return dto.ToProductDTO(p), nil
}
