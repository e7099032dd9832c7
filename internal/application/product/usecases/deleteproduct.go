package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type DeleteProductCommand struct {
	SID string
}

// DeleteProductUseCase removes a product from the catalog. Grants that
// reference the product are left in place so purchase history survives.
type DeleteProductUseCase struct {
	productRepo product.Repository
	logger      logger.Interface
}

func NewDeleteProductUseCase(productRepo product.Repository, logger logger.Interface) *DeleteProductUseCase {
	return &DeleteProductUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *DeleteProductUseCase) Execute(ctx context.Context, cmd DeleteProductCommand) error {
	p, err := uc.productRepo.GetBySID(ctx, cmd.SID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return apperrors.NewNotFoundError("product not found")
		}
		uc.logger.Errorw("failed to get product", "error", err, "product_sid", cmd.SID)
		return apperrors.NewInternalError("failed to get product")
	}

	if err := uc.productRepo.Delete(ctx, p.ID()); err != nil {
		uc.logger.Errorw("failed to delete product", "error", err, "product_sid", cmd.SID)
		return apperrors.NewInternalError("failed to delete product")
	}

	uc.logger.Infow("product deleted", "product_sid", cmd.SID, "slug", p.Slug())

	return nil
}
