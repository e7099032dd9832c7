package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/application/product/dto"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type SetProductPublishedCommand struct {
	SID       string
	Published bool
}

// SetProductPublishedUseCase toggles a product's storefront visibility.
type SetProductPublishedUseCase struct {
	productRepo product.Repository
	logger      logger.Interface
}

func NewSetProductPublishedUseCase(productRepo product.Repository, logger logger.Interface) *SetProductPublishedUseCase {
	return &SetProductPublishedUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *SetProductPublishedUseCase) Execute(ctx context.Context, cmd SetProductPublishedCommand) (*dto.ProductDTO, error) {
	p, err := uc.productRepo.GetBySID(ctx, cmd.SID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		uc.logger.Errorw("failed to get product", "error", err, "product_sid", cmd.SID)
		return nil, apperrors.NewInternalError("failed to get product")
	}

	if cmd.Published {
		p.Publish()
	} else {
		p.Unpublish()
	}

	if err := uc.productRepo.Update(ctx, p); err != nil {
		uc.logger.Errorw("failed to update product", "error", err, "product_sid", cmd.SID)
		return nil, apperrors.NewInternalError("failed to update product")
	}

	uc.logger.Infow("product visibility changed", "product_sid", p.SID(), "published", cmd.Published)

	return dto.ToProductDTO(p), nil
}
