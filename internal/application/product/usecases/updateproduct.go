package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/application/product/dto"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type UpdateProductCommand struct {
	SID         string
	Title       string
	World       string
	Description string
	PriceCents  uint64
	Currency    string
	Position    *int
}

// UpdateProductUseCase replaces a product's editable details. The slug
// is deliberately immutable: storefront URLs stay stable.
type UpdateProductUseCase struct {
	productRepo product.Repository
	logger      logger.Interface
}

func NewUpdateProductUseCase(productRepo product.Repository, logger logger.Interface) *UpdateProductUseCase {
	return &UpdateProductUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *UpdateProductUseCase) Execute(ctx context.Context, cmd UpdateProductCommand) (*dto.ProductDTO, error) {
	p, err := uc.productRepo.GetBySID(ctx, cmd.SID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		uc.logger.Errorw("failed to get product", "error", err, "product_sid", cmd.SID)
		return nil, apperrors.NewInternalError("failed to get product")
	}

	if err := p.UpdateDetails(cmd.Title, cmd.World, cmd.Description, cmd.PriceCents, cmd.Currency); err != nil {
		return nil, apperrors.NewValidationError("invalid product", err.Error())
	}

	if cmd.Position != nil {
		p.SetPosition(*cmd.Position)
	}

	if err := uc.productRepo.Update(ctx, p); err != nil {
		uc.logger.Errorw("failed to update product", "error", err, "product_sid", cmd.SID)
		return nil, apperrors.NewInternalError("failed to update product")
	}

	uc.logger.Infow("product updated", "product_sid", p.SID())

	return dto.ToProductDTO(p), nil
}
