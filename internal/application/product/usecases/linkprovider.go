package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/application/product/dto"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type LinkProviderCommand struct {
	SID               string
	ProviderProductID string
	ProviderVariantID string
}

// LinkProviderUseCase binds a product to its payment-provider
// identifiers. Until a product is linked, order events referencing its
// variant cannot be fulfilled.
type LinkProviderUseCase struct {
	productRepo product.Repository
	logger      logger.Interface
}

func NewLinkProviderUseCase(productRepo product.Repository, logger logger.Interface) *LinkProviderUseCase {
	return &LinkProviderUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *LinkProviderUseCase) Execute(ctx context.Context, cmd LinkProviderCommand) (*dto.ProductDTO, error) {
	if cmd.ProviderVariantID == "" {
		return nil, apperrors.NewValidationError("provider variant ID is required")
	}

	// A variant may map to at most one product, otherwise fulfillment
	// would be ambiguous.
	if existing, err := uc.productRepo.GetByProviderVariantID(ctx, cmd.ProviderVariantID); err == nil {
		if existing.SID() != cmd.SID {
			return nil, apperrors.NewConflictError("provider variant is already linked to another product")
		}
	} else if !errors.Is(err, product.ErrNotFound) {
		uc.logger.Errorw("failed to check variant linkage", "error", err, "variant_id", cmd.ProviderVariantID)
		return nil, apperrors.NewInternalError("failed to check variant linkage")
	}

	p, err := uc.productRepo.GetBySID(ctx, cmd.SID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		uc.logger.Errorw("failed to get product", "error", err, "product_sid", cmd.SID)
		return nil, apperrors.NewInternalError("failed to get product")
	}

	p.LinkProvider(cmd.ProviderProductID, cmd.ProviderVariantID)

	if err := uc.productRepo.Update(ctx, p); err != nil {
		uc.logger.Errorw("failed to update product", "error", err, "product_sid", cmd.SID)
		return nil, apperrors.NewInternalError("failed to update product")
	}

	uc.logger.Infow("product linked to provider",
		"product_sid", p.SID(),
		"provider_variant_id", cmd.ProviderVariantID,
	)

	return dto.ToProductDTO(p), nil
}
