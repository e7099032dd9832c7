package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/application/product/dto"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type CreateProductCommand struct {
	Title       string
	Slug        string
	World       string
	Description string
	PriceCents  uint64
	Currency    string
	Position    int
}

// CreateProductUseCase creates an unpublished catalog product.
type CreateProductUseCase struct {
	productRepo product.Repository
	logger      logger.Interface
}

func NewCreateProductUseCase(productRepo product.Repository, logger logger.Interface) *CreateProductUseCase {
	return &CreateProductUseCase{
		productRepo: productRepo,
		logger:      logger,
	}
}

func (uc *CreateProductUseCase) Execute(ctx context.Context, cmd CreateProductCommand) (*dto.ProductDTO, error) {
	p, err := product.NewProduct(cmd.Title, cmd.Slug, cmd.World, cmd.Description, cmd.PriceCents, cmd.Currency)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid product", err.Error())
	}

	if cmd.Position != 0 {
		p.SetPosition(cmd.Position)
	}

	if err := uc.productRepo.Create(ctx, p); err != nil {
		if errors.Is(err, product.ErrDuplicateSlug) {
			return nil, apperrors.NewConflictError("product slug already exists")
		}
		uc.logger.Errorw("failed to create product", "error", err, "slug", cmd.Slug)
		return nil, apperrors.NewInternalError("failed to create product")
	}

	uc.logger.Infow("product created", "product_sid", p.SID(), "slug", p.Slug())

	return dto.ToProductDTO(p), nil
}
