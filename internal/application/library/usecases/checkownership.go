package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type CheckOwnershipQuery struct {
	AccountID  uint
	ProductSID string
}

type CheckOwnershipResult struct {
	Owned  bool   `json:"owned"`
	Status string `json:"status,omitempty"`
}

// CheckOwnershipUseCase answers whether an account holds an active
// grant for one product, the gate in front of content delivery.
type CheckOwnershipUseCase struct {
	entitlementRepo entitlement.Repository
	productRepo     product.Repository
	logger          logger.Interface
}

func NewCheckOwnershipUseCase(
	entitlementRepo entitlement.Repository,
	productRepo product.Repository,
	logger logger.Interface,
) *CheckOwnershipUseCase {
	return &CheckOwnershipUseCase{
		entitlementRepo: entitlementRepo,
		productRepo:     productRepo,
		logger:          logger,
	}
}

func (uc *CheckOwnershipUseCase) Execute(ctx context.Context, query CheckOwnershipQuery) (*CheckOwnershipResult, error) {
	p, err := uc.productRepo.GetBySID(ctx, query.ProductSID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		uc.logger.Errorw("failed to get product", "error", err, "product_sid", query.ProductSID)
		return nil, apperrors.NewInternalError("failed to get product")
	}

	grant, err := uc.entitlementRepo.GetByAccountAndProduct(ctx, query.AccountID, p.ID())
	if err != nil {
		if errors.Is(err, entitlement.ErrNotFound) {
			return &CheckOwnershipResult{Owned: false}, nil
		}
		uc.logger.Errorw("failed to check ownership",
			"error", err,
			"account_id", query.AccountID,
			"product_sid", query.ProductSID,
		)
		return nil, apperrors.NewInternalError("failed to check ownership")
	}

	return &CheckOwnershipResult{
		Owned:  grant.IsActive(),
		Status: string(grant.Status()),
	}, nil
}
