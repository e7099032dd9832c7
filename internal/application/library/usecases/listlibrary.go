package usecases

import (
	"context"
	"fmt"

	"github.com/quillstore/quill/internal/application/library/dto"
	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/domain/product"
	"github.com/quillstore/quill/internal/shared/logger"
)

type ListLibraryQuery struct {
	AccountID       uint
	IncludeRefunded bool
}

type ListLibraryResult struct {
	Items []*dto.LibraryItemDTO `json:"items"`
	Total int                   `json:"total"`
}

// ListLibraryUseCase lists the products an account owns. Grants are
// scoped to the requesting account by construction: the query carries
// the authenticated account's database ID, never a client-supplied one.
type ListLibraryUseCase struct {
	entitlementRepo entitlement.Repository
	productRepo     product.Repository
	logger          logger.Interface
}

func NewListLibraryUseCase(
	entitlementRepo entitlement.Repository,
	productRepo product.Repository,
	logger logger.Interface,
) *ListLibraryUseCase {
	return &ListLibraryUseCase{
		entitlementRepo: entitlementRepo,
		productRepo:     productRepo,
		logger:          logger,
	}
}

func (uc *ListLibraryUseCase) Execute(ctx context.Context, query ListLibraryQuery) (*ListLibraryResult, error) {
	var (
		grants []*entitlement.Entitlement
		err    error
	)
	if query.IncludeRefunded {
		grants, err = uc.entitlementRepo.ListByAccount(ctx, query.AccountID)
	} else {
		grants, err = uc.entitlementRepo.ListActiveByAccount(ctx, query.AccountID)
	}
	if err != nil {
		uc.logger.Errorw("failed to list entitlements", "error", err, "account_id", query.AccountID)
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}

	if len(grants) == 0 {
		return &ListLibraryResult{Items: []*dto.LibraryItemDTO{}}, nil
	}

	productIDs := make([]uint, 0, len(grants))
	seen := make(map[uint]bool)
	for _, grant := range grants {
		if !seen[grant.ProductID()] {
			seen[grant.ProductID()] = true
			productIDs = append(productIDs, grant.ProductID())
		}
	}

	products, err := uc.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		uc.logger.Errorw("failed to load library products", "error", err, "account_id", query.AccountID)
		return nil, fmt.Errorf("failed to load library products: %w", err)
	}

	byID := make(map[uint]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID()] = p
	}

	items := make([]*dto.LibraryItemDTO, 0, len(grants))
	for _, grant := range grants {
		p := byID[grant.ProductID()]
		if p == nil {
			uc.logger.Warnw("grant references missing product",
				"entitlement_sid", grant.SID(),
				"product_id", grant.ProductID(),
			)
		}
		items = append(items, dto.ToLibraryItemDTO(grant, p))
	}

	return &ListLibraryResult{
		Items: items,
		Total: len(items),
	}, nil
}
