package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/domain/account"
	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type GrantEntitlementCommand struct {
	AccountSID string
	ProductSID string
	Note       string
	GrantedBy  string // admin account SID, for the audit trail
}

type GrantEntitlementResult struct {
	Grant   GrantInfo
	Created bool
}

// GrantEntitlementUseCase is the manual reconciliation path: an
// administrator grants a product directly, covering orders the webhook
// pipeline could not resolve. Same storage semantics as fulfillment,
// so granting twice is a no-op.
type GrantEntitlementUseCase struct {
	accountRepo     account.Repository
	productRepo     product.Repository
	entitlementRepo entitlement.Repository
	notifier        GrantNotifier // Optional
	logger          logger.Interface
}

func NewGrantEntitlementUseCase(
	accountRepo account.Repository,
	productRepo product.Repository,
	entitlementRepo entitlement.Repository,
	logger logger.Interface,
) *GrantEntitlementUseCase {
	return &GrantEntitlementUseCase{
		accountRepo:     accountRepo,
		productRepo:     productRepo,
		entitlementRepo: entitlementRepo,
		logger:          logger,
	}
}

// SetNotifier sets the grant notifier (optional dependency injection)
func (uc *GrantEntitlementUseCase) SetNotifier(notifier GrantNotifier) {
	uc.notifier = notifier
}

func (uc *GrantEntitlementUseCase) Execute(ctx context.Context, cmd GrantEntitlementCommand) (*GrantEntitlementResult, error) {
	buyer, err := uc.accountRepo.GetBySID(ctx, cmd.AccountSID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("account not found")
		}
		uc.logger.Errorw("failed to get account", "error", err, "account_sid", cmd.AccountSID)
		return nil, apperrors.NewInternalError("failed to get account")
	}

	p, err := uc.productRepo.GetBySID(ctx, cmd.ProductSID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		uc.logger.Errorw("failed to get product", "error", err, "product_sid", cmd.ProductSID)
		return nil, apperrors.NewInternalError("failed to get product")
	}

	grant, err := entitlement.NewGrant(buyer.ID(), p.ID(), "", entitlement.SourceAdmin)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid grant", err.Error())
	}
	if cmd.Note != "" {
		grant.SetMetadata("note", cmd.Note)
	}
	if cmd.GrantedBy != "" {
		grant.SetMetadata("granted_by", cmd.GrantedBy)
	}

	created, err := uc.entitlementRepo.Upsert(ctx, grant)
	if err != nil {
		uc.logger.Errorw("failed to persist grant",
			"error", err,
			"account_sid", cmd.AccountSID,
			"product_sid", cmd.ProductSID,
		)
		return nil, apperrors.NewInternalError("failed to persist entitlement grant")
	}

	info := GrantInfo{
		EntitlementSID: grant.SID(),
		AccountSID:     buyer.SID(),
		ProductSID:     p.SID(),
	}

	if !created {
		// The pair already exists; return the stored grant's identity.
		existing, err := uc.entitlementRepo.GetByAccountAndProduct(ctx, buyer.ID(), p.ID())
		if err == nil {
			info.EntitlementSID = existing.SID()
		}
		return &GrantEntitlementResult{Grant: info, Created: false}, nil
	}

	uc.logger.Infow("entitlement granted by admin",
		"entitlement_sid", grant.SID(),
		"account_sid", buyer.SID(),
		"product_sid", p.SID(),
		"granted_by", cmd.GrantedBy,
	)

	if uc.notifier != nil {
		uc.notifier.NotifyGranted(ctx, buyer.SID(), grant.SID(), p.SID(), "")
	}

	return &GrantEntitlementResult{Grant: info, Created: true}, nil
}
