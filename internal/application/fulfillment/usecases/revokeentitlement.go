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

type RevokeEntitlementCommand struct {
	EntitlementSID string
	Reason         string
	RevokedBy      string // admin account SID, for the audit trail
}

// RevokeEntitlementUseCase marks a grant refunded by admin action,
// used when a chargeback or support decision lands outside the
// provider's webhook flow.
type RevokeEntitlementUseCase struct {
	accountRepo     account.Repository
	productRepo     product.Repository
	entitlementRepo entitlement.Repository
	notifier        GrantNotifier // Optional
	logger          logger.Interface
}

func NewRevokeEntitlementUseCase(
	accountRepo account.Repository,
	productRepo product.Repository,
	entitlementRepo entitlement.Repository,
	logger logger.Interface,
) *RevokeEntitlementUseCase {
	return &RevokeEntitlementUseCase{
		accountRepo:     accountRepo,
		productRepo:     productRepo,
		entitlementRepo: entitlementRepo,
		logger:          logger,
	}
}

// SetNotifier sets the grant notifier (optional dependency injection)
func (uc *RevokeEntitlementUseCase) SetNotifier(notifier GrantNotifier) {
	uc.notifier = notifier
}

func (uc *RevokeEntitlementUseCase) Execute(ctx context.Context, cmd RevokeEntitlementCommand) error {
	grant, err := uc.entitlementRepo.GetBySID(ctx, cmd.EntitlementSID)
	if err != nil {
		if errors.Is(err, entitlement.ErrNotFound) {
			return apperrors.NewNotFoundError("entitlement not found")
		}
		uc.logger.Errorw("failed to get entitlement", "error", err, "entitlement_sid", cmd.EntitlementSID)
		return apperrors.NewInternalError("failed to get entitlement")
	}

	if err := grant.Refund(); err != nil {
		return apperrors.NewValidationError("cannot revoke entitlement", err.Error())
	}
	if cmd.Reason != "" {
		grant.SetMetadata("revoke_reason", cmd.Reason)
	}
	if cmd.RevokedBy != "" {
		grant.SetMetadata("revoked_by", cmd.RevokedBy)
	}

	if err := uc.entitlementRepo.Update(ctx, grant); err != nil {
		uc.logger.Errorw("failed to persist revocation", "error", err, "entitlement_sid", cmd.EntitlementSID)
		return apperrors.NewInternalError("failed to persist revocation")
	}

	uc.logger.Infow("entitlement revoked",
		"entitlement_sid", grant.SID(),
		"revoked_by", cmd.RevokedBy,
		"reason", cmd.Reason,
	)

	if uc.notifier != nil {
		if buyer, err := uc.accountRepo.GetByID(ctx, grant.AccountID()); err == nil {
			productSID := ""
			if p, err := uc.productRepo.GetByID(ctx, grant.ProductID()); err == nil {
				productSID = p.SID()
			}
			uc.notifier.NotifyRefunded(ctx, buyer.SID(), grant.SID(), productSID)
		}
	}

	return nil
}

type RestoreEntitlementCommand struct {
	EntitlementSID string
	RestoredBy     string
}

// RestoreEntitlementUseCase reinstates a refunded grant, the inverse
// of revocation.
type RestoreEntitlementUseCase struct {
	accountRepo     account.Repository
	productRepo     product.Repository
	entitlementRepo entitlement.Repository
	notifier        GrantNotifier // Optional
	logger          logger.Interface
}

func NewRestoreEntitlementUseCase(
	accountRepo account.Repository,
	productRepo product.Repository,
	entitlementRepo entitlement.Repository,
	logger logger.Interface,
) *RestoreEntitlementUseCase {
	return &RestoreEntitlementUseCase{
		accountRepo:     accountRepo,
		productRepo:     productRepo,
		entitlementRepo: entitlementRepo,
		logger:          logger,
	}
}

// SetNotifier sets the grant notifier (optional dependency injection)
func (uc *RestoreEntitlementUseCase) SetNotifier(notifier GrantNotifier) {
	uc.notifier = notifier
}

func (uc *RestoreEntitlementUseCase) Execute(ctx context.Context, cmd RestoreEntitlementCommand) error {
	grant, err := uc.entitlementRepo.GetBySID(ctx, cmd.EntitlementSID)
	if err != nil {
		if errors.Is(err, entitlement.ErrNotFound) {
			return apperrors.NewNotFoundError("entitlement not found")
		}
		uc.logger.Errorw("failed to get entitlement", "error", err, "entitlement_sid", cmd.EntitlementSID)
		return apperrors.NewInternalError("failed to get entitlement")
	}

	if err := grant.Reinstate(); err != nil {
		return apperrors.NewValidationError("cannot restore entitlement", err.Error())
	}
	if cmd.RestoredBy != "" {
		grant.SetMetadata("restored_by", cmd.RestoredBy)
	}

	if err := uc.entitlementRepo.Update(ctx, grant); err != nil {
		uc.logger.Errorw("failed to persist restoration", "error", err, "entitlement_sid", cmd.EntitlementSID)
		return apperrors.NewInternalError("failed to persist restoration")
	}

	uc.logger.Infow("entitlement restored",
		"entitlement_sid", grant.SID(),
		"restored_by", cmd.RestoredBy,
	)

	if uc.notifier != nil {
		if buyer, err := uc.accountRepo.GetByID(ctx, grant.AccountID()); err == nil {
			productSID := ""
			if p, err := uc.productRepo.GetByID(ctx, grant.ProductID()); err == nil {
				productSID = p.SID()
			}
			uc.notifier.NotifyRestored(ctx, buyer.SID(), grant.SID(), productSID)
		}
	}

	return nil
}
