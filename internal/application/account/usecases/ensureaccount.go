package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/domain/account"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type EnsureAccountCommand struct {
	SID         string // token subject from the auth provider
	Email       string
	DisplayName string
}

// EnsureAccountUseCase resolves the account behind a verified session
// token, provisioning a local row on first sight. Fulfillment needs an
// account row to attach grants to, so provisioning happens at first
// authenticated request rather than at first purchase.
type EnsureAccountUseCase struct {
	accountRepo account.Repository
	logger      logger.Interface
}

func NewEnsureAccountUseCase(accountRepo account.Repository, logger logger.Interface) *EnsureAccountUseCase {
	return &EnsureAccountUseCase{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (uc *EnsureAccountUseCase) Execute(ctx context.Context, cmd EnsureAccountCommand) (*account.Account, error) {
	a, err := uc.accountRepo.GetBySID(ctx, cmd.SID)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		uc.logger.Errorw("failed to get account", "error", err, "account_sid", cmd.SID)
		return nil, apperrors.NewInternalError("failed to get account")
	}

	a, err = account.NewProvisioned(cmd.SID, cmd.Email, cmd.DisplayName)
	if err != nil {
		return nil, apperrors.NewValidationError("cannot provision account", err.Error())
	}

	if err := uc.accountRepo.Create(ctx, a); err != nil {
		// A concurrent request may have provisioned the same account;
		// re-read before giving up.
		if apperrors.IsConflictError(err) || apperrors.IsDuplicateError(err) {
			if existing, rerr := uc.accountRepo.GetBySID(ctx, cmd.SID); rerr == nil {
				return existing, nil
			}
		}
		uc.logger.Errorw("failed to provision account", "error", err, "account_sid", cmd.SID)
		return nil, apperrors.NewInternalError("failed to provision account")
	}

	uc.logger.Infow("account provisioned", "account_sid", a.SID(), "email", a.Email())

	return a, nil
}
