package usecases

import (
	"context"
	"errors"

	"github.com/quillstore/quill/internal/domain/account"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

type ListAccountLibraryQuery struct {
	AccountSID      string
	IncludeRefunded bool
}

// ListAccountLibraryUseCase lists any account's grants by public ID.
// Admin surface only: buyers reach their own library through
// ListLibraryUseCase with the account ID taken from the session.
type ListAccountLibraryUseCase struct {
	accountRepo account.Repository
	listLibrary *ListLibraryUseCase
	logger      logger.Interface
}

func NewListAccountLibraryUseCase(
	accountRepo account.Repository,
	listLibrary *ListLibraryUseCase,
	logger logger.Interface,
) *ListAccountLibraryUseCase {
	return &ListAccountLibraryUseCase{
		accountRepo: accountRepo,
		listLibrary: listLibrary,
		logger:      logger,
	}
}

func (uc *ListAccountLibraryUseCase) Execute(ctx context.Context, query ListAccountLibraryQuery) (*ListLibraryResult, error) {
	acct, err := uc.accountRepo.GetBySID(ctx, query.AccountSID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("account not found")
		}
		uc.logger.Errorw("failed to get account", "error", err, "account_sid", query.AccountSID)
		return nil, apperrors.NewInternalError("failed to get account")
	}

	return uc.listLibrary.Execute(ctx, ListLibraryQuery{
		AccountID:       acct.ID(),
		IncludeRefunded: query.IncludeRefunded,
	})
}
