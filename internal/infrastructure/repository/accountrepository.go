package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/quillstore/quill/internal/domain/account"
	"github.com/quillstore/quill/internal/infrastructure/persistence/mappers"
	"github.com/quillstore/quill/internal/infrastructure/persistence/models"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

// AccountRepositoryImpl implements the account.Repository interface
type AccountRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.AccountMapper
	logger logger.Interface
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB, logger logger.Interface) account.Repository {
	return &AccountRepositoryImpl{
		db:     db,
		mapper: mappers.NewAccountMapper(),
		logger: logger,
	}
}

// Create creates a new account
func (r *AccountRepositoryImpl) Create(ctx context.Context, a *account.Account) error {
	model, err := r.mapper.ToModel(a)
	if err != nil {
		r.logger.Errorw("failed to map account entity to model", "error", err)
		return fmt.Errorf("failed to map account entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("account with this email already exists")
		}
		r.logger.Errorw("failed to create account", "email", model.Email, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	if err := a.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set account ID", "error", err)
		return fmt.Errorf("failed to set account ID: %w", err)
	}

	r.logger.Infow("account created", "id", model.ID, "sid", model.SID)
	return nil
}

// GetByID retrieves an account by database ID
func (r *AccountRepositoryImpl) GetByID(ctx context.Context, dbID uint) (*account.Account, error) {
	var model models.AccountModel

	if err := r.db.WithContext(ctx).First(&model, dbID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrNotFound
		}
		r.logger.Errorw("failed to get account", "id", dbID, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetBySID retrieves an account by its public identifier
func (r *AccountRepositoryImpl) GetBySID(ctx context.Context, sid string) (*account.Account, error) {
	var model models.AccountModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrNotFound
		}
		r.logger.Errorw("failed to get account by sid", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByEmail retrieves an account by email address
func (r *AccountRepositoryImpl) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	var model models.AccountModel

	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrNotFound
		}
		r.logger.Errorw("failed to get account by email", "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return r.mapper.ToEntity(&model)
}
