package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/infrastructure/persistence/mappers"
	"github.com/quillstore/quill/internal/infrastructure/persistence/models"
	"github.com/quillstore/quill/internal/shared/logger"
)

// EntitlementRepositoryImpl implements the entitlement.Repository interface
type EntitlementRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.EntitlementMapper
	logger logger.Interface
}

// NewEntitlementRepository creates a new entitlement repository instance
func NewEntitlementRepository(db *gorm.DB, logger logger.Interface) entitlement.Repository {
	return &EntitlementRepositoryImpl{
		db:     db,
		mapper: mappers.NewEntitlementMapper(),
		logger: logger,
	}
}

// Upsert inserts the grant unless a row already exists for its
// (account_id, product_id) pair. The unique index makes the
// insert-or-do-nothing atomic, so concurrent redeliveries of the same
// order event race harmlessly: exactly one insert wins.
func (r *EntitlementRepositoryImpl) Upsert(ctx context.Context, e *entitlement.Entitlement) (bool, error) {
	model, err := r.mapper.ToModel(e)
	if err != nil {
		r.logger.Errorw("failed to map entitlement entity to model", "error", err)
		return false, fmt.Errorf("failed to map entitlement entity: %w", err)
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account_id"},
			{Name: "product_id"},
		},
		DoNothing: true,
	}).Create(model)

	if result.Error != nil {
		r.logger.Errorw("failed to upsert entitlement",
			"account_id", model.AccountID, "product_id", model.ProductID, "error", result.Error)
		return false, fmt.Errorf("failed to upsert entitlement: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	if err := e.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set entitlement ID", "error", err)
		return false, fmt.Errorf("failed to set entitlement ID: %w", err)
	}

	r.logger.Infow("entitlement created",
		"id", model.ID, "sid", model.SID, "account_id", model.AccountID, "product_id", model.ProductID)
	return true, nil
}

// Update persists status and metadata changes to an existing grant
func (r *EntitlementRepositoryImpl) Update(ctx context.Context, e *entitlement.Entitlement) error {
	model, err := r.mapper.ToModel(e)
	if err != nil {
		r.logger.Errorw("failed to map entitlement entity to model", "error", err)
		return fmt.Errorf("failed to map entitlement entity: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.EntitlementModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"metadata":   model.Metadata,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update entitlement", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update entitlement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entitlement.ErrNotFound
	}

	return nil
}

// GetBySID retrieves a grant by its public identifier
func (r *EntitlementRepositoryImpl) GetBySID(ctx context.Context, sid string) (*entitlement.Entitlement, error) {
	var model models.EntitlementModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.ErrNotFound
		}
		r.logger.Errorw("failed to get entitlement by sid", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByAccountAndProduct retrieves the grant for a specific pair
func (r *EntitlementRepositoryImpl) GetByAccountAndProduct(ctx context.Context, accountID, productID uint) (*entitlement.Entitlement, error) {
	var model models.EntitlementModel

	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND product_id = ?", accountID, productID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entitlement.ErrNotFound
		}
		r.logger.Errorw("failed to get entitlement",
			"account_id", accountID, "product_id", productID, "error", err)
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// ListByAccount retrieves all grants for an account, newest first
func (r *EntitlementRepositoryImpl) ListByAccount(ctx context.Context, accountID uint) ([]*entitlement.Entitlement, error) {
	var entitlementModels []*models.EntitlementModel

	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("granted_at DESC").
		Find(&entitlementModels).Error; err != nil {
		r.logger.Errorw("failed to list entitlements", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list entitlements: %w", err)
	}

	return r.mapper.ToEntities(entitlementModels)
}

// ListActiveByAccount retrieves the account's active grants, newest first
func (r *EntitlementRepositoryImpl) ListActiveByAccount(ctx context.Context, accountID uint) ([]*entitlement.Entitlement, error) {
	var entitlementModels []*models.EntitlementModel

	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, string(entitlement.StatusActive)).
		Order("granted_at DESC").
		Find(&entitlementModels).Error; err != nil {
		r.logger.Errorw("failed to list active entitlements", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list active entitlements: %w", err)
	}

	return r.mapper.ToEntities(entitlementModels)
}

// ListByOrderRef retrieves all grants produced by one provider order
func (r *EntitlementRepositoryImpl) ListByOrderRef(ctx context.Context, orderRef string) ([]*entitlement.Entitlement, error) {
	var entitlementModels []*models.EntitlementModel

	if err := r.db.WithContext(ctx).
		Where("order_ref = ?", orderRef).
		Find(&entitlementModels).Error; err != nil {
		r.logger.Errorw("failed to list entitlements by order ref", "order_ref", orderRef, "error", err)
		return nil, fmt.Errorf("failed to list entitlements by order ref: %w", err)
	}

	return r.mapper.ToEntities(entitlementModels)
}
