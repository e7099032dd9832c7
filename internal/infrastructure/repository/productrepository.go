package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/quillstore/quill/internal/domain/product"
	"github.com/quillstore/quill/internal/infrastructure/persistence/mappers"
	"github.com/quillstore/quill/internal/infrastructure/persistence/models"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

// ProductRepositoryImpl implements the product.Repository interface
type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.ProductMapper
	logger logger.Interface
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB, logger logger.Interface) product.Repository {
	return &ProductRepositoryImpl{
		db:     db,
		mapper: mappers.NewProductMapper(),
		logger: logger,
	}
}

// Create creates a new product
func (r *ProductRepositoryImpl) Create(ctx context.Context, p *product.Product) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		r.logger.Errorw("failed to map product entity to model", "error", err)
		return fmt.Errorf("failed to map product entity: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return product.ErrDuplicateSlug
		}
		r.logger.Errorw("failed to create product", "slug", model.Slug, "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := p.SetID(model.ID); err != nil {
		r.logger.Errorw("failed to set product ID", "error", err)
		return fmt.Errorf("failed to set product ID: %w", err)
	}

	r.logger.Infow("product created", "id", model.ID, "sid", model.SID, "slug", model.Slug)
	return nil
}

// Update updates an existing product
func (r *ProductRepositoryImpl) Update(ctx context.Context, p *product.Product) error {
	model, err := r.mapper.ToModel(p)
	if err != nil {
		r.logger.Errorw("failed to map product entity to model", "error", err)
		return fmt.Errorf("failed to map product entity: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":               model.Title,
			"world":               model.World,
			"description":         model.Description,
			"price_cents":         model.PriceCents,
			"currency":            model.Currency,
			"provider_product_id": model.ProviderProductID,
			"provider_variant_id": model.ProviderVariantID,
			"published":           model.Published,
			"position":            model.Position,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update product", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return product.ErrNotFound
	}

	return nil
}

// Delete removes a product by database ID
func (r *ProductRepositoryImpl) Delete(ctx context.Context, dbID uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, dbID)
	if result.Error != nil {
		r.logger.Errorw("failed to delete product", "id", dbID, "error", result.Error)
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return product.ErrNotFound
	}

	r.logger.Infow("product deleted", "id", dbID)
	return nil
}

// GetByID retrieves a product by database ID
func (r *ProductRepositoryImpl) GetByID(ctx context.Context, dbID uint) (*product.Product, error) {
	var model models.ProductModel

	if err := r.db.WithContext(ctx).First(&model, dbID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		r.logger.Errorw("failed to get product", "id", dbID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetBySID retrieves a product by its public identifier
func (r *ProductRepositoryImpl) GetBySID(ctx context.Context, sid string) (*product.Product, error) {
	var model models.ProductModel

	if err := r.db.WithContext(ctx).Where("sid = ?", sid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		r.logger.Errorw("failed to get product by sid", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetBySlug retrieves a product by its URL slug
func (r *ProductRepositoryImpl) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	var model models.ProductModel

	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		r.logger.Errorw("failed to get product by slug", "slug", slug, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// GetByProviderVariantID resolves a checkout variant to a product
func (r *ProductRepositoryImpl) GetByProviderVariantID(ctx context.Context, variantID string) (*product.Product, error) {
	var model models.ProductModel

	if err := r.db.WithContext(ctx).
		Where("provider_variant_id = ?", variantID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		r.logger.Errorw("failed to get product by provider variant", "variant_id", variantID, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

// List retrieves products ordered by position
func (r *ProductRepositoryImpl) List(ctx context.Context, publishedOnly bool, offset, limit int) ([]*product.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count products", "error", err)
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var productModels []*models.ProductModel
	if err := query.Order("position ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&productModels).Error; err != nil {
		r.logger.Errorw("failed to list products", "error", err)
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	entities, err := r.mapper.ToEntities(productModels)
	if err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

// GetByIDs retrieves products for a set of database IDs
func (r *ProductRepositoryImpl) GetByIDs(ctx context.Context, dbIDs []uint) ([]*product.Product, error) {
	if len(dbIDs) == 0 {
		return []*product.Product{}, nil
	}

	var productModels []*models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", dbIDs).
		Find(&productModels).Error; err != nil {
		r.logger.Errorw("failed to get products by ids", "count", len(dbIDs), "error", err)
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return r.mapper.ToEntities(productModels)
}
