package usecases

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
	"github.com/quillstore/quill/internal/shared/services/markdown"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockProductRepo struct {
	product.Repository
	createFunc         func(ctx context.Context, p *product.Product) error
	updateFunc         func(ctx context.Context, p *product.Product) error
	deleteFunc         func(ctx context.Context, dbID uint) error
	getBySIDFunc       func(ctx context.Context, sid string) (*product.Product, error)
	getBySlugFunc      func(ctx context.Context, slug string) (*product.Product, error)
	getByVariantIDFunc func(ctx context.Context, variantID string) (*product.Product, error)
	listFunc           func(ctx context.Context, publishedOnly bool, offset, limit int) ([]*product.Product, int64, error)
}

func (m *mockProductRepo) Create(ctx context.Context, p *product.Product) error {
	return m.createFunc(ctx, p)
}
func (m *mockProductRepo) Update(ctx context.Context, p *product.Product) error {
	return m.updateFunc(ctx, p)
}
func (m *mockProductRepo) Delete(ctx context.Context, dbID uint) error {
	return m.deleteFunc(ctx, dbID)
}
func (m *mockProductRepo) GetBySID(ctx context.Context, sid string) (*product.Product, error) {
	return m.getBySIDFunc(ctx, sid)
}
func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	return m.getBySlugFunc(ctx, slug)
}
func (m *mockProductRepo) GetByProviderVariantID(ctx context.Context, variantID string) (*product.Product, error) {
	return m.getByVariantIDFunc(ctx, variantID)
}
func (m *mockProductRepo) List(ctx context.Context, publishedOnly bool, offset, limit int) ([]*product.Product, int64, error) {
	return m.listFunc(ctx, publishedOnly, offset, limit)
}

func testProduct(t *testing.T, dbID uint, slug string) *product.Product {
	p, err := product.NewProduct("Product "+slug, slug, "Aldervale", "", 499, "USD")
	require.NoError(t, err)
	require.NoError(t, p.SetID(dbID))
	return p
}

func TestCreateProduct(t *testing.T) {
	t.Run("creates unpublished product", func(t *testing.T) {
		var created *product.Product
		repo := &mockProductRepo{
			createFunc: func(ctx context.Context, p *product.Product) error {
				created = p
				return nil
			},
		}
		uc := NewCreateProductUseCase(repo, testLogger())

		result, err := uc.Execute(context.Background(), CreateProductCommand{
			Title:      "Shimmerwood Annex",
			Slug:       "shimmerwood-annex",
			World:      "Aldervale",
			PriceCents: 1299,
			Currency:   "usd",
			Position:   3,
		})

		require.NoError(t, err)
		assert.False(t, result.Published)
		assert.Equal(t, "USD", result.Currency)
		assert.Equal(t, 3, result.Position)
		require.NotNil(t, created)
		assert.Equal(t, "shimmerwood-annex", created.Slug())
	})

	t.Run("rejects invalid slug", func(t *testing.T) {
		uc := NewCreateProductUseCase(&mockProductRepo{}, testLogger())

		_, err := uc.Execute(context.Background(), CreateProductCommand{
			Title: "Bad Slug",
			Slug:  "Bad Slug!",
		})
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("maps duplicate slug to conflict", func(t *testing.T) {
		repo := &mockProductRepo{
			createFunc: func(ctx context.Context, p *product.Product) error {
				return product.ErrDuplicateSlug
			},
		}
		uc := NewCreateProductUseCase(repo, testLogger())

		_, err := uc.Execute(context.Background(), CreateProductCommand{
			Title: "Taken",
			Slug:  "taken",
		})
		assert.True(t, apperrors.IsConflictError(err))
	})
}

func TestUpdateProduct(t *testing.T) {
	existing := testProduct(t, 10, "region-one")

	repo := &mockProductRepo{
		getBySIDFunc: func(ctx context.Context, sid string) (*product.Product, error) {
			if sid == existing.SID() {
				return existing, nil
			}
			return nil, product.ErrNotFound
		},
		updateFunc: func(ctx context.Context, p *product.Product) error { return nil },
	}
	uc := NewUpdateProductUseCase(repo, testLogger())

	result, err := uc.Execute(context.Background(), UpdateProductCommand{
		SID:        existing.SID(),
		Title:      "Region One, Revised",
		World:      "Aldervale",
		PriceCents: 1599,
	})

	require.NoError(t, err)
	assert.Equal(t, "Region One, Revised", result.Title)
	assert.Equal(t, uint64(1599), result.PriceCents)
	// Slug never changes on update.
	assert.Equal(t, "region-one", result.Slug)

	_, err = uc.Execute(context.Background(), UpdateProductCommand{SID: "prod_missing", Title: "X"})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestSetProductPublished(t *testing.T) {
	existing := testProduct(t, 10, "region-one")

	repo := &mockProductRepo{
		getBySIDFunc: func(ctx context.Context, sid string) (*product.Product, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, p *product.Product) error { return nil },
	}
	uc := NewSetProductPublishedUseCase(repo, testLogger())

	result, err := uc.Execute(context.Background(), SetProductPublishedCommand{SID: existing.SID(), Published: true})
	require.NoError(t, err)
	assert.True(t, result.Published)

	result, err = uc.Execute(context.Background(), SetProductPublishedCommand{SID: existing.SID(), Published: false})
	require.NoError(t, err)
	assert.False(t, result.Published)
}

func TestLinkProvider(t *testing.T) {
	existing := testProduct(t, 10, "region-one")
	other := testProduct(t, 11, "region-two")
	other.LinkProvider("prov-9", "999001")

	repo := &mockProductRepo{
		getBySIDFunc: func(ctx context.Context, sid string) (*product.Product, error) {
			if sid == existing.SID() {
				return existing, nil
			}
			return nil, product.ErrNotFound
		},
		getByVariantIDFunc: func(ctx context.Context, variantID string) (*product.Product, error) {
			if variantID == "999001" {
				return other, nil
			}
			return nil, product.ErrNotFound
		},
		updateFunc: func(ctx context.Context, p *product.Product) error { return nil },
	}
	uc := NewLinkProviderUseCase(repo, testLogger())

	t.Run("links free variant", func(t *testing.T) {
		result, err := uc.Execute(context.Background(), LinkProviderCommand{
			SID:               existing.SID(),
			ProviderProductID: "prov-1",
			ProviderVariantID: "555001",
		})
		require.NoError(t, err)
		assert.Equal(t, "555001", result.ProviderVariantID)
	})

	t.Run("rejects variant linked elsewhere", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), LinkProviderCommand{
			SID:               existing.SID(),
			ProviderVariantID: "999001",
		})
		assert.True(t, apperrors.IsConflictError(err))
	})

	t.Run("relinking same product is allowed", func(t *testing.T) {
		repo.getBySIDFunc = func(ctx context.Context, sid string) (*product.Product, error) {
			return other, nil
		}
		_, err := uc.Execute(context.Background(), LinkProviderCommand{
			SID:               other.SID(),
			ProviderVariantID: "999001",
		})
		assert.NoError(t, err)
	})

	t.Run("requires variant id", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), LinkProviderCommand{SID: existing.SID()})
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestListCatalog(t *testing.T) {
	published := testProduct(t, 10, "region-one")
	published.Publish()

	repo := &mockProductRepo{
		listFunc: func(ctx context.Context, publishedOnly bool, offset, limit int) ([]*product.Product, int64, error) {
			assert.True(t, publishedOnly)
			return []*product.Product{published}, 1, nil
		},
	}
	uc := NewListCatalogUseCase(repo, testLogger())

	result, err := uc.Execute(context.Background(), ListCatalogQuery{})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "region-one", result.Products[0].Slug)
	// Listing omits rendered descriptions.
	assert.Empty(t, result.Products[0].DescriptionHTML)
}

func TestGetCatalogProduct(t *testing.T) {
	published, err := product.NewProduct("Region One", "region-one", "Aldervale", "A **quiet** place.", 499, "USD")
	require.NoError(t, err)
	require.NoError(t, published.SetID(10))
	published.Publish()

	hidden := testProduct(t, 11, "region-two")

	repo := &mockProductRepo{
		getBySlugFunc: func(ctx context.Context, slug string) (*product.Product, error) {
			switch slug {
			case "region-one":
				return published, nil
			case "region-two":
				return hidden, nil
			}
			return nil, product.ErrNotFound
		},
	}
	uc := NewGetCatalogProductUseCase(repo, markdown.NewService(), testLogger())

	t.Run("renders description", func(t *testing.T) {
		result, err := uc.Execute(context.Background(), GetCatalogProductQuery{Slug: "region-one"})
		require.NoError(t, err)
		assert.Contains(t, result.DescriptionHTML, "<strong>quiet</strong>")
	})

	t.Run("unpublished product is not found", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), GetCatalogProductQuery{Slug: "region-two"})
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), GetCatalogProductQuery{Slug: "nope"})
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestDeleteProduct(t *testing.T) {
	existing := testProduct(t, 10, "region-one")

	var deletedID uint
	repo := &mockProductRepo{
		getBySIDFunc: func(ctx context.Context, sid string) (*product.Product, error) {
			if sid == existing.SID() {
				return existing, nil
			}
			return nil, product.ErrNotFound
		},
		deleteFunc: func(ctx context.Context, dbID uint) error {
			deletedID = dbID
			return nil
		},
	}
	uc := NewDeleteProductUseCase(repo, testLogger())

	require.NoError(t, uc.Execute(context.Background(), DeleteProductCommand{SID: existing.SID()}))
	assert.Equal(t, uint(10), deletedID)

	err := uc.Execute(context.Background(), DeleteProductCommand{SID: "prod_missing"})
	assert.True(t, apperrors.IsNotFoundError(err))
}
