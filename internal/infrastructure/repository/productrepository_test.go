package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstore/quill/internal/domain/product"
)

func newTestProduct(t *testing.T, title, slug, variantID string) *product.Product {
	p, err := product.NewProduct(title, slug, "Aldervale", "A quiet starter region.", 499, "usd")
	require.NoError(t, err)
	if variantID != "" {
		p.LinkProvider("prov-prod-1", variantID)
	}
	return p
}

func TestProductRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	t.Run("create product successfully", func(t *testing.T) {
		p := newTestProduct(t, "Aldervale Region", "aldervale-region", "")

		err := repo.Create(ctx, p)
		assert.NoError(t, err)
		assert.NotZero(t, p.ID())
	})

	t.Run("duplicate slug fails", func(t *testing.T) {
		p1 := newTestProduct(t, "First", "dup-slug", "")
		require.NoError(t, repo.Create(ctx, p1))

		p2 := newTestProduct(t, "Second", "dup-slug", "")
		err := repo.Create(ctx, p2)
		assert.ErrorIs(t, err, product.ErrDuplicateSlug)
	})
}

func TestProductRepository_GetByProviderVariantID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	p := newTestProduct(t, "Mapped Product", "mapped-product", "variant-123")
	require.NoError(t, repo.Create(ctx, p))

	t.Run("resolves mapped variant", func(t *testing.T) {
		found, err := repo.GetByProviderVariantID(ctx, "variant-123")
		assert.NoError(t, err)
		assert.Equal(t, p.SID(), found.SID())
	})

	t.Run("unmapped variant is not found", func(t *testing.T) {
		found, err := repo.GetByProviderVariantID(ctx, "variant-unknown")
		assert.ErrorIs(t, err, product.ErrNotFound)
		assert.Nil(t, found)
	})
}

func TestProductRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	p := newTestProduct(t, "Original", "update-me", "")
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, p.UpdateDetails("Updated", "Northreach", "New description.", 999, "eur"))
	p.Publish()

	err := repo.Update(ctx, p)
	assert.NoError(t, err)

	found, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "Updated", found.Title())
	assert.Equal(t, "EUR", found.Currency())
	assert.True(t, found.Published())
}

func TestProductRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	published := newTestProduct(t, "Published", "published-one", "")
	published.Publish()
	published.SetPosition(2)
	require.NoError(t, repo.Create(ctx, published))

	draft := newTestProduct(t, "Draft", "draft-one", "")
	require.NoError(t, repo.Create(ctx, draft))

	first := newTestProduct(t, "First Position", "first-position", "")
	first.Publish()
	first.SetPosition(1)
	require.NoError(t, repo.Create(ctx, first))

	t.Run("published only", func(t *testing.T) {
		products, total, err := repo.List(ctx, true, 0, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, products, 2)
		assert.Equal(t, "First Position", products[0].Title())
	})

	t.Run("admin view includes drafts", func(t *testing.T) {
		products, total, err := repo.List(ctx, false, 0, 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, products, 3)
	})

	t.Run("pagination", func(t *testing.T) {
		products, total, err := repo.List(ctx, false, 0, 2)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, products, 2)
	})
}

func TestProductRepository_GetByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	p1 := newTestProduct(t, "One", "one", "")
	p2 := newTestProduct(t, "Two", "two", "")
	require.NoError(t, repo.Create(ctx, p1))
	require.NoError(t, repo.Create(ctx, p2))

	products, err := repo.GetByIDs(ctx, []uint{p1.ID(), p2.ID(), 99999})
	assert.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = repo.GetByIDs(ctx, nil)
	assert.NoError(t, err)
	assert.Len(t, products, 0)
}

func TestProductRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db, testLogger())
	ctx := context.Background()

	p := newTestProduct(t, "Doomed", "doomed", "")
	require.NoError(t, repo.Create(ctx, p))

	assert.NoError(t, repo.Delete(ctx, p.ID()))

	_, err := repo.GetByID(ctx, p.ID())
	assert.ErrorIs(t, err, product.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 99999), product.ErrNotFound)
}
