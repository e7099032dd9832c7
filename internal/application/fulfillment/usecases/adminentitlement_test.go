package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstore/quill/internal/domain/account"
	"github.com/quillstore/quill/internal/domain/entitlement"
	"github.com/quillstore/quill/internal/domain/product"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
)

func (m *memEntitlementRepo) GetBySID(ctx context.Context, sid string) (*entitlement.Entitlement, error) {
	for _, g := range m.grants {
		if g.SID() == sid {
			return g, nil
		}
	}
	return nil, entitlement.ErrNotFound
}

func (m *memEntitlementRepo) GetByAccountAndProduct(ctx context.Context, accountID, productID uint) (*entitlement.Entitlement, error) {
	if g, ok := m.grants[pairKey(accountID, productID)]; ok {
		return g, nil
	}
	return nil, entitlement.ErrNotFound
}

func TestGrantEntitlement(t *testing.T) {
	buyer := testAccount(t, 1, "buyer@example.com")
	p := testProduct(t, 10, "region-one")

	accounts := &mockAccountRepo{
		getBySIDFunc: func(ctx context.Context, sid string) (*account.Account, error) {
			if sid == buyer.SID() {
				return buyer, nil
			}
			return nil, account.ErrNotFound
		},
	}
	catalog := &mockProductRepo{
		getBySIDFunc: func(ctx context.Context, sid string) (*product.Product, error) {
			if sid == p.SID() {
				return p, nil
			}
			return nil, product.ErrNotFound
		},
	}
	repo := newMemEntitlementRepo()
	notifier := &mockNotifier{}

	uc := NewGrantEntitlementUseCase(accounts, catalog, repo, testLogger())
	uc.SetNotifier(notifier)

	cmd := GrantEntitlementCommand{
		AccountSID: buyer.SID(),
		ProductSID: p.SID(),
		Note:       "support ticket 4217",
		GrantedBy:  "acct_admin",
	}

	result, err := uc.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, buyer.SID(), result.Grant.AccountSID)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "granted", notifier.calls[0].kind)

	stored := repo.grants[pairKey(buyer.ID(), p.ID())]
	require.NotNil(t, stored)
	assert.Equal(t, entitlement.SourceAdmin, stored.Source())
	assert.Equal(t, "support ticket 4217", stored.Metadata()["note"])
	assert.Equal(t, "acct_admin", stored.Metadata()["granted_by"])

	t.Run("granting twice is a no-op", func(t *testing.T) {
		result, err := uc.Execute(context.Background(), cmd)
		require.NoError(t, err)
		assert.False(t, result.Created)
		// The stored grant's identity comes back, not the discarded one.
		assert.Equal(t, stored.SID(), result.Grant.EntitlementSID)
		assert.Len(t, notifier.calls, 1)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), GrantEntitlementCommand{
			AccountSID: "acct_missing",
			ProductSID: p.SID(),
		})
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), GrantEntitlementCommand{
			AccountSID: buyer.SID(),
			ProductSID: "prod_missing",
		})
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}

func TestRevokeAndRestoreEntitlement(t *testing.T) {
	buyer := testAccount(t, 1, "buyer@example.com")
	p := testProduct(t, 10, "region-one")

	accounts := &mockAccountRepo{
		getByIDFunc: func(ctx context.Context, dbID uint) (*account.Account, error) {
			return buyer, nil
		},
	}
	catalog := &mockProductRepo{
		getByIDFunc: func(ctx context.Context, dbID uint) (*product.Product, error) {
			return p, nil
		},
	}
	repo := newMemEntitlementRepo()
	notifier := &mockNotifier{}

	grant, err := entitlement.NewGrant(buyer.ID(), p.ID(), "order-7", entitlement.SourceLemonSqueezy)
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), grant)
	require.NoError(t, err)

	revoke := NewRevokeEntitlementUseCase(accounts, catalog, repo, testLogger())
	revoke.SetNotifier(notifier)
	restore := NewRestoreEntitlementUseCase(accounts, catalog, repo, testLogger())
	restore.SetNotifier(notifier)

	err = revoke.Execute(context.Background(), RevokeEntitlementCommand{
		EntitlementSID: grant.SID(),
		Reason:         "chargeback",
		RevokedBy:      "acct_admin",
	})
	require.NoError(t, err)
	assert.Equal(t, entitlement.StatusRefunded, grant.Status())
	assert.Equal(t, "chargeback", grant.Metadata()["revoke_reason"])
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "refunded", notifier.calls[0].kind)

	err = restore.Execute(context.Background(), RestoreEntitlementCommand{
		EntitlementSID: grant.SID(),
		RestoredBy:     "acct_admin",
	})
	require.NoError(t, err)
	assert.Equal(t, entitlement.StatusActive, grant.Status())
	require.Len(t, notifier.calls, 2)
	assert.Equal(t, "restored", notifier.calls[1].kind)

	t.Run("revoking unknown grant", func(t *testing.T) {
		err := revoke.Execute(context.Background(), RevokeEntitlementCommand{EntitlementSID: "ent_missing"})
		assert.True(t, apperrors.IsNotFoundError(err))
	})
}
