package usecases

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillstore/quill/internal/domain/account"
	apperrors "github.com/quillstore/quill/internal/shared/errors"
	"github.com/quillstore/quill/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockAccountRepo struct {
	account.Repository
	getBySIDFunc func(ctx context.Context, sid string) (*account.Account, error)
	createFunc   func(ctx context.Context, a *account.Account) error
}

func (m *mockAccountRepo) GetBySID(ctx context.Context, sid string) (*account.Account, error) {
	return m.getBySIDFunc(ctx, sid)
}

func (m *mockAccountRepo) Create(ctx context.Context, a *account.Account) error {
	return m.createFunc(ctx, a)
}

func TestEnsureAccount(t *testing.T) {
	existing, err := account.NewProvisioned("acct_known", "known@example.com", "Known")
	require.NoError(t, err)

	t.Run("returns existing account", func(t *testing.T) {
		repo := &mockAccountRepo{
			getBySIDFunc: func(ctx context.Context, sid string) (*account.Account, error) {
				return existing, nil
			},
			createFunc: func(ctx context.Context, a *account.Account) error {
				t.Fatal("should not create when the account exists")
				return nil
			},
		}
		uc := NewEnsureAccountUseCase(repo, testLogger())

		a, err := uc.Execute(context.Background(), EnsureAccountCommand{SID: "acct_known"})
		require.NoError(t, err)
		assert.Equal(t, "acct_known", a.SID())
	})

	t.Run("provisions on first sight", func(t *testing.T) {
		var created *account.Account
		repo := &mockAccountRepo{
			getBySIDFunc: func(ctx context.Context, sid string) (*account.Account, error) {
				return nil, account.ErrNotFound
			},
			createFunc: func(ctx context.Context, a *account.Account) error {
				created = a
				return nil
			},
		}
		uc := NewEnsureAccountUseCase(repo, testLogger())

		a, err := uc.Execute(context.Background(), EnsureAccountCommand{
			SID:         "acct_new",
			Email:       "New@Example.com",
			DisplayName: "New Buyer",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		// Token subject becomes the account's public identifier.
		assert.Equal(t, "acct_new", a.SID())
		assert.Equal(t, "new@example.com", a.Email())
	})

	t.Run("concurrent provisioning falls back to re-read", func(t *testing.T) {
		calls := 0
		repo := &mockAccountRepo{
			getBySIDFunc: func(ctx context.Context, sid string) (*account.Account, error) {
				calls++
				if calls == 1 {
					return nil, account.ErrNotFound
				}
				return existing, nil
			},
			createFunc: func(ctx context.Context, a *account.Account) error {
				return apperrors.NewConflictError("account already exists")
			},
		}
		uc := NewEnsureAccountUseCase(repo, testLogger())

		a, err := uc.Execute(context.Background(), EnsureAccountCommand{SID: "acct_known", Email: "known@example.com"})
		require.NoError(t, err)
		assert.Equal(t, existing.SID(), a.SID())
	})

	t.Run("rejects token without email for unknown account", func(t *testing.T) {
		repo := &mockAccountRepo{
			getBySIDFunc: func(ctx context.Context, sid string) (*account.Account, error) {
				return nil, account.ErrNotFound
			},
		}
		uc := NewEnsureAccountUseCase(repo, testLogger())

		_, err := uc.Execute(context.Background(), EnsureAccountCommand{SID: "acct_new"})
		assert.True(t, apperrors.IsValidationError(err))
	})
}
