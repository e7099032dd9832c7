package entitlement

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrant(t *testing.T) {
	t.Run("creates active grant", func(t *testing.T) {
		e, err := NewGrant(1, 2, "order-123", SourceLemonSqueezy)
		require.NoError(t, err)

		assert.Equal(t, uint(1), e.AccountID())
		assert.Equal(t, uint(2), e.ProductID())
		assert.Equal(t, "order-123", e.OrderRef())
		assert.Equal(t, SourceLemonSqueezy, e.Source())
		assert.Equal(t, StatusActive, e.Status())
		assert.True(t, e.IsActive())
		assert.True(t, strings.HasPrefix(e.SID(), "ent_"))
		assert.False(t, e.GrantedAt().IsZero())
	})

	t.Run("rejects missing account", func(t *testing.T) {
		_, err := NewGrant(0, 2, "order-123", SourceLemonSqueezy)
		assert.ErrorIs(t, err, ErrAccountRequired)
	})

	t.Run("rejects missing product", func(t *testing.T) {
		_, err := NewGrant(1, 0, "order-123", SourceLemonSqueezy)
		assert.ErrorIs(t, err, ErrProductRequired)
	})

	t.Run("rejects unknown source", func(t *testing.T) {
		_, err := NewGrant(1, 2, "order-123", Source("paypal"))
		assert.ErrorIs(t, err, ErrInvalidSource)
	})
}

func TestReconstruct(t *testing.T) {
	now := time.Now().UTC()

	t.Run("rebuilds from persistence", func(t *testing.T) {
		e, err := Reconstruct(7, "ent_abc", 1, 2, "order-1", SourceAdmin, StatusRefunded, now, nil, now, now)
		require.NoError(t, err)

		assert.Equal(t, uint(7), e.ID())
		assert.Equal(t, StatusRefunded, e.Status())
		assert.False(t, e.IsActive())
		assert.NotNil(t, e.Metadata())
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		_, err := Reconstruct(7, "ent_abc", 1, 2, "order-1", SourceAdmin, Status("revoked"), now, nil, now, now)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestStatusTransitions(t *testing.T) {
	t.Run("refund is idempotent", func(t *testing.T) {
		e, err := NewGrant(1, 2, "order-1", SourceLemonSqueezy)
		require.NoError(t, err)

		require.NoError(t, e.Refund())
		assert.Equal(t, StatusRefunded, e.Status())

		require.NoError(t, e.Refund())
		assert.Equal(t, StatusRefunded, e.Status())
	})

	t.Run("reinstate restores refunded grant", func(t *testing.T) {
		e, err := NewGrant(1, 2, "order-1", SourceLemonSqueezy)
		require.NoError(t, err)
		require.NoError(t, e.Refund())

		require.NoError(t, e.Reinstate())
		assert.True(t, e.IsActive())
	})

	t.Run("activate rejects refunded grant", func(t *testing.T) {
		e, err := NewGrant(1, 2, "order-1", SourceLemonSqueezy)
		require.NoError(t, err)
		require.NoError(t, e.Refund())

		assert.Error(t, e.Activate())
	})

	t.Run("activate promotes pending grant", func(t *testing.T) {
		now := time.Now().UTC()
		e, err := Reconstruct(1, "ent_abc", 1, 2, "order-1", SourceLemonSqueezy, StatusPending, now, nil, now, now)
		require.NoError(t, err)

		require.NoError(t, e.Activate())
		assert.True(t, e.IsActive())
	})
}

func TestSetID(t *testing.T) {
	e, err := NewGrant(1, 2, "order-1", SourceLemonSqueezy)
	require.NoError(t, err)

	require.NoError(t, e.SetID(42))
	assert.Equal(t, uint(42), e.ID())

	assert.Error(t, e.SetID(43), "ID must not be reassignable")
}

func TestSetMetadata(t *testing.T) {
	e, err := NewGrant(1, 2, "order-1", SourceLemonSqueezy)
	require.NoError(t, err)

	e.SetMetadata("resolved_via", "email")
	v, ok := e.Metadata()["resolved_via"]
	require.True(t, ok)
	assert.Equal(t, "email", v)
}
