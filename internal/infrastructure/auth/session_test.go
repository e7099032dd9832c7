package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionService(t *testing.T) {
	_, err := NewSessionService("")
	assert.ErrorIs(t, err, ErrMissingSecret)

	svc, err := NewSessionService("secret")
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestSessionVerify(t *testing.T) {
	svc, err := NewSessionService("test-secret")
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.Issue("acct_abc123", "buyer@example.com", "user", time.Hour)
		require.NoError(t, err)

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "acct_abc123", claims.AccountSID())
		assert.Equal(t, "buyer@example.com", claims.Email)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		other, err := NewSessionService("different-secret")
		require.NoError(t, err)
		token, err := other.Issue("acct_abc123", "", "user", time.Hour)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		token, err := svc.Issue("acct_abc123", "", "user", -time.Minute)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.Error(t, err)
	})

	t.Run("rejects missing subject", func(t *testing.T) {
		claims := &Claims{
			Role: "user",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.Error(t, err)
	})

	t.Run("rejects alg none", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "acct_abc123"},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.Verify("not-a-token")
		assert.Error(t, err)
	})
}
