package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signWith(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewVerifier(t *testing.T) {
	t.Run("requires secret", func(t *testing.T) {
		_, err := NewVerifier("")
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("accepts secret", func(t *testing.T) {
		v, err := NewVerifier("whsec_test")
		require.NoError(t, err)
		assert.NotNil(t, v)
	})
}

func TestVerify(t *testing.T) {
	v, err := NewVerifier("whsec_test")
	require.NoError(t, err)

	body := []byte(`{"meta":{"event_name":"order_created"},"data":{"id":"1"}}`)

	t.Run("accepts valid signature", func(t *testing.T) {
		assert.True(t, v.Verify(body, signWith("whsec_test", body)))
	})

	t.Run("rejects signature from different secret", func(t *testing.T) {
		assert.False(t, v.Verify(body, signWith("whsec_other", body)))
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		assert.False(t, v.Verify(body, ""))
	})

	t.Run("rejects malformed signature", func(t *testing.T) {
		assert.False(t, v.Verify(body, "not-hex!"))
		assert.False(t, v.Verify(body, "deadbeef"))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		sig := signWith("whsec_test", body)
		tampered := []byte(`{"meta":{"event_name":"order_created"},"data":{"id":"2"}}`)
		assert.False(t, v.Verify(tampered, sig))
	})
}

// Verification must operate on the exact bytes received. A payload that
// is semantically identical JSON but re-serialized (key order, spacing)
// carries different bytes and must fail against the original signature.
func TestVerifyRawBodySensitivity(t *testing.T) {
	v, err := NewVerifier("whsec_test")
	require.NoError(t, err)

	original := []byte(`{"meta":{"event_name":"order_created"},"data":{"id":"1"}}`)
	sig := v.Sign(original)

	reordered := []byte(`{"data":{"id":"1"},"meta":{"event_name":"order_created"}}`)
	respaced := []byte(`{ "meta": { "event_name": "order_created" }, "data": { "id": "1" } }`)

	assert.True(t, v.Verify(original, sig))
	assert.False(t, v.Verify(reordered, sig))
	assert.False(t, v.Verify(respaced, sig))
}

func TestSignRoundTrip(t *testing.T) {
	v, err := NewVerifier("whsec_test")
	require.NoError(t, err)

	body := []byte("payload")
	assert.True(t, v.Verify(body, v.Sign(body)))
}
